// SPDX-License-Identifier: MPL-2.0

// Package cueutil wraps the CUE compile/unify/validate/decode flow used for the
// settings file and the sources document.
//
// CUE is a superset of JSON, so hand-edited JSON with // comments and trailing
// commas parses without a separate relaxed-JSON reader. Errors are reported
// with JSON-path prefixes (e.g. "gog_games.ignores[2]: ...").
package cueutil
