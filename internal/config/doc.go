// SPDX-License-Identifier: MPL-2.0

// Package config handles application settings and the sources document.
//
// Settings are loaded with Viper: built-in defaults, then an optional CUE file
// (~/.config/gogunpack/config.cue, the XDG equivalent on Linux, or an explicit
// path) validated against the embedded #Config schema, then environment
// variables. Each setting accepts a GOGUNPACK_-prefixed variable and the
// historical unprefixed name (CONFIG_PATH, LOG_DIR, INNOEXTRACT_PATH, ...).
//
// The sources document lists the installer trees to process. It is relaxed
// JSON (comments and trailing commas allowed) and is validated with CUE
// against the embedded #Sources schema; entries keep their file order.
package config
