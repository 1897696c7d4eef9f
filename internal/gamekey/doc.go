// SPDX-License-Identifier: MPL-2.0

// Package gamekey groups the folders of a source tree into game keys and
// picks the latest folder per key.
//
// For versioned sources a folder named "<key>_windows_gog_(<version>)"
// contributes a numeric version token (the version with dots removed).
// Folders with a token always outrank folders without one; among tokens the
// largest wins.
package gamekey
