// SPDX-License-Identifier: MPL-2.0

// Package identity resolves the display name and version of a game folder.
//
// Names and versions each come from an ordered list of strategies; the first
// strategy producing a non-empty value wins. Names are taken from the
// !info.txt file (gog-service sources only), then the product lookup
// database, then the title-cased clean key. Versions are taken from the
// !info.txt file, then from the base installer's file name.
package identity
