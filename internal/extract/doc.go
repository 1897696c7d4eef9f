// SPDX-License-Identifier: MPL-2.0

// Package extract runs innoextract over the ordered installers of a game.
//
// An Extractor clears and recreates the destination, extracts each installer
// in order, and verifies that something was written. Any failure removes the
// destination and is recorded in the extractor's failure list so a batch run
// can report every game that did not unpack.
package extract
