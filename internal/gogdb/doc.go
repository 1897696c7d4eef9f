// SPDX-License-Identifier: MPL-2.0

// Package gogdb provides canonical product names from a local copy of the
// GOG product database (a SQLite file with a "products" table).
//
// The copy is refreshed wholesale: EnsureFresh downloads a new file when the
// current one is missing or older than the configured maximum age, validates
// it and atomically replaces the old one. Lookups never touch the network.
package gogdb
