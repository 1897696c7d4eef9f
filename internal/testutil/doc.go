// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that fail fast on setup errors,
// plus the Clock abstraction that time-dependent code (database freshness,
// timestamped log and failure records) accepts so tests can pin the time.
//
// Fixture helpers build installer trees on disk (WriteTree, MustWriteFile)
// and stand-in executables for external tools (WriteScript).
package testutil
