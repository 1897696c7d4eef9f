// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors with user-facing remediation hints
// and a catalog of Markdown help entries for the failure modes a user can fix
// (missing source trees, a missing innoextract binary, an unreachable lookup
// database, and so on).
package issue
