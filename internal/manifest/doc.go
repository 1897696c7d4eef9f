// SPDX-License-Identifier: MPL-2.0

// Package manifest builds the per-source extraction plan: one record per
// game key with the resolved name and version, the source and destination
// folders, and the ordered installers. Manifests are saved as
// <manifests_dir>/<source_type>.json.
package manifest
