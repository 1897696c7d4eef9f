// SPDX-License-Identifier: MPL-2.0

// Package unpack drives a full run: plan each configured source, skip games
// whose destination already matches, extract the rest and record what was
// written. It decouples the CLI from the manifest and extraction packages.
package unpack
