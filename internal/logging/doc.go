// SPDX-License-Identifier: MPL-2.0

// Package logging installs the process-wide slog logger: a console handler
// and a timestamped debug log file, both rendered by charmbracelet/log.
package logging
