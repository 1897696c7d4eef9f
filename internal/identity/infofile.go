// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// InfoFileName is the per-folder metadata file of gog-service sources.
const InfoFileName = "!info.txt"

var infoVersionLine = regexp.MustCompile(`(?i)^\s*version:\s*(.*)`)

// InfoFile holds the values found in an !info.txt file. Empty means absent.
type InfoFile struct {
	Name    string
	Version string
}

// ParseInfoFile reads the name from the second line, formatted as
// "<prefix> -- <name> -- <suffix>", and the version from the first line
// starting with "version:". The two are independent.
func ParseInfoFile(content string) InfoFile {
	var info InfoFile
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	if len(lines) > 1 {
		parts := strings.Split(strings.TrimSpace(lines[1]), "--")
		if len(parts) >= 3 {
			info.Name = strings.TrimSpace(whitespaceRun.ReplaceAllString(ASCII(strings.TrimSpace(parts[1])), " "))
		}
	}

	for _, line := range lines {
		if m := infoVersionLine.FindStringSubmatch(line); m != nil {
			info.Version = strings.TrimSpace(m[1])
			break
		}
	}

	return info
}

// ReadInfoFile parses dir/!info.txt.
func ReadInfoFile(dir string) (InfoFile, error) {
	data, err := os.ReadFile(filepath.Join(dir, InfoFileName))
	if err != nil {
		return InfoFile{}, err
	}
	return ParseInfoFile(string(data)), nil
}

// infoFileFor reads the subject's info file. Only the name strategy reports
// read failures so each folder is reported once.
func infoFileFor(s Subject, report bool) (InfoFile, bool) {
	if s.SourceType != SourceTypeInfoFile {
		return InfoFile{}, false
	}
	info, err := ReadInfoFile(s.Dir)
	if err != nil {
		if !report {
			return InfoFile{}, false
		}
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("info file not found", "path", filepath.Join(s.Dir, InfoFileName))
		} else {
			slog.Error("cannot read info file", "path", filepath.Join(s.Dir, InfoFileName), "error", err)
		}
		return InfoFile{}, false
	}
	return info, true
}

func infoFileName(_ context.Context, s Subject) (string, bool) {
	info, ok := infoFileFor(s, true)
	return info.Name, ok && info.Name != ""
}

func infoFileVersion(_ context.Context, s Subject) (string, bool) {
	info, ok := infoFileFor(s, false)
	return info.Version, ok && info.Version != ""
}
