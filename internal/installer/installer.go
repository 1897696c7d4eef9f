// SPDX-License-Identifier: MPL-2.0

// Package installer picks the base installer of a game folder and orders
// the installers to extract.
package installer

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Glob matches installer executables inside a game folder.
const Glob = "setup_*.exe"

// KeyPattern turns a clean game key into a regular expression fragment:
// each underscore-separated segment is quoted and separators match any run
// of '-', '_' or whitespace.
func KeyPattern(cleanKey string) string {
	segments := strings.Split(cleanKey, "_")
	for i, s := range segments {
		segments[i] = regexp.QuoteMeta(s)
	}
	return strings.Join(segments, `[-_\s]+`)
}

// Candidates lists the installer file names in dir, ordered by name.
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(Glob, entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Base returns the file name of the base installer in dir. Candidates are
// ranked shortest name first; the first one with a "<stem>-1.bin" companion
// wins, then the first whose name starts with "setup_<key>", then the first.
func Base(cleanKey, dir string) (string, bool) {
	candidates, err := Candidates(dir)
	if err != nil {
		slog.Warn("cannot list installers", "dir", dir, "error", err)
		return "", false
	}
	return pickBase(cleanKey, dir, candidates)
}

func pickBase(cleanKey, dir string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		slog.Warn("no installers found", "dir", dir, "glob", Glob)
		return "", false
	}

	ranked := append([]string(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool { return len(ranked[i]) < len(ranked[j]) })

	for _, name := range ranked {
		companion := strings.TrimSuffix(name, filepath.Ext(name)) + "-1.bin"
		if info, err := os.Stat(filepath.Join(dir, companion)); err == nil && !info.IsDir() {
			return name, true
		}
	}

	keyed := regexp.MustCompile(`(?i)^setup_` + KeyPattern(cleanKey))
	for _, name := range ranked {
		if keyed.MatchString(name) {
			return name, true
		}
	}

	return ranked[0], true
}

// Ordered returns the installers to extract, relative to dir: the base
// installer first, then the remaining installers by name unless baseOnly is
// set. A folder without installers yields nil.
func Ordered(cleanKey, dir string, baseOnly bool) []string {
	candidates, err := Candidates(dir)
	if err != nil {
		slog.Warn("cannot list installers", "dir", dir, "error", err)
		return nil
	}

	base, ok := pickBase(cleanKey, dir, candidates)
	if !ok {
		return nil
	}

	ordered := []string{base}
	if baseOnly {
		return ordered
	}
	for _, name := range candidates {
		if name != base {
			ordered = append(ordered, name)
		}
	}
	return ordered
}
