// SPDX-License-Identifier: MPL-2.0

package gamekey

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SourceTypeVersioned is the source type whose folder names embed a version.
const SourceTypeVersioned = "gog-games"

// ErrSourceDirNotFound is returned when the source root is missing or not a directory.
var ErrSourceDirNotFound = errors.New("source directory not found")

var versionedPattern = regexp.MustCompile(`^([a-zA-Z0-9_.]+)_windows_gog_\(([\d.]+)\)`)

type (
	// Folder is a directory directly under a source root.
	Folder struct {
		// Name is the raw directory name.
		Name string
		// Key is the game key derived from Name.
		Key string
		// Version is the embedded version token, nil when absent or unparsable.
		Version *int64
	}

	// DeriveFunc derives the game key and version token of a folder name.
	DeriveFunc func(name string) Folder

	// Ignores matches folder names against glob-style patterns where "*"
	// matches any sequence and every other character is literal.
	Ignores struct {
		patterns []string
		compiled []*regexp.Regexp
	}
)

// Verbatim keys a folder by its full name without a version token.
func Verbatim(name string) Folder {
	return Folder{Name: name, Key: name}
}

// Versioned parses "<key>_windows_gog_(<version>)". Names that do not match
// fall back to Verbatim.
func Versioned(name string) Folder {
	m := versionedPattern.FindStringSubmatch(name)
	if m == nil {
		return Verbatim(name)
	}

	f := Folder{Name: name, Key: m[1]}
	if token, err := strconv.ParseInt(strings.ReplaceAll(m[2], ".", ""), 10, 64); err == nil {
		f.Version = &token
	}
	return f
}

// DeriverFor returns the key derivation rule of a source type.
func DeriverFor(sourceType string) DeriveFunc {
	if sourceType == SourceTypeVersioned {
		return Versioned
	}
	return Verbatim
}

// NewIgnores compiles ignore patterns. Each pattern must match a whole name.
func NewIgnores(patterns []string) *Ignores {
	ig := &Ignores{patterns: patterns, compiled: make([]*regexp.Regexp, len(patterns))}
	for i, p := range patterns {
		quoted := strings.ReplaceAll(regexp.QuoteMeta(p), `\*`, ".*")
		ig.compiled[i] = regexp.MustCompile("^(?:" + quoted + ")$")
	}
	return ig
}

// Match returns the first pattern matching name.
func (ig *Ignores) Match(name string) (string, bool) {
	if ig == nil {
		return "", false
	}
	for i, re := range ig.compiled {
		if re.MatchString(name) {
			return ig.patterns[i], true
		}
	}
	return "", false
}

// Group scans the immediate subdirectories of root, drops ignored names and
// returns the latest folder of every game key, ordered by the first
// appearance of the key in the sorted directory listing.
func Group(root string, ignores *Ignores, derive DeriveFunc) ([]Folder, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceDirNotFound, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read source directory %s: %w", root, err)
	}

	var folders []Folder
	for _, entry := range entries {
		if !isDir(root, entry) {
			continue
		}
		name := entry.Name()
		if pattern, ok := ignores.Match(name); ok {
			slog.Debug("ignoring source folder", "folder", name, "pattern", pattern)
			continue
		}
		folders = append(folders, derive(name))
	}

	return Latest(folders), nil
}

// Latest keeps one folder per key: the one with the greatest version token,
// where any token outranks a missing one. Equal candidates keep input order.
func Latest(folders []Folder) []Folder {
	var keys []string
	byKey := make(map[string][]Folder)
	for _, f := range folders {
		if _, seen := byKey[f.Key]; !seen {
			keys = append(keys, f.Key)
		}
		byKey[f.Key] = append(byKey[f.Key], f)
	}

	latest := make([]Folder, 0, len(keys))
	for _, key := range keys {
		candidates := byKey[key]
		sort.SliceStable(candidates, func(i, j int) bool {
			return newer(candidates[i], candidates[j])
		})
		latest = append(latest, candidates[0])
	}
	return latest
}

// newer reports whether a strictly outranks b.
func newer(a, b Folder) bool {
	switch {
	case a.Version == nil:
		return false
	case b.Version == nil:
		return true
	default:
		return *a.Version > *b.Version
	}
}

// isDir follows symlinks so linked game folders are still scanned.
func isDir(root string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, entry.Name()))
	return err == nil && info.IsDir()
}
