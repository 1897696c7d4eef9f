// SPDX-License-Identifier: MPL-2.0

// Package goginfo reads the goggame-*.info files that GOG installers place
// in an extracted game folder to find the game name and primary launcher.
package goginfo

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// Pattern matches info files in a single directory.
	Pattern = "goggame-*.info"
	// RecursivePattern matches info files at any depth.
	RecursivePattern = "**/" + Pattern
)

type (
	// Details are the values taken from the first usable info file.
	Details struct {
		// Name is the game name, "" when no info file names it.
		Name string
		// LauncherPath is the primary launcher relative to the searched root.
		LauncherPath string
	}

	infoFile struct {
		Name      string     `json:"name"`
		PlayTasks []playTask `json:"playTasks"`
	}

	playTask struct {
		Name      string `json:"name"`
		Path      string `json:"path"`
		IsPrimary bool   `json:"isPrimary"`
	}
)

// Find returns the details of the first info file with a primary play task
// that has a path. Info files in root are preferred; deeper ones are only
// searched when root has none. ok is false when nothing usable was found.
func Find(root string) (Details, bool, error) {
	fsys := os.DirFS(root)

	matches, err := doublestar.Glob(fsys, Pattern)
	if err != nil {
		return Details{}, false, fmt.Errorf("glob %s: %w", Pattern, err)
	}
	if len(matches) == 0 {
		matches, err = doublestar.Glob(fsys, RecursivePattern)
		if err != nil {
			return Details{}, false, fmt.Errorf("glob %s: %w", RecursivePattern, err)
		}
	}
	sort.Strings(matches)

	for _, rel := range matches {
		details, ok := parse(fsys, rel)
		if ok {
			return details, true, nil
		}
	}
	return Details{}, false, nil
}

func parse(fsys fs.FS, rel string) (Details, bool) {
	data, err := fs.ReadFile(fsys, rel)
	if err != nil {
		slog.Warn("cannot read GOG info file", "path", rel, "error", err)
		return Details{}, false
	}

	var info infoFile
	if err := json.Unmarshal(data, &info); err != nil {
		slog.Warn("cannot parse GOG info file", "path", rel, "error", err)
		return Details{}, false
	}

	for _, task := range info.PlayTasks {
		if !task.IsPrimary || task.Path == "" {
			continue
		}
		name := info.Name
		if name == "" {
			name = task.Name
		}
		launcher := path.Clean(path.Join(path.Dir(rel), filepath.ToSlash(task.Path)))
		return Details{Name: name, LauncherPath: filepath.FromSlash(launcher)}, true
	}
	return Details{}, false
}
