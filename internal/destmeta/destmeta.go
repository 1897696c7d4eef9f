// SPDX-License-Identifier: MPL-2.0

// Package destmeta reads and writes the !meta.txt record kept in every
// extracted game folder. The record notes what was extracted so unchanged
// games can be skipped on the next run.
package destmeta

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileName is the metadata file inside a destination folder.
const FileName = "!meta.txt"

// Record keys.
const (
	KeyGameName         = "game_name"
	KeyGameVersion      = "game_version"
	KeyRelLauncherPath  = "rel_launcher_path"
	KeySourceDirectory  = "source_directory"
	KeySortedInstallers = "sorted_installers"
)

var lineRegex = regexp.MustCompile(`^\s*([\w-]+)\s*:\s*(.*)`)

type (
	// Entry is one key: value line. A nil Value is written as "none".
	Entry struct {
		Key   string
		Value *string
	}

	// Values are the entries read from a file. Empty and "none" values are nil.
	Values map[string]*string

	// Metadata is the typed record written after a successful extraction.
	Metadata struct {
		GameName         string
		GameVersion      *string
		RelLauncherPath  *string
		SourceDirectory  string
		SortedInstallers []string
	}
)

// Read parses dir/!meta.txt. A missing file yields empty Values and no error.
func Read(dir string) (Values, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Values{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	return Parse(data), nil
}

// Parse reads key: value lines; lines that do not match are ignored.
func Parse(data []byte) Values {
	values := Values{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := lineRegex.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		if value == "" || strings.EqualFold(value, "none") {
			values[m[1]] = nil
			continue
		}
		values[m[1]] = &value
	}
	return values
}

// Get returns the value of key, "" when absent or nil.
func (v Values) Get(key string) string {
	if p := v[key]; p != nil {
		return *p
	}
	return ""
}

// Write replaces dir/!meta.txt with entries, one "key: value" line each.
func Write(dir string, entries []Entry) error {
	var buf bytes.Buffer
	for _, e := range entries {
		value := "none"
		if e.Value != nil {
			value = singleLine(*e.Value)
		}
		fmt.Fprintf(&buf, "%s: %s\n", strings.TrimSpace(e.Key), value)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FileName, err)
	}
	return nil
}

// Entries returns the record as ordered entries. Installers are written as
// a JSON array.
func (m Metadata) Entries() []Entry {
	installers, _ := json.Marshal(m.SortedInstallers)
	if m.SortedInstallers == nil {
		installers = []byte("[]")
	}
	list := string(installers)
	return []Entry{
		{Key: KeyGameName, Value: &m.GameName},
		{Key: KeyGameVersion, Value: m.GameVersion},
		{Key: KeyRelLauncherPath, Value: m.RelLauncherPath},
		{Key: KeySourceDirectory, Value: &m.SourceDirectory},
		{Key: KeySortedInstallers, Value: &list},
	}
}

// WriteMetadata writes m to dir.
func WriteMetadata(dir string, m Metadata) error {
	return Write(dir, m.Entries())
}

// UpToDate reports whether dir holds metadata for the same source folder
// and game version. A nil version matches an empty or "none" record.
func UpToDate(dir, sourceDir string, version *string) (bool, error) {
	values, err := Read(dir)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, nil
	}
	want := ""
	if version != nil {
		want = *version
	}
	return values.Get(KeySourceDirectory) == sourceDir && values.Get(KeyGameVersion) == want, nil
}

func singleLine(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s))
}
