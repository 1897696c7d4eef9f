// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type (
	// Record is the plan for one game.
	Record struct {
		GameName             string   `json:"game_name"`
		GameVersion          *string  `json:"game_version"`
		SourceDirectory      string   `json:"source_directory"`
		DestinationDirectory string   `json:"destination_directory"`
		SortedInstallers     []string `json:"sorted_installers"`
	}

	// Entry is a record with its game key.
	Entry struct {
		Key string
		Record
	}

	// Manifest holds entries in scan order. It encodes as a JSON object
	// keyed by game key.
	Manifest []Entry
)

// Get returns the record of key.
func (m Manifest) Get(key string) (Record, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Record, true
		}
	}
	return Record{}, false
}

// Keys returns the game keys in order.
func (m Manifest) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON encodes the manifest as an object, keeping entry order.
func (m Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(e.Key, "")
		if err != nil {
			return nil, err
		}
		rec := e.Record
		if rec.SortedInstallers == nil {
			rec.SortedInstallers = []string{}
		}
		value, err := marshal(rec, "")
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshal encodes v without HTML escaping, so names such as "Might & Magic"
// are written as is. A non-empty indent pretty-prints.
func marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON decodes an object of records. Entry order follows the document.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("manifest: expected object, got %v", tok)
	}

	var out Manifest
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, Entry{Key: key, Record: rec})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// Path returns the manifest file of sourceType under dir.
func Path(dir, sourceType string) string {
	return filepath.Join(dir, sourceType+".json")
}

// Save writes m to path with 4-space indentation. The file is written to a
// temporary sibling first and renamed into place with mode 0644.
func Save(m Manifest, path string) error {
	data, err := marshal(m, "    ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Load reads a manifest saved by Save.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}
