// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/gogunpack/gogunpack/internal/issue"
	"github.com/gogunpack/gogunpack/pkg/cueutil"
)

// Source types with dedicated handling.
const (
	// SourceTypeGOGGames folders are named <key>_windows_gog_(<version>).
	SourceTypeGOGGames = "gog-games"
	// SourceTypeGOGService folders carry an !info.txt file.
	SourceTypeGOGService = "gog-service"
)

//go:embed sources_schema.cue
var sourcesSchema []byte

var (
	// ErrNoSourcesFile is returned when no sources document is configured.
	ErrNoSourcesFile = errors.New("no sources file configured")
	// ErrSourceNotFound is returned when a requested config key is absent.
	ErrSourceNotFound = errors.New("config key not found")
)

type (
	// Source is one entry of the sources document.
	Source struct {
		// Key is the entry's name in the sources document.
		Key string `json:"-"`

		SourceType                     string              `json:"source_type"`
		SourceDirectory                string              `json:"source_directory"`
		DefaultDestinationDirectory    string              `json:"default_destination_directory"`
		PossibleDestinationDirectories []string            `json:"possible_destination_directories,omitempty"`
		Ignores                        []string            `json:"ignores,omitempty"`
		Overrides                      map[string][]string `json:"overrides,omitempty"`
	}

	// SourceNotFoundError is returned by Sources.Select for unknown keys.
	SourceNotFoundError struct {
		Key       string
		Available []string
	}

	// Sources is the ordered content of a sources document.
	Sources []Source
)

// LoadSources reads and validates the sources document at path.
func LoadSources(path string) (Sources, error) {
	if path == "" {
		return nil, issue.NewErrorContext().
			WithOperation("load sources").
			WithSuggestion("Set CONFIG_PATH or sources_file in config.cue").
			WithSuggestion("Run 'gogunpack config path' to locate the settings file").
			WithIssue(issue.SourcesNotFoundId).
			Wrap(ErrNoSourcesFile).
			BuildError()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load sources").
			WithResource(path).
			WithSuggestion("Check that CONFIG_PATH points to an existing file").
			Wrap(err).
			BuildError()
	}

	return ParseSources(data, path)
}

// ParseSources validates a sources document. filename is used in error messages.
func ParseSources(data []byte, filename string) (Sources, error) {
	fields, err := cueutil.DecodeFields[Source](sourcesSchema, data, "#Sources", cueutil.WithFilename(filename))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse sources").
			WithResource(filename).
			WithSuggestion("Sources must be a JSON object of config keys; // comments and trailing commas are allowed, /* */ comments are not").
			WithSuggestion("Each entry needs source_type, source_directory and default_destination_directory").
			Wrap(err).
			BuildError()
	}

	sources := make(Sources, 0, len(fields))
	for _, f := range fields {
		src := f.Value
		src.Key = f.Name
		sources = append(sources, src)
	}
	return sources, nil
}

// Keys returns the config keys in document order.
func (s Sources) Keys() []string {
	keys := make([]string, len(s))
	for i, src := range s {
		keys[i] = src.Key
	}
	return keys
}

// Select returns the sources to process: all of them when key is empty,
// otherwise only the named one.
func (s Sources) Select(key string) (Sources, error) {
	if key == "" {
		return s, nil
	}
	for _, src := range s {
		if src.Key == key {
			return Sources{src}, nil
		}
	}
	return nil, &SourceNotFoundError{Key: key, Available: s.Keys()}
}

// Error implements the error interface.
func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("config key %q not found in sources (available: %v)", e.Key, e.Available)
}

// Unwrap returns ErrSourceNotFound for errors.Is() compatibility.
func (e *SourceNotFoundError) Unwrap() error { return ErrSourceNotFound }
