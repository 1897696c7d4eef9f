// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultInnoextractPath is the executable looked up in PATH when unset.
	DefaultInnoextractPath = "innoextract"
	// DefaultInnoextractTimeout bounds a single installer extraction.
	DefaultInnoextractTimeout = 3 * time.Hour
	// DefaultGOGDBMaxAge is the staleness window of the lookup database.
	DefaultGOGDBMaxAge = 7 * 24 * time.Hour
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config holds the effective application settings.
	Config struct {
		// SourcesFile is the path of the sources document.
		SourcesFile string `json:"sources_file" mapstructure:"sources_file"`
		// ManifestsDir receives one <source_type>.json manifest per source.
		ManifestsDir string `json:"manifests_dir" mapstructure:"manifests_dir"`
		// LogDir receives run logs and innoextract logs.
		LogDir      string            `json:"log_dir" mapstructure:"log_dir"`
		Innoextract InnoextractConfig `json:"innoextract" mapstructure:"innoextract"`
		GOGDB       GOGDBConfig       `json:"gogdb" mapstructure:"gogdb"`

		// Path is the settings file the values were read from, empty for defaults only.
		Path string `json:"-" mapstructure:"-"`
	}

	// InnoextractConfig configures the external extraction tool.
	InnoextractConfig struct {
		Path             string        `json:"path" mapstructure:"path"`
		Timeout          time.Duration `json:"timeout" mapstructure:"timeout"`
		ClearDestination bool          `json:"clear_destination" mapstructure:"clear_destination"`
	}

	// GOGDBConfig configures the product lookup database.
	GOGDBConfig struct {
		Path       string        `json:"path" mapstructure:"path"`
		URL        string        `json:"url" mapstructure:"url"`
		MaxAge     time.Duration `json:"max_age" mapstructure:"max_age"`
		AutoUpdate bool          `json:"auto_update" mapstructure:"auto_update"`
	}

	// InvalidConfigError lists every setting that failed validation.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []string
	}
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		ManifestsDir: "manifests",
		LogDir:       "logs",
		Innoextract: InnoextractConfig{
			Path:             DefaultInnoextractPath,
			Timeout:          DefaultInnoextractTimeout,
			ClearDestination: true,
		},
		GOGDB: GOGDBConfig{
			Path:       "gogdb.sqlite3",
			MaxAge:     DefaultGOGDBMaxAge,
			AutoUpdate: true,
		},
	}
}

// Validate checks constraints the schema cannot express once env vars are merged.
func (c *Config) Validate() error {
	var fieldErrors []string
	if strings.TrimSpace(c.ManifestsDir) == "" {
		fieldErrors = append(fieldErrors, "manifests_dir must not be empty")
	}
	if strings.TrimSpace(c.LogDir) == "" {
		fieldErrors = append(fieldErrors, "log_dir must not be empty")
	}
	if strings.TrimSpace(c.Innoextract.Path) == "" {
		fieldErrors = append(fieldErrors, "innoextract.path must not be empty")
	}
	if c.Innoextract.Timeout <= 0 {
		fieldErrors = append(fieldErrors, fmt.Sprintf("innoextract.timeout must be positive, got %s", c.Innoextract.Timeout))
	}
	if c.GOGDB.MaxAge <= 0 {
		fieldErrors = append(fieldErrors, fmt.Sprintf("gogdb.max_age must be positive, got %s", c.GOGDB.MaxAge))
	}
	if len(fieldErrors) > 0 {
		return &InvalidConfigError{FieldErrors: fieldErrors}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0]
	}
	return fmt.Sprintf("invalid config: %d errors: %s", len(e.FieldErrors), strings.Join(e.FieldErrors, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
