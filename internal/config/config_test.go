// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogunpack/gogunpack/internal/issue"
	"github.com/gogunpack/gogunpack/internal/testutil"
)

var settingKeys = []string{
	"sources_file",
	"manifests_dir",
	"log_dir",
	"innoextract.path",
	"innoextract.timeout",
	"innoextract.clear_destination",
	"gogdb.path",
	"gogdb.url",
	"gogdb.max_age",
	"gogdb.auto_update",
}

// isolate points the config dir at a temp dir and clears every settings env var.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)
	for _, key := range settingKeys {
		for _, name := range EnvNames(key) {
			testutil.Unsetenv(t, name)
		}
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Innoextract.Path != "innoextract" {
		t.Errorf("Innoextract.Path = %q, want innoextract", cfg.Innoextract.Path)
	}
	if cfg.Innoextract.Timeout != 3*time.Hour {
		t.Errorf("Innoextract.Timeout = %v, want 3h", cfg.Innoextract.Timeout)
	}
	if !cfg.Innoextract.ClearDestination {
		t.Error("expected clear_destination to be true by default")
	}
	if cfg.GOGDB.MaxAge != 7*24*time.Hour {
		t.Errorf("GOGDB.MaxAge = %v, want 168h", cfg.GOGDB.MaxAge)
	}
	if !cfg.GOGDB.AutoUpdate {
		t.Error("expected gogdb auto_update to be true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestEnvNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want []string
	}{
		{"sources_file", []string{"GOGUNPACK_SOURCES_FILE", "CONFIG_PATH"}},
		{"gogdb.path", []string{"GOGUNPACK_GOGDB_PATH", "GOGDB_DB_PATH"}},
		{"innoextract.timeout", []string{"GOGUNPACK_INNOEXTRACT_TIMEOUT"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			got := EnvNames(tt.key)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("EnvNames(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

//nolint:paralleltest // mutates the config dir override and process env
func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
	if cfg.ManifestsDir != DefaultConfig().ManifestsDir {
		t.Errorf("ManifestsDir = %q, want default", cfg.ManifestsDir)
	}
	if cfg.Innoextract.Timeout != DefaultInnoextractTimeout {
		t.Errorf("Innoextract.Timeout = %v, want default", cfg.Innoextract.Timeout)
	}
	if !filepath.IsAbs(cfg.GOGDB.Path) || filepath.Base(cfg.GOGDB.Path) != DefaultConfig().GOGDB.Path {
		t.Errorf("GOGDB.Path = %q, want absolute path to the default file", cfg.GOGDB.Path)
	}
}

//nolint:paralleltest // mutates the config dir override and process env
func TestLoad_CUEFileMergesOverDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.cue")
	testutil.MustWriteFile(t, path, `
// home lab settings
sources_file: "/srv/gogunpack/sources.json"
innoextract: {
	timeout: "90m"
	clear_destination: false
}
gogdb: max_age: "24h"
`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.SourcesFile != "/srv/gogunpack/sources.json" {
		t.Errorf("SourcesFile = %q", cfg.SourcesFile)
	}
	if cfg.Innoextract.Timeout != 90*time.Minute {
		t.Errorf("Innoextract.Timeout = %v, want 90m", cfg.Innoextract.Timeout)
	}
	if cfg.Innoextract.ClearDestination {
		t.Error("clear_destination should be false")
	}
	if cfg.Innoextract.Path != DefaultInnoextractPath {
		t.Errorf("Innoextract.Path = %q, default should be kept", cfg.Innoextract.Path)
	}
	if cfg.GOGDB.MaxAge != 24*time.Hour {
		t.Errorf("GOGDB.MaxAge = %v, want 24h", cfg.GOGDB.MaxAge)
	}
}

//nolint:paralleltest // mutates the config dir override and process env
func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `log_dir: "/from/file"`)

	t.Setenv("LOG_DIR", "/from/legacy-env")
	t.Setenv("GOGUNPACK_INNOEXTRACT_PATH", "/opt/innoextract")
	t.Setenv("INNOEXTRACT_PATH", "/usr/bin/innoextract")
	t.Setenv("GOGUNPACK_GOGDB_AUTO_UPDATE", "false")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogDir != "/from/legacy-env" {
		t.Errorf("LogDir = %q, want legacy env value", cfg.LogDir)
	}
	if cfg.Innoextract.Path != "/opt/innoextract" {
		t.Errorf("Innoextract.Path = %q, prefixed env should win over legacy", cfg.Innoextract.Path)
	}
	if cfg.GOGDB.AutoUpdate {
		t.Error("GOGDB.AutoUpdate should be false from env")
	}
}

//nolint:paralleltest // mutates the config dir override and process env
func TestLoad_CustomPath_NotFound(t *testing.T) {
	isolate(t)

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: "/nonexistent/config.cue"})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	if ae.Resource != "/nonexistent/config.cue" {
		t.Errorf("Resource = %q", ae.Resource)
	}
	if len(ae.Suggestions) == 0 {
		t.Error("expected suggestions")
	}
}

//nolint:paralleltest // mutates the config dir override and process env
func TestLoad_SchemaViolation(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", `colour: "blue"`},
		{"bad duration", `innoextract: timeout: "soon"`},
		{"wrong type", `gogdb: auto_update: "yes"`},
		{"syntax error", `log_dir: `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.cue")
			testutil.MustWriteFile(t, path, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("expected validation error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T: %v", err, err)
			}
			if ae.Operation != "load configuration" {
				t.Errorf("Operation = %q", ae.Operation)
			}
		})
	}
}

//nolint:paralleltest // mutates the config dir override and process env
func TestLoad_InvalidEnvValueFailsValidation(t *testing.T) {
	isolate(t)
	t.Setenv("GOGUNPACK_GOGDB_MAX_AGE", "-1h")

	_, err := NewProvider().Load(context.Background(), LoadOptions{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestInvalidConfigError(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Innoextract.Path = " "
	cfg.Innoextract.Timeout = 0

	err := cfg.Validate()
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidConfigError, got %T", err)
	}
	if len(invalid.FieldErrors) != 2 {
		t.Errorf("FieldErrors = %v, want 2 entries", invalid.FieldErrors)
	}
	if !strings.Contains(err.Error(), "2 errors") {
		t.Errorf("Error() = %q", err.Error())
	}
}

//nolint:paralleltest // mutates the config dir override
func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}

	Reset()
	got, err = ConfigDir()
	if err != nil {
		if _, homeErr := os.UserConfigDir(); homeErr != nil {
			t.Skip("no user config dir on this host")
		}
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if filepath.Base(got) != AppName {
		t.Errorf("ConfigDir() = %q, want it to end in %s", got, AppName)
	}
}
