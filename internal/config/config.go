// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogunpack/gogunpack/internal/issue"
	"github.com/gogunpack/gogunpack/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "gogunpack"
	// ConfigFileName is the name of the settings file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the settings file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every settings environment variable.
	EnvPrefix = "GOGUNPACK"
)

//go:embed config_schema.cue
var configSchema []byte

// legacyEnv maps settings keys to the unprefixed variable names older
// deployments export (usually from a .env file).
var legacyEnv = map[string]string{
	"sources_file":     "CONFIG_PATH",
	"manifests_dir":    "MANIFESTS_OUTPUT_DIR",
	"log_dir":          "LOG_DIR",
	"innoextract.path": "INNOEXTRACT_PATH",
	"gogdb.path":       "GOGDB_DB_PATH",
	"gogdb.url":        "GOGDB_URL",
}

// ConfigDir returns the gogunpack configuration directory under the
// platform's user config directory ($XDG_CONFIG_HOME on Linux).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// EnvNames returns the environment variables consulted for key, highest
// precedence first.
func EnvNames(key string) []string {
	names := []string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
	if legacy, ok := legacyEnv[key]; ok {
		names = append(names, legacy)
	}
	return names
}

// loadWithOptions performs option-driven settings loading without touching
// package-level state other than the test directory override.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("sources_file", defaults.SourcesFile)
	v.SetDefault("manifests_dir", defaults.ManifestsDir)
	v.SetDefault("log_dir", defaults.LogDir)
	v.SetDefault("innoextract.path", defaults.Innoextract.Path)
	v.SetDefault("innoextract.timeout", defaults.Innoextract.Timeout)
	v.SetDefault("innoextract.clear_destination", defaults.Innoextract.ClearDestination)
	v.SetDefault("gogdb.path", defaults.GOGDB.Path)
	v.SetDefault("gogdb.url", defaults.GOGDB.URL)
	v.SetDefault("gogdb.max_age", defaults.GOGDB.MaxAge)
	v.SetDefault("gogdb.auto_update", defaults.GOGDB.AutoUpdate)

	for _, key := range v.AllKeys() {
		args := append([]string{key}, EnvNames(key)...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	resolvedPath, err := resolveConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'gogunpack config show' to see the effective settings").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Path = resolvedPath

	if cfg.GOGDB.Path != "" {
		abs, err := filepath.Abs(cfg.GOGDB.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve gogdb.path: %w", err)
		}
		cfg.GOGDB.Path = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the environment variables listed by 'gogunpack config show'").
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// resolveConfigFile returns the settings file to load, or "" when none exists.
// An explicit path that does not exist is an error.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}

	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cuePath) {
		return cuePath, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE settings file against #Config and merges
// it into Viper. Fields are optional, so the value is not required to be
// concrete and decodes to a map rather than a struct.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	parsed, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*parsed.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
