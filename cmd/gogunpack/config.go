// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gogunpack/gogunpack/internal/config"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type (
	// settingsDump is the TOML shape of the effective settings. Durations
	// are written in time.Duration notation, as accepted by config.cue.
	settingsDump struct {
		SourcesFile  string          `toml:"sources_file"`
		ManifestsDir string          `toml:"manifests_dir"`
		LogDir       string          `toml:"log_dir"`
		Innoextract  innoextractDump `toml:"innoextract"`
		GOGDB        gogdbDump       `toml:"gogdb"`
	}

	innoextractDump struct {
		Path             string `toml:"path"`
		Timeout          string `toml:"timeout"`
		ClearDestination bool   `toml:"clear_destination"`
	}

	gogdbDump struct {
		Path       string `toml:"path"`
		URL        string `toml:"url"`
		MaxAge     string `toml:"max_age"`
		AutoUpdate bool   `toml:"auto_update"`
	}
)

// newConfigCommand creates the `gogunpack config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect gogunpack settings",
		Long: `Inspect gogunpack settings.

Settings are read from defaults, then an optional CUE file, then
environment variables (GOGUNPACK_* or the legacy names). The file is
stored in:
  - Linux: ~/.config/gogunpack/config.cue
  - macOS: ~/Library/Application Support/gogunpack/config.cue
  - Windows: %AppData%\gogunpack\config.cue`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the effective settings as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dumpConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(cmd, app)
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	file := SubtitleStyle.Render("(using defaults)")
	if cfg.Path != "" {
		file = cfg.Path
	}
	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), file)
	fmt.Fprintln(w)

	rows := []struct {
		key   string
		value string
	}{
		{"sources_file", cfg.SourcesFile},
		{"manifests_dir", cfg.ManifestsDir},
		{"log_dir", cfg.LogDir},
		{"innoextract.path", cfg.Innoextract.Path},
		{"innoextract.timeout", cfg.Innoextract.Timeout.String()},
		{"innoextract.clear_destination", strconv.FormatBool(cfg.Innoextract.ClearDestination)},
		{"gogdb.path", cfg.GOGDB.Path},
		{"gogdb.url", cfg.GOGDB.URL},
		{"gogdb.max_age", cfg.GOGDB.MaxAge.String()},
		{"gogdb.auto_update", strconv.FormatBool(cfg.GOGDB.AutoUpdate)},
	}
	for _, row := range rows {
		value := SuccessStyle.Render(row.value)
		if row.value == "" {
			value = SubtitleStyle.Render("(not set)")
		}
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(row.key), value)
		if app.verbose {
			fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render(fmt.Sprint(config.EnvNames(row.key))))
		}
	}
	return nil
}

func dumpConfig(cmd *cobra.Command, app *App) error {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}

	data, err := toml.Marshal(newSettingsDump(cfg))
	if err != nil {
		return failCommand(cmd, fmt.Errorf("encode settings: %w", err), app.verbose)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func newSettingsDump(cfg *config.Config) settingsDump {
	return settingsDump{
		SourcesFile:  cfg.SourcesFile,
		ManifestsDir: cfg.ManifestsDir,
		LogDir:       cfg.LogDir,
		Innoextract: innoextractDump{
			Path:             cfg.Innoextract.Path,
			Timeout:          cfg.Innoextract.Timeout.String(),
			ClearDestination: cfg.Innoextract.ClearDestination,
		},
		GOGDB: gogdbDump{
			Path:       cfg.GOGDB.Path,
			URL:        cfg.GOGDB.URL,
			MaxAge:     cfg.GOGDB.MaxAge.String(),
			AutoUpdate: cfg.GOGDB.AutoUpdate,
		},
	}
}

func showConfigPath(cmd *cobra.Command, app *App) error {
	w := cmd.OutOrStdout()
	if app.configFile != "" {
		fmt.Fprintln(w, app.configFile)
		return nil
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}
	path := filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
	if !fileExists(path) {
		fmt.Fprintf(w, "%s %s\n", path, SubtitleStyle.Render("(not present, using defaults)"))
		return nil
	}
	fmt.Fprintln(w, path)
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
