// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for gogunpack.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gogunpack",
		Short: "Unpack GOG installer dumps into a game library",
		Long: TitleStyle.Render("gogunpack") + SubtitleStyle.Render(" - Unpack GOG installer dumps into a game library") + `

gogunpack picks the newest version of every game found in the configured
source directories, extracts its installers with innoextract and records
what was extracted so unchanged games are skipped on the next run.

` + SubtitleStyle.Render("Examples:") + `
  gogunpack unpack                        Unpack every configured source
  gogunpack unpack --config gog_games     Unpack a single source
  gogunpack unpack --game stardew_valley  Unpack one game, in every source
  gogunpack manifest                      Only write the manifests
  gogunpack gogdb update                  Refresh the product database
  gogunpack config show                   Show the effective settings`,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configFile, "config-file", "", "settings file (default is $XDG_CONFIG_HOME/gogunpack/config.cue)")

	rootCmd.AddCommand(newUnpackCommand(app))
	rootCmd.AddCommand(newManifestCommand(app))
	rootCmd.AddCommand(newGOGDBCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the application and runs the command tree.
// This is called by main.main().
func Execute() {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
