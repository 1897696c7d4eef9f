// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/gogunpack/gogunpack/internal/gogdb"
	"github.com/gogunpack/gogunpack/internal/issue"

	"github.com/spf13/cobra"
)

// newGOGDBCommand creates the `gogunpack gogdb` command tree.
func newGOGDBCommand(app *App) *cobra.Command {
	gogdbCmd := &cobra.Command{
		Use:   "gogdb",
		Short: "Manage the product lookup database",
		Long: `Manage the local product database used to resolve game names.

The database is downloaded from gogdb.url to gogdb.path and refreshed
automatically when it is older than gogdb.max_age.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	gogdbCmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Download the product database now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGOGDBUpdate(cmd, app)
		},
	})

	gogdbCmd.AddCommand(&cobra.Command{
		Use:   "lookup <key>",
		Short: "Look up the product name of a game key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGOGDBLookup(cmd, app, args[0])
		},
	})

	return gogdbCmd
}

func runGOGDBUpdate(cmd *cobra.Command, app *App) error {
	s, err := app.startSession(cmd, "gogdb")
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}
	defer s.Close()

	cache, err := gogdb.Open(gogdbOptions(s.cfg))
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}
	defer cache.Close()

	if err := cache.Download(cmd.Context()); err != nil {
		return failCommand(cmd, newServiceError(err, issue.GOGDBUnavailableId, ""), app.verbose)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s product database updated: %s\n", successIcon, CmdStyle.Render(cache.Path()))
	return nil
}

func runGOGDBLookup(cmd *cobra.Command, app *App, key string) error {
	s, err := app.startSession(cmd, "gogdb")
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}
	defer s.Close()

	cache, err := gogdb.Open(gogdbOptions(s.cfg))
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}
	defer cache.Close()

	w := cmd.OutOrStdout()
	name, ok := cache.LookupName(cmd.Context(), key)
	if !ok {
		fmt.Fprintf(w, "%s no product found for %s\n", warningIcon, CmdStyle.Render(key))
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: 1}
	}
	fmt.Fprintf(w, "%s %s: %s\n", successIcon, CmdStyle.Render(key), name)
	return nil
}
