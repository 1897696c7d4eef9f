// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/gogunpack/gogunpack/internal/app/unpack"
	"github.com/gogunpack/gogunpack/internal/manifest"

	"github.com/spf13/cobra"
)

// newManifestCommand creates the `gogunpack manifest` command.
func newManifestCommand(app *App) *cobra.Command {
	var opts unpack.Options

	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Generate and save manifests without extracting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runManifest(cmd, app, opts)
		},
	}

	manifestCmd.Flags().StringVar(&opts.ConfigKey, "config", "", "key of the source to process (default all)")
	manifestCmd.Flags().BoolVar(&opts.BaseOnly, "base-installer-only", false, "only list the base installer of each game")

	return manifestCmd
}

func runManifest(cmd *cobra.Command, app *App, opts unpack.Options) error {
	s, err := app.startSession(cmd, "manifest")
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}
	defer s.Close()

	sources, err := s.loadSources()
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}
	selected, err := sources.Select(opts.ConfigKey)
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}

	svc := unpack.New(s.newBuilder(cmd.Context()), nil)
	manifests, err := svc.Manifests(cmd.Context(), selected, opts)
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}

	w := cmd.OutOrStdout()
	for _, src := range selected {
		m := manifests[src.Key]
		if len(m) == 0 {
			fmt.Fprintf(w, "%s %s: no games found\n", warningIcon, CmdStyle.Render(src.Key))
			continue
		}
		fmt.Fprintf(w, "%s %s: %d games -> %s\n",
			successIcon, CmdStyle.Render(src.Key), len(m),
			manifest.Path(s.cfg.ManifestsDir, src.SourceType))
	}
	return nil
}
