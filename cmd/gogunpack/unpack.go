// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gogunpack/gogunpack/internal/app/unpack"
	"github.com/gogunpack/gogunpack/internal/extract"
	"github.com/gogunpack/gogunpack/internal/issue"

	"github.com/spf13/cobra"
)

var errExtractionFailed = errors.New("some games failed to extract")

// availability is implemented by extractors that can check for their tool.
type availability interface {
	Available() bool
	Path() string
}

// newUnpackCommand creates the `gogunpack unpack` command.
func newUnpackCommand(app *App) *cobra.Command {
	var opts unpack.Options

	unpackCmd := &cobra.Command{
		Use:   "unpack",
		Short: "Generate manifests and extract every game that changed",
		Long: `Generate the manifest of each configured source and extract its games.

Games whose destination already records the same source folder and version
are skipped unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUnpack(cmd, app, opts)
		},
	}

	unpackCmd.Flags().StringVar(&opts.ConfigKey, "config", "", "key of the source to process (default all)")
	unpackCmd.Flags().StringVar(&opts.GameKey, "game", "", "key of the game to process (default all)")
	unpackCmd.Flags().BoolVar(&opts.Force, "force", false, "extract even when the destination is up to date")
	unpackCmd.Flags().BoolVar(&opts.BaseOnly, "base-installer-only", false, "only extract the base installer of each game")

	return unpackCmd
}

func runUnpack(cmd *cobra.Command, app *App, opts unpack.Options) error {
	s, err := app.startSession(cmd, "unpack")
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}
	defer func() {
		if err := s.Close(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Warning: ")+err.Error())
		}
	}()

	slog.Info("starting GOG unpack process")

	sources, err := s.loadSources()
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}

	extractor := app.NewExtractor(s.cfg)
	if tool, ok := extractor.(availability); ok && !tool.Available() {
		err := fmt.Errorf("%w: %s", extract.ErrInnoextractNotFound, tool.Path())
		return failCommand(cmd, newServiceError(err, issue.InnoextractNotFoundId, ""), app.verbose)
	}

	svc := unpack.New(s.newBuilder(cmd.Context()), extractor)
	summary, err := svc.Run(cmd.Context(), sources, opts)
	renderSummary(cmd.OutOrStdout(), summary)
	if err != nil {
		return failCommand(cmd, err, app.verbose)
	}

	if len(summary.Failures) > 0 {
		renderServiceError(cmd.ErrOrStderr(), newServiceError(errExtractionFailed, issue.ExtractionFailedId, ""))
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: 1, Err: errExtractionFailed}
	}
	return nil
}

// renderSummary prints the counters of a run and every failed game.
func renderSummary(w io.Writer, summary unpack.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s games processed successfully\n",
		TitleStyle.Render("Unpack finished:"),
		summaryCountStyle.Render(fmt.Sprintf("%d/%d", summary.Succeeded, summary.Total)))

	if len(summary.Failures) == 0 {
		return
	}

	fmt.Fprintf(w, "%s %d games failed to extract:\n", warningIcon, len(summary.Failures))
	for _, f := range summary.Failures {
		fmt.Fprintln(w, failureNameStyle.Render(failureIcon+" "+f.GameName))
		fmt.Fprintln(w, failureDetailStyle.Render("source:      "+f.SourceDir))
		fmt.Fprintln(w, failureDetailStyle.Render("destination: "+f.DestDir))
		if f.Err != nil {
			fmt.Fprintln(w, failureDetailStyle.Render("error:       "+f.Err.Error()))
		}
	}
}
