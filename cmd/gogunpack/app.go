// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/gogunpack/gogunpack/internal/app/unpack"
	"github.com/gogunpack/gogunpack/internal/config"
	"github.com/gogunpack/gogunpack/internal/extract"
	"github.com/gogunpack/gogunpack/internal/gogdb"
	"github.com/gogunpack/gogunpack/internal/identity"
	"github.com/gogunpack/gogunpack/internal/issue"
	"github.com/gogunpack/gogunpack/internal/logging"
	"github.com/gogunpack/gogunpack/internal/manifest"

	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra handler receives an App and delegates
	// through it.
	App struct {
		Config       config.Provider
		NewExtractor ExtractorFactory
		stdout       io.Writer
		stderr       io.Writer

		// Global flag values, bound by newRootCommand.
		verbose    bool
		configFile string
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config       config.Provider
		NewExtractor ExtractorFactory
		Stdout       io.Writer
		Stderr       io.Writer
	}

	// ExtractorFactory builds the extractor used by a run from its settings.
	ExtractorFactory func(cfg *config.Config) unpack.Extractor

	// session is the per-command state: effective settings, the installed
	// logger and resources to release when the command returns.
	session struct {
		cfg     *config.Config
		logger  *logging.Logger
		prev    *slog.Logger
		closers []io.Closer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewExtractor == nil {
		deps.NewExtractor = defaultExtractor
	}

	return &App{
		Config:       deps.Config,
		NewExtractor: deps.NewExtractor,
		stdout:       deps.Stdout,
		stderr:       deps.Stderr,
	}, nil
}

func defaultExtractor(cfg *config.Config) unpack.Extractor {
	return extract.New(extract.Options{
		Path:             cfg.Innoextract.Path,
		Timeout:          cfg.Innoextract.Timeout,
		ClearDestination: cfg.Innoextract.ClearDestination,
		LogDir:           cfg.LogDir,
	})
}

// loadConfig loads the effective settings honoring --config-file.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configFile})
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId, "")
	}
	return cfg, nil
}

// startSession loads settings and installs the run logger named name as the
// default slog logger until Close.
func (a *App) startSession(cmd *cobra.Command, name string) (*session, error) {
	cfg, err := a.loadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(logging.Options{
		Name:    name,
		Dir:     cfg.LogDir,
		Verbose: a.verbose,
		Console: a.stderr,
	})
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger, prev: slog.Default()}
	slog.SetDefault(logger.Logger)
	return s, nil
}

// Close releases session resources and restores the previous default logger.
func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	slog.SetDefault(s.prev)
	errs = append(errs, s.logger.Close())
	return errors.Join(errs...)
}

// openLookup opens the product database and refreshes it when stale. It
// returns nil when no database can be used, which leaves names to info
// files and folder names.
func (s *session) openLookup(ctx context.Context) *gogdb.Cache {
	cache, err := gogdb.Open(gogdbOptions(s.cfg))
	if err != nil {
		slog.Warn("cannot open product database", "error", err)
		return nil
	}
	s.closers = append(s.closers, cache)

	if err := cache.EnsureFresh(ctx); err != nil {
		if errors.Is(err, gogdb.ErrNoURL) {
			slog.Debug("no product database URL configured", "path", cache.Path())
		} else {
			slog.Warn("product database unavailable, falling back to folder names", "path", cache.Path(), "error", err)
		}
	}
	if !cache.Available() {
		return nil
	}
	return cache
}

// newBuilder creates a manifest builder backed by the product database when
// one is available.
func (s *session) newBuilder(ctx context.Context) *manifest.Builder {
	var lookup identity.NameLookup
	if cache := s.openLookup(ctx); cache != nil {
		lookup = cache
	}
	return manifest.NewBuilder(identity.NewResolver(lookup), s.cfg.ManifestsDir)
}

// loadSources reads the sources document named by the settings.
func (s *session) loadSources() (config.Sources, error) {
	sources, err := config.LoadSources(s.cfg.SourcesFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, newServiceError(err, issue.SourcesNotFoundId, "")
	}
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func gogdbOptions(cfg *config.Config) gogdb.Options {
	return gogdb.Options{
		Path:       cfg.GOGDB.Path,
		URL:        cfg.GOGDB.URL,
		MaxAge:     cfg.GOGDB.MaxAge,
		AutoUpdate: cfg.GOGDB.AutoUpdate,
		UserAgent:  config.AppName + "/" + Version,
	}
}
