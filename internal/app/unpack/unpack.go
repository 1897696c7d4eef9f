// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"context"
	"log/slog"
	"os"

	"github.com/gogunpack/gogunpack/internal/config"
	"github.com/gogunpack/gogunpack/internal/destmeta"
	"github.com/gogunpack/gogunpack/internal/extract"
	"github.com/gogunpack/gogunpack/internal/goginfo"
	"github.com/gogunpack/gogunpack/internal/manifest"
)

type (
	// Options selects what a run processes.
	Options struct {
		// ConfigKey limits the run to one source. Empty processes all.
		ConfigKey string
		// GameKey limits each source to one game. Empty processes all.
		GameKey string
		// Force re-extracts games whose destination is up to date.
		Force bool
		// BaseOnly keeps only the base installer of each game.
		BaseOnly bool
	}

	// Summary reports the outcome of a run.
	Summary struct {
		// Total counts games with at least one installer.
		Total int
		// Succeeded counts extracted and up-to-date games.
		Succeeded int
		Failures  []extract.Failure
	}

	// Generator plans a source.
	Generator interface {
		Generate(ctx context.Context, opts manifest.Options) (manifest.Manifest, error)
	}

	// Extractor unpacks a single game.
	Extractor interface {
		ProcessGame(ctx context.Context, game extract.Game) error
		Failures() []extract.Failure
	}

	// Service runs unpack and manifest-only passes over configured sources.
	Service struct {
		generator Generator
		extractor Extractor
	}
)

// New creates a Service.
func New(generator Generator, extractor Extractor) *Service {
	return &Service{generator: generator, extractor: extractor}
}

// ManifestOptions converts a configured source into builder options.
func ManifestOptions(src config.Source, baseOnly bool) manifest.Options {
	return manifest.Options{
		SourceType:       src.SourceType,
		SourceDir:        src.SourceDirectory,
		DefaultDestDir:   src.DefaultDestinationDirectory,
		PossibleDestDirs: src.PossibleDestinationDirectories,
		Ignores:          src.Ignores,
		Overrides:        src.Overrides,
		BaseOnly:         baseOnly,
	}
}

// Manifests generates and saves the manifest of every selected source.
func (s *Service) Manifests(ctx context.Context, sources config.Sources, opts Options) (map[string]manifest.Manifest, error) {
	selected, err := sources.Select(opts.ConfigKey)
	if err != nil {
		return nil, err
	}
	out := make(map[string]manifest.Manifest, len(selected))
	for _, src := range selected {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		slog.Info("processing config", "config", src.Key)
		m, err := s.generator.Generate(ctx, ManifestOptions(src, opts.BaseOnly))
		if err != nil {
			return out, err
		}
		out[src.Key] = m
	}
	return out, nil
}

// Run plans and extracts every selected source. Per-game failures are
// collected in the summary; errors are returned for an unknown config key,
// manifest persistence and cancellation.
func (s *Service) Run(ctx context.Context, sources config.Sources, opts Options) (Summary, error) {
	var summary Summary
	before := len(s.extractor.Failures())

	selected, err := sources.Select(opts.ConfigKey)
	if err != nil {
		return summary, err
	}

	for _, src := range selected {
		slog.Info("processing config", "config", src.Key)

		m, err := s.generator.Generate(ctx, ManifestOptions(src, opts.BaseOnly))
		if err != nil {
			return s.finish(summary, before), err
		}

		entries := []manifest.Entry(m)
		if opts.GameKey != "" {
			rec, ok := m.Get(opts.GameKey)
			if !ok {
				slog.Warn("game key not found in manifest, skipping", "game", opts.GameKey, "config", src.Key)
				continue
			}
			entries = []manifest.Entry{{Key: opts.GameKey, Record: rec}}
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return s.finish(summary, before), err
			}
			rec := entry.Record
			if len(rec.SortedInstallers) == 0 {
				slog.Warn("no installers found for game, skipping", "game", rec.GameName)
				continue
			}

			summary.Total++
			if s.processGame(ctx, rec, opts.Force) {
				summary.Succeeded++
			}
		}
	}

	summary = s.finish(summary, before)
	slog.Info("unpack finished", "succeeded", summary.Succeeded, "total", summary.Total)
	if len(summary.Failures) > 0 {
		slog.Warn("some games failed to extract", "failed", len(summary.Failures))
	}
	return summary, nil
}

func (s *Service) finish(summary Summary, before int) Summary {
	failures := s.extractor.Failures()
	if len(failures) > before {
		summary.Failures = failures[before:]
	}
	return summary
}

// processGame reports whether rec ended up extracted or already up to date.
func (s *Service) processGame(ctx context.Context, rec manifest.Record, force bool) bool {
	if !force && upToDate(rec) {
		slog.Info("game is already up to date, skipping", "game", rec.GameName)
		return true
	}

	err := s.extractor.ProcessGame(ctx, extract.Game{
		Name:       rec.GameName,
		SourceDir:  rec.SourceDirectory,
		DestDir:    rec.DestinationDirectory,
		Installers: rec.SortedInstallers,
	})
	if err != nil {
		return false
	}

	meta := destmeta.Metadata{
		GameName:         rec.GameName,
		GameVersion:      rec.GameVersion,
		SourceDirectory:  rec.SourceDirectory,
		SortedInstallers: rec.SortedInstallers,
	}
	if meta.GameVersion == nil {
		empty := ""
		meta.GameVersion = &empty
	}

	details, ok, err := goginfo.Find(rec.DestinationDirectory)
	if err != nil {
		slog.Warn("cannot search GOG info files", "path", rec.DestinationDirectory, "error", err)
	}
	if ok {
		if details.Name != "" {
			meta.GameName = details.Name
		}
		meta.RelLauncherPath = &details.LauncherPath
	}

	if err := destmeta.WriteMetadata(rec.DestinationDirectory, meta); err != nil {
		slog.Error("failed to write destination metadata", "path", rec.DestinationDirectory, "error", err)
	}
	return true
}

func upToDate(rec manifest.Record) bool {
	if _, err := os.Stat(rec.DestinationDirectory); err != nil {
		return false
	}
	ok, err := destmeta.UpToDate(rec.DestinationDirectory, rec.SourceDirectory, rec.GameVersion)
	if err != nil {
		slog.Warn("cannot read destination metadata", "path", rec.DestinationDirectory, "error", err)
		return false
	}
	return ok
}
