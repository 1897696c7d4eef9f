// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogunpack/gogunpack/internal/gamekey"
	"github.com/gogunpack/gogunpack/internal/identity"
	"github.com/gogunpack/gogunpack/internal/installer"
	"github.com/gogunpack/gogunpack/internal/issue"
)

type (
	// Options describes one source to plan.
	Options struct {
		SourceType     string
		SourceDir      string
		DefaultDestDir string
		// PossibleDestDirs are searched in order for an existing, non-empty
		// game folder before DefaultDestDir is used.
		PossibleDestDirs []string
		Ignores          []string
		// Overrides maps a source folder name to its installers, used verbatim.
		Overrides map[string][]string
		BaseOnly  bool
	}

	// Builder composes grouping, identity and installer resolution.
	Builder struct {
		resolver  *identity.Resolver
		outputDir string
	}
)

// NewBuilder creates a Builder saving manifests under outputDir.
func NewBuilder(resolver *identity.Resolver, outputDir string) *Builder {
	return &Builder{resolver: resolver, outputDir: outputDir}
}

// Build computes the manifest of a source without saving it. A missing
// source directory yields an error wrapping gamekey.ErrSourceDirNotFound.
func (b *Builder) Build(ctx context.Context, opts Options) (Manifest, error) {
	sourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}

	folders, err := gamekey.Group(sourceDir, gamekey.NewIgnores(opts.Ignores), gamekey.DeriverFor(opts.SourceType))
	if err != nil {
		return nil, err
	}

	slog.Info("generating manifest", "source_type", opts.SourceType, "source_dir", sourceDir, "games", len(folders))

	m := make(Manifest, 0, len(folders))
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m = append(m, Entry{Key: folder.Key, Record: b.record(ctx, opts, sourceDir, folder)})
	}
	return m, nil
}

func (b *Builder) record(ctx context.Context, opts Options, sourceDir string, folder gamekey.Folder) Record {
	slog.Debug("adding game to manifest", "key", folder.Key, "folder", folder.Name)

	cleanKey := gamekey.Clean(folder.Key)
	gameDir := filepath.Join(sourceDir, folder.Name)

	id := b.resolver.Resolve(ctx, identity.Subject{
		SourceType: opts.SourceType,
		CleanKey:   cleanKey,
		Dir:        gameDir,
	})
	folderName := identity.SanitizeName(id.Name)
	if folderName == "" {
		folderName = identity.SanitizeName(folder.Key)
	}

	var installers []string
	if override := opts.Overrides[folder.Name]; len(override) > 0 {
		slog.Info("using override installers", "key", folder.Key, "installers", override)
		installers = append([]string(nil), override...)
	} else {
		installers = installer.Ordered(cleanKey, gameDir, opts.BaseOnly)
	}

	return Record{
		GameName:             folderName,
		GameVersion:          id.Version,
		SourceDirectory:      gameDir,
		DestinationDirectory: Destination(opts.DefaultDestDir, opts.PossibleDestDirs, folderName),
		SortedInstallers:     installers,
	}
}

// Destination returns the first possible directory already holding a
// non-empty folderName, else folderName under defaultDir.
func Destination(defaultDir string, possible []string, folderName string) string {
	for _, dir := range possible {
		candidate := filepath.Join(dir, folderName)
		if nonEmptyDir(candidate) {
			return candidate
		}
	}
	return filepath.Join(defaultDir, folderName)
}

// Generate builds and saves the manifest of a source. A missing source
// directory is logged and yields an empty manifest that is not saved.
func (b *Builder) Generate(ctx context.Context, opts Options) (Manifest, error) {
	m, err := b.Build(ctx, opts)
	if errors.Is(err, gamekey.ErrSourceDirNotFound) {
		slog.Warn("source directory not found, skipping", "source_dir", opts.SourceDir)
		return Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}

	path := Path(b.outputDir, opts.SourceType)
	if err := Save(m, path); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("save manifest").
			WithResource(path).
			WithSuggestion("Check that MANIFESTS_OUTPUT_DIR exists and is writable").
			WithIssue(issue.ManifestWriteFailedId).
			Wrap(err).
			BuildError()
	}
	slog.Info("saved manifest", "path", path, "games", len(m))
	return m, nil
}

func nonEmptyDir(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	names, err := f.Readdirnames(1)
	return err == nil && len(names) > 0
}
