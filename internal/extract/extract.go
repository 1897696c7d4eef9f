// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/gogunpack/gogunpack/internal/testutil"

	"golang.org/x/exp/slices"
)

const (
	// DefaultPath is the innoextract binary looked up on PATH.
	DefaultPath = "innoextract"
	// DefaultTimeout bounds a single installer extraction.
	DefaultTimeout = 3 * time.Hour
	// LogTimestampLayout formats the suffix of innoextract log names.
	LogTimestampLayout = "20060102_150405"
)

type (
	// Options configures an Extractor.
	Options struct {
		// Path is the innoextract binary. Defaults to DefaultPath.
		Path string
		// Timeout bounds each installer. Defaults to DefaultTimeout.
		Timeout time.Duration
		// ClearDestination removes an existing destination before extracting.
		ClearDestination bool
		// LogDir receives innoextract output. Empty discards it.
		LogDir string
		// Clock stamps log names and failures. Defaults to the system clock.
		Clock testutil.Clock
	}

	// Game is one unit of extraction work.
	Game struct {
		Name      string
		SourceDir string
		DestDir   string
		// Installers are relative to SourceDir, base installer first.
		Installers []string
	}

	// Failure records a game that could not be extracted.
	Failure struct {
		GameName   string
		SourceDir  string
		DestDir    string
		Installers []string
		Timestamp  time.Time
		Err        error
	}

	// Extractor wraps the innoextract binary.
	Extractor struct {
		opts Options

		mu       sync.Mutex
		failures []Failure
	}
)

// New creates an Extractor, filling unset options with their defaults.
func New(opts Options) *Extractor {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = testutil.RealClock{}
	}
	return &Extractor{opts: opts}
}

// Available reports whether the innoextract binary can be found.
func (e *Extractor) Available() bool {
	_, err := exec.LookPath(e.opts.Path)
	return err == nil
}

// Path returns the configured innoextract binary.
func (e *Extractor) Path() string {
	return e.opts.Path
}

// Failures returns a copy of the failures recorded so far.
func (e *Extractor) Failures() []Failure {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.failures)
}

// ProcessGame extracts every installer of game into its destination.
// On failure the destination is removed, the failure is recorded and a
// *GameError is returned.
func (e *Extractor) ProcessGame(ctx context.Context, game Game) error {
	slog.Info("processing game", "game", game.Name)

	err := e.extractAll(ctx, game)
	if err == nil {
		slog.Info("extracted all installers", "game", game.Name, "destination", game.DestDir)
		return nil
	}

	slog.Error("failed to process game, cleaning up", "game", game.Name, "error", err)
	if rmErr := os.RemoveAll(game.DestDir); rmErr != nil {
		slog.Error("failed to clean up destination", "path", game.DestDir, "error", rmErr)
	}

	e.mu.Lock()
	e.failures = append(e.failures, Failure{
		GameName:   game.Name,
		SourceDir:  game.SourceDir,
		DestDir:    game.DestDir,
		Installers: append([]string(nil), game.Installers...),
		Timestamp:  e.opts.Clock.Now(),
		Err:        err,
	})
	e.mu.Unlock()

	return &GameError{GameName: game.Name, Err: err}
}

func (e *Extractor) extractAll(ctx context.Context, game Game) error {
	if e.opts.ClearDestination {
		if _, err := os.Stat(game.DestDir); err == nil {
			slog.Info("deleting existing destination", "path", game.DestDir)
			if err := os.RemoveAll(game.DestDir); err != nil {
				return fmt.Errorf("clear destination: %w", err)
			}
		}
	}
	if err := os.MkdirAll(game.DestDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	for _, rel := range game.Installers {
		if err := ctx.Err(); err != nil {
			return err
		}
		installer := filepath.Join(game.SourceDir, rel)
		info, err := os.Stat(installer)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInstallerNotFound, installer)
		}
		slog.Info("extracting installer",
			"path", installer,
			"size_mb", fmt.Sprintf("%.2f", float64(info.Size())/(1024*1024)))

		if err := e.extract(ctx, installer, game.DestDir); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(game.DestDir)
	if err != nil || len(entries) == 0 {
		return ErrVerification
	}
	return nil
}

// extract runs innoextract for one installer.
func (e *Extractor) extract(ctx context.Context, installer, dest string) error {
	runCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.opts.Path, "--gog", "-m", "-d", dest, installer)

	logPath, logFile, err := e.openLog()
	if err != nil {
		return err
	}
	if logFile != nil {
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}

	runErr := cmd.Run()
	if logFile != nil {
		if err := logFile.Close(); err != nil {
			slog.Warn("failed to close innoextract log", "path", logPath, "error", err)
		}
	}

	if runErr == nil {
		slog.Info("extracted installer", "path", installer, "destination", dest)
		if logPath != "" {
			_ = os.Remove(logPath)
		}
		return nil
	}

	switch {
	case errors.Is(runErr, exec.ErrNotFound), errors.Is(runErr, fs.ErrNotExist):
		if logPath != "" {
			_ = os.Remove(logPath)
		}
		return fmt.Errorf("%w: %s", ErrInnoextractNotFound, e.opts.Path)
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		slog.Error("extraction timed out", "timeout", e.opts.Timeout, "log", logPath)
		return fmt.Errorf("%w after %s", ErrTimeout, e.opts.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		codeErr := &ExitCodeError{Installer: installer, Code: exitErr.ExitCode(), LogPath: logPath}
		slog.Error("error extracting installer", "error", codeErr, "log", logPath)
		return codeErr
	}
	return fmt.Errorf("run innoextract: %w", runErr)
}

// openLog creates the output file for one innoextract run. It returns a nil
// file when no log directory is configured.
func (e *Extractor) openLog() (string, *os.File, error) {
	if e.opts.LogDir == "" {
		return "", nil, nil
	}
	if err := os.MkdirAll(e.opts.LogDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(e.opts.LogDir, LogFileName(e.opts.Clock.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("create innoextract log: %w", err)
	}
	return path, f, nil
}

// LogFileName returns the innoextract log name for t.
func LogFileName(t time.Time) string {
	return "innoextract_" + t.Format(LogTimestampLayout) + ".log"
}
