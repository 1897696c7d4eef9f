// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gogunpack/gogunpack/internal/testutil"

	"github.com/charmbracelet/log"
)

const (
	// DefaultKeep is the number of older log files kept when a new one is created.
	DefaultKeep = 9
	// TimestampLayout formats the suffix of log file names.
	TimestampLayout = "20060102_150405"
)

type (
	// Options configures Setup.
	Options struct {
		// Name prefixes the log file name, e.g. "unpack".
		Name string
		// Dir receives the log file. Empty disables the file handler.
		Dir string
		// Verbose lowers the console level to debug.
		Verbose bool
		// Console receives console output. Defaults to os.Stderr.
		Console io.Writer
		// Keep is the number of older log files to retain. Defaults to DefaultKeep.
		Keep int
		// Clock timestamps the file name. Defaults to the system clock.
		Clock testutil.Clock
	}

	// Logger is the configured logger and the file it writes to.
	Logger struct {
		*slog.Logger

		// FilePath is the log file, empty when logging to the console only.
		FilePath string

		file *os.File
	}

	// fanout sends each record to every handler that accepts its level.
	fanout []slog.Handler
)

// Setup builds the logger described by opts. A log directory that cannot be
// used degrades to console-only logging with a warning; Setup itself only
// fails on programmer errors.
func Setup(opts Options) (*Logger, error) {
	if opts.Name == "" {
		return nil, errors.New("logging: name must not be empty")
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Keep <= 0 {
		opts.Keep = DefaultKeep
	}
	if opts.Clock == nil {
		opts.Clock = testutil.RealClock{}
	}

	consoleLevel := log.InfoLevel
	if opts.Verbose {
		consoleLevel = log.DebugLevel
	}
	console := log.NewWithOptions(opts.Console, log.Options{
		Level:           consoleLevel,
		ReportTimestamp: opts.Verbose,
	})

	l := &Logger{}
	handlers := fanout{console}

	if opts.Dir != "" {
		file, err := openLogFile(opts)
		if err != nil {
			console.Warn("could not create log file, logging to console only", "dir", opts.Dir, "err", err)
		} else {
			l.file = file
			l.FilePath = file.Name()
			handlers = append(handlers, log.NewWithOptions(file, log.Options{
				Level:           log.DebugLevel,
				ReportTimestamp: true,
				ReportCaller:    true,
				TimeFormat:      time.DateTime,
				Formatter:       log.TextFormatter,
			}))
		}
	}

	l.Logger = slog.New(handlers)
	if l.FilePath != "" {
		l.Debug("logging initialized", "name", opts.Name, "file", l.FilePath)
	}
	return l, nil
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// FileName returns the log file name for name at t.
func FileName(name string, t time.Time) string {
	return fmt.Sprintf("%s_%s.log", name, t.Format(TimestampLayout))
}

// Prune removes all but the keep most recently modified <name>_*.log files in dir.
func Prune(dir, name string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type logFile struct {
		path  string
		mtime time.Time
	}
	var files []logFile
	for _, entry := range entries {
		n := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(n, name+"_") || !strings.HasSuffix(n, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, n), mtime: info.ModTime()})
	}

	if len(files) <= keep {
		return nil
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].mtime.After(files[j].mtime) })

	var errs []error
	for _, f := range files[keep:] {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openLogFile(opts Options) (*os.File, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}
	if err := Prune(opts.Dir, opts.Name, opts.Keep); err != nil {
		return nil, fmt.Errorf("prune old logs: %w", err)
	}
	path := filepath.Join(opts.Dir, FileName(opts.Name, opts.Clock.Now()))
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
