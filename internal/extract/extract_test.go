// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gogunpack/gogunpack/internal/testutil"
)

const (
	// The fake receives: --gog -m -d <dest> <installer>.
	writeOneFile = `echo "extracting $5"
touch "$4/$(basename "$5").out"`
	writeNothing = `echo "nothing to do"`
)

type fixture struct {
	source string
	dest   string
	logs   string
	bin    string
	clock  *testutil.FakeClock
}

func newFixture(t *testing.T, script string, installers ...string) fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake innoextract is a shell script")
	}
	root := t.TempDir()
	f := fixture{
		source: filepath.Join(root, "source"),
		dest:   filepath.Join(root, "dest", "Game"),
		logs:   filepath.Join(root, "logs"),
		clock:  testutil.NewFakeClock(time.Time{}),
	}
	f.bin = testutil.WriteScript(t, root, "innoextract", script)
	for _, name := range installers {
		testutil.MustWriteFile(t, filepath.Join(f.source, name), "MZ")
	}
	return f
}

func (f fixture) extractor(timeout time.Duration) *Extractor {
	return New(Options{
		Path:             f.bin,
		Timeout:          timeout,
		ClearDestination: true,
		LogDir:           f.logs,
		Clock:            f.clock,
	})
}

func (f fixture) game(installers ...string) Game {
	return Game{Name: "Game", SourceDir: f.source, DestDir: f.dest, Installers: installers}
}

func countLogs(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	return len(entries)
}

//nolint:paralleltest // executes child processes; concurrent script writes can hit ETXTBSY
func TestProcessGame_Success(t *testing.T) {
	f := newFixture(t, writeOneFile, "setup_game_1.0_(1).exe", "setup_game_1.0_(1)-1.bin")
	testutil.MustWriteFile(t, filepath.Join(f.dest, "stale.txt"), "old")

	e := f.extractor(time.Minute)
	if err := e.ProcessGame(context.Background(), f.game("setup_game_1.0_(1).exe")); err != nil {
		t.Fatalf("ProcessGame() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(f.dest, "stale.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale file should have been cleared, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.dest, "setup_game_1.0_(1).exe.out")); err != nil {
		t.Errorf("expected extracted output: %v", err)
	}
	if n := countLogs(t, f.logs); n != 0 {
		t.Errorf("log dir has %d files after success, want 0", n)
	}
	if len(e.Failures()) != 0 {
		t.Errorf("Failures() = %v, want none", e.Failures())
	}
}

//nolint:paralleltest // executes child processes
func TestProcessGame_KeepsDestinationWithoutClear(t *testing.T) {
	f := newFixture(t, writeOneFile, "setup_a.exe")
	testutil.MustWriteFile(t, filepath.Join(f.dest, "keep.txt"), "x")

	e := New(Options{Path: f.bin, Clock: f.clock})
	if err := e.ProcessGame(context.Background(), f.game("setup_a.exe")); err != nil {
		t.Fatalf("ProcessGame() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.dest, "keep.txt")); err != nil {
		t.Errorf("existing file should be kept: %v", err)
	}
}

//nolint:paralleltest // executes child processes
func TestProcessGame_Failures(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		timeout    time.Duration
		installers []string
		missingBin bool
		wantErr    error
		wantLog    bool
	}{
		{
			name:       "named exit code",
			script:     "echo encrypted; exit 4",
			installers: []string{"setup_a.exe"},
			wantErr:    ErrEncrypted,
			wantLog:    true,
		},
		{
			name:       "empty destination",
			script:     writeNothing,
			installers: []string{"setup_a.exe"},
			wantErr:    ErrVerification,
		},
		{
			name:       "missing installer",
			script:     writeOneFile,
			installers: []string{"setup_missing.exe"},
			wantErr:    ErrInstallerNotFound,
		},
		{
			name:       "missing binary",
			script:     writeOneFile,
			installers: []string{"setup_a.exe"},
			missingBin: true,
			wantErr:    ErrInnoextractNotFound,
		},
		{
			name:       "timeout",
			script:     "sleep 5",
			timeout:    100 * time.Millisecond,
			installers: []string{"setup_a.exe"},
			wantErr:    ErrTimeout,
			wantLog:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.script, "setup_a.exe")
			if tt.missingBin {
				f.bin = filepath.Join(filepath.Dir(f.bin), "does-not-exist")
			}
			timeout := tt.timeout
			if timeout == 0 {
				timeout = time.Minute
			}
			e := f.extractor(timeout)

			err := e.ProcessGame(context.Background(), f.game(tt.installers...))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ProcessGame() error = %v, want %v", err, tt.wantErr)
			}
			var gameErr *GameError
			if !errors.As(err, &gameErr) || gameErr.GameName != "Game" {
				t.Errorf("error should be a *GameError for Game, got %T", err)
			}

			if _, statErr := os.Stat(f.dest); !errors.Is(statErr, os.ErrNotExist) {
				t.Errorf("destination should be removed, stat err = %v", statErr)
			}
			if got := countLogs(t, f.logs) > 0; got != tt.wantLog {
				t.Errorf("log kept = %v, want %v", got, tt.wantLog)
			}

			failures := e.Failures()
			if len(failures) != 1 {
				t.Fatalf("Failures() len = %d, want 1", len(failures))
			}
			got := failures[0]
			if got.GameName != "Game" || got.DestDir != f.dest || !got.Timestamp.Equal(testutil.ReferenceTime) {
				t.Errorf("Failure = %+v", got)
			}
			if !errors.Is(got.Err, tt.wantErr) {
				t.Errorf("Failure.Err = %v, want %v", got.Err, tt.wantErr)
			}
		})
	}
}

func TestExitCodeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code    int
		wantErr error
		wantMsg string
	}{
		{code: 1, wantErr: ErrGeneric, wantMsg: "extract setup.exe: generic error or syntax error (exit code 1)"},
		{code: 9, wantErr: ErrDiskSpace, wantMsg: "extract setup.exe: insufficient disk space (exit code 9)"},
		{code: 10, wantErr: ErrCancelled, wantMsg: "extract setup.exe: cancelled by user (exit code 10)"},
		{code: 42, wantMsg: "extract setup.exe: unknown error code 42"},
	}

	for _, tt := range tests {
		err := &ExitCodeError{Installer: "setup.exe", Code: tt.code}
		if err.Error() != tt.wantMsg {
			t.Errorf("code %d: Error() = %q, want %q", tt.code, err.Error(), tt.wantMsg)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("code %d: errors.Is(%v) = false", tt.code, tt.wantErr)
		}
		if tt.wantErr == nil && errors.Unwrap(err) != nil {
			t.Errorf("code %d: Unwrap() = %v, want nil", tt.code, errors.Unwrap(err))
		}
	}
}

func TestLogFileName(t *testing.T) {
	t.Parallel()

	if got := LogFileName(testutil.ReferenceTime); got != "innoextract_20210615_123045.log" {
		t.Errorf("LogFileName() = %q", got)
	}
}
