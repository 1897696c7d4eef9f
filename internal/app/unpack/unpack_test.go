// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gogunpack/gogunpack/internal/config"
	"github.com/gogunpack/gogunpack/internal/destmeta"
	"github.com/gogunpack/gogunpack/internal/extract"
	"github.com/gogunpack/gogunpack/internal/identity"
	"github.com/gogunpack/gogunpack/internal/manifest"
	"github.com/gogunpack/gogunpack/internal/testutil"
)

const mygameInfo = `{"name": "My Game", "playTasks": [{"name": "Play", "path": "bin/mygame.exe", "isPrimary": true}]}`

var errFake = errors.New("fake extraction failure")

type fakeExtractor struct {
	mu       sync.Mutex
	calls    []extract.Game
	fail     map[string]bool
	info     map[string]string
	failures []extract.Failure
}

func (f *fakeExtractor) ProcessGame(_ context.Context, game extract.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, game)

	folder := filepath.Base(game.SourceDir)
	if f.fail[folder] {
		f.failures = append(f.failures, extract.Failure{GameName: game.Name, SourceDir: game.SourceDir, Err: errFake})
		return errFake
	}
	if err := os.MkdirAll(game.DestDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(game.DestDir, "game.exe"), nil, 0o644); err != nil {
		return err
	}
	if info, ok := f.info[folder]; ok {
		return os.WriteFile(filepath.Join(game.DestDir, "goggame-1.info"), []byte(info), 0o644)
	}
	return nil
}

func (f *fakeExtractor) Failures() []extract.Failure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]extract.Failure(nil), f.failures...)
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type env struct {
	src     string
	dest    string
	out     string
	sources config.Sources
	ex      *fakeExtractor
	svc     *Service
	builder *manifest.Builder
	srcOpts manifest.Options
}

func newEnv(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()
	e := &env{
		src:  filepath.Join(root, "source"),
		dest: filepath.Join(root, "dest"),
		out:  filepath.Join(root, "manifests"),
		ex:   &fakeExtractor{fail: map[string]bool{}, info: map[string]string{}},
	}
	testutil.WriteTree(t, e.src, map[string]string{
		"mygame_windows_gog_(1.5.0)/setup_mygame_1.5.0_(150).exe": "",
		"other_windows_gog_(2.0)/setup_other_2.0_(20).exe":        "",
		"empty_windows_gog_(1.0)/readme.txt":                      "",
	})
	e.sources = config.Sources{{
		Key:                         "games",
		SourceType:                  config.SourceTypeGOGGames,
		SourceDirectory:             e.src,
		DefaultDestinationDirectory: e.dest,
	}}
	e.builder = manifest.NewBuilder(identity.NewResolver(nil), e.out)
	e.svc = New(e.builder, e.ex)
	e.srcOpts = ManifestOptions(e.sources[0], false)
	return e
}

func (e *env) record(t *testing.T, key string) manifest.Record {
	t.Helper()
	m, err := e.builder.Build(context.Background(), e.srcOpts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	rec, ok := m.Get(key)
	if !ok {
		t.Fatalf("manifest has no %q", key)
	}
	return rec
}

func TestRun_ExtractsAndWritesMetadata(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.ex.info["mygame_windows_gog_(1.5.0)"] = mygameInfo

	summary, err := e.svc.Run(context.Background(), e.sources, Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Total != 2 || summary.Succeeded != 2 || len(summary.Failures) != 0 {
		t.Fatalf("Summary = %+v, want 2/2 without failures", summary)
	}
	if _, err := os.Stat(manifest.Path(e.out, config.SourceTypeGOGGames)); err != nil {
		t.Errorf("manifest not saved: %v", err)
	}

	rec := e.record(t, "mygame")
	values, err := destmeta.Read(rec.DestinationDirectory)
	if err != nil {
		t.Fatalf("destmeta.Read() error: %v", err)
	}
	checks := map[string]string{
		destmeta.KeyGameName:         "My Game",
		destmeta.KeyGameVersion:      "1.5.0",
		destmeta.KeyRelLauncherPath:  filepath.Join("bin", "mygame.exe"),
		destmeta.KeySourceDirectory:  rec.SourceDirectory,
		destmeta.KeySortedInstallers: `["setup_mygame_1.5.0_(150).exe"]`,
	}
	for key, want := range checks {
		if got := values.Get(key); got != want {
			t.Errorf("metadata %s = %q, want %q", key, got, want)
		}
	}

	other := e.record(t, "other")
	values, err = destmeta.Read(other.DestinationDirectory)
	if err != nil {
		t.Fatalf("destmeta.Read() error: %v", err)
	}
	if values.Get(destmeta.KeyGameName) != other.GameName {
		t.Errorf("game_name = %q, want manifest name %q", values.Get(destmeta.KeyGameName), other.GameName)
	}
	if values[destmeta.KeyRelLauncherPath] != nil {
		t.Errorf("rel_launcher_path = %q, want none", *values[destmeta.KeyRelLauncherPath])
	}
}

func TestRun_SkipsUpToDate(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.Run(ctx, e.sources, Options{}); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	if e.ex.callCount() != 2 {
		t.Fatalf("calls after first run = %d, want 2", e.ex.callCount())
	}

	summary, err := e.svc.Run(ctx, e.sources, Options{})
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if e.ex.callCount() != 2 {
		t.Errorf("up-to-date games were extracted again, calls = %d", e.ex.callCount())
	}
	if summary.Total != 2 || summary.Succeeded != 2 {
		t.Errorf("Summary = %+v, want skipped games counted as successful", summary)
	}

	if _, err := e.svc.Run(ctx, e.sources, Options{Force: true}); err != nil {
		t.Fatalf("forced Run() error: %v", err)
	}
	if e.ex.callCount() != 4 {
		t.Errorf("calls after forced run = %d, want 4", e.ex.callCount())
	}
}

func TestRun_ReextractsWhenSourceChanged(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	rec := e.record(t, "mygame")
	stale := "1.0.0"
	testutil.MustMkdirAll(t, rec.DestinationDirectory)
	if err := destmeta.WriteMetadata(rec.DestinationDirectory, destmeta.Metadata{
		GameName:        rec.GameName,
		GameVersion:     &stale,
		SourceDirectory: rec.SourceDirectory,
	}); err != nil {
		t.Fatalf("WriteMetadata() error: %v", err)
	}

	if _, err := e.svc.Run(context.Background(), e.sources, Options{GameKey: "mygame"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if e.ex.callCount() != 1 {
		t.Errorf("calls = %d, want 1 for a changed version", e.ex.callCount())
	}
}

func TestRun_CollectsFailures(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.ex.fail["other_windows_gog_(2.0)"] = true

	summary, err := e.svc.Run(context.Background(), e.sources, Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Total != 2 || summary.Succeeded != 1 {
		t.Errorf("Summary = %+v, want 1/2", summary)
	}
	if len(summary.Failures) != 1 || !errors.Is(summary.Failures[0].Err, errFake) {
		t.Errorf("Failures = %+v, want the failed game", summary.Failures)
	}
}

func TestRun_Filters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      Options
		wantErr   error
		wantCalls int
	}{
		{name: "single game", opts: Options{GameKey: "other"}, wantCalls: 1},
		{name: "unknown game skips source", opts: Options{GameKey: "missing"}, wantCalls: 0},
		{name: "known config", opts: Options{ConfigKey: "games"}, wantCalls: 2},
		{name: "unknown config", opts: Options{ConfigKey: "nope"}, wantErr: config.ErrSourceNotFound},
		{name: "game without installers", opts: Options{GameKey: "empty"}, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newEnv(t)
			_, err := e.svc.Run(context.Background(), e.sources, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if e.ex.callCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", e.ex.callCount(), tt.wantCalls)
			}
		})
	}
}

func TestRun_MissingSourceDirectory(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.sources[0].SourceDirectory = filepath.Join(e.src, "gone")

	summary, err := e.svc.Run(context.Background(), e.sources, Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Total != 0 || e.ex.callCount() != 0 {
		t.Errorf("Summary = %+v, calls = %d, want nothing processed", summary, e.ex.callCount())
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.svc.Run(ctx, e.sources, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if e.ex.callCount() != 0 {
		t.Errorf("calls = %d, want 0", e.ex.callCount())
	}
}

func TestManifests(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	got, err := e.svc.Manifests(context.Background(), e.sources, Options{BaseOnly: true})
	if err != nil {
		t.Fatalf("Manifests() error: %v", err)
	}
	if len(got["games"]) != 3 {
		t.Errorf("Manifests()[games] has %d entries, want 3", len(got["games"]))
	}

	saved, err := manifest.Load(manifest.Path(e.out, config.SourceTypeGOGGames))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(saved) != 3 {
		t.Errorf("saved manifest has %d entries, want 3", len(saved))
	}
	if e.ex.callCount() != 0 {
		t.Errorf("Manifests() must not extract, calls = %d", e.ex.callCount())
	}
}
