// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where settings come from. Empty fields fall back
	// to the user's config directory.
	LoadOptions struct {
		ConfigFilePath string
		ConfigDirPath  string
	}

	// Provider resolves the effective Config for a command invocation.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// configDirOverride pins ConfigDir in tests so they never read the real
// user settings.
var configDirOverride string

// NewProvider returns the Provider backed by settings files, env vars and
// built-in defaults.
func NewProvider() Provider {
	return fileProvider{}
}

func (fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}

// SetConfigDirOverride makes ConfigDir return dir until Reset is called.
func SetConfigDirOverride(dir string) { configDirOverride = dir }

// Reset drops any override installed by SetConfigDirOverride.
func Reset() { configDirOverride = "" }
