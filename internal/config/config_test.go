package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault verifies the built-in profile is complete and valid.
func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	require.NoError(t, cfg.Validate(), "defaults must pass their own validation")

	assert.Equal(t, "kali", cfg.Toolbox.Name)
	assert.Equal(t, "kalilinux/kali-rolling", cfg.Toolbox.Image)
	assert.Equal(t, "/mnt/host", cfg.Toolbox.HostMount)
	assert.Equal(t, "/tmp/.X11-unix", cfg.Toolbox.X11Socket)
	assert.Equal(t, "/usr/local/bin/kali", cfg.Wrapper.Path)
	assert.Equal(t, "xhost.service", cfg.Unit.Name)

	assert.Contains(t, cfg.Packages.Telemetry, "whoopsie")
	assert.Contains(t, cfg.Packages.Shell, "fish")
	assert.Contains(t, cfg.Packages.Desktop, "sway")
	assert.NotEmpty(t, cfg.Toolbox.Tools)

	// Home-relative defaults must resolve to absolute paths.
	assert.True(t, filepath.IsAbs(cfg.Desktop.DotfilesDir))
	assert.True(t, filepath.IsAbs(cfg.Desktop.WallpaperPath))
}

// TestLoad_JSONC verifies that a commented JSONC profile parses and
// that unset fields keep their defaults.
func TestLoad_JSONC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kalibox.jsonc")

	profile := `{
  // override only the container, keep everything else
  "toolbox": {
    "name": "sandbox",
    "image": "kalilinux/kali-last-release",
    "hostMount": "/mnt/host",
    "x11Socket": "/tmp/.X11-unix",
    "tools": ["nmap"], // trailing comma below is JSONC too
  },
}`
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sandbox", cfg.Toolbox.Name)
	assert.Equal(t, "kalilinux/kali-last-release", cfg.Toolbox.Image)
	assert.Equal(t, []string{"nmap"}, cfg.Toolbox.Tools)

	// Untouched sections keep defaults.
	assert.Equal(t, "/usr/local/bin/kali", cfg.Wrapper.Path)
	assert.Equal(t, "bobthefish", cfg.Shell.Theme)
}

// TestLoad_YAML verifies the YAML profile format.
func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kalibox.yml")

	profile := `
shell:
  theme: agnoster
  loginShell: /usr/bin/fish
packages:
  telemetry:
    - apport
`
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "agnoster", cfg.Shell.Theme)
	assert.Equal(t, []string{"apport"}, cfg.Packages.Telemetry)
	assert.Equal(t, "kali", cfg.Toolbox.Name, "defaults survive a partial YAML profile")
}

// TestLoad_UnsupportedExtension verifies the format check.
func TestLoad_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kalibox.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported profile format")
}

// TestLoad_Missing verifies the not-found error path.
func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile not found")
}

// TestValidate covers the rejection cases for interpolated values.
func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Default()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad container name",
			mutate:  func(c *Config) { c.Toolbox.Name = "-kali" },
			wantErr: "invalid container name",
		},
		{
			name:    "empty image",
			mutate:  func(c *Config) { c.Toolbox.Image = "" },
			wantErr: "image must not be empty",
		},
		{
			name:    "relative host mount",
			mutate:  func(c *Config) { c.Toolbox.HostMount = "mnt/host" },
			wantErr: "absolute path",
		},
		{
			name:    "relative wrapper path",
			mutate:  func(c *Config) { c.Wrapper.Path = "bin/kali" },
			wantErr: "absolute path",
		},
		{
			name:    "unit without .service suffix",
			mutate:  func(c *Config) { c.Unit.Name = "xhost" },
			wantErr: ".service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestResolve_ExplicitPath verifies that an explicit --config path that
// does not exist is an error rather than a silent fallback to defaults.
func TestResolve_ExplicitPath(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}
