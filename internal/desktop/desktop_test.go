package desktop

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCloneDotfiles_SkipsExisting verifies that an existing destination
// directory short-circuits before git is ever invoked (the repo URL
// below is unreachable on purpose).
func TestCloneDotfiles_SkipsExisting(t *testing.T) {
	dest := t.TempDir()

	cloned, err := CloneDotfiles(context.Background(), "https://invalid.example/dotfiles.git", dest)
	require.NoError(t, err)
	assert.False(t, cloned)
}

// TestCloneDotfiles_MissingParentIsNotSkipped verifies a non-existent
// destination proceeds to the clone path (and surfaces git's failure
// for an unreachable repo as a command error).
func TestCloneDotfiles_MissingDest(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "sway")

	// file:// URL to a path that is not a repository: git fails fast
	// without touching the network.
	_, err := CloneDotfiles(context.Background(), "file:///nonexistent-kalibox-repo", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git clone")
}

// TestWallpaperURI pins the file URI form gsettings expects.
func TestWallpaperURI(t *testing.T) {
	assert.Equal(t, "file:///home/user/Pictures/wallpaper.jpg",
		WallpaperURI("/home/user/Pictures/wallpaper.jpg"))
}

// TestGsettingsArgs pins the gsettings command line.
func TestGsettingsArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"set", "org.gnome.desktop.background", "picture-uri", "file:///tmp/w.jpg"},
		GsettingsArgs("org.gnome.desktop.background", "picture-uri", "file:///tmp/w.jpg"))
}
