// Package desktop sets up the Sway tiling desktop: cloning the dotfiles
// repository into the Sway config directory and applying the wallpaper
// through GNOME's gsettings (the fallback session on these machines).
package desktop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// CloneDotfiles clones repo into dest unless dest already exists, in
// which case the existing checkout is left alone. Returns whether a
// clone was performed.
func CloneDotfiles(ctx context.Context, repo, dest string) (bool, error) {
	if _, err := os.Stat(dest); err == nil {
		// An existing directory is treated as an already-provisioned
		// checkout. Pulling here could clobber local edits.
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to inspect %s: %w", dest, err)
	}

	if err := runGit(ctx, "clone", "--depth", "1", repo, dest); err != nil {
		return false, err
	}
	return true, nil
}

// WallpaperURI converts an absolute file path into the file:// URI
// form gsettings expects.
func WallpaperURI(path string) string {
	return "file://" + path
}

// GsettingsArgs builds the argument list for a single gsettings set.
func GsettingsArgs(schema, key, value string) []string {
	return []string{"set", schema, key, value}
}

// ApplyWallpaper points the GNOME background (light and dark variants)
// at the image stored at path.
func ApplyWallpaper(ctx context.Context, path string) error {
	uri := WallpaperURI(path)
	for _, key := range []string{"picture-uri", "picture-uri-dark"} {
		args := GsettingsArgs("org.gnome.desktop.background", key, uri)
		if err := runGsettings(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// runGit executes a git command, capturing stderr for error reporting.
func runGit(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)

	var stderr strings.Builder
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return model.WrapCLIError(model.ExitGeneralError, message, err)
	}
	return nil
}

// runGsettings executes gsettings, capturing stderr for error reporting.
func runGsettings(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "gsettings", args...)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("gsettings %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return model.WrapCLIError(model.ExitGeneralError, message, err)
	}
	return nil
}
