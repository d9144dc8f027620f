// Package shell sets up the Fish command shell: running the Oh My Fish
// installer, activating a theme, maintaining a managed block inside
// config.fish, and switching the user's login shell.
//
// The config.fish block is delimited by marker comments and replaced
// in place on every run, so repeated provisioning never duplicates
// configuration lines.
package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// Markers delimiting the kalibox-managed block in config.fish.
// Everything between them (markers included) is owned by kalibox.
const (
	markerBegin = "# >>> kalibox managed block >>>"
	markerEnd   = "# <<< kalibox managed block <<<"
)

// ConfigPath returns the path of the user's fish configuration file,
// ~/.config/fish/config.fish.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fish", "config.fish"), nil
}

// ConfigBlock builds the managed config.fish content: greeting off,
// and the OMF theme when one is configured.
func ConfigBlock(theme string) string {
	var b strings.Builder
	b.WriteString(markerBegin + "\n")
	b.WriteString("set -g fish_greeting\n")
	if theme != "" {
		b.WriteString(fmt.Sprintf("set -g theme_nerd_fonts yes # used by %s\n", theme))
	}
	b.WriteString(markerEnd + "\n")
	return b.String()
}

// EnsureConfigBlock writes the managed block into the fish config at
// path. If markers from a previous run are present, the old block is
// replaced; otherwise the block is appended. Returns whether the file
// content changed.
func EnsureConfigBlock(path, block string) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated := spliceBlock(string(existing), block)
	if updated == string(existing) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// spliceBlock returns content with the managed block replaced or
// appended. The block argument is expected to carry its own markers
// and trailing newline (as produced by ConfigBlock).
func spliceBlock(content, block string) string {
	begin := strings.Index(content, markerBegin)
	end := strings.Index(content, markerEnd)

	if begin >= 0 && end > begin {
		// Replace the old block, markers included, up to the end of
		// the end-marker line.
		afterEnd := end + len(markerEnd)
		if afterEnd < len(content) && content[afterEnd] == '\n' {
			afterEnd++
		}
		return content[:begin] + block + content[afterEnd:]
	}

	// No previous block. Separate from existing user content with a
	// blank line.
	if content == "" {
		return block
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + block
}

// InstallOMF runs a previously downloaded Oh My Fish installer script
// non-interactively. The installer itself is a fish script.
func InstallOMF(ctx context.Context, installerPath string) error {
	return runFish(ctx, installerPath, "--noninteractive", "--yes")
}

// InstallTheme installs and activates an OMF theme. Both steps go
// through a login fish invocation so OMF's functions are on the path.
func InstallTheme(ctx context.Context, theme string) error {
	script := fmt.Sprintf("omf install %s; and omf theme %s", theme, theme)
	return runFish(ctx, "-c", script)
}

// SetLoginShell switches the current user's login shell via chsh. The
// change takes effect on the next login.
func SetLoginShell(ctx context.Context, shellPath string) error {
	cmd := exec.CommandContext(ctx, "chsh", "-s", shellPath)

	var stderr strings.Builder
	cmd.Stdin = os.Stdin // chsh may prompt for the user's password
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("chsh -s %s failed", shellPath)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return model.WrapCLIError(model.ExitGeneralError, message, err)
	}
	return nil
}

// runFish executes the fish binary with the given arguments, capturing
// stderr for error reporting.
func runFish(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "fish", args...)

	var stderr strings.Builder
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("fish %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return model.WrapCLIError(model.ExitGeneralError, message, err)
	}
	return nil
}
