// Package systemd generates and installs the xhost systemd user unit.
//
// The unit is a oneshot that runs `xhost +SI:localuser:root` at session
// start, allowing processes running as root inside the toolbox
// container to open windows on the user's X11 display. Unit files are
// rendered from a template, written to the user unit directory, and
// enabled with `systemctl --user`.
package systemd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// Unit holds the fields rendered into a systemd user unit file.
type Unit struct {
	// Description is the human-readable unit description.
	Description string

	// Type is the service type. The xhost unit is a oneshot: it runs
	// once per session and exits.
	Type string

	// ExecStart is the command the unit runs.
	ExecStart string

	// WantedBy is the install target. default.target starts the unit
	// with every user session.
	WantedBy string
}

// XhostUnit returns the unit definition granting the root user access
// to the display server, using the xhost binary at xhostPath.
func XhostUnit(xhostPath string) Unit {
	return Unit{
		Description: "Grant root access to the X11 display",
		Type:        "oneshot",
		ExecStart:   xhostPath + " +SI:localuser:root",
		WantedBy:    "default.target",
	}
}

// unitTemplate is the systemd unit file layout. The header comment
// marks the file as generated; systemd treats '#' lines as comments.
var unitTemplate = template.Must(template.New("unit").Parse(
	`# Auto-generated by kalibox. DO NOT EDIT.
[Unit]
Description={{.Description}}

[Service]
Type={{.Type}}
ExecStart={{.ExecStart}}

[Install]
WantedBy={{.WantedBy}}
`))

// Render serializes the unit into systemd unit file syntax.
func (u Unit) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, u); err != nil {
		return nil, fmt.Errorf("failed to render unit file: %w", err)
	}
	return buf.Bytes(), nil
}

// UserUnitPath returns the path of a user unit file,
// ~/.config/systemd/user/<name>.
func UserUnitPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "systemd", "user", name), nil
}

// Install writes the unit file, reloads the user manager, and enables
// the unit immediately (enable --now).
func Install(ctx context.Context, name string, data []byte) error {
	path, err := UserUnitPath(name)
	if err != nil {
		return model.WrapCLIError(model.ExitSystemdFailed, "failed to locate user unit directory", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.WrapCLIError(model.ExitSystemdFailed,
			fmt.Sprintf("failed to create %s", filepath.Dir(path)), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return model.WrapCLIError(model.ExitSystemdFailed,
			fmt.Sprintf("failed to write %s", path), err)
	}

	if err := runSystemctl(ctx, "--user", "daemon-reload"); err != nil {
		return err
	}
	return runSystemctl(ctx, "--user", "enable", "--now", name)
}

// Disable disables and stops the unit. A unit that was never enabled
// is not an error; teardown calls this unconditionally.
func Disable(ctx context.Context, name string) error {
	if err := runSystemctl(ctx, "--user", "disable", "--now", name); err != nil {
		// systemctl exits non-zero for not-found units. Teardown wants
		// "already absent" to succeed, so only real failures propagate.
		if installed, statErr := Installed(name); statErr == nil && !installed {
			return nil
		}
		return err
	}
	return nil
}

// Remove deletes the unit file after Disable. Missing files are fine.
func Remove(ctx context.Context, name string) error {
	path, err := UserUnitPath(name)
	if err != nil {
		return model.WrapCLIError(model.ExitSystemdFailed, "failed to locate user unit directory", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return model.WrapCLIError(model.ExitSystemdFailed,
			fmt.Sprintf("failed to remove %s", path), err)
	}
	return runSystemctl(ctx, "--user", "daemon-reload")
}

// Installed reports whether the unit file exists on disk.
func Installed(name string) (bool, error) {
	path, err := UserUnitPath(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Enabled reports whether the unit is enabled in the user manager.
// `systemctl is-enabled` exits non-zero for disabled or unknown units,
// which maps to false rather than an error.
func Enabled(ctx context.Context, name string) bool {
	cmd := exec.CommandContext(ctx, "systemctl", "--user", "is-enabled", name)
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) == "enabled"
}

// runSystemctl executes systemctl, capturing stderr for error reporting.
func runSystemctl(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "systemctl", args...)

	var stderr strings.Builder
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("systemctl %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return model.WrapCLIError(model.ExitSystemdFailed, message, err)
	}
	return nil
}
