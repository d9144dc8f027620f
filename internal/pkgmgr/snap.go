package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// Snap drives the snap CLI on the host.
type Snap struct {
	useSudo bool
}

// NewSnap creates a Snap runner with the same sudo detection as NewApt.
func NewSnap() *Snap {
	return &Snap{useSudo: os.Geteuid() != 0}
}

// RefreshArgs returns the snap arguments for refreshing all snaps.
func RefreshArgs() []string {
	return []string{"refresh"}
}

// RemoveArgs returns the snap arguments for removing snaps, purging
// their data snapshots as well.
func RemoveArgs(names []string) []string {
	return append([]string{"remove", "--purge"}, names...)
}

// Available reports whether the snap binary exists on this host.
// Minimal Debian installs often have no snapd; the update section
// skips the refresh in that case instead of failing.
func (s *Snap) Available() bool {
	_, err := exec.LookPath("snap")
	return err == nil
}

// Refresh updates all installed snaps.
func (s *Snap) Refresh(ctx context.Context) error {
	return s.run(ctx, RefreshArgs()...)
}

// Remove removes the given snaps and their data.
func (s *Snap) Remove(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return s.run(ctx, RemoveArgs(names)...)
}

func (s *Snap) run(ctx context.Context, args ...string) error {
	name := "snap"
	argv := args
	if s.useSudo {
		name = "sudo"
		argv = append([]string{"snap"}, args...)
	}

	cmd := exec.CommandContext(ctx, name, argv...)

	var stderr strings.Builder
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("snap %s failed", strings.Join(args, " "))
		if st := strings.TrimSpace(stderr.String()); st != "" {
			message = fmt.Sprintf("%s: %s", message, st)
		}
		return model.WrapCLIError(model.ExitPackageManager, message, err)
	}
	return nil
}
