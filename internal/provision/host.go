package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// dockerGroup is the Unix group granting access to the Docker socket.
const dockerGroup = "docker"

// EnsureDockerGroup adds the invoking user to the docker group when not
// already a member. Returns whether the membership was added; group
// changes only apply to new login sessions, so the caller should tell
// the user to log in again.
func EnsureDockerGroup(ctx context.Context) (bool, error) {
	current, err := user.Current()
	if err != nil {
		return false, model.WrapCLIError(model.ExitGeneralError, "cannot determine current user", err)
	}

	// Root already reaches the socket; no group change needed.
	if current.Uid == "0" {
		return false, nil
	}

	member, err := inGroup(current, dockerGroup)
	if err != nil {
		return false, err
	}
	if member {
		return false, nil
	}

	cmd := exec.CommandContext(ctx, "sudo", "usermod", "-aG", dockerGroup, current.Username)

	var stderr strings.Builder
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("usermod -aG %s %s failed", dockerGroup, current.Username)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return false, model.WrapCLIError(model.ExitGeneralError, message, err)
	}
	return true, nil
}

// inGroup reports whether u belongs to the named group.
func inGroup(u *user.User, name string) (bool, error) {
	group, err := user.LookupGroup(name)
	if err != nil {
		if _, unknown := err.(user.UnknownGroupError); unknown {
			// No docker group means Docker was just installed and the
			// package did not create it yet, or installation failed.
			return false, nil
		}
		return false, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to look up group %q", name), err)
	}

	gids, err := u.GroupIds()
	if err != nil {
		return false, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to list groups for %s", u.Username), err)
	}
	for _, gid := range gids {
		if gid == group.Gid {
			return true, nil
		}
	}
	return false, nil
}
