// container.go implements the toolbox container lifecycle: discovery by
// label, image pull, creation with the host filesystem and X11 socket
// mounted, start/stop/remove, and package installs via the exec API.
//
// Creation and exec go through the Docker SDK because the container
// shape is fixed and the exec exit code must be inspected. Interactive
// shells are the one thing left to the docker CLI (see the cli package);
// raw TTY attachment is its job.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// ToolboxSpec describes the container the kali-container section
// creates. All fields come from the provisioning profile except
// Display, which is taken from the environment.
type ToolboxSpec struct {
	// Name is the Docker container name.
	Name string

	// Image is the image reference to pull and run.
	Image string

	// HostMount is the path inside the container where the host root
	// filesystem is bind-mounted.
	HostMount string

	// X11Socket is the host X11 socket directory, mounted at the same
	// path inside the container.
	X11Socket string

	// Display is the DISPLAY value exported into the container.
	Display string
}

// FindToolbox looks up the managed toolbox container by name. Only
// containers carrying the kalibox management label are considered, so
// an unrelated container that happens to be called "kali" is not
// mistaken for ours. Returns nil (no error) when nothing matches.
func FindToolbox(ctx context.Context, cli *Client, name string) (*model.ToolboxInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	// All includes stopped containers; a stopped toolbox still exists
	// and gets restarted rather than recreated.
	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	for _, c := range containers {
		if containerName(c) == name {
			return toolboxFromSummary(c)
		}
	}
	return nil, nil
}

// containerName extracts the first container name, stripping the
// leading "/" the Docker API prepends.
func containerName(c types.Container) string {
	if len(c.Names) == 0 {
		return ""
	}
	return strings.TrimPrefix(c.Names[0], "/")
}

// toolboxFromSummary converts a Docker API container summary into the
// domain ToolboxInfo, merging label-backed fields with runtime state.
func toolboxFromSummary(c types.Container) (*model.ToolboxInfo, error) {
	info, err := ParseLabels(c.Labels)
	if err != nil {
		return nil, fmt.Errorf("container %q has malformed kalibox labels: %w", containerName(c), err)
	}

	info.ContainerID = c.ID
	info.ContainerName = containerName(c)
	info.State = c.State
	return info, nil
}

// PullImage pulls the given image reference, blocking until the pull
// completes. The progress stream is drained and discarded; callers
// report progress at a coarser granularity.
func PullImage(ctx context.Context, cli *Client, ref string) error {
	reader, err := cli.Inner().ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to pull image %q", ref),
			err,
		)
	}
	defer func() { _ = reader.Close() }()

	// The pull happens server-side while this stream is consumed; the
	// pull is not complete until EOF.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("image pull for %q interrupted", ref),
			err,
		)
	}
	return nil
}

// CreateToolbox creates and starts the toolbox container:
//
//   - host root filesystem bind-mounted at spec.HostMount
//   - X11 socket directory bind-mounted at its own path
//   - host networking
//   - restart policy unless-stopped, so the toolbox survives reboots
//   - a TTY with stdin held open, keeping the shell process alive
//
// Returns the new container ID.
func CreateToolbox(ctx context.Context, cli *Client, spec ToolboxSpec) (string, error) {
	cfg := &container.Config{
		Image:     spec.Image,
		Tty:       true,
		OpenStdin: true,
		Env:       buildEnv(spec.Display),
		Labels:    BuildLabels(spec.Image, spec.HostMount, time.Now()),
	}

	hostCfg := &container.HostConfig{
		Binds:       buildBinds(spec),
		NetworkMode: container.NetworkMode("host"),
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyUnlessStopped,
		},
	}

	created, err := cli.Inner().ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create container %q", spec.Name),
			err,
		)
	}

	if err := StartContainer(ctx, cli, created.ID); err != nil {
		return "", err
	}
	return created.ID, nil
}

// buildBinds constructs the bind mount list for the toolbox container.
func buildBinds(spec ToolboxSpec) []string {
	return []string{
		"/:" + spec.HostMount,
		spec.X11Socket + ":" + spec.X11Socket,
	}
}

// buildEnv constructs the container environment. DISPLAY defaults to
// :0 when the provisioning session has none (e.g. run over SSH).
func buildEnv(display string) []string {
	if display == "" {
		display = ":0"
	}
	return []string{"DISPLAY=" + display}
}

// StartContainer starts a stopped container by ID.
func StartContainer(ctx context.Context, cli *Client, containerID string) error {
	if err := cli.Inner().ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", containerID),
			err,
		)
	}
	return nil
}

// StopContainer stops a running container by ID, using the daemon's
// default graceful-stop timeout.
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	if err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop container %q", containerID),
			err,
		)
	}
	return nil
}

// RemoveContainer removes a container by ID. With force, a running
// container is killed first.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove container %q", containerID),
			err,
		)
	}
	return nil
}

// Exec runs a non-interactive command inside the container and waits
// for it to finish. The demultiplexed combined output is returned; a
// non-zero exit code is an error carrying the trimmed output.
//
// The kali-tools section uses this for apt-get runs inside the toolbox,
// where the exit code decides whether the section passed.
func Exec(ctx context.Context, cli *Client, containerID string, cmd []string) (string, error) {
	execResp, err := cli.Inner().ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		Env:          []string{"DEBIAN_FRONTEND=noninteractive"},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create exec in container %q", containerID),
			err,
		)
	}

	attach, err := cli.Inner().ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to attach to exec in container %q", containerID),
			err,
		)
	}
	defer attach.Close()

	// Without a TTY the stream is multiplexed; stdcopy splits it.
	// Reading to EOF also serves as the wait for command completion.
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to read exec output from container %q", containerID),
			err,
		)
	}

	inspect, err := cli.Inner().ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to inspect exec in container %q", containerID),
			err,
		)
	}

	output := stdout.String() + stderr.String()
	if inspect.ExitCode != 0 {
		return output, model.NewCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("command %q in container %q exited with code %d: %s",
				strings.Join(cmd, " "), containerID, inspect.ExitCode,
				strings.TrimSpace(stderr.String())),
		)
	}
	return output, nil
}

// EnsureToolbox brings the toolbox container into a running state:
// found and running is a no-op, found and stopped is started, missing
// is pulled and created. Returns the container ID and whether a new
// container was created.
func EnsureToolbox(ctx context.Context, cli *Client, spec ToolboxSpec) (string, bool, error) {
	existing, err := FindToolbox(ctx, cli, spec.Name)
	if err != nil {
		return "", false, err
	}

	if existing != nil {
		if !existing.IsRunning() {
			if err := StartContainer(ctx, cli, existing.ContainerID); err != nil {
				return "", false, err
			}
		}
		return existing.ContainerID, false, nil
	}

	if err := PullImage(ctx, cli, spec.Image); err != nil {
		return "", false, err
	}

	id, err := CreateToolbox(ctx, cli, spec)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// DisplayFromEnv returns the host DISPLAY value for the toolbox spec.
func DisplayFromEnv() string {
	return os.Getenv("DISPLAY")
}
