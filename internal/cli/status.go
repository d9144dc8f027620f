// Package cli — status.go implements the "kalibox status" command.
//
// The status command reports the observable provisioning state without
// changing anything: the toolbox container (exists, running, image,
// mount), the xhost user unit (installed, enabled) and the wrapper
// script (installed). A Docker daemon that is down is reported as part
// of the status rather than failing the command.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/kalibox/internal/config"
	"github.com/mmr-tortoise/kalibox/internal/docker"
	"github.com/mmr-tortoise/kalibox/internal/model"
	"github.com/mmr-tortoise/kalibox/internal/systemd"
	"github.com/mmr-tortoise/kalibox/internal/wrapper"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	configPath string
}

// Status is the full report printed by the status command.
type Status struct {
	// Toolbox describes the managed container, nil when it does not
	// exist or Docker is unreachable.
	Toolbox *model.ToolboxInfo `json:"toolbox"`

	// DockerReachable reports whether the Docker daemon answered.
	DockerReachable bool `json:"dockerReachable"`

	// DockerError carries the daemon error when unreachable.
	DockerError string `json:"dockerError,omitempty"`

	// UnitInstalled reports whether the xhost unit file exists.
	UnitInstalled bool `json:"unitInstalled"`

	// UnitEnabled reports whether the unit is enabled in the user manager.
	UnitEnabled bool `json:"unitEnabled"`

	// WrapperInstalled reports whether the wrapper script is executable
	// at its configured path.
	WrapperInstalled bool `json:"wrapperInstalled"`

	// WrapperPath is the configured wrapper location.
	WrapperPath string `json:"wrapperPath"`
}

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the provisioning state",
		Long: `Show what kalibox has provisioned on this machine: the toolbox
container, the xhost systemd user unit and the wrapper script.

Examples:
  kalibox status
  kalibox status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Provisioning profile file (.jsonc or .yml)")

	return cmd
}

// runStatus gathers the report and prints it.
func runStatus(ctx context.Context, flags *statusFlags) error {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return err
	}

	status := Status{WrapperPath: cfg.Wrapper.Path}

	// Docker being down is a status fact here, not a command failure.
	cli, err := docker.NewClient()
	if err != nil {
		status.DockerError = err.Error()
	} else {
		defer func() { _ = cli.Close() }()
		if err := cli.Ping(ctx); err != nil {
			status.DockerError = err.Error()
		} else {
			status.DockerReachable = true
			info, err := docker.FindToolbox(ctx, cli, cfg.Toolbox.Name)
			if err != nil {
				return err
			}
			status.Toolbox = info
		}
	}

	installed, err := systemd.Installed(cfg.Unit.Name)
	if err != nil {
		return model.WrapCLIError(model.ExitSystemdFailed,
			fmt.Sprintf("failed to check unit %s", cfg.Unit.Name), err)
	}
	status.UnitInstalled = installed
	if installed {
		status.UnitEnabled = systemd.Enabled(ctx, cfg.Unit.Name)
	}

	status.WrapperInstalled = wrapper.Installed(cfg.Wrapper.Path)

	printStatus(cfg.Toolbox.Name, status)
	return nil
}

// printStatus outputs the report in text or JSON format.
func printStatus(containerName string, status Status) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, line := range FormatStatusLines(containerName, status) {
		fmt.Println(line)
	}
}

// FormatStatusLines renders the text report, one fact per line.
// Exported for direct testing of the output format.
func FormatStatusLines(containerName string, status Status) []string {
	lines := make([]string, 0, 4)

	switch {
	case !status.DockerReachable:
		lines = append(lines, fmt.Sprintf("Toolbox:  unknown (Docker unreachable: %s)", status.DockerError))
	case status.Toolbox == nil:
		lines = append(lines, fmt.Sprintf("Toolbox:  %s not created", containerName))
	default:
		lines = append(lines, fmt.Sprintf("Toolbox:  %s %s (image %s, host at %s)",
			status.Toolbox.ContainerName, status.Toolbox.State,
			status.Toolbox.Image, status.Toolbox.HostMount))
	}

	lines = append(lines, fmt.Sprintf("Unit:     installed=%t enabled=%t", status.UnitInstalled, status.UnitEnabled))
	lines = append(lines, fmt.Sprintf("Wrapper:  installed=%t (%s)", status.WrapperInstalled, status.WrapperPath))

	return lines
}
