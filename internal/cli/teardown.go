// Package cli — teardown.go implements the "kalibox teardown" command.
//
// Teardown removes what provisioning created on top of the base system:
//  1. The toolbox container (force-removed, running or not)
//  2. The xhost systemd user unit (disabled, then deleted)
//  3. The wrapper script (unless --keep-wrapper)
//
// Installed packages, the shell setup and the dotfiles are left alone;
// those belong to the user once provisioned. By default the command
// prompts for confirmation; --force skips the prompt.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/kalibox/internal/config"
	"github.com/mmr-tortoise/kalibox/internal/docker"
	"github.com/mmr-tortoise/kalibox/internal/model"
	"github.com/mmr-tortoise/kalibox/internal/systemd"
	"github.com/mmr-tortoise/kalibox/internal/wrapper"
)

// teardownFlags holds the flag values for the teardown command.
type teardownFlags struct {
	// force skips the interactive confirmation prompt when true.
	force bool

	// keepWrapper preserves the wrapper script when true.
	keepWrapper bool

	configPath string
}

// NewTeardownCommand creates the "teardown" cobra command.
func NewTeardownCommand() *cobra.Command {
	flags := &teardownFlags{}

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Remove the toolbox container, unit and wrapper",
		Long: `Remove what kalibox set up: the toolbox container, the xhost systemd
user unit and the wrapper script. Installed packages and shell/desktop
configuration stay.

Unless --force is specified, the command prompts for confirmation.

Examples:
  kalibox teardown
  kalibox teardown --force
  kalibox teardown --keep-wrapper`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeardown(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Tear down without confirmation")
	cmd.Flags().BoolVar(&flags.keepWrapper, "keep-wrapper", false, "Keep the wrapper script")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Provisioning profile file (.jsonc or .yml)")

	return cmd
}

// runTeardown is the main logic function for the teardown command.
func runTeardown(ctx context.Context, flags *teardownFlags) error {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return err
	}

	if !flags.force {
		confirmed, err := promptConfirmation(cfg.Toolbox.Name, cfg.Wrapper.Path, flags.keepWrapper)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
		}
		if !confirmed {
			return model.NewCLIError(model.ExitUserCancelled, "operation cancelled by user")
		}
	}

	// Step 1: remove the container. A daemon that is down only matters
	// if there is a container to remove; report and continue.
	containerRemoved := false
	cli, err := docker.NewClient()
	if err == nil {
		defer func() { _ = cli.Close() }()

		info, findErr := docker.FindToolbox(ctx, cli, cfg.Toolbox.Name)
		if findErr != nil {
			return findErr
		}
		if info != nil {
			VerboseLog("Removing container %s (%s)", info.ContainerName, info.ContainerID)
			if err := docker.RemoveContainer(ctx, cli, info.ContainerID, true); err != nil {
				return err
			}
			containerRemoved = true
		}
	} else {
		VerboseLog("Docker unreachable, skipping container removal: %v", err)
	}

	// Step 2: disable and delete the unit. Absent units are fine.
	unitRemoved := false
	if installed, err := systemd.Installed(cfg.Unit.Name); err == nil && installed {
		if err := systemd.Disable(ctx, cfg.Unit.Name); err != nil {
			return err
		}
		if err := systemd.Remove(ctx, cfg.Unit.Name); err != nil {
			return err
		}
		unitRemoved = true
	}

	// Step 3: delete the wrapper script.
	wrapperRemoved := false
	if !flags.keepWrapper && wrapper.Installed(cfg.Wrapper.Path) {
		if err := os.Remove(cfg.Wrapper.Path); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to remove wrapper at %s (are you missing root privileges?)", cfg.Wrapper.Path), err)
		}
		wrapperRemoved = true
	}

	printTeardownResult(cfg.Toolbox.Name, containerRemoved, unitRemoved, wrapperRemoved)
	return nil
}

// promptConfirmation asks the user to confirm the teardown. It reads a
// single line from stdin and checks for "y" or "yes".
func promptConfirmation(containerName, wrapperPath string, keepWrapper bool) (bool, error) {
	fmt.Println("About to tear down the kalibox setup:")
	fmt.Printf("  - container %q will be removed (all data inside it is lost)\n", containerName)
	fmt.Println("  - the xhost systemd user unit will be disabled and removed")
	if !keepWrapper {
		fmt.Printf("  - the wrapper at %s will be removed\n", wrapperPath)
	}
	fmt.Print("\nContinue? [y/N] ")

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}

	// Closed stdin reads as "no".
	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, nil
}

// printTeardownResult outputs the teardown result in text or JSON format.
func printTeardownResult(containerName string, containerRemoved, unitRemoved, wrapperRemoved bool) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"container":        containerName,
			"containerRemoved": containerRemoved,
			"unitRemoved":      unitRemoved,
			"wrapperRemoved":   wrapperRemoved,
		}, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println("Teardown complete")
	fmt.Printf("  container removed: %t\n", containerRemoved)
	fmt.Printf("  unit removed:      %t\n", unitRemoved)
	fmt.Printf("  wrapper removed:   %t\n", wrapperRemoved)
}
