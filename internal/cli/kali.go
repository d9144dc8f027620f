// Package cli — kali.go implements the "kalibox kali" command.
//
// It is the same entry point as the installed wrapper script: no
// arguments opens an interactive shell inside the toolbox container,
// -h/--help prints usage, anything else runs as one command inside the
// container. The host working directory is mapped under the host mount.
//
// The container session goes through the docker CLI rather than the
// SDK: an interactive shell needs raw TTY attachment and terminal
// resizing, which `docker exec -it` already does well.
package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/kalibox/internal/config"
	"github.com/mmr-tortoise/kalibox/internal/model"
	"github.com/mmr-tortoise/kalibox/internal/wrapper"
)

// NewKaliCommand creates the "kali" cobra command.
func NewKaliCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kali [command [args...]]",
		Short: "Run a shell or command inside the toolbox container",
		Long: `Open an interactive shell inside the toolbox container, or run a single
command in it. The current directory is mapped to the same path under
the container's host mount.

A leading --config <path> (or -c <path>) selects the provisioning
profile; everything after it belongs to the container command.

Examples:
  kalibox kali
  kalibox kali nmap -sV localhost
  kalibox kali --config kalibox.jsonc ls -la /mnt/host/etc`,

		Args: cobra.ArbitraryArgs,

		// The arguments are the command to run inside the container,
		// flags included. Letting cobra parse them would swallow flags
		// like -sV, so parsing is disabled and --config is picked off
		// by hand in splitConfigFlag.
		DisableFlagParsing: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runKali(args)
		},
	}

	return cmd
}

// runKali dispatches the arguments exactly like the wrapper script and
// hands the terminal to docker for the container session.
func runKali(rawArgs []string) error {
	configPath, args, err := splitConfigFlag(rawArgs)
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	params := wrapper.Params{
		ContainerName: cfg.Toolbox.Name,
		MountPrefix:   cfg.Toolbox.HostMount,
	}

	switch wrapper.Dispatch(args) {
	case wrapper.ActionHelp:
		fmt.Print(wrapper.Usage(params))
		return nil
	case wrapper.ActionShell:
		args = nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "cannot determine working directory", err)
	}

	dockerArgs := wrapper.ExecArgs(params, cwd, args)
	VerboseLog("Running docker %v", dockerArgs)

	// Inherit the terminal wholesale; docker owns the TTY until the
	// container session ends.
	session := exec.Command("docker", dockerArgs...)
	session.Stdin = os.Stdin
	session.Stdout = os.Stdout
	session.Stderr = os.Stderr

	if err := session.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			// Propagate the container command's exit code verbatim.
			return model.NewCLIError(model.ExitCode(exitErr.ExitCode()),
				fmt.Sprintf("command in container %q exited with code %d", cfg.Toolbox.Name, exitErr.ExitCode()))
		}
		return model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("failed to run docker exec against %q", cfg.Toolbox.Name), err)
	}
	return nil
}

// splitConfigFlag strips leading --config/-c flags from the argument
// list and returns the profile path plus the remaining arguments. The
// flag only counts before the container command starts; a --config
// appearing later belongs to the forwarded command and passes through.
func splitConfigFlag(args []string) (string, []string, error) {
	var path string
	for len(args) > 0 {
		switch arg := args[0]; {
		case arg == "--config" || arg == "-c":
			if len(args) < 2 {
				return "", nil, model.NewCLIError(model.ExitConfigError,
					fmt.Sprintf("flag %s requires a path argument", arg))
			}
			path = args[1]
			args = args[2:]
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
			args = args[1:]
		default:
			return path, args, nil
		}
	}
	return path, args, nil
}
