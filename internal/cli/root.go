// Package cli implements the cobra-based CLI commands for kalibox.
//
// Each subcommand (provision, status, kali, teardown) lives in its own
// file within this package. This file defines the root command, the
// global flags, and the error-to-exit-code translation.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// Global flag variables, bound as persistent flags on the root command
// so every subcommand inherits them.
var (
	// jsonOutput switches command output from human-readable text to
	// structured JSON.
	jsonOutput bool

	// verbose enables progress logging to stderr.
	verbose bool
)

// Version, Commit and Date identify the binary. They default to dev
// values and are overwritten from main with ldflags-injected values.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command. The
// root itself performs no action; the subcommands do the work.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kalibox",
		Short: "One-command Linux workstation provisioning with a Kali toolbox container",
		Long: `kalibox provisions a fresh Debian/Ubuntu workstation in one run: system
update, telemetry removal, the fish shell with Oh My Fish, the Sway
desktop, and a Kali Linux toolbox container with the host filesystem and
X11 display wired in.

Each provisioning section can be run or skipped individually, and the
whole run is safe to repeat.`,

		// Errors are printed by Execute (text or JSON per --json), so
		// cobra's own error and usage output is silenced.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewProvisionCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewKaliCommand())
	rootCmd.AddCommand(NewTeardownCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into OS exit
// codes. CLIError values carry their own code; anything else exits 1.
func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if cliErr, ok := err.(*model.CLIError); ok {
		printError(cliErr.Message, cliErr.Err)
		os.Exit(int(cliErr.Code))
	}

	printError(err.Error(), nil)
	os.Exit(int(model.ExitGeneralError))
}

// printError writes an error to stderr, formatted per the --json flag.
// Stdout stays reserved for successful command output in both modes.
func printError(message string, underlying error) {
	if !jsonOutput {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
		return
	}

	inner := map[string]interface{}{"message": message}
	if underlying != nil {
		inner["detail"] = underlying.Error()
	}
	data, _ := json.MarshalIndent(map[string]interface{}{"error": inner}, "", "  ")
	fmt.Fprintln(os.Stderr, string(data))
}

// VerboseLog prints a progress message to stderr when --verbose is set.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set. Subcommands use
// this to pick their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
