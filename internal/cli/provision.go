// Package cli — provision.go implements the "kalibox provision" command.
//
// The provision command runs the ordered provisioning sections:
//  1. system-update    apt update + full-upgrade (+ snap refresh)
//  2. telemetry        purge telemetry/crash-reporting packages
//  3. shell            fish, Oh My Fish, theme, login shell
//  4. desktop          Sway packages, dotfiles, wallpaper
//  5. kali-container   Docker install + Kali toolbox container
//  6. xhost-unit       xhost systemd user unit
//  7. wrapper          /usr/local/bin/kali wrapper script
//  8. kali-tools       tool packages inside the container
//
// A failing section is recorded and the run continues to the next one,
// unless --fail-fast is given. The command exits non-zero when any
// section failed.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/kalibox/internal/config"
	"github.com/mmr-tortoise/kalibox/internal/model"
	"github.com/mmr-tortoise/kalibox/internal/provision"
)

// provisionFlags holds the flag values for the provision command.
type provisionFlags struct {
	// only restricts the run to the named sections.
	only []string

	// skip excludes the named sections from the run.
	skip []string

	// dryRun lists the selected sections without executing anything.
	dryRun bool

	// failFast stops the run at the first failing section.
	failFast bool

	// configPath is an explicit profile file. Empty means search the
	// standard locations and fall back to the built-in defaults.
	configPath string
}

// NewProvisionCommand creates the "provision" cobra command.
func NewProvisionCommand() *cobra.Command {
	flags := &provisionFlags{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Run the provisioning sections",
		Long: `Run the provisioning sections in order. Sections are safe to repeat:
already-applied work (installed packages, existing dotfiles, a running
toolbox container) is detected and left alone.

Examples:
  kalibox provision
  kalibox provision --only shell,desktop
  kalibox provision --skip system-update --fail-fast
  kalibox provision --config kalibox.jsonc --dry-run`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.only, "only", nil, "Run only the named sections (comma-separated)")
	cmd.Flags().StringSliceVar(&flags.skip, "skip", nil, "Skip the named sections (comma-separated)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "List the selected sections without running them")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "Stop at the first failing section")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Provisioning profile file (.jsonc or .yml)")

	return cmd
}

// runProvision is the main logic function for the provision command.
func runProvision(ctx context.Context, flags *provisionFlags) error {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return err
	}
	VerboseLog("Profile resolved (toolbox %q, image %q)", cfg.Toolbox.Name, cfg.Toolbox.Image)

	runner := provision.NewRunner(cfg, provision.Logf(VerboseLog))

	sections, err := provision.Filter(runner.Sections(), flags.only, flags.skip)
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return model.NewCLIError(model.ExitConfigError, "no sections selected")
	}

	if flags.dryRun {
		printDryRun(sections)
		return nil
	}

	results := runner.Run(ctx, sections, flags.failFast)
	printProvisionResults(results)

	if provision.Failed(results) {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("%d of %d sections failed", countFailed(results), len(results)))
	}
	return nil
}

// countFailed counts the failed results for the summary line.
func countFailed(results []model.SectionResult) int {
	n := 0
	for _, res := range results {
		if res.Status == model.StatusFailed {
			n++
		}
	}
	return n
}

// printDryRun lists the selected sections in run order.
func printDryRun(sections []provision.Section) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"dryRun":   true,
			"sections": provision.Names(sections),
		}, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Would run %d section(s):\n", len(sections))
	for _, s := range sections {
		fmt.Printf("  %-16s %s\n", s.Name, s.Summary)
	}
}

// printProvisionResults outputs the run report in text or JSON format.
func printProvisionResults(results []model.SectionResult) {
	if IsJSONOutput() {
		printProvisionResultsJSON(results)
	} else {
		printProvisionResultsText(results)
	}
}

// printProvisionResultsJSON outputs the run report as structured JSON.
func printProvisionResultsJSON(results []model.SectionResult) {
	data, _ := json.MarshalIndent(map[string]interface{}{
		"sections": results,
		"failed":   provision.Failed(results),
	}, "", "  ")
	fmt.Println(string(data))
}

// printProvisionResultsText outputs the run report as a readable list,
// one line per section.
func printProvisionResultsText(results []model.SectionResult) {
	for _, res := range results {
		fmt.Println(FormatSectionLine(res))
	}
}

// FormatSectionLine renders one section result as a text report line.
// Exported for direct testing of the output format.
func FormatSectionLine(res model.SectionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %s", res.Name, res.Status)
	if res.Status == model.StatusOK && res.Duration > 0 {
		fmt.Fprintf(&b, " (%s)", res.Duration.Round(10*time.Millisecond))
	}
	if res.Message != "" {
		fmt.Fprintf(&b, ": %s", res.Message)
	}
	return b.String()
}
