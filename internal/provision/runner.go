package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/mmr-tortoise/kalibox/internal/config"
	"github.com/mmr-tortoise/kalibox/internal/model"
	"github.com/mmr-tortoise/kalibox/internal/pkgmgr"
)

// Section is one unit of provisioning work. Sections are registered in
// a fixed order; Run never reorders them.
type Section struct {
	// Name identifies the section for --only/--skip and in the results.
	Name string

	// Summary is the one-line description shown while the section runs.
	Summary string

	// Run performs the work. A returned error marks the section failed.
	Run func(ctx context.Context) error
}

// Logf receives progress messages during a run. The cli package plugs
// its verbose logger in here.
type Logf func(format string, args ...any)

// Runner executes provisioning sections against one profile.
type Runner struct {
	cfg  *config.Config
	apt  *pkgmgr.Apt
	snap *pkgmgr.Snap
	logf Logf
}

// NewRunner creates a Runner for the given profile. A nil logf
// discards progress messages.
func NewRunner(cfg *config.Config, logf Logf) *Runner {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Runner{
		cfg:  cfg,
		apt:  pkgmgr.NewApt(),
		snap: pkgmgr.NewSnap(),
		logf: logf,
	}
}

// Sections returns the full section list in execution order.
func (r *Runner) Sections() []Section {
	return []Section{
		{
			Name:    "system-update",
			Summary: "refresh package lists and upgrade the system",
			Run:     r.runSystemUpdate,
		},
		{
			Name:    "telemetry",
			Summary: "purge telemetry and crash-reporting packages",
			Run:     r.runTelemetry,
		},
		{
			Name:    "shell",
			Summary: "install fish, Oh My Fish and the shell theme",
			Run:     r.runShell,
		},
		{
			Name:    "desktop",
			Summary: "install Sway, clone dotfiles and set the wallpaper",
			Run:     r.runDesktop,
		},
		{
			Name:    "kali-container",
			Summary: "install Docker and start the Kali toolbox container",
			Run:     r.runKaliContainer,
		},
		{
			Name:    "xhost-unit",
			Summary: "install the xhost systemd user unit",
			Run:     r.runXhostUnit,
		},
		{
			Name:    "wrapper",
			Summary: "install the kali wrapper script",
			Run:     r.runWrapper,
		},
		{
			Name:    "kali-tools",
			Summary: "install the tool set inside the toolbox container",
			Run:     r.runKaliTools,
		},
	}
}

// Names returns the section names in execution order.
func Names(sections []Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

// Filter applies --only/--skip selection while preserving the registry
// order. Unknown names in either list are an error so typos do not
// silently provision nothing (or everything).
func Filter(sections []Section, only, skip []string) ([]Section, error) {
	known := make(map[string]bool, len(sections))
	for _, s := range sections {
		known[s.Name] = true
	}
	for _, name := range append(append([]string{}, only...), skip...) {
		if !known[name] {
			return nil, model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("unknown section %q (known sections: %v)", name, Names(sections)))
		}
	}

	onlySet := make(map[string]bool, len(only))
	for _, name := range only {
		onlySet[name] = true
	}
	skipSet := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipSet[name] = true
	}

	selected := make([]Section, 0, len(sections))
	for _, s := range sections {
		if len(onlySet) > 0 && !onlySet[s.Name] {
			continue
		}
		if skipSet[s.Name] {
			continue
		}
		selected = append(selected, s)
	}
	return selected, nil
}

// Run executes the sections in order and collects one result each. A
// failing section is recorded and the run continues, unless failFast is
// set, in which case the remaining sections are recorded as skipped.
func (r *Runner) Run(ctx context.Context, sections []Section, failFast bool) []model.SectionResult {
	results := make([]model.SectionResult, 0, len(sections))

	aborted := false
	for _, section := range sections {
		if aborted {
			results = append(results, model.SectionResult{
				Name:    section.Name,
				Status:  model.StatusSkipped,
				Message: "skipped after earlier failure",
			})
			continue
		}

		r.logf("section %s: %s", section.Name, section.Summary)
		start := time.Now()
		err := section.Run(ctx)
		elapsed := time.Since(start)

		if err != nil {
			r.logf("section %s failed after %s: %v", section.Name, elapsed.Round(time.Millisecond), err)
			results = append(results, model.SectionResult{
				Name:     section.Name,
				Status:   model.StatusFailed,
				Message:  err.Error(),
				Duration: elapsed,
			})
			if failFast {
				aborted = true
			}
			continue
		}

		r.logf("section %s done in %s", section.Name, elapsed.Round(time.Millisecond))
		results = append(results, model.SectionResult{
			Name:     section.Name,
			Status:   model.StatusOK,
			Duration: elapsed,
		})
	}

	return results
}

// Failed reports whether any result in the run failed.
func Failed(results []model.SectionResult) bool {
	for _, res := range results {
		if res.Status == model.StatusFailed {
			return true
		}
	}
	return false
}
