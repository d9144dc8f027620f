package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// Apt drives apt-get and dpkg-query on the host.
type Apt struct {
	// useSudo prefixes mutating commands with sudo. Detected from the
	// effective UID by NewApt; overridable in tests.
	useSudo bool
}

// NewApt creates an Apt runner. Sudo is used unless the process is
// already running as root.
func NewApt() *Apt {
	return &Apt{useSudo: os.Geteuid() != 0}
}

// UpdateArgs returns the apt-get arguments for refreshing package lists.
func UpdateArgs() []string {
	return []string{"update"}
}

// UpgradeArgs returns the apt-get arguments for a full non-interactive
// upgrade. full-upgrade (rather than upgrade) matches what a desktop
// refresh wants: it may remove packages to complete the upgrade.
func UpgradeArgs() []string {
	return []string{"full-upgrade", "-y"}
}

// InstallArgs returns the apt-get arguments for installing packages.
func InstallArgs(packages []string) []string {
	return append([]string{"install", "-y"}, packages...)
}

// PurgeArgs returns the apt-get arguments for purging packages,
// configuration files included.
func PurgeArgs(packages []string) []string {
	return append([]string{"purge", "-y"}, packages...)
}

// Update refreshes the package lists.
func (a *Apt) Update(ctx context.Context) error {
	return a.run(ctx, UpdateArgs()...)
}

// Upgrade performs a full non-interactive upgrade.
func (a *Apt) Upgrade(ctx context.Context) error {
	return a.run(ctx, UpgradeArgs()...)
}

// Install installs the given packages. A nil or empty list is a no-op.
func (a *Apt) Install(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	return a.run(ctx, InstallArgs(packages)...)
}

// Purge removes the given packages together with their configuration.
// Packages that are not installed are filtered out first, so purging a
// telemetry list on a machine that never had some of them succeeds.
func (a *Apt) Purge(ctx context.Context, packages ...string) error {
	present := make([]string, 0, len(packages))
	for _, pkg := range packages {
		if a.Installed(ctx, pkg) {
			present = append(present, pkg)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return a.run(ctx, PurgeArgs(present)...)
}

// Installed reports whether a package is currently installed, using
// dpkg-query. Any query failure (including "package not found") counts
// as not installed.
func (a *Apt) Installed(ctx context.Context, pkg string) bool {
	cmd := exec.CommandContext(ctx, "dpkg-query", "-W", "-f", "${Status}", pkg)
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return parseDpkgStatus(string(output))
}

// parseDpkgStatus interprets the ${Status} field of dpkg-query output.
// An installed package reports "install ok installed"; removed-but-
// configured packages report "deinstall ok config-files".
func parseDpkgStatus(status string) bool {
	return strings.Contains(status, "install ok installed")
}

// run executes apt-get with the given arguments, non-interactively.
// Stderr is captured and folded into the error on failure.
func (a *Apt) run(ctx context.Context, args ...string) error {
	name, argv := a.command("apt-get", args)

	cmd := exec.CommandContext(ctx, name, argv...)
	// DEBIAN_FRONTEND suppresses debconf prompts; a provisioning run
	// has no terminal to answer them on.
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")

	var stderr strings.Builder
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("apt-get %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return model.WrapCLIError(model.ExitPackageManager, message, err)
	}
	return nil
}

// command prepends sudo when required and returns the binary name and
// argument vector to execute.
func (a *Apt) command(bin string, args []string) (string, []string) {
	if a.useSudo {
		return "sudo", append([]string{bin}, args...)
	}
	return bin, args
}
