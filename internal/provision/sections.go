package provision

import (
	"context"
	"fmt"
	"os"

	"github.com/mmr-tortoise/kalibox/internal/desktop"
	"github.com/mmr-tortoise/kalibox/internal/docker"
	"github.com/mmr-tortoise/kalibox/internal/fetch"
	"github.com/mmr-tortoise/kalibox/internal/model"
	"github.com/mmr-tortoise/kalibox/internal/shell"
	"github.com/mmr-tortoise/kalibox/internal/systemd"
	"github.com/mmr-tortoise/kalibox/internal/wrapper"
)

// runSystemUpdate refreshes apt and upgrades the system. Snaps are
// refreshed too when snapd is present; its absence is not a failure.
func (r *Runner) runSystemUpdate(ctx context.Context) error {
	if err := r.apt.Update(ctx); err != nil {
		return err
	}
	if err := r.apt.Upgrade(ctx); err != nil {
		return err
	}

	if r.snap.Available() {
		return r.snap.Refresh(ctx)
	}
	r.logf("snap not found, skipping snap refresh")
	return nil
}

// runTelemetry purges the configured telemetry packages. Packages that
// were never installed are skipped inside Purge.
func (r *Runner) runTelemetry(ctx context.Context) error {
	if len(r.cfg.Packages.Telemetry) == 0 {
		return nil
	}
	return r.apt.Purge(ctx, r.cfg.Packages.Telemetry...)
}

// runShell installs fish, runs the Oh My Fish installer, activates the
// theme, maintains the managed config.fish block and switches the login
// shell.
func (r *Runner) runShell(ctx context.Context) error {
	if err := r.apt.Install(ctx, r.cfg.Packages.Shell...); err != nil {
		return err
	}

	omfDir, err := omfInstallDir()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(omfDir); statErr == nil {
		r.logf("Oh My Fish already installed at %s", omfDir)
	} else {
		installer, err := fetch.DownloadTemp(ctx, r.cfg.Shell.OMFInstallerURL, "omf-install-*.fish")
		if err != nil {
			return err
		}
		defer func() { _ = os.Remove(installer) }()

		if err := shell.InstallOMF(ctx, installer); err != nil {
			return err
		}
	}

	if r.cfg.Shell.Theme != "" {
		if err := shell.InstallTheme(ctx, r.cfg.Shell.Theme); err != nil {
			return err
		}
	}

	configPath, err := shell.ConfigPath()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to locate fish config", err)
	}
	changed, err := shell.EnsureConfigBlock(configPath, shell.ConfigBlock(r.cfg.Shell.Theme))
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to update fish config", err)
	}
	if changed {
		r.logf("updated managed block in %s", configPath)
	}

	if r.cfg.Shell.LoginShell != "" {
		return shell.SetLoginShell(ctx, r.cfg.Shell.LoginShell)
	}
	return nil
}

// omfInstallDir returns where Oh My Fish installs itself, honoring
// XDG_DATA_HOME the way the installer does.
func omfInstallDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg + "/omf", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "cannot resolve home directory", err)
	}
	return home + "/.local/share/omf", nil
}

// runDesktop installs the Sway package set, clones the dotfiles and
// applies the wallpaper.
func (r *Runner) runDesktop(ctx context.Context) error {
	if err := r.apt.Install(ctx, r.cfg.Packages.Desktop...); err != nil {
		return err
	}

	if r.cfg.Desktop.DotfilesRepo != "" {
		cloned, err := desktop.CloneDotfiles(ctx, r.cfg.Desktop.DotfilesRepo, r.cfg.Desktop.DotfilesDir)
		if err != nil {
			return err
		}
		if !cloned {
			r.logf("dotfiles already present at %s", r.cfg.Desktop.DotfilesDir)
		}
	}

	if r.cfg.Desktop.WallpaperURL == "" {
		return nil
	}
	if _, err := fetch.Download(ctx, r.cfg.Desktop.WallpaperURL, r.cfg.Desktop.WallpaperPath); err != nil {
		return err
	}
	return desktop.ApplyWallpaper(ctx, r.cfg.Desktop.WallpaperPath)
}

// runKaliContainer installs Docker, adds the invoking user to the
// docker group and brings the toolbox container up.
func (r *Runner) runKaliContainer(ctx context.Context) error {
	if err := r.apt.Install(ctx, r.cfg.Packages.Docker...); err != nil {
		return err
	}

	added, err := EnsureDockerGroup(ctx)
	if err != nil {
		return err
	}
	if added {
		r.logf("added current user to the docker group; socket access without sudo needs a re-login")
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	id, created, err := docker.EnsureToolbox(ctx, cli, docker.ToolboxSpec{
		Name:      r.cfg.Toolbox.Name,
		Image:     r.cfg.Toolbox.Image,
		HostMount: r.cfg.Toolbox.HostMount,
		X11Socket: r.cfg.Toolbox.X11Socket,
		Display:   docker.DisplayFromEnv(),
	})
	if err != nil {
		return err
	}

	if created {
		r.logf("created toolbox container %s (%s)", r.cfg.Toolbox.Name, id)
	} else {
		r.logf("toolbox container %s already exists (%s)", r.cfg.Toolbox.Name, id)
	}
	return nil
}

// runXhostUnit renders and installs the xhost systemd user unit.
func (r *Runner) runXhostUnit(ctx context.Context) error {
	unit := systemd.XhostUnit(r.cfg.Unit.XhostPath)
	data, err := unit.Render()
	if err != nil {
		return model.WrapCLIError(model.ExitSystemdFailed, "failed to render unit file", err)
	}
	return systemd.Install(ctx, r.cfg.Unit.Name, data)
}

// runWrapper renders and installs the wrapper script.
func (r *Runner) runWrapper(_ context.Context) error {
	data, err := wrapper.Script(wrapper.Params{
		ContainerName: r.cfg.Toolbox.Name,
		MountPrefix:   r.cfg.Toolbox.HostMount,
	})
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render wrapper script", err)
	}
	return wrapper.Install(r.cfg.Wrapper.Path, data)
}

// runKaliTools installs the configured tool packages inside the running
// toolbox container via the Docker exec API.
func (r *Runner) runKaliTools(ctx context.Context) error {
	if len(r.cfg.Toolbox.Tools) == 0 {
		return nil
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	info, err := docker.FindToolbox(ctx, cli, r.cfg.Toolbox.Name)
	if err != nil {
		return err
	}
	if info == nil {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("toolbox container %q does not exist; run the kali-container section first", r.cfg.Toolbox.Name))
	}
	if !info.IsRunning() {
		if err := docker.StartContainer(ctx, cli, info.ContainerID); err != nil {
			return err
		}
	}

	if _, err := docker.Exec(ctx, cli, info.ContainerID, []string{"apt-get", "update"}); err != nil {
		return err
	}

	install := append([]string{"apt-get", "install", "-y"}, r.cfg.Toolbox.Tools...)
	if _, err := docker.Exec(ctx, cli, info.ContainerID, install); err != nil {
		return err
	}

	r.logf("installed %d tool packages in %s", len(r.cfg.Toolbox.Tools), r.cfg.Toolbox.Name)
	return nil
}
