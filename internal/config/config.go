package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// Config is the full provisioning profile. Zero values are filled from
// Default before a profile file is applied on top, so a profile only
// needs to state what it changes.
type Config struct {
	// Packages lists the apt package sets each section operates on.
	Packages PackagesConfig `json:"packages" yaml:"packages"`

	// Shell configures the fish / Oh My Fish setup.
	Shell ShellConfig `json:"shell" yaml:"shell"`

	// Desktop configures the Sway desktop, dotfiles and wallpaper.
	Desktop DesktopConfig `json:"desktop" yaml:"desktop"`

	// Toolbox configures the Kali toolbox container.
	Toolbox ToolboxConfig `json:"toolbox" yaml:"toolbox"`

	// Wrapper configures the generated wrapper script.
	Wrapper WrapperConfig `json:"wrapper" yaml:"wrapper"`

	// Unit configures the xhost systemd user unit.
	Unit UnitConfig `json:"unit" yaml:"unit"`
}

// PackagesConfig holds the apt package sets.
type PackagesConfig struct {
	// Telemetry lists packages purged by the telemetry section.
	Telemetry []string `json:"telemetry" yaml:"telemetry"`

	// Shell lists packages installed before the fish/OMF setup.
	Shell []string `json:"shell" yaml:"shell"`

	// Desktop lists the Sway desktop package set.
	Desktop []string `json:"desktop" yaml:"desktop"`

	// Docker lists the packages providing the Docker engine.
	Docker []string `json:"docker" yaml:"docker"`
}

// ShellConfig holds the fish shell setup parameters.
type ShellConfig struct {
	// OMFInstallerURL is where the Oh My Fish installer is downloaded from.
	OMFInstallerURL string `json:"omfInstallerUrl" yaml:"omfInstallerUrl"`

	// Theme is the OMF theme to install and activate. Empty skips theming.
	Theme string `json:"theme" yaml:"theme"`

	// LoginShell is the shell path passed to chsh. Empty skips chsh.
	LoginShell string `json:"loginShell" yaml:"loginShell"`
}

// DesktopConfig holds the Sway desktop setup parameters.
type DesktopConfig struct {
	// DotfilesRepo is the Git URL cloned into DotfilesDir. Empty skips
	// the clone.
	DotfilesRepo string `json:"dotfilesRepo" yaml:"dotfilesRepo"`

	// DotfilesDir is the clone destination (default ~/.config/sway).
	DotfilesDir string `json:"dotfilesDir" yaml:"dotfilesDir"`

	// WallpaperURL is where the wallpaper image is downloaded from.
	// Empty skips the wallpaper step.
	WallpaperURL string `json:"wallpaperUrl" yaml:"wallpaperUrl"`

	// WallpaperPath is where the downloaded wallpaper is stored and
	// what gsettings points the GNOME background at.
	WallpaperPath string `json:"wallpaperPath" yaml:"wallpaperPath"`
}

// ToolboxConfig holds the Kali toolbox container parameters.
type ToolboxConfig struct {
	// Name is the Docker container name (default "kali"). The wrapper
	// script and the kali subcommand both address the container by it.
	Name string `json:"name" yaml:"name"`

	// Image is the container image reference (default kalilinux/kali-rolling).
	Image string `json:"image" yaml:"image"`

	// HostMount is the path inside the container where the host root
	// filesystem is bind-mounted (default /mnt/host).
	HostMount string `json:"hostMount" yaml:"hostMount"`

	// X11Socket is the host X11 socket directory bind-mounted into the
	// container at the same path (default /tmp/.X11-unix).
	X11Socket string `json:"x11Socket" yaml:"x11Socket"`

	// Tools lists packages installed inside the container by the
	// kali-tools section.
	Tools []string `json:"tools" yaml:"tools"`
}

// WrapperConfig holds the wrapper script parameters.
type WrapperConfig struct {
	// Path is where the executable wrapper is installed
	// (default /usr/local/bin/kali).
	Path string `json:"path" yaml:"path"`
}

// UnitConfig holds the systemd user unit parameters.
type UnitConfig struct {
	// Name is the unit file name (default "xhost.service").
	Name string `json:"name" yaml:"name"`

	// XhostPath is the xhost binary path used in ExecStart.
	XhostPath string `json:"xhostPath" yaml:"xhostPath"`
}

// Default returns the built-in provisioning profile. Paths under the
// user's home directory are resolved at call time.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve home directory: %w", err)
	}

	return &Config{
		Packages: PackagesConfig{
			Telemetry: []string{"popularity-contest", "ubuntu-report", "apport", "whoopsie"},
			Shell:     []string{"fish", "curl", "git"},
			Desktop: []string{
				"sway", "swaybg", "swaylock", "swayidle",
				"waybar", "wofi", "foot", "grim", "slurp",
			},
			Docker: []string{"docker.io"},
		},
		Shell: ShellConfig{
			OMFInstallerURL: "https://raw.githubusercontent.com/oh-my-fish/oh-my-fish/master/bin/install",
			Theme:           "bobthefish",
			LoginShell:      "/usr/bin/fish",
		},
		Desktop: DesktopConfig{
			DotfilesRepo:  "https://github.com/mmr-tortoise/sway-dotfiles.git",
			DotfilesDir:   filepath.Join(home, ".config", "sway"),
			WallpaperURL:  "https://raw.githubusercontent.com/mmr-tortoise/sway-dotfiles/master/wallpaper.jpg",
			WallpaperPath: filepath.Join(home, "Pictures", "wallpaper.jpg"),
		},
		Toolbox: ToolboxConfig{
			Name:      "kali",
			Image:     "kalilinux/kali-rolling",
			HostMount: "/mnt/host",
			X11Socket: "/tmp/.X11-unix",
			Tools: []string{
				"nmap", "netcat-traditional", "nikto",
				"sqlmap", "hydra", "wordlists",
			},
		},
		Wrapper: WrapperConfig{
			Path: "/usr/local/bin/kali",
		},
		Unit: UnitConfig{
			Name:      "xhost.service",
			XhostPath: "/usr/bin/xhost",
		},
	}, nil
}

// Load reads a profile file and applies it over the defaults. The
// format is chosen by extension: .jsonc/.json are parsed as JSONC,
// .yml/.yaml as YAML. Other extensions are rejected.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to build default profile", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("profile not found: %s", path), err)
		}
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read profile %s", path), err)
	}

	// Unmarshalling into the pre-filled default struct means the
	// profile only overrides the fields it mentions.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc", ".json":
		// Strip comments and trailing commas first. Profiles are meant
		// to be annotated by hand, so plain encoding/json is not enough.
		clean := jsonc.ToJSON(data)
		if err := json.Unmarshal(clean, cfg); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse profile %s", path), err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse profile %s", path), err)
		}
	default:
		return nil, model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unsupported profile format %q (expected .jsonc, .json, .yml or .yaml)", filepath.Ext(path)))
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid profile %s", path), err)
	}

	return cfg, nil
}

// Resolve returns the effective profile. An explicit path is loaded
// and must exist; otherwise the standard locations are searched and
// the defaults are returned when no profile file is found.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}

	candidates, err := candidatePaths()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to locate profile", err)
	}

	for _, path := range candidates {
		if _, statErr := os.Stat(path); statErr == nil {
			return Load(path)
		}
	}

	cfg, err := Default()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to build default profile", err)
	}
	return cfg, nil
}

// candidatePaths returns the profile search locations in priority
// order: working directory first, then the user config directory.
func candidatePaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return []string{
		"kalibox.jsonc",
		"kalibox.yml",
		filepath.Join(home, ".config", "kalibox", "config.jsonc"),
		filepath.Join(home, ".config", "kalibox", "config.yml"),
	}, nil
}

// Validate checks the fields that are interpolated into commands and
// generated files. Package lists may be empty (the sections then do
// nothing), but names and paths must be well formed.
func (c *Config) Validate() error {
	if err := model.ValidateContainerName(c.Toolbox.Name); err != nil {
		return fmt.Errorf("toolbox: %w", err)
	}
	if c.Toolbox.Image == "" {
		return fmt.Errorf("toolbox: image must not be empty")
	}
	if !filepath.IsAbs(c.Toolbox.HostMount) {
		return fmt.Errorf("toolbox: host mount %q must be an absolute path", c.Toolbox.HostMount)
	}
	if !filepath.IsAbs(c.Toolbox.X11Socket) {
		return fmt.Errorf("toolbox: X11 socket %q must be an absolute path", c.Toolbox.X11Socket)
	}
	if !filepath.IsAbs(c.Wrapper.Path) {
		return fmt.Errorf("wrapper: path %q must be an absolute path", c.Wrapper.Path)
	}
	if c.Unit.Name == "" || !strings.HasSuffix(c.Unit.Name, ".service") {
		return fmt.Errorf("unit: name %q must end in .service", c.Unit.Name)
	}
	return nil
}
