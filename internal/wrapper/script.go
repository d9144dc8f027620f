// Package wrapper generates the /usr/local/bin/kali convenience script
// and implements its argument dispatch in Go.
//
// The installed script is self-contained POSIX sh so it keeps working
// if the kalibox binary moves or is removed. The same dispatch rules
// also exist as the Dispatch function, which backs the `kalibox kali`
// subcommand and is where the behavior is unit-tested:
//
//   - no arguments: interactive shell inside the container, working
//     directory mapped to <mount>/<host cwd>
//   - first argument -h or --help: print usage, exit 0, touch nothing
//   - anything else: forward all arguments verbatim as one command
//     inside the container, same working directory mapping
package wrapper

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"text/template"
)

// Params carries the values interpolated into the script and the exec
// command lines.
type Params struct {
	// ContainerName is the toolbox container the script targets.
	ContainerName string

	// MountPrefix is the path inside the container where the host root
	// filesystem is mounted (e.g. "/mnt/host").
	MountPrefix string
}

// Action is the result of dispatching wrapper arguments.
type Action int

const (
	// ActionShell opens an interactive shell inside the container.
	ActionShell Action = iota

	// ActionHelp prints usage and exits 0 without touching the container.
	ActionHelp

	// ActionExec forwards the arguments as a command inside the container.
	ActionExec
)

// Dispatch classifies a wrapper argument list. Only the first argument
// selects help; `kali grep --help` must forward to the container.
func Dispatch(args []string) Action {
	if len(args) == 0 {
		return ActionShell
	}
	if args[0] == "-h" || args[0] == "--help" {
		return ActionHelp
	}
	return ActionExec
}

// Workdir maps a host working directory into the container:
// MountPrefix + hostCwd. path.Join is not used because the host cwd is
// already clean and absolute, and the prefix must survive verbatim.
func Workdir(mountPrefix, hostCwd string) string {
	return mountPrefix + hostCwd
}

// ExecArgs builds the `docker` argument vector for running args inside
// the container from the given host working directory. With an empty
// args list it opens an interactive bash.
func ExecArgs(p Params, hostCwd string, args []string) []string {
	docker := []string{"exec", "-it", "-w", Workdir(p.MountPrefix, hostCwd), p.ContainerName}
	if len(args) == 0 {
		return append(docker, "/bin/bash")
	}
	return append(docker, args...)
}

// Usage returns the help text, shared between the generated script and
// the kali subcommand.
func Usage(p Params) string {
	return fmt.Sprintf(`Usage: kali [command [args...]]

Without arguments, opens an interactive shell inside the %[1]q container.
With arguments, runs them as a single command inside the container.
The host filesystem is available under %[2]s; the current directory is
mapped to %[2]s$PWD.

Options:
  -h, --help   Show this help and exit.
`, p.ContainerName, p.MountPrefix)
}

// scriptTemplate is the installed wrapper. Dispatch order matches the
// Go implementation: empty argument list first, then the help check on
// the first argument, then verbatim forwarding.
var scriptTemplate = template.Must(template.New("wrapper").Parse(
	`#!/bin/sh
# Auto-generated by kalibox. DO NOT EDIT.
# Runs commands inside the {{.ContainerName}} toolbox container with the
# host working directory mapped under {{.MountPrefix}}.

usage() {
    cat <<EOF
{{.Usage}}EOF
}

if [ "$#" -eq 0 ]; then
    exec docker exec -it -w "{{.MountPrefix}}$PWD" {{.ContainerName}} /bin/bash
fi

case "$1" in
-h|--help)
    usage
    exit 0
    ;;
esac

exec docker exec -it -w "{{.MountPrefix}}$PWD" {{.ContainerName}} "$@"
`))

// Script renders the wrapper script for the given parameters.
func Script(p Params) ([]byte, error) {
	data := struct {
		ContainerName string
		MountPrefix   string
		Usage         string
	}{
		ContainerName: p.ContainerName,
		MountPrefix:   p.MountPrefix,
		Usage:         Usage(p),
	}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render wrapper script: %w", err)
	}
	return buf.Bytes(), nil
}

// Install writes the rendered script to dest with execute permissions.
// Writing to /usr/local/bin usually needs root; the provision command
// is expected to run with sudo available and the error message says so.
func Install(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0o755); err != nil {
		return fmt.Errorf("failed to install wrapper at %s (are you missing root privileges?): %w", dest, err)
	}
	return nil
}

// Installed reports whether an executable file exists at dest.
func Installed(dest string) bool {
	info, err := os.Stat(dest)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}

// Name returns the command name of the wrapper, for display.
func Name(dest string) string {
	return path.Base(filepath.ToSlash(dest))
}
