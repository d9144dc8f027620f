// Package main is the entry point for the kalibox CLI. All real work
// happens in internal/cli; this file only injects build metadata and
// hands off to the root command.
package main

import (
	"github.com/mmr-tortoise/kalibox/internal/cli"
)

// Set via ldflags at release time. The dev defaults show up in
// --version output for local builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
