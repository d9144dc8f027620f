// Package model defines the domain types shared across the kalibox CLI:
// exit codes, the CLIError type that carries them, provisioning section
// results, and the runtime description of the managed toolbox container.
//
// Kalibox persists nothing of its own. Everything in ToolboxInfo is
// reconstructed from Docker container labels and the Docker API at
// query time; section results live only for the duration of a run.
package model
