// Package pkgmgr wraps the Debian package tooling (apt-get, dpkg-query)
// and snapd (snap) behind small runners.
//
// Commands are built by pure argument-builder functions so the exact
// command lines are unit-testable, and executed capture-stderr style:
// on failure the trimmed stderr is folded into the returned CLIError.
// When the process is not running as root, invocations that mutate the
// system are prefixed with sudo.
package pkgmgr
