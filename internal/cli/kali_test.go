package cli

import (
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// TestKaliCommand_ForwardsArgsVerbatim verifies that flags of the
// forwarded command survive cobra: the command must receive every
// argument untouched, not just the positionals.
func TestKaliCommand_ForwardsArgsVerbatim(t *testing.T) {
	cases := [][]string{
		{"nmap", "-sV", "localhost"},
		{"grep", "--help"},
		{"ls", "-la", "--color=auto", "/mnt/host/etc"},
	}

	for _, args := range cases {
		cmd := NewKaliCommand()

		var got []string
		cmd.RunE = func(_ *cobra.Command, received []string) error {
			got = received
			return nil
		}

		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		assert.Equal(t, args, got)
	}
}

// TestSplitConfigFlag covers the manual --config extraction.
func TestSplitConfigFlag(t *testing.T) {
	// No flag: everything is the container command.
	path, rest, err := splitConfigFlag([]string{"nmap", "-sV", "localhost"})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, []string{"nmap", "-sV", "localhost"}, rest)

	// Leading --config with a separate value.
	path, rest, err = splitConfigFlag([]string{"--config", "kalibox.jsonc", "nmap", "-sV"})
	require.NoError(t, err)
	assert.Equal(t, "kalibox.jsonc", path)
	assert.Equal(t, []string{"nmap", "-sV"}, rest)

	// The = form and the shorthand.
	path, _, err = splitConfigFlag([]string{"--config=profile.yml"})
	require.NoError(t, err)
	assert.Equal(t, "profile.yml", path)

	path, rest, err = splitConfigFlag([]string{"-c", "profile.yml", "whoami"})
	require.NoError(t, err)
	assert.Equal(t, "profile.yml", path)
	assert.Equal(t, []string{"whoami"}, rest)

	// A --config after the command starts belongs to that command.
	path, rest, err = splitConfigFlag([]string{"mytool", "--config", "x"})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, []string{"mytool", "--config", "x"}, rest)

	// Missing value is a config error.
	_, _, err = splitConfigFlag([]string{"--config"})
	require.Error(t, err)
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestKaliCommand_HelpPrintsUsage verifies -h reaches the wrapper
// dispatch and prints the wrapper usage text, matching the installed
// script, rather than cobra's own help.
func TestKaliCommand_HelpPrintsUsage(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		out := captureStdout(t, func() {
			cmd := NewKaliCommand()
			cmd.SetArgs([]string{flag})
			require.NoError(t, cmd.Execute())
		})

		assert.Contains(t, out, "Usage: kali [command [args...]]")
		assert.NotContains(t, out, "kalibox", "wrapper usage, not cobra help")
	}
}

// captureStdout runs fn with os.Stdout redirected and returns what was
// written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
