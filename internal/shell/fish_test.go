package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigBlock verifies the managed block carries its markers and
// the greeting suppression.
func TestConfigBlock(t *testing.T) {
	block := ConfigBlock("bobthefish")

	assert.True(t, strings.HasPrefix(block, markerBegin+"\n"))
	assert.True(t, strings.HasSuffix(block, markerEnd+"\n"))
	assert.Contains(t, block, "set -g fish_greeting")
	assert.Contains(t, block, "bobthefish")

	// Without a theme the block still exists, just without theme lines.
	plain := ConfigBlock("")
	assert.NotContains(t, plain, "theme")
}

// TestEnsureConfigBlock_NewFile verifies the block is written into a
// file that does not exist yet, parent directories included.
func TestEnsureConfigBlock_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".config", "fish", "config.fish")
	block := ConfigBlock("bobthefish")

	changed, err := EnsureConfigBlock(path, block)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, block, string(got))
}

// TestEnsureConfigBlock_AppendsToUserContent verifies user lines are
// preserved and the block lands after them.
func TestEnsureConfigBlock_AppendsToUserContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.fish")
	require.NoError(t, os.WriteFile(path, []byte("alias ll 'ls -la'"), 0o644))

	block := ConfigBlock("")
	changed, err := EnsureConfigBlock(path, block)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "alias ll 'ls -la'\n"))
	assert.Contains(t, string(got), markerBegin)
}

// TestEnsureConfigBlock_ReplacesExistingBlock verifies re-running does
// not duplicate the block and updates its content in place.
func TestEnsureConfigBlock_ReplacesExistingBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.fish")

	_, err := EnsureConfigBlock(path, ConfigBlock("agnoster"))
	require.NoError(t, err)

	// Re-provision with a different theme.
	changed, err := EnsureConfigBlock(path, ConfigBlock("bobthefish"))
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(string(got), markerBegin), "block must not be duplicated")
	assert.Contains(t, string(got), "bobthefish")
	assert.NotContains(t, string(got), "agnoster")
}

// TestEnsureConfigBlock_Unchanged verifies a no-op re-run reports no
// change and leaves the file byte-identical.
func TestEnsureConfigBlock_Unchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.fish")
	block := ConfigBlock("bobthefish")

	_, err := EnsureConfigBlock(path, block)
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err := EnsureConfigBlock(path, block)
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// TestSpliceBlock_PreservesTrailingContent verifies user content after
// the managed block survives a replacement.
func TestSpliceBlock_PreservesTrailingContent(t *testing.T) {
	content := "before\n" + ConfigBlock("old") + "after\n"
	updated := spliceBlock(content, ConfigBlock("new"))

	assert.True(t, strings.HasPrefix(updated, "before\n"))
	assert.True(t, strings.HasSuffix(updated, "after\n"))
	assert.Contains(t, updated, "new")
	assert.NotContains(t, updated, "old")
}
