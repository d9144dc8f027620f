package docker

import (
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContainerName verifies the leading "/" the Docker API prepends is
// stripped, and the empty case is safe.
func TestContainerName(t *testing.T) {
	assert.Equal(t, "kali", containerName(types.Container{Names: []string{"/kali"}}))
	assert.Equal(t, "", containerName(types.Container{}))
}

// TestToolboxFromSummary verifies label and runtime fields are merged.
func TestToolboxFromSummary(t *testing.T) {
	createdAt := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)
	summary := types.Container{
		ID:     "abc123",
		Names:  []string{"/kali"},
		State:  "running",
		Labels: BuildLabels("kalilinux/kali-rolling", "/mnt/host", createdAt),
	}

	info, err := toolboxFromSummary(summary)
	require.NoError(t, err)

	assert.Equal(t, "abc123", info.ContainerID)
	assert.Equal(t, "kali", info.ContainerName)
	assert.Equal(t, "running", info.State)
	assert.Equal(t, "kalilinux/kali-rolling", info.Image)
	assert.Equal(t, "/mnt/host", info.HostMount)
	assert.True(t, info.IsRunning())
}

// TestToolboxFromSummary_BadLabels verifies malformed labels surface as
// an error naming the container.
func TestToolboxFromSummary_BadLabels(t *testing.T) {
	summary := types.Container{
		Names:  []string{"/kali"},
		Labels: map[string]string{LabelManagedBy: ManagedByValue},
	}

	_, err := toolboxFromSummary(summary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"kali"`)
}

// TestBuildBinds pins the two bind mounts the toolbox is created with.
func TestBuildBinds(t *testing.T) {
	spec := ToolboxSpec{
		HostMount: "/mnt/host",
		X11Socket: "/tmp/.X11-unix",
	}

	assert.Equal(t, []string{
		"/:/mnt/host",
		"/tmp/.X11-unix:/tmp/.X11-unix",
	}, buildBinds(spec))
}

// TestBuildEnv verifies the DISPLAY passthrough and its default.
func TestBuildEnv(t *testing.T) {
	assert.Equal(t, []string{"DISPLAY=:1"}, buildEnv(":1"))
	assert.Equal(t, []string{"DISPLAY=:0"}, buildEnv(""), "headless sessions default to :0")
}
