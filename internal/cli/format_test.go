package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// TestFormatSectionLine verifies the text report line for each status.
func TestFormatSectionLine(t *testing.T) {
	ok := model.SectionResult{
		Name:     "shell",
		Status:   model.StatusOK,
		Duration: 1500 * time.Millisecond,
	}
	line := FormatSectionLine(ok)
	assert.Contains(t, line, "shell")
	assert.Contains(t, line, "ok")
	assert.Contains(t, line, "1.5s")

	failed := model.SectionResult{
		Name:    "kali-tools",
		Status:  model.StatusFailed,
		Message: "apt-get install failed",
	}
	line = FormatSectionLine(failed)
	assert.Contains(t, line, "kali-tools")
	assert.Contains(t, line, "failed")
	assert.Contains(t, line, "apt-get install failed")

	skipped := model.SectionResult{
		Name:    "wrapper",
		Status:  model.StatusSkipped,
		Message: "skipped after earlier failure",
	}
	line = FormatSectionLine(skipped)
	assert.Contains(t, line, "skipped")
	assert.NotContains(t, line, "(0s)", "skipped sections have no duration")
}

// TestFormatStatusLines covers the three toolbox states of the report.
func TestFormatStatusLines(t *testing.T) {
	// Docker daemon down.
	down := Status{DockerError: "cannot connect to the Docker daemon"}
	lines := FormatStatusLines("kali", down)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Docker unreachable")

	// Daemon up, no container yet.
	missing := Status{DockerReachable: true, WrapperPath: "/usr/local/bin/kali"}
	lines = FormatStatusLines("kali", missing)
	assert.Contains(t, lines[0], "kali not created")
	assert.Contains(t, lines[1], "installed=false")
	assert.Contains(t, lines[2], "/usr/local/bin/kali")

	// Fully provisioned.
	up := Status{
		DockerReachable: true,
		Toolbox: &model.ToolboxInfo{
			ContainerName: "kali",
			State:         "running",
			Image:         "kalilinux/kali-rolling",
			HostMount:     "/mnt/host",
		},
		UnitInstalled:    true,
		UnitEnabled:      true,
		WrapperInstalled: true,
		WrapperPath:      "/usr/local/bin/kali",
	}
	lines = FormatStatusLines("kali", up)
	assert.Contains(t, lines[0], "running")
	assert.Contains(t, lines[0], "kalilinux/kali-rolling")
	assert.Contains(t, lines[0], "/mnt/host")
	assert.Contains(t, lines[1], "installed=true enabled=true")
	assert.Contains(t, lines[2], "installed=true")
}
