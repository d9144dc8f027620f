package systemd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestXhostUnit verifies the unit definition fields.
func TestXhostUnit(t *testing.T) {
	u := XhostUnit("/usr/bin/xhost")

	assert.Equal(t, "oneshot", u.Type)
	assert.Equal(t, "/usr/bin/xhost +SI:localuser:root", u.ExecStart)
	assert.Equal(t, "default.target", u.WantedBy)
	assert.NotEmpty(t, u.Description)
}

// TestUnit_Render verifies the rendered unit file has the three
// systemd sections in order with the expected directives.
func TestUnit_Render(t *testing.T) {
	data, err := XhostUnit("/usr/bin/xhost").Render()
	require.NoError(t, err)

	text := string(data)

	assert.True(t, strings.HasPrefix(text, "# Auto-generated by kalibox"))
	assert.Contains(t, text, "[Unit]\nDescription=Grant root access to the X11 display\n")
	assert.Contains(t, text, "[Service]\nType=oneshot\nExecStart=/usr/bin/xhost +SI:localuser:root\n")
	assert.Contains(t, text, "[Install]\nWantedBy=default.target\n")

	// Section order matters for readability, pin it.
	unitIdx := strings.Index(text, "[Unit]")
	serviceIdx := strings.Index(text, "[Service]")
	installIdx := strings.Index(text, "[Install]")
	assert.True(t, unitIdx < serviceIdx && serviceIdx < installIdx)
}

// TestUserUnitPath verifies the user unit directory layout.
func TestUserUnitPath(t *testing.T) {
	path, err := UserUnitPath("xhost.service")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, "/.config/systemd/user/xhost.service"))
}
