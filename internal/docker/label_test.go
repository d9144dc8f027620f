package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildLabels verifies the label map written onto a new toolbox
// container.
func TestBuildLabels(t *testing.T) {
	createdAt := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)

	labels := BuildLabels("kalilinux/kali-rolling", "/mnt/host", createdAt)

	assert.Equal(t, ManagedByValue, labels[LabelManagedBy])
	assert.Equal(t, RoleToolbox, labels[LabelRole])
	assert.Equal(t, "kalilinux/kali-rolling", labels[LabelImage])
	assert.Equal(t, "/mnt/host", labels[LabelHostMount])
	assert.Equal(t, "2026-08-23T09:30:00Z", labels[LabelCreatedAt])
	assert.Len(t, labels, 5)
}

// TestBuildLabels_NormalizesToUTC verifies timestamps are stored in UTC
// regardless of the host timezone.
func TestBuildLabels_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	createdAt := time.Date(2026, 8, 23, 11, 30, 0, 0, loc)

	labels := BuildLabels("img", "/mnt/host", createdAt)
	assert.Equal(t, "2026-08-23T09:30:00Z", labels[LabelCreatedAt])
}

// TestParseLabels verifies the round trip from BuildLabels.
func TestParseLabels(t *testing.T) {
	createdAt := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)
	labels := BuildLabels("kalilinux/kali-rolling", "/mnt/host", createdAt)

	info, err := ParseLabels(labels)
	require.NoError(t, err)

	assert.Equal(t, "kalilinux/kali-rolling", info.Image)
	assert.Equal(t, "/mnt/host", info.HostMount)
	assert.Equal(t, createdAt, info.CreatedAt)
	assert.Equal(t, labels, info.Labels)
}

// TestParseLabels_MissingKeys verifies all missing labels are named in
// the error.
func TestParseLabels_MissingKeys(t *testing.T) {
	_, err := ParseLabels(map[string]string{
		LabelManagedBy: ManagedByValue,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), LabelImage)
	assert.Contains(t, err.Error(), LabelCreatedAt)
}

// TestParseLabels_WrongManagedBy verifies foreign containers are
// rejected even when they carry the full label set.
func TestParseLabels_WrongManagedBy(t *testing.T) {
	labels := BuildLabels("img", "/mnt/host", time.Now())
	labels[LabelManagedBy] = "someone-else"

	_, err := ParseLabels(labels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected value")
}

// TestParseLabels_BadTimestamp verifies a malformed created-at label
// is an error rather than a zero time.
func TestParseLabels_BadTimestamp(t *testing.T) {
	labels := BuildLabels("img", "/mnt/host", time.Now())
	labels[LabelCreatedAt] = "yesterday"

	_, err := ParseLabels(labels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), LabelCreatedAt)
}
