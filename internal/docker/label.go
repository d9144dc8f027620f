package docker

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// Label keys recording toolbox metadata on the container. Labels are
// the only state kalibox keeps about the container; status commands
// reconstruct everything from them plus the Docker API.
const (
	// LabelPrefix namespaces all kalibox labels away from labels set
	// by other tools.
	LabelPrefix = "kalibox."

	// LabelManagedBy identifies containers created by kalibox and is
	// the filter key for discovery.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelRole records what the container is for. Currently always
	// RoleToolbox.
	LabelRole = LabelPrefix + "role"

	// LabelImage records the image reference the container was created
	// from. Docker's own image field can drift to an ID after the tag
	// moves, so the original reference is kept here.
	LabelImage = LabelPrefix + "image"

	// LabelHostMount records where inside the container the host root
	// filesystem is mounted.
	LabelHostMount = LabelPrefix + "host-mount"

	// LabelCreatedAt records the RFC3339 UTC creation timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the value of LabelManagedBy on every container
// created by this CLI.
const ManagedByValue = "kalibox"

// RoleToolbox is the LabelRole value for the Kali toolbox container.
const RoleToolbox = "toolbox"

// BuildLabels constructs the label map applied to the toolbox
// container at creation time.
func BuildLabels(image, hostMount string, createdAt time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelRole:      RoleToolbox,
		LabelImage:     image,
		LabelHostMount: hostMount,
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
}

// ParseLabels reconstructs the label-backed fields of a ToolboxInfo
// from a container's label map. Name, ID and State are runtime values
// and are filled in by the caller from the container listing.
func ParseLabels(labels map[string]string) (*model.ToolboxInfo, error) {
	required := []string{LabelManagedBy, LabelRole, LabelImage, LabelHostMount, LabelCreatedAt}

	var missing []string
	for _, key := range required {
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf(
			"label %s has unexpected value %q (expected %q)",
			LabelManagedBy, labels[LabelManagedBy], ManagedByValue,
		)
	}

	createdAt, err := time.Parse(time.RFC3339, labels[LabelCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelCreatedAt, err)
	}

	return &model.ToolboxInfo{
		Image:     labels[LabelImage],
		HostMount: labels[LabelHostMount],
		CreatedAt: createdAt,
		Labels:    labels,
	}, nil
}
