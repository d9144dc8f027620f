package model

import (
	"fmt"
	"regexp"
	"time"
)

// SectionStatus represents the outcome of a single provisioning section.
type SectionStatus string

const (
	// StatusOK indicates the section completed without error.
	StatusOK SectionStatus = "ok"

	// StatusFailed indicates the section returned an error. Later
	// sections still run unless --fail-fast was given.
	StatusFailed SectionStatus = "failed"

	// StatusSkipped indicates the section was filtered out (--only or
	// --skip) or not reached because an earlier section failed under
	// --fail-fast.
	StatusSkipped SectionStatus = "skipped"
)

// String returns the string representation of SectionStatus.
// This satisfies fmt.Stringer for use in CLI output.
func (s SectionStatus) String() string {
	return string(s)
}

// IsValid checks whether the SectionStatus value is one of the
// predefined states.
func (s SectionStatus) IsValid() bool {
	switch s {
	case StatusOK, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// SectionResult records the outcome of one provisioning section within
// a run. A slice of these is the complete report of a provision command.
type SectionResult struct {
	// Name is the section identifier (e.g. "system-update", "wrapper").
	Name string `json:"name"`

	// Status is the section outcome.
	Status SectionStatus `json:"status"`

	// Message holds the error text when Status is StatusFailed,
	// or an optional informational note otherwise.
	Message string `json:"message,omitempty"`

	// Duration is how long the section ran. Zero for skipped sections.
	Duration time.Duration `json:"-"`
}

// ToolboxInfo holds runtime information about the managed toolbox
// container, fetched from the Docker API. The Image, HostMount and
// CreatedAt fields come from kalibox labels; the rest comes from the
// container listing itself.
type ToolboxInfo struct {
	// ContainerID is the Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the Docker container name (e.g. "kali").
	ContainerName string `json:"containerName"`

	// Image is the image reference recorded at creation time.
	Image string `json:"image"`

	// State is the Docker container state ("running", "exited", "created").
	State string `json:"state"`

	// HostMount is the path inside the container where the host
	// filesystem root is mounted (e.g. "/mnt/host").
	HostMount string `json:"hostMount"`

	// CreatedAt is the timestamp recorded when kalibox created the container.
	CreatedAt time.Time `json:"createdAt"`

	// Labels is the full label set on the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// IsRunning reports whether the container state is "running".
func (t *ToolboxInfo) IsRunning() bool {
	return t.State == "running"
}

// containerNameRegex matches valid Docker container names: the first
// character must be alphanumeric, the rest may add underscore, dot
// and hyphen. This mirrors Docker's own name validation.
var containerNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateContainerName checks that the given name is acceptable as a
// Docker container name. The wrapper script and the exec commands both
// interpolate this name, so it is validated once at config load time.
func ValidateContainerName(name string) error {
	if name == "" {
		return fmt.Errorf("container name must not be empty")
	}
	if !containerNameRegex.MatchString(name) {
		return fmt.Errorf("invalid container name %q: must start with an alphanumeric character and contain only [a-zA-Z0-9_.-]", name)
	}
	return nil
}

// ExitCode defines the CLI exit codes. These allow scripts and CI to
// programmatically determine why a kalibox command failed.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the provisioning profile could not be
	// loaded or failed validation.
	ExitConfigError ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitPackageManager indicates an apt, dpkg or snap invocation failed.
	ExitPackageManager ExitCode = 4

	// ExitDownloadFailed indicates a required file could not be downloaded.
	ExitDownloadFailed ExitCode = 5

	// ExitSystemdFailed indicates a systemctl operation failed.
	ExitSystemdFailed ExitCode = 6

	// ExitUserCancelled indicates the user declined an interactive prompt.
	ExitUserCancelled ExitCode = 7
)

// CLIError is an error that carries an exit code. The CLI layer
// translates it into the process exit status and a formatted message.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the message,
// including the underlying error when present.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is / errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
