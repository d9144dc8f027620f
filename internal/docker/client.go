package docker

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// pingTimeout bounds the daemon liveness check. Docker Desktop answers
// slower than a native Linux daemon, so this is generous.
const pingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client. Wrapping (rather than
// embedding) keeps the exposed surface small; packages that need raw
// SDK calls go through Inner.
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client. DOCKER_HOST wins when set;
// otherwise the platform's known socket locations are probed and the
// first that exists is used. API version negotiation keeps the CLI
// working against any reasonably recent daemon.
//
// Connection errors carry ExitDockerNotRunning so the provision and
// status commands can tell "daemon down" apart from other failures.
func NewClient() (*Client, error) {
	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		detected, err := detectHost()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitDockerNotRunning, "Docker socket not found", err)
		}
		host = detected
	}

	inner, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}
	return &Client{inner: inner}, nil
}

// detectHost probes the socket locations for the current platform. An
// existence check is enough here; Ping verifies actual connectivity.
func detectHost() (string, error) {
	if runtime.GOOS == "windows" {
		// os.Stat does not work on named pipes, so probe with a short
		// dial instead.
		pipe := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipe, time.Second)
		if err != nil {
			return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipe, err)
		}
		conn.Close()
		return "npipe://" + pipe, nil
	}

	candidates := []string{"/var/run/docker.sock"}
	if runtime.GOOS == "darwin" {
		// Newer Docker Desktop versions may only create the per-user
		// socket instead of symlinking the standard path.
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, home+"/.docker/run/docker.sock")
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v (is Docker running?)", candidates)
}

// Ping verifies the daemon is reachable, waiting up to pingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitDockerNotRunning,
			"Docker daemon is not responding (is Docker running?)", err)
	}
	return nil
}

// Close releases the client's resources. Safe to call more than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner exposes the underlying SDK client for operations not covered
// by the wrapper.
func (c *Client) Inner() *client.Client {
	return c.inner
}
