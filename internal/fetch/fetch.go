// Package fetch downloads provisioning assets (the Oh My Fish
// installer, the desktop wallpaper) over HTTP.
//
// Downloads are written to a temporary file in the destination
// directory and renamed into place, so an interrupted transfer never
// leaves a truncated file at the final path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mmr-tortoise/kalibox/internal/model"
)

// defaultTimeout bounds a single download. The assets involved are a
// shell script and one image, so a minute is plenty even on slow links.
const defaultTimeout = 60 * time.Second

// Download fetches url and writes the body to dest, creating parent
// directories as needed. Returns the number of bytes written.
func Download(ctx context.Context, url, dest string) (int64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return 0, model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("invalid download URL %q", url), err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to download %s", url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Anything other than 200 means the asset is not there; redirects
	// are already followed by the default client.
	if resp.StatusCode != http.StatusOK {
		return 0, model.NewCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to download %s: HTTP %d", url, resp.StatusCode))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to create directory for %s", dest), err)
	}

	// Stage into a temp file next to the destination so the final
	// rename stays on the same filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return 0, model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to create temporary file for %s", dest), err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err != nil || closeErr != nil {
		_ = os.Remove(tmpPath)
		if err == nil {
			err = closeErr
		}
		return 0, model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to write %s", dest), err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return 0, model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to move download into place at %s", dest), err)
	}

	return written, nil
}

// DownloadTemp fetches url into a fresh file under the system temp
// directory and returns its path. The caller is responsible for
// removing the file. Used for run-once assets like the OMF installer.
func DownloadTemp(ctx context.Context, url, namePattern string) (string, error) {
	tmp, err := os.CreateTemp("", namePattern)
	if err != nil {
		return "", model.WrapCLIError(model.ExitDownloadFailed,
			"failed to create temporary download file", err)
	}
	path := tmp.Name()
	// Download stages and renames on its own; only the reserved path
	// is needed here.
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return "", model.WrapCLIError(model.ExitDownloadFailed,
			"failed to create temporary download file", err)
	}

	if _, err := Download(ctx, url, path); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
