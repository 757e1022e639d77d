package uploads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"privuploads/pkg/domain"
)

// DownloadRemoteFileToPrivateUploads fetches fileURL to a temporary file and
// moves it into the private root. When filename is empty, the last URL path
// segment is used. The temporary file is always removed.
func (a *API) DownloadRemoteFileToPrivateUploads(
	ctx context.Context,
	fileURL string,
	filename string) (domain.FileUploadResult, error) {
	fail := func(err error) (domain.FileUploadResult, error) {
		return domain.FileUploadResult{Error: err.Error()}, err
	}

	if filename == "" {
		u, err := url.Parse(fileURL)
		if err != nil {
			return fail(fmt.Errorf("could not parse URL: %w", err))
		}
		filename = path.Base(u.Path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fail(fmt.Errorf("could not create request: %w", err))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("could not download %s: %w", fileURL, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(fmt.Errorf("download of %s failed with status %d", fileURL, resp.StatusCode))
	}

	tmp, err := os.CreateTemp("", "privuploads-*")
	if err != nil {
		return fail(fmt.Errorf("could not create temp file: %w", err))
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()

		return fail(fmt.Errorf("could not write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return fail(fmt.Errorf("could not close temp file: %w", err))
	}

	return a.MoveFileToPrivateUploads(ctx, tmpName, filename, time.Time{})
}
