package uploads

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"privuploads/pkg/domain"
	"privuploads/pkg/logger"
	"privuploads/pkg/serrors"
	"privuploads/pkg/storage"

	"go.uber.org/zap"
)

// API moves files into the private uploads root and keeps the upload
// registry in sync. Delivery does not depend on it; the filesystem remains
// the source of truth for file bytes.
type API struct {
	settings   Settings
	storage    storage.Storage
	httpClient *http.Client
}

// New creates an uploads API for the given settings. The storage records
// every successful move in the registry; httpClient is used for downloading
// remote files.
func New(settings Settings, strg storage.Storage, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &API{
		settings:   settings,
		storage:    strg,
		httpClient: httpClient,
	}
}

// Settings returns the private uploads settings this API operates on.
func (a *API) Settings() Settings {
	return a.settings
}

// CreateDirectory ensures the private uploads root exists. The operation is
// idempotent; the result message distinguishes "Created" from "Already exists".
func (a *API) CreateDirectory(ctx context.Context) (domain.CreateDirectoryResult, error) {
	dir, err := a.settings.PrivateDir()
	if err != nil {
		return domain.CreateDirectoryResult{}, serrors.Wrap(serrors.ErrInternal, err, "could not resolve uploads root")
	}

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return domain.CreateDirectoryResult{Dir: dir, Message: "Already exists"}, nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		logger.Error(ctx, "could not create private uploads directory", zap.String("dir", dir), zap.Error(err))

		return domain.CreateDirectoryResult{}, fmt.Errorf("could not create directory %s: %w", dir, err)
	}

	return domain.CreateDirectoryResult{Dir: dir, Message: "Created"}, nil
}
