package storage

import (
	"context"
	"time"

	"privuploads/pkg/domain"
)

// UploadsPage groups a page of upload records together with an optional
// NextCursor used for pagination.
type UploadsPage struct {
	// Uploads contains the current page of registry rows.
	Uploads []domain.Upload
	// NextCursor points to the timestamp to be used as the cursor for fetching
	// the next page. It is nil when there is no next page.
	NextCursor *time.Time
}

// UploadStorage defines the registry operations for files living under the
// private uploads root. The registry is bookkeeping: the filesystem owns the
// bytes, and delivery never consults the registry.
type UploadStorage interface {
	// StoreUploads inserts one or more registry rows and returns the stored rows
	// as they exist in the database (including generated fields).
	StoreUploads(ctx context.Context, uploads ...domain.Upload) ([]domain.Upload, error)
	// UploadByPath fetches a registry row by its path relative to the private
	// root, excluding soft-deleted rows. Returns nil when not found.
	UploadByPath(ctx context.Context, path string) (*domain.Upload, error)
	// Uploads returns a page of registry rows created before the optional cursor
	// time, newest first, limited by the given limit.
	Uploads(ctx context.Context, cursor time.Time, limit uint) (UploadsPage, error)
	// DeleteUpload performs a soft delete for the given upload ID and returns the
	// deleted row, or nil if it was not found.
	DeleteUpload(ctx context.Context, id domain.UploadID) (*domain.Upload, error)
}
