package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadID uniquely identifies a file recorded in the upload registry.
// It wraps uuid.UUID to provide type safety at the domain layer.
type UploadID uuid.UUID

// String returns the canonical UUID form of the ID.
func (id UploadID) String() string { return uuid.UUID(id).String() }

// MarshalText renders the ID in canonical UUID form.
func (id UploadID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses an ID from its canonical UUID form.
func (id *UploadID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err //nolint: wrapcheck
	}
	*id = UploadID(parsed)

	return nil
}

// Upload is a file that has been moved into the private uploads root.
// The registry row is bookkeeping only; the filesystem owns the bytes.
type Upload struct {
	// ID is the unique identifier of the registry row.
	ID UploadID `json:"id"`

	// Name is the original filename the file was imported under.
	Name string `json:"name"`
	// Path is the file's location relative to the private uploads root,
	// e.g. "2026/08/report.pdf".
	Path string `json:"path"`
	// ContentType is the detected MIME type at import time.
	ContentType string `json:"contentType"`
	// SizeBytes is the file size at import time.
	SizeBytes int64 `json:"sizeBytes"`

	// CreatedAt is when the file was moved into the private root.
	CreatedAt time.Time `json:"createdAt"`
	// DeletedAt marks when the registry row was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}

// FileUploadResult records the outcome of moving a file into the private
// uploads root. Exactly one of Path or Error is meaningful.
type FileUploadResult struct {
	// Path is the destination path relative to the private root, empty on failure.
	Path string `json:"path,omitempty"`
	// URL is the (blocked) public URL the file would have, for diagnostics.
	URL string `json:"url,omitempty"`
	// ContentType is the detected MIME type of the moved file.
	ContentType string `json:"contentType,omitempty"`
	// Error describes why the move failed, empty on success.
	Error string `json:"error,omitempty"`
}

// Success reports whether the move produced a file.
func (r FileUploadResult) Success() bool { return r.Error == "" && r.Path != "" }

// CreateDirectoryResult records the outcome of ensuring the private uploads
// root exists.
type CreateDirectoryResult struct {
	// Dir is the absolute path of the private root.
	Dir string `json:"dir"`
	// Message is either "Created" or "Already exists".
	Message string `json:"message"`
}
