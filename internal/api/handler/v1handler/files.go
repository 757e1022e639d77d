package v1handler

import (
	"net/http"
	"strconv"
	"time"

	"privuploads/pkg/domain"
	"privuploads/pkg/serrors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// filesResponse is the body of GET /v1/files.
type filesResponse struct {
	Files []domain.Upload `json:"files"`
	// NextCursor is passed back as the cursor query parameter to fetch the
	// next page; absent on the last page.
	NextCursor *time.Time `json:"nextCursor,omitempty"`
}

// Files lists the upload registry, newest first. The optional cursor query
// parameter is an RFC 3339 timestamp from a previous page's nextCursor;
// limit caps the page size.
func (h *Handler) Files(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := uint(defaultPageSize)
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			writeError(w, r, serrors.With(serrors.ErrBadRequest, "invalid limit %q", raw))

			return
		}
		limit = min(uint(parsed), maxPageSize)
	}

	var cursor time.Time
	if raw := query.Get("cursor"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor %q", raw))

			return
		}
		cursor = parsed
	}

	page, err := h.deps.Storage.Uploads(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, r, err)

		return
	}

	files := page.Uploads
	if files == nil {
		files = []domain.Upload{}
	}

	writeJSON(w, r, http.StatusOK, filesResponse{
		Files:      files,
		NextCursor: page.NextCursor,
	})
}
