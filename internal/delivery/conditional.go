package delivery

import (
	"crypto/md5" //nolint: gosec
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"privuploads/pkg/logger"

	"go.uber.org/zap"
)

// expiresAfter is how far in the future the Expires header points.
const expiresAfter = time.Hour

// ETagFor derives the entity tag for a file modified at mtime. The tag is an
// MD5 of the RFC 1123 representation of the modification time, so it only
// changes when the file does at second granularity. That makes it a weak
// validator in practice, which is acceptable here: private files are written
// once and replaced wholesale.
func ETagFor(mtime time.Time) string {
	sum := md5.Sum([]byte(mtime.UTC().Format(http.TimeFormat))) //nolint: gosec

	return hex.EncodeToString(sum[:])
}

// canonicalETag strips a weak-validator prefix and surrounding quotes so both
// the quoted form we emit and any bare form a client echoes compare equal.
func canonicalETag(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "W/")

	return strings.Trim(value, `"`)
}

// ConditionalCacheEvaluator decides whether a request can be answered with
// 304 Not Modified and stamps validator headers on full responses.
type ConditionalCacheEvaluator struct {
	now func() time.Time
}

func NewConditionalCacheEvaluator() *ConditionalCacheEvaluator {
	return &ConditionalCacheEvaluator{now: time.Now}
}

// NotModified reports whether the client already holds the current version of
// a file modified at mtime: either its If-None-Match matches the file's tag,
// or the file has not been modified since If-Modified-Since. An unparseable
// If-Modified-Since is logged and treated as absent, so the request proceeds
// to a full response.
func (e *ConditionalCacheEvaluator) NotModified(r *http.Request, mtime time.Time) bool {
	etag := ETagFor(mtime)
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		for _, candidate := range strings.Split(inm, ",") {
			if canonicalETag(candidate) == etag {
				return true
			}
		}
	}

	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		since, err := http.ParseTime(ims)
		if err != nil {
			logger.Warn(r.Context(), "ignoring unparseable If-Modified-Since header",
				zap.String("value", ims), zap.Error(err))

			return false
		}

		// HTTP dates carry second resolution.
		return !mtime.Truncate(time.Second).After(since)
	}

	return false
}

// SetValidators writes the Last-Modified, ETag and Expires headers for a file
// modified at mtime. The ETag is emitted in its canonical quoted form.
func (e *ConditionalCacheEvaluator) SetValidators(w http.ResponseWriter, mtime time.Time) {
	h := w.Header()
	h.Set("Last-Modified", mtime.UTC().Format(http.TimeFormat))
	h.Set("ETag", `"`+ETagFor(mtime)+`"`)
	h.Set("Expires", e.now().Add(expiresAfter).UTC().Format(http.TimeFormat))
}
