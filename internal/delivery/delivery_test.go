package delivery_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privuploads/internal/delivery"
	"privuploads/internal/uploads"
	"privuploads/pkg/serrors"
)

func allowAll(*http.Request) error { return nil }

func denyAll(*http.Request) error {
	return serrors.With(serrors.ErrForbidden, "no")
}

// newTestService returns a delivery handler over a fresh private root plus
// the root's path. The fallthrough handler answers 418 so tests can detect it.
func newTestService(t *testing.T, authorize delivery.AuthorizationCheck) (http.Handler, string) {
	t.Helper()

	baseDir := t.TempDir()
	settings := uploads.Settings{
		Identifier:   "default",
		BaseDir:      baseDir,
		BaseURL:      "https://example.com/uploads",
		Subdirectory: "private",
	}

	service, err := delivery.NewService(delivery.Options{Settings: settings, Authorize: authorize})
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	privateDir := filepath.Join(baseDir, "private")
	require.NoError(t, os.MkdirAll(privateDir, 0o750))

	return service.Handler(next), privateDir
}

func writePrivateFile(t *testing.T, privateDir, relPath, content string) string {
	t.Helper()

	full := filepath.Join(privateDir, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o640))

	return full
}

func get(handler http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	return w
}

func TestDelivery_FallsThroughWithoutQueryKey(t *testing.T) {
	handler, _ := newTestService(t, allowAll)

	w := get(handler, "/some/page?foo=bar", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestDelivery_ServesFile(t *testing.T) {
	handler, privateDir := newTestService(t, allowAll)
	writePrivateFile(t, privateDir, "2026/08/report.pdf", "%PDF-1.4 body")

	w := get(handler, "/?default-private-uploads-file=2026/08/report.pdf", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 body", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprint(len("%PDF-1.4 body")), w.Header().Get("Content-Length"))
	assert.NotEmpty(t, w.Header().Get("ETag"))
	assert.NotEmpty(t, w.Header().Get("Last-Modified"))
	assert.NotEmpty(t, w.Header().Get("Expires"))
}

func TestDelivery_NotModifiedRoundTrip(t *testing.T) {
	handler, privateDir := newTestService(t, allowAll)
	writePrivateFile(t, privateDir, "doc.txt", "hello")

	first := get(handler, "/?default-private-uploads-file=doc.txt", nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := get(handler, "/?default-private-uploads-file=doc.txt", map[string]string{
		"If-None-Match": first.Header().Get("ETag"),
	})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
	assert.Empty(t, second.Header().Get("Content-Type"))

	// a weak form of the same tag revalidates too
	third := get(handler, "/?default-private-uploads-file=doc.txt", map[string]string{
		"If-None-Match": "W/" + first.Header().Get("ETag"),
	})
	assert.Equal(t, http.StatusNotModified, third.Code)
}

func TestDelivery_NotModifiedByDate(t *testing.T) {
	handler, privateDir := newTestService(t, allowAll)
	full := writePrivateFile(t, privateDir, "doc.txt", "hello")

	mtime := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(full, mtime, mtime))

	w := get(handler, "/?default-private-uploads-file=doc.txt", map[string]string{
		"If-Modified-Since": mtime.Format(http.TimeFormat),
	})
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = get(handler, "/?default-private-uploads-file=doc.txt", map[string]string{
		"If-Modified-Since": "garbage",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDelivery_Forbidden(t *testing.T) {
	handler, privateDir := newTestService(t, denyAll)
	writePrivateFile(t, privateDir, "exists.txt", "secret")

	existing := get(handler, "/?default-private-uploads-file=exists.txt", nil)
	missing := get(handler, "/?default-private-uploads-file=missing.txt", nil)

	assert.Equal(t, http.StatusForbidden, existing.Code)
	assert.Equal(t, http.StatusForbidden, missing.Code)
	// the refusal must not reveal whether the file exists
	assert.Equal(t, existing.Body.String(), missing.Body.String())
	assert.NotContains(t, existing.Body.String(), "secret")
}

func TestDelivery_NotFound(t *testing.T) {
	handler, privateDir := newTestService(t, allowAll)
	writePrivateFile(t, privateDir, "2026/08/report.pdf", "x")

	cases := []struct {
		name string
		path string
	}{
		{name: "missing file", path: "nope.txt"},
		{name: "directory", path: "2026/08"},
		{name: "empty path", path: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(handler, "/?default-private-uploads-file="+tc.path, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestDelivery_TraversalStaysUnderRoot(t *testing.T) {
	handler, privateDir := newTestService(t, allowAll)

	// a file outside the private root must stay unreachable
	outside := filepath.Join(filepath.Dir(privateDir), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("leaked"), 0o640))

	for _, path := range []string{
		"../outside.txt",
		"foo/../../outside.txt",
		"..%2Foutside.txt",
	} {
		w := get(handler, "/?default-private-uploads-file="+path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "path %q", path)
		assert.NotContains(t, w.Body.String(), "leaked")
	}
}

func TestDelivery_UnresolvableRootIsServerError(t *testing.T) {
	settings := uploads.Settings{Identifier: "default", Subdirectory: "private"}
	service, err := delivery.NewService(delivery.Options{Settings: settings, Authorize: allowAll})
	require.NoError(t, err)

	w := get(service.Handler(http.NotFoundHandler()), "/?default-private-uploads-file=doc.txt", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
