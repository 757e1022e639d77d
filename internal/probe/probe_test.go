package probe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privuploads/internal/probe"
	"privuploads/internal/uploads"
	"privuploads/pkg/domain"
)

type fakeStore struct {
	verdicts map[string]domain.PrivacyVerdict
	ttls     map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		verdicts: map[string]domain.PrivacyVerdict{},
		ttls:     map[string]time.Duration{},
	}
}

func (f *fakeStore) Get(_ context.Context, key string) (*domain.PrivacyVerdict, error) {
	if v, ok := f.verdicts[key]; ok {
		return &v, nil
	}

	return nil, nil
}

func (f *fakeStore) Put(_ context.Context, key string, verdict domain.PrivacyVerdict, ttl time.Duration) error {
	f.verdicts[key] = verdict
	f.ttls[key] = ttl

	return nil
}

func (f *fakeStore) Invalidate(_ context.Context, key string) error {
	delete(f.verdicts, key)
	delete(f.ttls, key)

	return nil
}

type fakeJobs struct {
	added []river.JobArgs
}

func (f *fakeJobs) AddJob(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
	f.added = append(f.added, args)

	return true, nil
}

type proberFixture struct {
	prober     probe.Prober
	store      *fakeStore
	jobs       *fakeJobs
	privateDir string
	settings   uploads.Settings
}

// newFixture wires a prober whose private URL points at the given test
// server, over a fresh private directory containing one file.
func newFixture(t *testing.T, serverURL string, withFile bool) *proberFixture {
	t.Helper()

	baseDir := t.TempDir()
	privateDir := filepath.Join(baseDir, "private")
	require.NoError(t, os.MkdirAll(privateDir, 0o750))
	if withFile {
		require.NoError(t, os.WriteFile(filepath.Join(privateDir, "doc.txt"), []byte("x"), 0o640))
	}

	settings := uploads.Settings{
		Identifier:   "default",
		BaseDir:      baseDir,
		BaseURL:      serverURL + "/uploads",
		Subdirectory: "private",
	}

	store := newFakeStore()
	jobs := &fakeJobs{}
	prober, err := probe.New(probe.Deps{
		Settings: settings,
		Store:    store,
		Storage:  jobs,
	}, probe.Options{
		Timeout:    2 * time.Second,
		VerdictTTL: 3660 * time.Second,
	})
	require.NoError(t, err)

	return &proberFixture{
		prober:     prober,
		store:      store,
		jobs:       jobs,
		privateDir: privateDir,
		settings:   settings,
	}
}

func statusServer(t *testing.T, status int, gotPath *string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotPath != nil {
			*gotPath = r.URL.Path
		}
		if status == http.StatusFound {
			w.Header().Set("Location", "/login")
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server
}

func TestCheck_BlockedDirectoryIsPrivate(t *testing.T) {
	var gotPath string
	server := statusServer(t, http.StatusForbidden, &gotPath)
	f := newFixture(t, server.URL, true)

	verdict, err := f.prober.Check(context.Background())
	require.NoError(t, err)
	require.NotNil(t, verdict)

	assert.True(t, verdict.IsPrivate)
	assert.Equal(t, http.StatusForbidden, verdict.StatusCode)
	assert.Equal(t, server.URL+"/uploads/private/doc.txt", verdict.URL)
	assert.Equal(t, "/uploads/private/doc.txt", gotPath)
	assert.WithinDuration(t, time.Now(), verdict.LastChecked, 5*time.Second)

	cached, ok := f.store.verdicts[f.settings.VerdictCacheKey()]
	require.True(t, ok)
	assert.Equal(t, *verdict, cached)
	assert.Equal(t, 3660*time.Second, f.store.ttls[f.settings.VerdictCacheKey()])
}

func TestCheck_ReadableDirectoryIsPublic(t *testing.T) {
	server := statusServer(t, http.StatusOK, nil)
	f := newFixture(t, server.URL, true)

	verdict, err := f.prober.Check(context.Background())
	require.NoError(t, err)
	require.NotNil(t, verdict)

	assert.False(t, verdict.IsPrivate)
	assert.Equal(t, http.StatusOK, verdict.StatusCode)
}

func TestCheck_RedirectCountsAsPrivate(t *testing.T) {
	server := statusServer(t, http.StatusFound, nil)
	f := newFixture(t, server.URL, true)

	verdict, err := f.prober.Check(context.Background())
	require.NoError(t, err)
	require.NotNil(t, verdict)

	// the probe must observe the redirect itself, not whatever it points at
	assert.Equal(t, http.StatusFound, verdict.StatusCode)
	assert.True(t, verdict.IsPrivate)
}

func TestCheck_TransportFailureIsUndetermined(t *testing.T) {
	server := statusServer(t, http.StatusOK, nil)
	serverURL := server.URL
	server.Close()

	f := newFixture(t, serverURL, true)
	stale := domain.NewPrivacyVerdict(serverURL, http.StatusForbidden, domain.DefaultPrivateStatusCodes, time.Now())
	require.NoError(t, f.store.Put(context.Background(), f.settings.VerdictCacheKey(), stale, time.Hour))

	verdict, err := f.prober.Check(context.Background())
	require.NoError(t, err)
	assert.Nil(t, verdict)

	// a failed probe must not clobber the cached verdict
	_, ok := f.store.verdicts[f.settings.VerdictCacheKey()]
	assert.True(t, ok)
}

func TestCheck_MissingDirectoryInvalidates(t *testing.T) {
	server := statusServer(t, http.StatusOK, nil)
	f := newFixture(t, server.URL, true)

	stale := domain.NewPrivacyVerdict("x", http.StatusForbidden, domain.DefaultPrivateStatusCodes, time.Now())
	require.NoError(t, f.store.Put(context.Background(), f.settings.VerdictCacheKey(), stale, time.Hour))
	require.NoError(t, os.RemoveAll(f.privateDir))

	verdict, err := f.prober.Check(context.Background())
	require.NoError(t, err)
	assert.Nil(t, verdict)
	assert.Empty(t, f.store.verdicts)
}

func TestCheck_EmptyDirectoryInvalidates(t *testing.T) {
	server := statusServer(t, http.StatusOK, nil)
	f := newFixture(t, server.URL, false)

	stale := domain.NewPrivacyVerdict("x", http.StatusForbidden, domain.DefaultPrivateStatusCodes, time.Now())
	require.NoError(t, f.store.Put(context.Background(), f.settings.VerdictCacheKey(), stale, time.Hour))

	verdict, err := f.prober.Check(context.Background())
	require.NoError(t, err)
	assert.Nil(t, verdict)
	assert.Empty(t, f.store.verdicts)
}

func TestCheck_NoReadableFileProbesBareDirectory(t *testing.T) {
	var gotPath string
	server := statusServer(t, http.StatusForbidden, &gotPath)
	f := newFixture(t, server.URL, false)

	// only a subdirectory, no regular file to pick
	require.NoError(t, os.MkdirAll(filepath.Join(f.privateDir, "2026"), 0o750))

	verdict, err := f.prober.Check(context.Background())
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.Equal(t, "/uploads/private/", gotPath)
}

func TestLastChecked_CacheHit(t *testing.T) {
	f := newFixture(t, "http://unused.invalid", true)

	cached := domain.NewPrivacyVerdict("x", http.StatusForbidden, domain.DefaultPrivateStatusCodes, time.Now())
	require.NoError(t, f.store.Put(context.Background(), f.settings.VerdictCacheKey(), cached, time.Hour))

	verdict, err := f.prober.LastChecked(context.Background())
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.Equal(t, cached, *verdict)
	assert.Empty(t, f.jobs.added, "cache hit must not schedule a probe")
}

func TestLastChecked_CacheMissSchedulesProbe(t *testing.T) {
	f := newFixture(t, "http://unused.invalid", true)

	verdict, err := f.prober.LastChecked(context.Background())
	require.NoError(t, err)
	assert.Nil(t, verdict)

	require.Len(t, f.jobs.added, 1)
	assert.IsType(t, probe.JobArgs{}, f.jobs.added[0])
}
