package worker_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privuploads/internal/probe"
	"privuploads/internal/worker"
	"privuploads/pkg/domain"
)

type fakeProber struct {
	verdict *domain.PrivacyVerdict
	err     error
	checks  int
}

func (f *fakeProber) Check(context.Context) (*domain.PrivacyVerdict, error) {
	f.checks++

	return f.verdict, f.err
}

func (f *fakeProber) LastChecked(context.Context) (*domain.PrivacyVerdict, error) {
	return f.verdict, f.err
}

func privacyJob() *river.Job[probe.JobArgs] {
	return &river.Job[probe.JobArgs]{JobRow: &rivertype.JobRow{}}
}

func TestPrivacyCheckWorker_Work(t *testing.T) {
	verdict := domain.NewPrivacyVerdict(
		"https://example.com/uploads/private/doc.txt",
		http.StatusForbidden,
		domain.DefaultPrivateStatusCodes,
		time.Now())
	prober := &fakeProber{verdict: &verdict}

	w := worker.NewPrivacyCheckWorker(prober)
	require.NoError(t, w.Work(context.Background(), privacyJob()))
	assert.Equal(t, 1, prober.checks)
}

func TestPrivacyCheckWorker_InconclusiveCheckCompletes(t *testing.T) {
	prober := &fakeProber{}

	w := worker.NewPrivacyCheckWorker(prober)
	require.NoError(t, w.Work(context.Background(), privacyJob()))
}

func TestPrivacyCheckWorker_ErrorFailsJob(t *testing.T) {
	prober := &fakeProber{err: errors.New("store down")}

	w := worker.NewPrivacyCheckWorker(prober)
	err := w.Work(context.Background(), privacyJob())
	require.Error(t, err)
	assert.ErrorContains(t, err, "store down")
}
