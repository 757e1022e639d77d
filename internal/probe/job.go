package probe

import (
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// uniqueJobPeriod is the lookback window during which another privacy-check
// job counts as a duplicate.
const uniqueJobPeriod = time.Minute

// JobArgs enqueues a privacy check. The job carries no payload: there is one
// private directory per deployment, so uniqueness by kind alone is enough to
// guarantee at most one outstanding check.
type JobArgs struct{}

// Kind returns the River job kind used to register and dispatch the privacy
// check worker.
func (args JobArgs) Kind() string { return "CheckUploadsPrivacyJob" }

// InsertOpts makes the job unique across active states, so an on-demand
// request while a check is already queued or running inserts nothing.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		UniqueOpts: river.UniqueOpts{
			ByPeriod: uniqueJobPeriod,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
