package domain

import "time"

// DefaultPrivateStatusCodes is the set of HTTP status codes that are treated
// as evidence the private directory is correctly blocked. Redirects count as
// protection (commonly a login redirect), and 404 is included because block
// rules that serve from a rewritten internal path often 404 rather than 403;
// without deeper server introspection the two are indistinguishable. The set
// is configurable, not hardcoded into the classifier.
var DefaultPrivateStatusCodes = []int{301, 302, 401, 403, 404} //nolint: gochecknoglobals

// PrivacyVerdict is the immutable outcome of a single privacy probe against
// the private uploads directory. It is created once per probe, cached with a
// TTL, and superseded by the next successful probe. Callers always receive
// copies; a verdict is never mutated after construction.
type PrivacyVerdict struct {
	// URL is the exact URL that was probed.
	URL string `json:"url"`
	// IsPrivate reports whether StatusCode is in the configured private set.
	// It is derived solely from StatusCode at construction time.
	IsPrivate bool `json:"isPrivate"`
	// StatusCode is the raw HTTP status observed from the probe.
	StatusCode int `json:"statusCode"`
	// LastChecked is when the probe ran.
	LastChecked time.Time `json:"lastChecked"`
}

// NewPrivacyVerdict classifies the observed status code against the given
// private set and returns the resulting verdict.
func NewPrivacyVerdict(url string, statusCode int, privateCodes []int, checkedAt time.Time) PrivacyVerdict {
	isPrivate := false
	for _, c := range privateCodes {
		if statusCode == c {
			isPrivate = true

			break
		}
	}

	return PrivacyVerdict{
		URL:         url,
		IsPrivate:   isPrivate,
		StatusCode:  statusCode,
		LastChecked: checkedAt,
	}
}
