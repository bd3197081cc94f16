package probe

import "time"

// Result is the outcome of probing one URL.
type Result struct {
	// URL is the probed URL.
	URL string `json:"url"`

	// Status is succeeded, failed or timed out.
	Status Status `json:"status"`

	// StatusCode is the HTTP status code, or 0 when no response arrived.
	StatusCode int `json:"status_code,omitempty"`

	// Location is the redirect target of a 3xx answer.
	Location string `json:"location,omitempty"`

	// Latency is the time from sending the request to reading the body.
	Latency time.Duration `json:"latency"`

	// Error describes a transport failure.
	Error string `json:"error,omitempty"`

	// CheckedAt is when the request was sent.
	CheckedAt time.Time `json:"checked_at"`

	// Body holds the response body when snapshots are enabled, capped at
	// the snapshot size. Nil otherwise.
	Body []byte `json:"-"`

	// Digest is the SHA3-256 digest of Body when snapshots are enabled.
	Digest string `json:"digest,omitempty"`

	// Truncated is true if the body was longer than the client's size cap.
	// Body and Digest then cover only the first part.
	Truncated bool `json:"truncated,omitempty"`
}

// OK reports whether the probe succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSucceeded
}

// Summary aggregates the results of ProbeAll.
type Summary struct {
	// Results are in the same order as the probed URLs.
	Results []Result `json:"results"`

	// Succeeded counts results with StatusSucceeded.
	Succeeded int `json:"succeeded"`

	// Total is the number of probed URLs.
	Total int `json:"total"`
}

// Failed returns the number of results that did not succeed.
func (s Summary) Failed() int {
	return s.Total - s.Succeeded
}

// AllSucceeded reports whether every probe succeeded. An empty summary
// does not count as success.
func (s Summary) AllSucceeded() bool {
	return s.Total > 0 && s.Succeeded == s.Total
}

func newSummary(results []Result) Summary {
	summary := Summary{Results: results, Total: len(results)}
	for _, r := range results {
		if r.OK() {
			summary.Succeeded++
		}
	}
	return summary
}
