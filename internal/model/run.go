package model

import "time"

// RunRecord summarizes one verify or submit run for the history store.
type RunRecord struct {
	// ID is assigned by the database. Zero until stored.
	ID int64 `json:"id,omitempty"`

	// Command is the command that produced the run (verify, submit, ...).
	Command string `json:"command"`

	// Target is the base URL or build directory the run worked on.
	Target string `json:"target"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// Total is the number of checks or submissions attempted.
	Total int `json:"total"`

	// Succeeded is the number that passed.
	Succeeded int `json:"succeeded"`

	// Checks holds the individual outcomes.
	Checks []CheckRecord `json:"checks,omitempty"`
}

// CheckRecord is a single check outcome inside a run.
type CheckRecord struct {
	// Name is what was checked: a relative path, URL, or engine name.
	Name string `json:"name"`

	// OK reports whether the check passed.
	OK bool `json:"ok"`

	// Status is the outcome as text (succeeded, failed, timed out, missing).
	Status string `json:"status"`

	// StatusCode is the HTTP status when the check was a request.
	StatusCode int `json:"status_code,omitempty"`

	// Detail carries an error message or extra context.
	Detail string `json:"detail,omitempty"`
}

// Failed returns how many checks did not pass.
func (r *RunRecord) Failed() int {
	return r.Total - r.Succeeded
}

// AllSucceeded reports whether every check passed.
// A run with no checks counts as failed.
func (r *RunRecord) AllSucceeded() bool {
	return r.Total > 0 && r.Succeeded == r.Total
}
