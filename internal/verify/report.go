package verify

import (
	"time"

	"github.com/nao1215/sitectl/internal/model"
)

// Kind groups checks in reports.
type Kind string

const (
	// KindFile checks that a file exists in the build directory.
	KindFile Kind = "file"

	// KindMarkup checks the lang and canonical markup of a built page.
	KindMarkup Kind = "markup"

	// KindOnline probes a deployed URL.
	KindOnline Kind = "online"

	// KindDrift compares a deployed file with the local build.
	KindDrift Kind = "drift"
)

// Check outcome texts for non-HTTP checks.
const (
	StatusPresent = "present"
	StatusMissing = "missing"
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusMatch   = "match"
	StatusDrift   = "drift"
	StatusSkipped = "skipped"
)

// Check is the outcome of a single verification.
type Check struct {
	Kind       Kind   `json:"kind"`
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Report collects every check of one verification run.
type Report struct {
	Target    string    `json:"target"`
	Online    bool      `json:"online"`
	StartedAt time.Time `json:"started_at"`
	Checks    []Check   `json:"checks"`
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
}

// Passed returns how many checks passed.
func (r *Report) Passed() int {
	n := 0
	for _, c := range r.Checks {
		if c.OK {
			n++
		}
	}
	return n
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.OK {
			failed = append(failed, c)
		}
	}
	return failed
}

// AllPassed reports whether every check passed. A report without checks
// does not pass.
func (r *Report) AllPassed() bool {
	return len(r.Checks) > 0 && r.Passed() == len(r.Checks)
}

// Record converts the report into a history entry.
func (r *Report) Record() *model.RunRecord {
	rec := &model.RunRecord{
		Command:   "verify",
		Target:    r.Target,
		StartedAt: r.StartedAt,
		Total:     len(r.Checks),
		Succeeded: r.Passed(),
		Checks:    make([]model.CheckRecord, 0, len(r.Checks)),
	}
	for _, c := range r.Checks {
		rec.Checks = append(rec.Checks, model.CheckRecord{
			Name:       string(c.Kind) + ":" + c.Name,
			OK:         c.OK,
			Status:     c.Status,
			StatusCode: c.StatusCode,
			Detail:     c.Detail,
		})
	}
	return rec
}
