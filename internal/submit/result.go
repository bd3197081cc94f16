package submit

import (
	"time"

	"github.com/nao1215/sitectl/internal/model"
	"github.com/nao1215/sitectl/internal/probe"
)

// Kind is the type of a submission.
type Kind string

const (
	// KindPing is a sitemap ping to one engine.
	KindPing Kind = "ping"

	// KindIndexNow is an IndexNow notification for one page.
	KindIndexNow Kind = "indexnow"

	// KindWarm is a plain GET of a key page before its IndexNow submission.
	KindWarm Kind = "warm"
)

// Submission is the outcome of one request.
type Submission struct {
	Kind Kind `json:"kind"`

	// Name is the engine name for pings and the page URL otherwise.
	Name string `json:"name"`

	// Result is the probe outcome. Its URL has secrets masked.
	Result probe.Result `json:"result"`
}

// Result collects the submissions of one run.
type Result struct {
	Mode      string       `json:"mode"`
	Target    string       `json:"target"`
	StartedAt time.Time    `json:"started_at"`
	Warmups   []Submission `json:"warmups,omitempty"`
	Requests  []Submission `json:"requests"`
}

// Succeeded counts successful ping and IndexNow requests. Warmups are
// not counted.
func (r *Result) Succeeded() int {
	n := 0
	for _, s := range r.Requests {
		if s.Result.OK() {
			n++
		}
	}
	return n
}

// Total is the number of ping and IndexNow requests.
func (r *Result) Total() int {
	return len(r.Requests)
}

// Warmed counts key pages that answered 2xx.
func (r *Result) Warmed() int {
	n := 0
	for _, s := range r.Warmups {
		if s.Result.OK() {
			n++
		}
	}
	return n
}

// OK reports whether the run counts as successful: at least one request
// succeeded, or every request when strict is set.
func (r *Result) OK(strict bool) bool {
	if r.Total() == 0 {
		return false
	}
	if strict {
		return r.Succeeded() == r.Total()
	}
	return r.Succeeded() > 0
}

// Record converts the result into a history entry.
func (r *Result) Record() *model.RunRecord {
	rec := &model.RunRecord{
		Command:   "submit " + r.Mode,
		Target:    r.Target,
		StartedAt: r.StartedAt,
		Total:     r.Total(),
		Succeeded: r.Succeeded(),
	}
	for _, group := range [][]Submission{r.Warmups, r.Requests} {
		for _, s := range group {
			rec.Checks = append(rec.Checks, model.CheckRecord{
				Name:       string(s.Kind) + ":" + s.Name,
				OK:         s.Result.OK(),
				Status:     s.Result.Status.String(),
				StatusCode: s.Result.StatusCode,
				Detail:     s.Result.Error,
			})
		}
	}
	return rec
}
