package model

// Direction tells whether an audit got better or worse than the previous one.
type Direction int

const (
	// DirectionUnchanged means the risk score did not move.
	DirectionUnchanged Direction = iota

	// DirectionImproved means the risk score went down.
	DirectionImproved

	// DirectionWorsened means the risk score went up.
	DirectionWorsened
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionImproved:
		return "improved"
	case DirectionWorsened:
		return "worsened"
	default:
		return "unchanged"
	}
}

// Comparison is the difference between two audits of the same site.
type Comparison struct {
	// Site is the audited base URL.
	Site string `json:"site"`

	// Previous and Current are the compared summaries, oldest first.
	Previous *Summary `json:"previous"`
	Current  *Summary `json:"current"`

	// New are findings of Current that Previous did not have.
	New []Finding `json:"new,omitempty"`

	// Resolved are findings of Previous that Current no longer has.
	Resolved []Finding `json:"resolved,omitempty"`

	// Unchanged counts findings present in both.
	Unchanged int `json:"unchanged"`

	// PreviousScore and CurrentScore are the risk scores of both audits.
	PreviousScore int `json:"previous_score"`
	CurrentScore  int `json:"current_score"`

	// Direction summarizes the score change.
	Direction Direction `json:"-"`

	// DirectionText is Direction.String(), kept for serialization.
	DirectionText string `json:"direction"`
}

// Compare matches findings of two audits by type, value and location.
// Wording changes between versions do not count as new findings.
func Compare(previous, current *Summary) *Comparison {
	c := &Comparison{
		Previous:      previous,
		Current:       current,
		PreviousScore: previous.RiskScore(),
		CurrentScore:  current.RiskScore(),
	}
	c.Site = current.Site

	before := make(map[string]bool, len(previous.Findings))
	for _, f := range previous.Findings {
		before[f.Key()] = true
	}
	after := make(map[string]bool, len(current.Findings))
	for _, f := range current.Findings {
		key := f.Key()
		after[key] = true
		if before[key] {
			c.Unchanged++
		} else {
			c.New = append(c.New, f)
		}
	}
	for _, f := range previous.Findings {
		if !after[f.Key()] {
			c.Resolved = append(c.Resolved, f)
		}
	}

	switch {
	case c.CurrentScore < c.PreviousScore:
		c.Direction = DirectionImproved
	case c.CurrentScore > c.PreviousScore:
		c.Direction = DirectionWorsened
	}
	c.DirectionText = c.Direction.String()
	return c
}
