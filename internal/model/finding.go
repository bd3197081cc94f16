package model

// Finding represents a single indexing issue discovered by an audit.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is how much the issue hurts indexing.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains what the issue does to search visibility.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to fix the issue.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the offending value (a URL, tag or title).
	Value string `json:"value,omitempty"`

	// Location is the page where the finding was discovered.
	Location string `json:"location,omitempty"`
}

// Key identifies a finding independently of its wording.
// Two findings with the same key describe the same problem.
func (f Finding) Key() string {
	return f.Type + "\x00" + f.Value + "\x00" + f.Location
}
