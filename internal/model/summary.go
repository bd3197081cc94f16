package model

import "time"

// Summary is the condensed result of an audit: severity counts and findings.
// It is what gets printed, serialized, and stored in the history database.
type Summary struct {
	// Site is the audited base URL.
	Site string `json:"site"`

	// DateAudited is when the audit was performed.
	DateAudited time.Time `json:"date_audited"`

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// Findings contains all findings in the order they were raised.
	Findings []Finding `json:"findings,omitempty"`

	// PagesCrawled is the number of pages fetched during the audit.
	PagesCrawled int `json:"pages_crawled"`

	// TimedOut indicates if the audit was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the audit failed.
	Error string `json:"error,omitempty"`

	seen map[string]struct{}
}

// NewSummary returns an empty summary for site.
func NewSummary(site string) *Summary {
	return &Summary{
		Site:        site,
		DateAudited: time.Now(),
		Findings:    make([]Finding, 0),
	}
}

func (s *Summary) add(finding Finding) {
	if s.seen == nil {
		s.seen = make(map[string]struct{}, len(s.Findings))
		for _, f := range s.Findings {
			s.seen[f.Key()] = struct{}{}
		}
	}
	key := finding.Key()
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.Findings = append(s.Findings, finding)

	switch finding.Severity {
	case SeverityCritical:
		s.CriticalCount++
	case SeverityHigh:
		s.HighCount++
	case SeverityMedium:
		s.MediumCount++
	case SeverityLow:
		s.LowCount++
	case SeverityInfo:
		s.InfoCount++
	}
}

// TotalFindings returns the total number of findings.
func (s *Summary) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *Summary) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *Summary) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}

// CountAtLeast returns how many findings are at or above min.
func (s *Summary) CountAtLeast(minSeverity Severity) int {
	n := 0
	for _, f := range s.Findings {
		if f.Severity >= minSeverity {
			n++
		}
	}
	return n
}

// RiskScore weighs findings by severity so two audits can be compared.
// Critical counts 10, high 5, medium 2, low 1, info 0.
func (s *Summary) RiskScore() int {
	return s.CriticalCount*10 + s.HighCount*5 + s.MediumCount*2 + s.LowCount
}
