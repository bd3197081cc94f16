package report

import (
	"io"

	"github.com/nao1215/sitectl/internal/model"
)

// Writer defines the interface for report output.
// Every method returns the number of bytes written and any error encountered.
type Writer interface {
	// Write outputs a full audit report.
	Write(report *model.AuditReport) (int, error)

	// WriteSummary outputs only the findings and severity counts of an audit.
	// The history command uses it for stored audits, which have no crawl data.
	WriteSummary(summary *model.Summary) (int, error)

	// WriteRun outputs one verify or submit run.
	WriteRun(run *model.RunRecord) (int, error)

	// WriteRuns outputs a list of stored runs, newest first.
	WriteRuns(runs []*model.RunRecord) (int, error)

	// WriteComparison outputs the difference between two audits.
	WriteComparison(comparison *model.Comparison) (int, error)
}

// MultiWriter writes to multiple Writers, for example the terminal and a
// report file.
//
// Design decision: io.MultiWriter does not fit because these writers
// format structured reports, not raw bytes. Each format renders once per
// destination.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all Writers and stops on the first error.
func (m *MultiWriter) Write(report *model.AuditReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(report) })
}

// WriteSummary outputs the summary to all Writers.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSummary(summary) })
}

// WriteRun outputs the run to all Writers.
func (m *MultiWriter) WriteRun(run *model.RunRecord) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteRun(run) })
}

// WriteRuns outputs the run list to all Writers.
func (m *MultiWriter) WriteRuns(runs []*model.RunRecord) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteRuns(runs) })
}

// WriteComparison outputs the comparison to all Writers.
func (m *MultiWriter) WriteComparison(comparison *model.Comparison) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteComparison(comparison) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// severityOrder lists severities from most to least severe.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// summaryOf returns the summary of report, never nil.
func summaryOf(report *model.AuditReport) *model.Summary {
	if report.Summary != nil {
		return report.Summary
	}
	s := model.NewSummary(report.Site)
	s.DateAudited = report.DateAudited
	s.PagesCrawled = len(report.CrawledPages)
	s.TimedOut = report.TimedOut
	s.Error = report.ErrorMessage
	return s
}

// truncateString shortens s to maxLen runes, ending with "..." when cut.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// orDash returns "-" for empty table cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
