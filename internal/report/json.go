package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitectl/internal/model"
)

// JSONWriter outputs reports in JSON format for CI jobs and scripts.
//
// Design decision: encoding/json covers every type written here, all of
// which are plain structs with tags. No library in use offers anything
// beyond it for this.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full audit report.
func (w *JSONWriter) Write(report *model.AuditReport) (int, error) {
	return w.writeJSON(report)
}

// WriteSummary outputs the audit summary.
func (w *JSONWriter) WriteSummary(summary *model.Summary) (int, error) {
	return w.writeJSON(summary)
}

// WriteRun outputs one run record.
func (w *JSONWriter) WriteRun(run *model.RunRecord) (int, error) {
	return w.writeJSON(run)
}

// WriteRuns outputs a list of run records. An empty list is written as [].
func (w *JSONWriter) WriteRuns(runs []*model.RunRecord) (int, error) {
	if runs == nil {
		runs = []*model.RunRecord{}
	}
	return w.writeJSON(runs)
}

// WriteComparison outputs an audit comparison.
func (w *JSONWriter) WriteComparison(comparison *model.Comparison) (int, error) {
	return w.writeJSON(comparison)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps an audit report with the version of sitectl that
// produced it, so stored reports can be told apart after upgrades.
type JSONReport struct {
	// Version is the sitectl version that generated this report.
	Version string `json:"version"`

	// Report is the full audit report.
	Report *model.AuditReport `json:"report"`

	// RiskScore is the weighted severity score of the report.
	RiskScore int `json:"risk_score"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.AuditReport, version string) *JSONReport {
	return &JSONReport{
		Version:   version,
		Report:    report,
		RiskScore: summaryOf(report).RiskScore(),
	}
}

// FullJSONWriter outputs audit reports inside a JSONReport wrapper.
// Every other output is the same as JSONWriter.
type FullJSONWriter struct {
	*JSONWriter

	// version is the sitectl version string.
	version string
}

// NewFullJSONWriter creates a writer for audit reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the audit report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.AuditReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
