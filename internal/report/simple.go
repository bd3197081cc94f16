package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/sitectl/internal/model"
)

const (
	lineWidth  = 70
	dateLayout = "2006-01-02 15:04:05 MST"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: plain ASCII without ANSI colors, since the output is
// often redirected into CI logs where escape codes turn into noise.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose adds descriptions and recommendations to findings.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the audit report, including robots.txt and sitemap status.
func (w *SimpleWriter) Write(report *model.AuditReport) (int, error) {
	var sb strings.Builder
	summary := summaryOf(report)

	w.writeHeader(&sb, "SITECTL AUDIT REPORT", summary)
	w.writeDiscovery(&sb, report)
	w.writeSeveritySummary(&sb, summary)
	w.writeFindings(&sb, summary)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteSummary outputs a stored audit summary.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "SITECTL AUDIT SUMMARY", summary)
	w.writeSeveritySummary(&sb, summary)
	w.writeFindings(&sb, summary)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteRun outputs one check per line followed by the success counter.
func (w *SimpleWriter) WriteRun(run *model.RunRecord) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n", strings.ToUpper(run.Command), run.Target)
	for _, c := range run.Checks {
		mark := "[ OK ]"
		if !c.OK {
			mark = "[FAIL]"
		}
		fmt.Fprintf(&sb, "  %s %s  %s", mark, c.Name, checkStatus(c))
		if c.Detail != "" {
			fmt.Fprintf(&sb, " (%s)", c.Detail)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d/%d succeeded\n", run.Succeeded, run.Total)

	return io.WriteString(w.output, sb.String())
}

// WriteRuns outputs one line per stored run.
func (w *SimpleWriter) WriteRuns(runs []*model.RunRecord) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	fmt.Fprintf(&sb, "%-6s %-20s %-22s %-9s %s\n", "ID", "STARTED", "COMMAND", "RESULT", "TARGET")
	for _, run := range runs {
		fmt.Fprintf(&sb, "%-6d %-20s %-22s %-9s %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Command,
			strconv.Itoa(run.Succeeded)+"/"+strconv.Itoa(run.Total),
			run.Target,
		)
	}

	return io.WriteString(w.output, sb.String())
}

// WriteComparison outputs new and resolved findings between two audits.
func (w *SimpleWriter) WriteComparison(comparison *model.Comparison) (int, error) {
	var sb strings.Builder

	rule(&sb, '=')
	sb.WriteString("SITECTL AUDIT COMPARISON\n")
	rule(&sb, '=')
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Site:       %s\n", comparison.Site)
	if comparison.Previous != nil {
		fmt.Fprintf(&sb, "Previous:   %s (risk score %d)\n",
			comparison.Previous.DateAudited.Format(dateLayout), comparison.PreviousScore)
	}
	if comparison.Current != nil {
		fmt.Fprintf(&sb, "Current:    %s (risk score %d)\n",
			comparison.Current.DateAudited.Format(dateLayout), comparison.CurrentScore)
	}
	fmt.Fprintf(&sb, "Direction:  %s\n\n", strings.ToUpper(comparison.DirectionText))

	w.writeFindingList(&sb, "NEW FINDINGS", "+", comparison.New)
	w.writeFindingList(&sb, "RESOLVED FINDINGS", "-", comparison.Resolved)
	fmt.Fprintf(&sb, "Unchanged findings: %d\n", comparison.Unchanged)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeFindingList(sb *strings.Builder, title, mark string, findings []model.Finding) {
	if len(findings) == 0 && !w.showEmpty {
		return
	}
	rule(sb, '-')
	sb.WriteString(title + "\n")
	rule(sb, '-')
	if len(findings) == 0 {
		sb.WriteString("  None\n")
	}
	for _, f := range findings {
		fmt.Fprintf(sb, "  %s [%s] %s", mark, f.SeverityText, f.Title)
		if f.Location != "" {
			fmt.Fprintf(sb, " @ %s", f.Location)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeHeader writes the report title and audit information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string, summary *model.Summary) {
	sb.WriteString("\n")
	rule(sb, '=')
	pad := max((lineWidth-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	rule(sb, '=')
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Site:           %s\n", summary.Site)
	fmt.Fprintf(sb, "Audit Date:     %s\n", summary.DateAudited.Format(dateLayout))
	fmt.Fprintf(sb, "Pages Crawled:  %d\n", summary.PagesCrawled)

	switch {
	case summary.TimedOut:
		sb.WriteString("Status:         TIMED OUT (partial results)\n")
	case summary.Error != "":
		fmt.Fprintf(sb, "Status:         ERROR - %s\n", summary.Error)
	default:
		sb.WriteString("Status:         Complete\n")
	}
	sb.WriteString("\n")
}

// writeDiscovery writes what robots.txt and the sitemap revealed.
func (w *SimpleWriter) writeDiscovery(sb *strings.Builder, report *model.AuditReport) {
	rule(sb, '-')
	sb.WriteString("DISCOVERY\n")
	rule(sb, '-')
	sb.WriteString("\n")

	fmt.Fprintf(sb, "  robots.txt:  %s\n", foundText(report.RobotsFound))
	if report.SitemapURL != "" {
		fmt.Fprintf(sb, "  sitemap:     %s (%s, %d URLs)\n",
			report.SitemapURL, foundText(report.SitemapFound), len(report.SitemapEntries))
	}
	if w.verbose {
		for _, d := range report.RobotsDisallow {
			fmt.Fprintf(sb, "  disallow:    %s\n", d)
		}
	}
	sb.WriteString("\n")
}

// writeSeveritySummary writes the count per severity.
func (w *SimpleWriter) writeSeveritySummary(sb *strings.Builder, summary *model.Summary) {
	rule(sb, '-')
	sb.WriteString("SEVERITY SUMMARY\n")
	rule(sb, '-')
	sb.WriteString("\n")

	fmt.Fprintf(sb, "  CRITICAL: %d\n", summary.CriticalCount)
	fmt.Fprintf(sb, "  HIGH:     %d\n", summary.HighCount)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", summary.MediumCount)
	fmt.Fprintf(sb, "  LOW:      %d\n", summary.LowCount)
	fmt.Fprintf(sb, "  INFO:     %d\n", summary.InfoCount)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d findings (risk score %d)\n", summary.TotalFindings(), summary.RiskScore())
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, summary *model.Summary) {
	if !summary.HasFindings() && !w.showEmpty {
		return
	}

	rule(sb, '-')
	sb.WriteString("FINDINGS\n")
	rule(sb, '-')
	sb.WriteString("\n")

	for _, severity := range severityOrder {
		findings := summary.GetFindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}
		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(severity), severity.String())

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		fmt.Fprintf(sb, "  * %s\n", finding.Title)
		if finding.Value != "" {
			fmt.Fprintf(sb, "    Value: %s\n", finding.Value)
		}
		if finding.Location != "" {
			fmt.Fprintf(sb, "    Location: %s\n", finding.Location)
		}
		if w.verbose && finding.Description != "" {
			fmt.Fprintf(sb, "    Description: %s\n", finding.Description)
		}
		if w.verbose && finding.Recommendation != "" {
			fmt.Fprintf(sb, "    Fix: %s\n", finding.Recommendation)
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	rule(sb, '=')
	sb.WriteString("Report generated by sitectl\n")
	sb.WriteString("https://github.com/nao1215/sitectl\n")
	rule(sb, '=')
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

func rule(sb *strings.Builder, c byte) {
	sb.WriteString(strings.Repeat(string(c), lineWidth))
	sb.WriteString("\n")
}

func foundText(found bool) string {
	if found {
		return "found"
	}
	return "not found"
}

// checkStatus renders a check outcome with its HTTP code when it has one.
func checkStatus(c model.CheckRecord) string {
	if c.StatusCode != 0 {
		return c.Status + " (HTTP " + strconv.Itoa(c.StatusCode) + ")"
	}
	return c.Status
}
