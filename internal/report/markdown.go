package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitectl/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavoured Markdown, meant for
// pull request comments and CI job summaries.
//
// Design decision: nao1215/markdown builds tables, alerts and mermaid
// charts from typed calls, so the output stays valid Markdown however
// odd the URLs and titles in a report are.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the audit report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	summary := summaryOf(report)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, "sitectl Audit Report", summary)
	w.writeDiscovery(md, report)
	w.writeSummary(md, summary)
	w.writeFindings(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs a stored audit summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, "sitectl Audit Summary", summary)
	w.writeSummary(md, summary)
	w.writeFindings(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteRun outputs a run as a table of checks.
func (w *MarkdownWriter) WriteRun(run *model.RunRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("sitectl " + run.Command)
	md.PlainText("")
	md.PlainTextf("Target: `%s`", run.Target)
	md.PlainText("")

	rows := make([][]string, 0, len(run.Checks))
	for _, c := range run.Checks {
		result := "✅"
		if !c.OK {
			result = "❌"
		}
		rows = append(rows, []string{result, truncateString(c.Name, 60), checkStatus(c), orDash(truncateString(c.Detail, 60))})
	}
	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Result", "Check", "Status", "Detail"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if run.AllSucceeded() {
		md.Tip("All " + strconv.Itoa(run.Total) + " checks succeeded.")
	} else {
		md.Warningf("%d/%d succeeded.", run.Succeeded, run.Total)
	}
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteRuns outputs stored runs as a table.
func (w *MarkdownWriter) WriteRuns(runs []*model.RunRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("sitectl History")
	md.PlainText("")
	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Format(dateLayout),
			run.Command,
			strconv.Itoa(run.Succeeded) + "/" + strconv.Itoa(run.Total),
			"`" + run.Target + "`",
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Command", "Result", "Target"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteComparison outputs new and resolved findings between two audits.
func (w *MarkdownWriter) WriteComparison(comparison *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("sitectl Audit Comparison")
	md.PlainText("")

	rows := [][]string{{"Site", "`" + comparison.Site + "`"}}
	if comparison.Previous != nil {
		rows = append(rows, []string{"Previous Audit", comparison.Previous.DateAudited.Format(dateLayout)})
	}
	if comparison.Current != nil {
		rows = append(rows, []string{"Current Audit", comparison.Current.DateAudited.Format(dateLayout)})
	}
	rows = append(rows,
		[]string{"Risk Score", strconv.Itoa(comparison.PreviousScore) + " → " + strconv.Itoa(comparison.CurrentScore)},
		[]string{"Unchanged Findings", strconv.Itoa(comparison.Unchanged)},
	)
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	switch comparison.Direction {
	case model.DirectionWorsened:
		md.Warningf("Indexing health worsened: %d new finding(s).", len(comparison.New))
	case model.DirectionImproved:
		md.Tip("Indexing health improved: " + strconv.Itoa(len(comparison.Resolved)) + " finding(s) resolved.")
	default:
		md.Note("Risk score unchanged.")
	}
	md.PlainText("")

	md.H2("New Findings")
	md.PlainText("")
	w.writeFindingsTableOrNone(md, comparison.New)

	md.H2("Resolved Findings")
	md.PlainText("")
	w.writeFindingsTableOrNone(md, comparison.Resolved)

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeHeader writes the report title and audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, title string, summary *model.Summary) {
	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + summary.Site + "`"},
			{"Audit Date", summary.DateAudited.Format(dateLayout)},
			{"Pages Crawled", strconv.Itoa(summary.PagesCrawled)},
			{"Risk Score", strconv.Itoa(summary.RiskScore())},
			{"Status", statusText(summary)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on summary state.
func statusText(summary *model.Summary) string {
	if summary.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if summary.Error != "" {
		return "❌ Error - " + summary.Error
	}
	return "✅ Complete"
}

// writeDiscovery writes the robots.txt and sitemap section.
func (w *MarkdownWriter) writeDiscovery(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Discovery")
	md.PlainText("")

	sitemap := orDash(report.SitemapURL)
	if report.SitemapURL != "" {
		sitemap = "`" + report.SitemapURL + "`"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Status", "Details"},
		Rows: [][]string{
			{"robots.txt", foundText(report.RobotsFound), strconv.Itoa(len(report.RobotsDisallow)) + " disallow rule(s)"},
			{"sitemap", foundText(report.SitemapFound), sitemap + ", " + strconv.Itoa(len(report.SitemapEntries)) + " URL(s)"},
		},
	})
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(summary.CriticalCount)},
			{"🟠 High", strconv.Itoa(summary.HighCount)},
			{"🟡 Medium", strconv.Itoa(summary.MediumCount)},
			{"🔵 Low", strconv.Itoa(summary.LowCount)},
			{"⚪ Info", strconv.Itoa(summary.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if summary.HasFindings() {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of the severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	counts := []struct {
		label string
		count int
	}{
		{"Critical", summary.CriticalCount},
		{"High", summary.HighCount},
		{"Medium", summary.MediumCount},
		{"Low", summary.LowCount},
		{"Info", summary.InfoCount},
	}
	for _, c := range counts {
		if c.count > 0 {
			chart.LabelAndIntValue(c.label, uint64(c.count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the worst severity found.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.CriticalCount > 0:
		md.Cautionf(
			"%d critical finding(s): pages listed in the sitemap are blocked from indexing.",
			summary.CriticalCount,
		)
	case summary.HighCount > 0:
		md.Warningf(
			"%d high severity finding(s) keep pages out of search results.",
			summary.HighCount,
		)
	case summary.MediumCount > 0:
		md.Importantf(
			"%d medium severity finding(s) may split or misdirect ranking signals.",
			summary.MediumCount,
		)
	case summary.TotalFindings() > 0:
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("No indexing issues detected.")
	}
	md.PlainText("")
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Findings")
	md.PlainText("")

	if !summary.HasFindings() {
		md.PlainText("No indexing issues detected.")
		md.PlainText("")
		return
	}

	headers := map[model.Severity]string{
		model.SeverityCritical: "### 🔴 Critical",
		model.SeverityHigh:     "### 🟠 High",
		model.SeverityMedium:   "### 🟡 Medium",
		model.SeverityLow:      "### 🔵 Low",
		model.SeverityInfo:     "### ⚪ Info",
	}
	for _, severity := range severityOrder {
		findings := summary.GetFindingsBySeverity(severity)
		if len(findings) == 0 {
			continue
		}
		md.PlainText(headers[severity])
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

func (w *MarkdownWriter) writeFindingsTableOrNone(md *markdown.Markdown, findings []model.Finding) {
	if len(findings) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}
	w.writeFindingsTable(md, findings)
}

// writeFindingsTable writes a table of findings followed by collapsible
// descriptions.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{
			f.SeverityText,
			f.Title,
			orDash(truncateString(f.Value, 50)),
			orDash(truncateString(f.Location, 60)),
			orDash(truncateString(f.Recommendation, 60)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Title", "Value", "Location", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if f.Description != "" {
			md.Details(f.Title, f.Description)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [sitectl](https://github.com/nao1215/sitectl)*")
}
