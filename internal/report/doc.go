// Package report renders audit results and run records for people and tools.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: structured JSON for CI pipelines and scripts
//   - MarkdownWriter: GitHub-flavoured Markdown for pull request comments
//     and job summaries
//
// Design decision: report data structures live in the model package and
// carry no formatting logic, so a new output format only touches this
// package. Verify and submit runs are written through their
// model.RunRecord form, which keeps one rendering path for every command
// that sends probes.
package report
