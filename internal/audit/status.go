package audit

import (
	"context"
	"fmt"

	"github.com/nao1215/sitectl/internal/model"
)

// StatusAnalyzer reports pages that do not answer 2xx and pages reached
// through a redirect.
type StatusAnalyzer struct{}

// NewStatusAnalyzer creates a new StatusAnalyzer.
func NewStatusAnalyzer() *StatusAnalyzer {
	return &StatusAnalyzer{}
}

// Name returns the analyzer name.
func (a *StatusAnalyzer) Name() string {
	return "status"
}

// Category returns the analyzer category.
func (a *StatusAnalyzer) Category() string {
	return CategoryPage
}

// Analyze checks the status of every crawled page.
func (a *StatusAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	for _, page := range data.Pages {
		switch {
		case page.FinalURL != "":
			findings = append(findings, model.NewFinding(model.FindingStatusRedirect,
				"Page Redirects",
				"The URL redirects to another location.",
				page.URL+" -> "+page.FinalURL, page.URL))
			if !page.IsSuccess() {
				findings = append(findings, statusError(page))
			}
		case page.StatusCode >= 300 && page.StatusCode < 400:
			findings = append(findings, model.NewFinding(model.FindingStatusRedirect,
				"Page Redirects",
				"The URL answers with a redirect.",
				fmt.Sprintf("%d -> %s", page.StatusCode, page.GetHeader("Location")), page.URL))
		case !page.IsSuccess():
			findings = append(findings, statusError(page))
		}
	}
	return findings, nil
}

func statusError(page *model.Page) model.Finding {
	return model.NewFinding(model.FindingStatusError,
		"Page Returns Error Status",
		"The page answers with a non-2xx status code.",
		fmt.Sprintf("HTTP %d", page.StatusCode), page.URL)
}

var _ CheckAnalyzer = (*StatusAnalyzer)(nil)
