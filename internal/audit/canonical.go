package audit

import (
	"context"

	"github.com/nao1215/sitectl/internal/model"
)

// CanonicalAnalyzer checks <link rel="canonical"> on every indexable page.
type CanonicalAnalyzer struct{}

// NewCanonicalAnalyzer creates a new CanonicalAnalyzer.
func NewCanonicalAnalyzer() *CanonicalAnalyzer {
	return &CanonicalAnalyzer{}
}

// Name returns the analyzer name.
func (a *CanonicalAnalyzer) Name() string {
	return "canonical"
}

// Category returns the analyzer category.
func (a *CanonicalAnalyzer) Category() string {
	return CategoryPage
}

// Analyze reports missing, cross-host and mismatched canonical links.
func (a *CanonicalAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	for _, page := range data.Pages {
		if !indexable(page) {
			continue
		}
		target := effectiveURL(page)
		switch {
		case page.Canonical == "":
			findings = append(findings, model.NewFinding(model.FindingCanonicalMissing,
				"Canonical Link Missing",
				"The page has no canonical link.",
				"", page.URL))
		case hostOf(page.Canonical) != hostOf(target):
			findings = append(findings, model.NewFinding(model.FindingCanonicalCrossHost,
				"Canonical Link Points to Another Host",
				"The canonical URL is on a different host than the page.",
				page.Canonical, page.URL))
		case !sameURL(page.Canonical, target):
			findings = append(findings, model.NewFinding(model.FindingCanonicalMismatch,
				"Canonical Link Differs From Page URL",
				"The canonical URL is on the same host but not the fetched URL.",
				page.Canonical, page.URL))
		}
	}
	return findings, nil
}

var _ CheckAnalyzer = (*CanonicalAnalyzer)(nil)
