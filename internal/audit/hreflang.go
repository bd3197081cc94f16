package audit

import (
	"context"

	"github.com/nao1215/sitectl/internal/i18n"
	"github.com/nao1215/sitectl/internal/model"
)

// HreflangAnalyzer checks the hreflang cluster of every indexable page.
//
// This analyzer checks for:
//   - pages without any hreflang alternate
//   - invalid BCP 47 tags
//   - clusters without x-default
//   - alternates whose target page does not link back
//   - <html lang> disagreeing with the page's own hreflang
type HreflangAnalyzer struct{}

// NewHreflangAnalyzer creates a new HreflangAnalyzer.
func NewHreflangAnalyzer() *HreflangAnalyzer {
	return &HreflangAnalyzer{}
}

// Name returns the analyzer name.
func (a *HreflangAnalyzer) Name() string {
	return "hreflang"
}

// Category returns the analyzer category.
func (a *HreflangAnalyzer) Category() string {
	return CategoryLocale
}

// Analyze checks hreflang annotations.
func (a *HreflangAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	byURL := make(map[string]*model.Page, len(data.Pages))
	for _, page := range data.Pages {
		byURL[normalizeURL(page.URL)] = page
		if page.FinalURL != "" {
			byURL[normalizeURL(page.FinalURL)] = page
		}
	}

	for _, page := range data.Pages {
		if ctx.Err() != nil {
			return findings, ctx.Err()
		}
		if !indexable(page) {
			continue
		}
		if len(page.Alternates) == 0 {
			findings = append(findings, model.NewFinding(model.FindingHreflangMissing,
				"Hreflang Alternates Missing",
				"The page does not link its locale variants.",
				"", page.URL))
			continue
		}

		self := effectiveURL(page)
		hasXDefault := false
		for _, alt := range page.Alternates {
			if !i18n.ValidTag(alt.Hreflang) {
				findings = append(findings, model.NewFinding(model.FindingHreflangInvalidTag,
					"Invalid Hreflang Tag",
					"An hreflang value is not a valid language tag.",
					alt.Hreflang, page.URL))
				continue
			}
			if alt.Hreflang == model.XDefault {
				hasXDefault = true
				continue
			}

			if sameURL(alt.Href, self) {
				if page.Lang == "" || !i18n.SameLanguage(page.Lang, alt.Hreflang) {
					findings = append(findings, model.NewFinding(model.FindingLangMismatch,
						"HTML lang Does Not Match Hreflang",
						"The lang attribute of <html> differs from the hreflang the page declares for itself.",
						"lang="+page.Lang+" hreflang="+alt.Hreflang, page.URL))
				}
				continue
			}

			target, crawled := byURL[normalizeURL(alt.Href)]
			if !crawled || !indexable(target) {
				continue
			}
			if !linksBack(target, self) {
				findings = append(findings, model.NewFinding(model.FindingHreflangReciprocal,
					"Hreflang Not Reciprocal",
					"A locale variant does not list this page among its alternates.",
					alt.Hreflang+" "+alt.Href, page.URL))
			}
		}

		if !hasXDefault {
			findings = append(findings, model.NewFinding(model.FindingHreflangNoXDefault,
				"Hreflang x-default Missing",
				"The hreflang cluster has no x-default entry.",
				"", page.URL))
		}
	}

	return findings, nil
}

// linksBack reports whether target lists self as an alternate.
func linksBack(target *model.Page, self string) bool {
	for _, alt := range target.Alternates {
		if alt.Hreflang != model.XDefault && sameURL(alt.Href, self) {
			return true
		}
	}
	return false
}

var _ CheckAnalyzer = (*HreflangAnalyzer)(nil)
