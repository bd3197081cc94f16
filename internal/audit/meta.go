package audit

import (
	"context"
	"strings"

	"github.com/nao1215/sitectl/internal/model"
)

// MetaAnalyzer checks titles, descriptions and robots directives.
//
// This analyzer checks for:
//   - missing titles and titles shared by several pages
//   - missing meta descriptions
//   - noindex on pages the sitemap asks engines to index
type MetaAnalyzer struct{}

// NewMetaAnalyzer creates a new MetaAnalyzer.
func NewMetaAnalyzer() *MetaAnalyzer {
	return &MetaAnalyzer{}
}

// Name returns the analyzer name.
func (a *MetaAnalyzer) Name() string {
	return "meta"
}

// Category returns the analyzer category.
func (a *MetaAnalyzer) Category() string {
	return CategoryPage
}

// Analyze checks the page metadata.
func (a *MetaAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	inSitemap := make(map[string]bool)
	if data.Report != nil {
		for _, loc := range data.Report.SitemapEntries {
			inSitemap[normalizeURL(loc)] = true
		}
	}

	titles := make(map[string][]string)
	var titleOrder []string
	for _, page := range data.Pages {
		if !indexable(page) {
			continue
		}

		title := strings.TrimSpace(page.Title)
		if title == "" {
			findings = append(findings, model.NewFinding(model.FindingTitleMissing,
				"Title Missing",
				"The page has no <title>.",
				"", page.URL))
		} else {
			if _, ok := titles[title]; !ok {
				titleOrder = append(titleOrder, title)
			}
			titles[title] = append(titles[title], page.URL)
		}

		if strings.TrimSpace(page.Description) == "" {
			findings = append(findings, model.NewFinding(model.FindingDescriptionMissing,
				"Meta Description Missing",
				"The page has no meta description.",
				"", page.URL))
		}

		if page.IsNoIndex() && (inSitemap[normalizeURL(page.URL)] || inSitemap[normalizeURL(effectiveURL(page))]) {
			findings = append(findings, model.NewFinding(model.FindingNoIndex,
				"Sitemap Page Marked noindex",
				"The page is listed in sitemap.xml but carries a noindex directive.",
				page.Robots, page.URL))
		}
	}

	for _, title := range titleOrder {
		urls := titles[title]
		if len(urls) < 2 {
			continue
		}
		for _, u := range urls {
			findings = append(findings, model.NewFinding(model.FindingTitleDuplicate,
				"Duplicate Title",
				"Several pages share this title.",
				title, u))
		}
	}

	return findings, nil
}

var _ CheckAnalyzer = (*MetaAnalyzer)(nil)
