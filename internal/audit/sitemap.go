package audit

import (
	"context"
	"errors"
	"strconv"

	"github.com/nao1215/sitectl/internal/model"
)

// ErrNoReport is returned by analyzers that need robots and sitemap data.
var ErrNoReport = errors.New("analysis data has no report")

// SitemapAnalyzer checks robots.txt and sitemap.xml against the crawl.
type SitemapAnalyzer struct{}

// NewSitemapAnalyzer creates a new SitemapAnalyzer.
func NewSitemapAnalyzer() *SitemapAnalyzer {
	return &SitemapAnalyzer{}
}

// Name returns the analyzer name.
func (a *SitemapAnalyzer) Name() string {
	return "sitemap"
}

// Category returns the analyzer category.
func (a *SitemapAnalyzer) Category() string {
	return CategorySite
}

// Analyze checks site-level indexing files.
func (a *SitemapAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	report := data.Report
	if report == nil {
		return nil, ErrNoReport
	}
	findings := make([]model.Finding, 0)

	if !report.RobotsFound {
		findings = append(findings, model.NewFinding(model.FindingRobotsUnreachable,
			"robots.txt Unreachable",
			"robots.txt did not answer with a 2xx status.",
			"", data.Site+"/robots.txt"))
	} else if len(report.RobotsSitemaps) == 0 {
		findings = append(findings, model.NewFinding(model.FindingRobotsNoSitemap,
			"robots.txt Has No Sitemap Line",
			"robots.txt does not list any sitemap.",
			"", data.Site+"/robots.txt"))
	}

	if !report.SitemapFound {
		findings = append(findings, model.NewFinding(model.FindingSitemapUnreachable,
			"Sitemap Unreachable",
			"The sitemap could not be fetched or parsed.",
			"", report.SitemapURL))
		return findings, nil
	}

	status := make(map[string]int, len(report.Crawls))
	for u, code := range report.Crawls {
		status[normalizeURL(u)] = code
	}
	skipped := make(map[string]bool, len(report.Unvisited))
	for _, u := range report.Unvisited {
		skipped[normalizeURL(u)] = true
	}
	for _, loc := range report.SitemapEntries {
		code, crawled := status[normalizeURL(loc)]
		if crawled && code >= 200 && code < 300 {
			continue
		}
		if !crawled && skipped[normalizeURL(loc)] {
			findings = append(findings, model.NewFinding(model.FindingSitemapURLNotChecked,
				"Sitemap URL Not Checked",
				"The crawl reached its page limit before this sitemap URL.",
				"not checked (page cap)", loc))
			continue
		}
		value := "not fetched"
		if crawled {
			value = "HTTP " + strconv.Itoa(code)
		}
		findings = append(findings, model.NewFinding(model.FindingSitemapURLNotCrawled,
			"Sitemap URL Not Fetchable",
			"A URL listed in the sitemap was not fetched successfully.",
			value, loc))
	}

	return findings, nil
}

var _ CheckAnalyzer = (*SitemapAnalyzer)(nil)
