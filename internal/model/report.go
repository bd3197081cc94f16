package model

import "time"

// AuditReport is the result of an indexing audit of one site.
//
// Design decision: the report keeps raw crawl data (pages, sitemap URLs,
// robots.txt) next to the findings so analyzers can run in any order over the
// same data, and only the summarized part is written to the history store.
type AuditReport struct {
	// Site is the base URL that was audited.
	Site string `json:"site"`

	// DateAudited is when the audit started.
	DateAudited time.Time `json:"date_audited"`

	// === Robots and sitemap ===

	// RobotsFound is true if robots.txt answered with a 2xx status.
	RobotsFound bool `json:"robots_found"`

	// RobotsSitemaps lists the Sitemap: lines of robots.txt.
	RobotsSitemaps []string `json:"robots_sitemaps,omitempty"`

	// RobotsDisallow lists the Disallow: paths that apply to all agents.
	RobotsDisallow []string `json:"robots_disallow,omitempty"`

	// SitemapURL is the sitemap location that was fetched.
	SitemapURL string `json:"sitemap_url,omitempty"`

	// SitemapFound is true if the sitemap was fetched and parsed.
	SitemapFound bool `json:"sitemap_found"`

	// SitemapEntries are the <loc> URLs listed in the sitemap.
	SitemapEntries []string `json:"sitemap_entries,omitempty"`

	// === Crawl data ===

	// Crawls maps URLs to their HTTP status codes.
	Crawls map[string]int `json:"crawls,omitempty"`

	// Unvisited lists URLs still queued when the crawl hit its page limit.
	Unvisited []string `json:"unvisited,omitempty"`

	// PageCache stores crawled pages by URL.
	PageCache map[string]*Page `json:"-"`

	// CrawledPages keeps crawled pages in discovery order.
	CrawledPages []*Page `json:"-"`

	// === Results ===

	// Summary contains the findings and severity counts.
	Summary *Summary `json:"summary,omitempty"`

	// PerformedSteps lists the pipeline steps that actually ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true if the audit was cut short by its deadline.
	TimedOut bool `json:"timed_out"`

	// Error contains any error that stopped the audit early.
	Error error `json:"-"`

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewAuditReport creates a new report for the given site.
func NewAuditReport(site string) *AuditReport {
	return &AuditReport{
		Site:        site,
		DateAudited: time.Now(),
		Crawls:      make(map[string]int),
		PageCache:   make(map[string]*Page),
		Summary:     NewSummary(site),
	}
}

// AddPage adds a crawled page to the report.
// A URL that was already recorded is replaced but keeps its position.
func (r *AuditReport) AddPage(page *Page) {
	if _, seen := r.PageCache[page.URL]; !seen {
		r.CrawledPages = append(r.CrawledPages, page)
	} else {
		for i, p := range r.CrawledPages {
			if p.URL == page.URL {
				r.CrawledPages[i] = page
			}
		}
	}
	r.Crawls[page.URL] = page.StatusCode
	r.PageCache[page.URL] = page
	r.Summary.PagesCrawled = len(r.CrawledPages)
}

// GetPage retrieves a cached page by URL.
// Returns nil if the page was not crawled.
func (r *AuditReport) GetPage(url string) *Page {
	return r.PageCache[url]
}

// AddFinding records a finding, ignoring duplicates of the same
// type, value and location.
func (r *AuditReport) AddFinding(finding Finding) {
	if r.Summary == nil {
		r.Summary = NewSummary(r.Site)
	}
	r.Summary.add(finding)
}

// SetError records err as the reason the audit stopped.
func (r *AuditReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
		if r.Summary != nil {
			r.Summary.Error = err.Error()
		}
	}
}

// MarkTimedOut flags the report and its summary as cut short.
func (r *AuditReport) MarkTimedOut() {
	r.TimedOut = true
	if r.Summary != nil {
		r.Summary.TimedOut = true
	}
}
