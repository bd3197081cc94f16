package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/sitectl/internal/audit"
	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/crawler"
	"github.com/nao1215/sitectl/internal/model"
	"github.com/nao1215/sitectl/internal/probe"
	"github.com/nao1215/sitectl/internal/seo"
)

// ErrNoClient is returned by steps created without a probe client.
var ErrNoClient = errors.New("step has no probe client")

// maxChildSitemaps bounds how many child sitemaps of a sitemap index are read.
const maxChildSitemaps = 10

// RobotsSitemapStep fetches robots.txt and the sitemap of the site.
// The sitemap is the first same-host Sitemap: line of robots.txt, or
// /sitemap.xml. Sitemap indexes are expanded one level deep.
//
// Design decision: a missing robots.txt or sitemap is a finding, not a
// step failure, so the crawl still runs from the home page.
type RobotsSitemapStep struct {
	client *probe.Client
	logger *slog.Logger
}

// RobotsSitemapStepOption configures a RobotsSitemapStep.
type RobotsSitemapStepOption func(*RobotsSitemapStep)

// WithRobotsLogger sets a custom logger for the robots and sitemap step.
func WithRobotsLogger(logger *slog.Logger) RobotsSitemapStepOption {
	return func(s *RobotsSitemapStep) {
		s.logger = logger
	}
}

// NewRobotsSitemapStep creates a new robots.txt and sitemap step.
func NewRobotsSitemapStep(client *probe.Client, opts ...RobotsSitemapStepOption) *RobotsSitemapStep {
	s := &RobotsSitemapStep{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RobotsSitemapStep) Name() string {
	return "robots_sitemap"
}

// Do executes the robots and sitemap step.
func (s *RobotsSitemapStep) Do(ctx context.Context, report *model.AuditReport) error {
	if s.client == nil {
		return ErrNoClient
	}
	base := config.TrimBaseURL(report.Site)

	robotsResult := s.client.Snapshot(ctx, base+"/robots.txt")
	if robotsResult.OK() {
		robots := seo.ParseRobots(robotsResult.Body)
		report.RobotsFound = true
		report.RobotsSitemaps = robots.Sitemaps
		report.RobotsDisallow = robots.Disallow
	} else {
		s.logger.Debug("robots.txt unavailable", "site", base, "status", robotsResult.Status.String(), "code", robotsResult.StatusCode)
	}

	report.SitemapURL = base + "/sitemap.xml"
	for _, candidate := range report.RobotsSitemaps {
		if sameHost(candidate, base) {
			report.SitemapURL = candidate
			break
		}
	}

	sitemap, err := s.fetchSitemap(ctx, report.SitemapURL)
	if err != nil {
		s.logger.Debug("sitemap unavailable", "url", report.SitemapURL, "error", err)
		return nil
	}
	report.SitemapFound = true
	report.SitemapEntries = sitemap.Locs()

	for i, child := range sitemap.Children {
		if i >= maxChildSitemaps {
			s.logger.Warn("sitemap index truncated", "url", report.SitemapURL, "children", len(sitemap.Children))
			break
		}
		childMap, err := s.fetchSitemap(ctx, child)
		if err != nil {
			s.logger.Debug("child sitemap unavailable", "url", child, "error", err)
			continue
		}
		report.SitemapEntries = append(report.SitemapEntries, childMap.Locs()...)
	}

	s.logger.Info("robots and sitemap fetched",
		"robots", report.RobotsFound,
		"sitemap_urls", len(report.SitemapEntries),
	)
	return nil
}

func (s *RobotsSitemapStep) fetchSitemap(ctx context.Context, sitemapURL string) (*seo.Sitemap, error) {
	result := s.client.Snapshot(ctx, sitemapURL)
	if !result.OK() {
		if result.Error != "" {
			return nil, fmt.Errorf("%w: %s", result.Status.Error(), result.Error)
		}
		return nil, fmt.Errorf("%w: HTTP %d", result.Status.Error(), result.StatusCode)
	}
	return seo.ParseSitemap(result.Body)
}

func sameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host)
}

// CrawlStep crawls the site from its home page, seeded with the sitemap URLs.
//
// Design decision: Crawling is separate from the robots step because:
// 1. It has different configuration (depth, limits, delay)
// 2. It produces different data (pages vs site files)
type CrawlStep struct {
	// client fetches pages. It should follow redirects so that FinalURL
	// is recorded.
	client *probe.Client

	// maxDepth limits crawl recursion.
	maxDepth int

	// maxPages limits total pages to crawl.
	maxPages int

	// delay between requests for politeness.
	delay time.Duration

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// ignorePatterns are URL path patterns to skip during crawling.
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	followPatterns []string

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlMaxPages sets the maximum pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlDelay sets the delay between requests.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// WithCrawlIgnorePatterns sets URL path patterns to skip during crawling.
func WithCrawlIgnorePatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.ignorePatterns = patterns
	}
}

// WithCrawlFollowPatterns sets URL path patterns to follow during crawling.
func WithCrawlFollowPatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.followPatterns = patterns
	}
}

// WithCrawlMaxBodySize sets the maximum response body size in bytes.
func WithCrawlMaxBodySize(maxBodySize int64) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxBodySize = maxBodySize
	}
}

// NewCrawlStep creates a new crawling step.
func NewCrawlStep(client *probe.Client, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		client:      client,
		maxDepth:    config.DefaultCrawlDepth,
		maxPages:    config.DefaultMaxPages,
		delay:       config.DefaultCrawlDelay,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.AuditReport) error {
	if s.client == nil {
		return ErrNoClient
	}

	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithMaxPages(s.maxPages),
		crawler.WithDelay(s.delay),
		crawler.WithSpiderMaxBodySize(s.maxBodySize),
		crawler.WithSeeds(report.SitemapEntries),
		crawler.WithSpiderLogger(s.logger),
	}
	if report.RobotsFound {
		spiderOpts = append(spiderOpts, crawler.WithRobots(&seo.Robots{
			Sitemaps: report.RobotsSitemaps,
			Disallow: report.RobotsDisallow,
		}))
	}
	if len(s.ignorePatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithIgnorePatterns(s.ignorePatterns))
	}
	if len(s.followPatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithFollowPatterns(s.followPatterns))
	}

	spider := crawler.NewSpider(s.client.HTTPClient(), spiderOpts...)
	pages, err := spider.Crawl(ctx, config.TrimBaseURL(report.Site)+"/")
	for _, page := range pages {
		report.AddPage(page)
	}
	if err != nil {
		// Partial results stay in the report.
		return fmt.Errorf("crawl: %w", err)
	}

	report.Unvisited = spider.Unvisited()
	stats := spider.Stats()
	s.logger.Info("crawl completed",
		"pages_visited", stats.PagesVisited,
		"urls_queued", stats.URLsQueued,
		"truncated", stats.Truncated,
	)
	if stats.Truncated {
		s.logger.Warn("crawl stopped at page limit", "max_pages", s.maxPages, "unvisited", len(report.Unvisited))
	}
	return nil
}

// AnalyzeStep runs the audit analyzers over the collected data.
//
// Design decision: analysis is a separate step because:
// 1. It operates on accumulated data from previous steps
// 2. It has its own configuration (which analyzers to run)
type AnalyzeStep struct {
	analyzer *audit.Analyzer
	logger   *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// WithAnalyzer replaces the default analyzer set.
func WithAnalyzer(analyzer *audit.Analyzer) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.analyzer = analyzer
	}
}

// NewAnalyzeStep creates a new analysis step. The client is handed to
// analyzers that download resources, such as the EXIF analyzer.
func NewAnalyzeStep(client *probe.Client, opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyzer == nil {
		s.analyzer = audit.NewAnalyzer(func(o *audit.AnalyzerOptions) {
			o.Logger = s.logger
		})
	}
	if client != nil {
		s.analyzer.SetHTTPClient(client.HTTPClient())
	}
	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis step.
func (s *AnalyzeStep) Do(ctx context.Context, report *model.AuditReport) error {
	findings, err := s.analyzer.Analyze(ctx, &audit.AnalysisData{
		Site:   config.TrimBaseURL(report.Site),
		Pages:  report.CrawledPages,
		Report: report,
	})
	for _, f := range findings {
		report.AddFinding(f)
	}
	if err != nil {
		return err
	}

	s.logger.Info("analysis completed",
		"findings_count", len(findings),
	)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// CrawlDepth is the maximum depth for crawling.
	CrawlDepth int

	// CrawlMaxPages is the maximum number of pages to crawl.
	CrawlMaxPages int

	// CrawlDelay is the delay between HTTP requests during crawling.
	CrawlDelay time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// IgnorePatterns are URL path patterns to skip during crawling.
	IgnorePatterns []string

	// FollowPatterns are URL path patterns to follow during crawling.
	FollowPatterns []string

	// EnableEXIF downloads images to inspect their metadata.
	EnableEXIF bool
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineCrawlDepth sets the crawl depth for the pipeline.
func WithPipelineCrawlDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDepth = depth
	}
}

// WithPipelineCrawlMaxPages sets the maximum pages to crawl.
func WithPipelineCrawlMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlMaxPages = maxPages
	}
}

// WithPipelineCrawlDelay sets the delay between HTTP requests during crawling.
func WithPipelineCrawlDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDelay = delay
	}
}

// WithPipelineMaxBodySize sets the maximum response body size in bytes.
func WithPipelineMaxBodySize(maxBodySize int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxBodySize = maxBodySize
	}
}

// WithPipelineIgnorePatterns sets URL patterns to skip during crawling.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineFollowPatterns sets URL patterns to follow during crawling.
func WithPipelineFollowPatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FollowPatterns = patterns
	}
}

// WithPipelineEXIF enables or disables image metadata checks.
func WithPipelineEXIF(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.EnableEXIF = enabled
	}
}

// DefaultPipeline creates the standard audit pipeline:
// robots and sitemap, crawl, analyze.
//
// The client should follow redirects; the crawl records where each page
// ended up and the analyzers judge canonical links against it.
func DefaultPipeline(client *probe.Client, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		CrawlDepth:    config.DefaultCrawlDepth,
		CrawlMaxPages: config.DefaultMaxPages,
		CrawlDelay:    config.DefaultCrawlDelay,
		MaxBodySize:   config.DefaultMaxBodySize,
		EnableEXIF:    true,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	crawlOpts := []CrawlStepOption{
		WithCrawlMaxDepth(cfg.CrawlDepth),
		WithCrawlMaxPages(cfg.CrawlMaxPages),
		WithCrawlDelay(cfg.CrawlDelay),
		WithCrawlMaxBodySize(cfg.MaxBodySize),
		WithCrawlLogger(p.logger),
	}
	if len(cfg.IgnorePatterns) > 0 {
		crawlOpts = append(crawlOpts, WithCrawlIgnorePatterns(cfg.IgnorePatterns))
	}
	if len(cfg.FollowPatterns) > 0 {
		crawlOpts = append(crawlOpts, WithCrawlFollowPatterns(cfg.FollowPatterns))
	}

	analyzer := audit.NewAnalyzer(func(o *audit.AnalyzerOptions) {
		o.EnableEXIF = cfg.EnableEXIF
		o.Logger = p.logger
	})

	p.AddSteps(
		NewRobotsSitemapStep(client, WithRobotsLogger(p.logger)),
		NewCrawlStep(client, crawlOpts...),
		NewAnalyzeStep(client, WithAnalyzer(analyzer), WithAnalyzeLogger(p.logger)),
	)
	return p
}
