package audit

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/sitectl/internal/model"
)

// Analyzer category constants.
const (
	CategoryPage   = "page"
	CategoryLocale = "locale"
	CategorySite   = "site"
	CategoryMedia  = "media"
)

// Analyzer coordinates the audit checks and aggregates their findings.
//
// Design decision: We use a coordinator pattern rather than running analyzers
// independently because:
//  1. Unified severity assessment across all findings
//  2. Deduplication of similar findings
//  3. Consistent context and cancellation handling
type Analyzer struct {
	analyzers []CheckAnalyzer
	options   AnalyzerOptions
	logger    *slog.Logger
}

// AnalyzerOptions configures the analyzer behavior.
type AnalyzerOptions struct {
	// EnableEXIF enables EXIF metadata extraction from images.
	// This fetches every JPEG and TIFF image and can be slow.
	EnableEXIF bool

	// Logger receives analyzer errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the default analyzer options.
func DefaultOptions() AnalyzerOptions {
	return AnalyzerOptions{EnableEXIF: true}
}

// CheckAnalyzer defines the interface for individual analyzers.
//
// Design decision: We use an interface rather than concrete types because:
//  1. Allows for easy extension with new analyzers
//  2. Enables testing with mock analyzers
type CheckAnalyzer interface {
	// Name returns the analyzer's name for logging and reporting.
	Name() string

	// Category returns the analyzer's category.
	Category() string

	// Analyze runs the analysis on the provided data.
	Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error)
}

// AnalysisData contains all data available for analysis.
//
// Design decision: We pass all data in a single struct rather than
// multiple parameters because:
//  1. Not all analyzers need all data types
//  2. Adding new data types doesn't change analyzer signatures
//  3. Easier to mock in tests
type AnalysisData struct {
	// Site is the audited base URL.
	Site string

	// Pages contains all crawled pages in discovery order.
	// When nil, Analyzer.Analyze takes them from Report.
	Pages []*model.Page

	// Report holds robots.txt and sitemap data plus the page cache.
	Report *model.AuditReport
}

// NewAnalyzer creates a new Analyzer with all built-in analyzers registered.
func NewAnalyzer(opts ...func(*AnalyzerOptions)) *Analyzer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	a := &Analyzer{
		options:   options,
		analyzers: make([]CheckAnalyzer, 0),
		logger:    options.Logger,
	}

	a.Register(NewStatusAnalyzer())
	a.Register(NewCanonicalAnalyzer())
	a.Register(NewMetaAnalyzer())
	a.Register(NewHreflangAnalyzer())
	a.Register(NewSitemapAnalyzer())
	if options.EnableEXIF {
		a.Register(NewEXIFAnalyzer())
	}

	return a
}

// HTTPClientSetter is implemented by analyzers that need an HTTP client.
type HTTPClientSetter interface {
	SetHTTPClient(client *http.Client)
}

// SetHTTPClient injects an HTTP client into analyzers that require it.
func (a *Analyzer) SetHTTPClient(client *http.Client) {
	for _, analyzer := range a.analyzers {
		if setter, ok := analyzer.(HTTPClientSetter); ok {
			setter.SetHTTPClient(client)
		}
	}
}

// Register adds an analyzer to the list.
func (a *Analyzer) Register(analyzer CheckAnalyzer) {
	a.analyzers = append(a.analyzers, analyzer)
}

// Names returns the names of the registered analyzers in run order.
func (a *Analyzer) Names() []string {
	names := make([]string, 0, len(a.analyzers))
	for _, analyzer := range a.analyzers {
		names = append(names, analyzer.Name())
	}
	return names
}

// Analyze runs all registered analyzers and aggregates findings.
// A failing analyzer is logged and skipped.
func (a *Analyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	if data.Pages == nil && data.Report != nil {
		data.Pages = data.Report.CrawledPages
	}

	var allFindings []model.Finding

	for _, analyzer := range a.analyzers {
		select {
		case <-ctx.Done():
			return deduplicateFindings(allFindings), ctx.Err()
		default:
		}

		findings, err := analyzer.Analyze(ctx, data)
		if err != nil {
			a.logger.Warn("analyzer failed", "analyzer", analyzer.Name(), "error", err)
			continue
		}
		allFindings = append(allFindings, findings...)
	}

	return deduplicateFindings(allFindings), nil
}

// deduplicateFindings removes findings with the same type, value and
// location, keeping the first.
func deduplicateFindings(findings []model.Finding) []model.Finding {
	seen := make(map[string]bool)
	result := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		key := f.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, f)
	}
	return result
}

// normalizeURL makes URLs comparable: lowercase scheme and host, "/" for
// an empty path, no fragment.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

func sameURL(a, b string) bool {
	return normalizeURL(a) == normalizeURL(b)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// effectiveURL is where the page content actually lives.
func effectiveURL(p *model.Page) string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// indexable reports whether markup checks apply to p.
func indexable(p *model.Page) bool {
	return p.IsSuccess() && p.IsHTML()
}
