package submit

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/sitectl/internal/config"
	sitelog "github.com/nao1215/sitectl/internal/log"
	"github.com/nao1215/sitectl/internal/probe"
)

// IndexNowSettings are the parameters of IndexNow requests.
type IndexNowSettings struct {
	Endpoint string

	Key string

	// KeyLocation is the URL of the key file when it is not <host>/<key>.txt.
	KeyLocation string
}

// Submitter sends search engine notifications through a probe client.
type Submitter struct {
	client *probe.Client
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Submitter.
func New(client *probe.Client, opts ...Option) *Submitter {
	s := &Submitter{
		client: client,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PingURL returns the ping request URL of one engine.
func PingURL(endpoint, sitemapURL string) string {
	return appendQuery(endpoint, url.Values{"sitemap": {sitemapURL}})
}

// IndexNowURL returns the IndexNow request URL for one page.
func IndexNowURL(settings IndexNowSettings, pageURL string) string {
	q := url.Values{"url": {pageURL}, "key": {settings.Key}}
	if settings.KeyLocation != "" {
		q.Set("keyLocation", settings.KeyLocation)
	}
	return appendQuery(settings.Endpoint, q)
}

func appendQuery(endpoint string, q url.Values) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + q.Encode()
}

// PingSitemaps pings every engine with sitemapURL, in engine name order.
func (s *Submitter) PingSitemaps(ctx context.Context, sitemapURL string, engines map[string]string) (*Result, error) {
	if len(engines) == 0 {
		return nil, ErrNoEngines
	}
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	slices.Sort(names)

	requests := make([]string, 0, len(names))
	for _, name := range names {
		requests = append(requests, PingURL(engines[name], sitemapURL))
	}

	result := &Result{Mode: string(KindPing), Target: sitemapURL, StartedAt: s.now()}
	summary := s.client.ProbeAll(ctx, requests)
	for i, r := range summary.Results {
		result.Requests = append(result.Requests, s.submission(KindPing, names[i], r, ""))
	}
	return result, nil
}

// IndexNow submits every page URL.
func (s *Submitter) IndexNow(ctx context.Context, settings IndexNowSettings, pages []string) (*Result, error) {
	if err := checkIndexNow(settings, pages); err != nil {
		return nil, err
	}

	requests := make([]string, 0, len(pages))
	for _, p := range pages {
		requests = append(requests, IndexNowURL(settings, p))
	}

	result := &Result{Mode: string(KindIndexNow), Target: hostOf(pages[0]), StartedAt: s.now()}
	summary := s.client.ProbeAll(ctx, requests)
	for i, r := range summary.Results {
		result.Requests = append(result.Requests, s.submission(KindIndexNow, pages[i], r, settings.Key))
	}
	return result, nil
}

// Accelerate warms each key page and then submits it to IndexNow. A page
// that fails to warm is still submitted; the warmup only primes caches.
func (s *Submitter) Accelerate(ctx context.Context, settings IndexNowSettings, pages []string) (*Result, error) {
	if err := checkIndexNow(settings, pages); err != nil {
		return nil, err
	}

	result := &Result{Mode: "accelerate", Target: hostOf(pages[0]), StartedAt: s.now()}
	for _, p := range pages {
		if ctx.Err() != nil {
			break
		}
		warm := s.client.Probe(ctx, p)
		result.Warmups = append(result.Warmups, s.submission(KindWarm, p, warm, ""))

		r := s.client.Probe(ctx, IndexNowURL(settings, p))
		result.Requests = append(result.Requests, s.submission(KindIndexNow, p, r, settings.Key))
	}
	return result, nil
}

// submission records r with secrets masked. Transport errors quote the
// request URL, so key is also masked in the error text.
func (s *Submitter) submission(kind Kind, name string, r probe.Result, key string) Submission {
	if redacted, ok := sitelog.RedactURL(r.URL); ok {
		r.URL = redacted
	}
	if key != "" {
		r.Error = strings.ReplaceAll(r.Error, key, sitelog.MaskValue)
	}
	s.logger.Info("submission", "kind", string(kind), "name", name, "status", r.Status.String(), "code", r.StatusCode)
	return Submission{Kind: kind, Name: name, Result: r}
}

func checkIndexNow(settings IndexNowSettings, pages []string) error {
	if settings.Endpoint == "" {
		return ErrNoEndpoint
	}
	if err := config.ValidateIndexNowKey(settings.Key); err != nil {
		return err
	}
	if len(pages) == 0 {
		return ErrNoURLs
	}
	return nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

// KeyPageURLs resolves configured key page paths against baseURL. With no
// configured paths it returns fallback, usually the locale home pages.
func KeyPageURLs(baseURL string, paths, fallback []string) []string {
	if len(paths) == 0 {
		return slices.Clone(fallback)
	}
	base := config.TrimBaseURL(baseURL)
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			urls = append(urls, p)
			continue
		}
		urls = append(urls, base+"/"+strings.TrimPrefix(p, "/"))
	}
	return urls
}
