package config

import (
	"net"
	"net/url"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitectl"

	// DefaultTimeout bounds every probe. Search engine ping endpoints and
	// static hosts answer well within this, and nothing is retried.
	DefaultTimeout = 10 * time.Second

	// DefaultOutputDir is where `sitectl build` writes the static export.
	DefaultOutputDir = "out"

	// DefaultCrawlDepth keeps audits to the handful of link levels a
	// marketing site has.
	DefaultCrawlDepth = 5

	// DefaultMaxPages caps audit crawls. Eight locales times four topics is
	// 32 pages, so this leaves room for docs growth.
	DefaultMaxPages = 200

	// DefaultBatchSize is the number of sites audited concurrently.
	DefaultBatchSize = 4

	// DefaultConcurrency of 1 keeps probes sequential.
	DefaultConcurrency = 1

	// DefaultCrawlDelay is the delay between requests during audit crawls.
	DefaultCrawlDelay = 200 * time.Millisecond

	// DefaultUserAgent identifies sitectl in HTTP requests.
	DefaultUserAgent = "sitectl/1.0 (+https://github.com/nao1215/sitectl)"

	// DefaultMaxBodySize limits the response body read per request.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultIndexNowEndpoint is the shared IndexNow endpoint; participating
	// engines forward submissions to each other.
	DefaultIndexNowEndpoint = "https://api.indexnow.org/indexnow"
)

// DefaultPingEngines are the sitemap ping endpoints used when the project
// file does not list any. The sitemap URL is passed as ?sitemap=.
func DefaultPingEngines() map[string]string {
	return map[string]string{
		"google": "https://www.google.com/ping",
		"bing":   "https://www.bing.com/ping",
	}
}

// Config holds all runtime options for sitectl.
// It is populated from the project file and CLI flags, in that order, and
// passed to commands explicitly rather than through globals.
//
// Design decision: a single flat struct, as every command only reads the
// handful of fields it needs. Project-level data that is naturally nested
// (locales, tokens, engines) stays in Project.
type Config struct {
	// BaseURL is the production base URL of the site, without trailing slash.
	BaseURL string

	// OutputDir is the directory of the static export.
	OutputDir string

	// Timeout is the per-request timeout of every probe.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy ("host:port") for probes.
	ProxyAddress string

	// Concurrency is the number of probes in flight. 1 means sequential.
	Concurrency int

	// CrawlDepth is the maximum link depth of audit crawls.
	CrawlDepth int

	// MaxPages is the maximum number of pages fetched per audited site.
	MaxPages int

	// CrawlDelay is the pause between audit requests.
	CrawlDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// BatchSize is the number of sites audited concurrently.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// ConfigFilePath is the explicit project file path (--config).
	ConfigFilePath string

	// Project is the loaded project file. Never nil after NewConfig.
	Project *File

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// Targets are the base URLs to audit.
	Targets []string

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB stores audit and run results in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values and an empty project.
func NewConfig() *Config {
	return &Config{
		OutputDir:   DefaultOutputDir,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		CrawlDepth:  DefaultCrawlDepth,
		MaxPages:    DefaultMaxPages,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		BatchSize:   DefaultBatchSize,
		DBDir:       XDGDataDir(),
		Project:     NewFile(),
	}
}

// ApplyProject copies project file settings into the config.
// It is called before CLI flags are applied so that explicit flags win.
func (c *Config) ApplyProject(f *File) {
	if f == nil {
		return
	}
	c.Project = f
	if f.Site.BaseURL != "" {
		c.BaseURL = TrimBaseURL(f.Site.BaseURL)
	}
	if f.Site.OutputDir != "" {
		c.OutputDir = f.Site.OutputDir
	}
	if f.Probe.Timeout > 0 {
		c.Timeout = f.Probe.Timeout
	}
	if f.Probe.Proxy != "" {
		c.ProxyAddress = f.Probe.Proxy
	}
	if f.Probe.Concurrency > 0 {
		c.Concurrency = f.Probe.Concurrency
	}
	if f.Probe.UserAgent != "" {
		c.UserAgent = f.Probe.UserAgent
	}
	if f.Audit.Defaults.Depth > 0 {
		c.CrawlDepth = f.Audit.Defaults.Depth
	}
}

// XDGDataDir returns the XDG data directory for sitectl.
// On Linux: ~/.local/share/sitectl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitectl.
// On Linux: ~/.config/sitectl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the options shared by every command and returns the
// first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.ProxyAddress != "" {
		if _, _, err := net.SplitHostPort(c.ProxyAddress); err != nil {
			return ErrInvalidProxyAddress
		}
	}
	if c.BaseURL != "" {
		if err := ValidateBaseURL(c.BaseURL); err != nil {
			return err
		}
	}
	for _, target := range c.Targets {
		if err := ValidateBaseURL(target); err != nil {
			return err
		}
	}
	return nil
}

// RequireBaseURL returns ErrNoBaseURL when no base URL is configured.
func (c *Config) RequireBaseURL() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	return nil
}

// RequireTargets returns ErrNoTarget when there is nothing to audit.
func (c *Config) RequireTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return nil
}

// ValidateBaseURL checks that raw is an absolute http or https URL with a host.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}
	return nil
}

// TrimBaseURL removes trailing slashes so paths can be appended with "/".
func TrimBaseURL(raw string) string {
	for len(raw) > 0 && raw[len(raw)-1] == '/' {
		raw = raw[:len(raw)-1]
	}
	return raw
}

var indexNowKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{8,128}$`)

// ValidateIndexNowKey checks key against the IndexNow key format.
func ValidateIndexNowKey(key string) error {
	if key == "" {
		return ErrNoIndexNowKey
	}
	if !indexNowKeyPattern.MatchString(key) {
		return ErrInvalidIndexNowKey
	}
	return nil
}
