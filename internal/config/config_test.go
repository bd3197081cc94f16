package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig documents the defaults; a failure here means a default changed.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Concurrency is sequential", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 1 {
			t.Errorf("expected Concurrency 1, got %d", cfg.Concurrency)
		}
	})

	t.Run("default OutputDir is out", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputDir != "out" {
			t.Errorf("expected OutputDir out, got %q", cfg.OutputDir)
		}
	})

	t.Run("project has default endpoints", func(t *testing.T) {
		t.Parallel()
		if cfg.Project == nil {
			t.Fatal("expected Project to be set")
		}
		if cfg.Project.IndexNow.Endpoint != DefaultIndexNowEndpoint {
			t.Errorf("unexpected IndexNow endpoint %q", cfg.Project.IndexNow.Endpoint)
		}
		if len(cfg.Project.Ping.Engines) != 2 {
			t.Errorf("expected 2 ping engines, got %d", len(cfg.Project.Ping.Engines))
		}
		if cfg.Project.Site.DefaultLocale != "en" {
			t.Errorf("expected default locale en, got %q", cfg.Project.Site.DefaultLocale)
		}
	})

	t.Run("DBDir is under XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{"defaults are valid", func(_ *Config) {}, nil},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"json and markdown", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"json only", func(c *Config) { c.JSONReport = true }, nil},
		{"negative crawl delay", func(c *Config) { c.CrawlDelay = -1 }, ErrInvalidCrawlDelay},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"proxy without port", func(c *Config) { c.ProxyAddress = "localhost" }, ErrInvalidProxyAddress},
		{"proxy host:port", func(c *Config) { c.ProxyAddress = "127.0.0.1:1080" }, nil},
		{"relative base URL", func(c *Config) { c.BaseURL = "example.com" }, ErrInvalidBaseURL},
		{"ftp base URL", func(c *Config) { c.BaseURL = "ftp://example.com" }, ErrInvalidBaseURL},
		{"https base URL", func(c *Config) { c.BaseURL = "https://example.com" }, nil},
		{"invalid target", func(c *Config) { c.Targets = []string{"https://ok.example", "nope"} }, ErrInvalidBaseURL},
		{"timeout checked before format", func(c *Config) { c.Timeout = 0; c.JSONReport = true; c.MarkdownReport = true }, ErrInvalidTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestConfigRequire(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if !errors.Is(cfg.RequireBaseURL(), ErrNoBaseURL) {
		t.Error("expected ErrNoBaseURL")
	}
	if !errors.Is(cfg.RequireTargets(), ErrNoTarget) {
		t.Error("expected ErrNoTarget")
	}

	cfg.BaseURL = "https://example.com"
	cfg.Targets = []string{cfg.BaseURL}
	if cfg.RequireBaseURL() != nil || cfg.RequireTargets() != nil {
		t.Error("expected nil errors once set")
	}
}

func TestTrimBaseURL(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"https://example.com":    "https://example.com",
		"https://example.com/":   "https://example.com",
		"https://example.com//":  "https://example.com",
		"https://example.com/a/": "https://example.com/a",
		"":                       "",
	} {
		if got := TrimBaseURL(in); got != want {
			t.Errorf("TrimBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateIndexNowKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		key     string
		wantErr error
	}{
		{"", ErrNoIndexNowKey},
		{"short", ErrInvalidIndexNowKey},
		{"has space in it", ErrInvalidIndexNowKey},
		{"abc_def_ghi", ErrInvalidIndexNowKey},
		{"0123456789abcdef", nil},
		{"a-valid-key-123", nil},
		{strings.Repeat("a", 129), ErrInvalidIndexNowKey},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			t.Parallel()
			err := ValidateIndexNowKey(tc.key)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateIndexNowKey(%q) = %v, want %v", tc.key, err, tc.wantErr)
			}
		})
	}
}

func TestApplyProject(t *testing.T) {
	t.Parallel()

	t.Run("nil project keeps defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyProject(nil)
		if cfg.Timeout != DefaultTimeout || cfg.Project == nil {
			t.Error("defaults changed")
		}
	})

	t.Run("project values override defaults", func(t *testing.T) {
		t.Parallel()
		f := NewFile()
		f.Site.BaseURL = "https://example.com/"
		f.Site.OutputDir = "public"
		f.Probe.Timeout = 5 * time.Second
		f.Probe.Proxy = "127.0.0.1:1080"
		f.Probe.Concurrency = 4
		f.Probe.UserAgent = "custom"
		f.Audit.Defaults.Depth = 2

		cfg := NewConfig()
		cfg.ApplyProject(f)

		if cfg.BaseURL != "https://example.com" {
			t.Errorf("expected trimmed base URL, got %q", cfg.BaseURL)
		}
		if cfg.OutputDir != "public" || cfg.Timeout != 5*time.Second || cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.Concurrency != 4 || cfg.UserAgent != "custom" || cfg.CrawlDepth != 2 {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.Project != f {
			t.Error("expected Project to be the applied file")
		}
	})
}

func TestAuditGetSiteConfig(t *testing.T) {
	t.Parallel()

	audit := Audit{
		Defaults: AuditSite{
			Depth:          3,
			Cookie:         "session=default",
			Headers:        map[string]string{"X-Default": "1", "X-Shared": "default"},
			IgnorePatterns: []string{"/assets/*"},
		},
		Sites: map[string]AuditSite{
			"staging.example.com": {
				Depth:          1,
				Headers:        map[string]string{"X-Shared": "site"},
				FollowPatterns: []string{"/ja/*"},
			},
		},
	}

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()
		got := audit.GetSiteConfig("www.example.com")
		if got.Depth != 3 || got.Cookie != "session=default" {
			t.Errorf("unexpected defaults: %+v", got)
		}
	})

	t.Run("merges site over defaults", func(t *testing.T) {
		t.Parallel()
		got := audit.GetSiteConfig("staging.example.com")
		if got.Depth != 1 {
			t.Errorf("expected depth 1, got %d", got.Depth)
		}
		if got.Cookie != "session=default" {
			t.Errorf("expected default cookie, got %q", got.Cookie)
		}
		if got.Headers["X-Default"] != "1" || got.Headers["X-Shared"] != "site" {
			t.Errorf("unexpected headers: %v", got.Headers)
		}
		if len(got.IgnorePatterns) != 1 || len(got.FollowPatterns) != 1 {
			t.Errorf("unexpected patterns: %+v", got)
		}
	})

	t.Run("merging does not mutate defaults", func(t *testing.T) {
		t.Parallel()
		_ = audit.GetSiteConfig("staging.example.com")
		if audit.Defaults.Headers["X-Shared"] != "default" {
			t.Error("defaults were mutated")
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()
		empty := Audit{}
		got := empty.GetSiteConfig("example.com")
		if got.Depth != 0 || got.Headers != nil {
			t.Errorf("expected zero value, got %+v", got)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `site:
  baseURL: https://example.com
  locales: [en, ja]
  product:
    name: gup
    install: go install example.com/gup@latest
    downloads:
      - os: linux
        arch: amd64
        url: https://example.com/gup_linux_amd64.tar.gz
verification:
  google: abc123
  bing: DEF456
indexnow:
  key: 0123456789abcdef
probe:
  timeout: 7s
audit:
  sites:
    example.com:
      depth: 2
keyPages:
  - /
  - /ja/
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Site.BaseURL != "https://example.com" || len(f.Site.Locales) != 2 {
			t.Errorf("unexpected site: %+v", f.Site)
		}
		if f.Site.Product.Name != "gup" || len(f.Site.Product.Downloads) != 1 {
			t.Errorf("unexpected product: %+v", f.Site.Product)
		}
		if f.Verification.Google != "abc123" || f.Verification.Bing != "DEF456" {
			t.Errorf("unexpected verification: %+v", f.Verification)
		}
		if f.IndexNow.Key != "0123456789abcdef" || f.IndexNow.Endpoint != DefaultIndexNowEndpoint {
			t.Errorf("unexpected indexnow: %+v", f.IndexNow)
		}
		if f.Probe.Timeout != 7*time.Second {
			t.Errorf("expected 7s timeout, got %v", f.Probe.Timeout)
		}
		if f.Audit.Sites["example.com"].Depth != 2 {
			t.Error("expected audit override")
		}
		if len(f.KeyPages) != 2 {
			t.Errorf("expected 2 key pages, got %d", len(f.KeyPages))
		}
		if f.Site.DefaultLocale != "en" {
			t.Errorf("expected default locale en, got %q", f.Site.DefaultLocale)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("site: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("site: {}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "none.yaml")); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
	} {
		if dir == "" {
			t.Errorf("%s dir is empty", name)
		}
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q does not end with %s", name, dir, AppName)
		}
	}
}
