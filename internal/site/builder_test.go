package site

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/i18n"
	"github.com/nao1215/sitectl/internal/model"
	"github.com/nao1215/sitectl/internal/seo"
)

func testProject(dir string) *config.File {
	project := config.NewFile()
	project.Site.BaseURL = "https://example.com"
	project.Site.OutputDir = dir
	project.Site.Product = config.Product{
		Name:       "gup",
		Repository: "https://github.com/nao1215/gup",
		Version:    "v1.0.0",
		Install:    "go install github.com/nao1215/gup@latest",
		Usage:      "gup update",
		Downloads: []config.Download{
			{OS: "linux", Arch: "amd64", URL: "https://example.com/dl/gup_linux_amd64.tar.gz"},
		},
	}
	project.Verification.Google = "abc123"
	project.IndexNow.Key = "0123456789abcdef0123456789abcdef"
	return project
}

func loadCatalog(t *testing.T, locales ...string) *i18n.Catalog {
	t.Helper()
	c, err := i18n.Load(i18n.WithLocales(locales))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func readOut(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "favicon.ico"), []byte("icon"), 0o600); err != nil {
		t.Fatal(err)
	}
	project := testProject(dir)
	project.Site.StaticDir = static
	project.Robots.Disallow = []string{"/private/"}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := NewBuilder(loadCatalog(t, "ja"), project, WithNow(func() time.Time { return now }))

	result, err := b.Build(t.Context())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if result.Pages != 8 {
		t.Errorf("expected 8 pages, got %d", result.Pages)
	}

	t.Run("default locale at root", func(t *testing.T) {
		t.Parallel()
		html := readOut(t, dir, "index.html")
		for _, want := range []string{
			`<html lang="en">`,
			`<title>gup: update binaries installed by go install</title>`,
			`<link rel="canonical" href="https://example.com/">`,
			`<link rel="alternate" hreflang="ja" href="https://example.com/ja/">`,
			`<link rel="alternate" hreflang="x-default" href="https://example.com/">`,
			`<meta property="og:locale" content="en_US">`,
			`<meta property="og:locale:alternate" content="ja_JP">`,
			`go install github.com/nao1215/gup@latest`,
			`8 pages in 2 languages`,
		} {
			if !strings.Contains(html, want) {
				t.Errorf("index.html missing %q", want)
			}
		}
	})

	t.Run("title equals table entry", func(t *testing.T) {
		t.Parallel()
		c := loadCatalog(t, "ja")
		html := readOut(t, dir, "ja/features/index.html")
		want := "<title>" + c.Sprintf("ja", "features.title", "gup") + "</title>"
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in ja features page", want)
		}
		if !strings.Contains(html, `<html lang="ja">`) {
			t.Error("expected lang ja")
		}
		if !strings.Contains(html, `href="/ja/docs/"`) {
			t.Error("expected locale-prefixed navigation")
		}
	})

	t.Run("download table", func(t *testing.T) {
		t.Parallel()
		html := readOut(t, dir, "download/index.html")
		if !strings.Contains(html, "gup_linux_amd64.tar.gz</a>") {
			t.Error("expected download file name")
		}
		if !strings.Contains(html, "Latest version: v1.0.0") {
			t.Error("expected version line")
		}
	})

	t.Run("artifacts", func(t *testing.T) {
		t.Parallel()
		sitemap, err := seo.ParseSitemap([]byte(readOut(t, dir, "sitemap.xml")))
		if err != nil {
			t.Fatal(err)
		}
		if len(sitemap.URLs) != 8 {
			t.Errorf("expected 8 sitemap URLs, got %d", len(sitemap.URLs))
		}
		robots := seo.ParseRobots([]byte(readOut(t, dir, "robots.txt")))
		if len(robots.Sitemaps) != 1 || robots.Sitemaps[0] != "https://example.com/sitemap.xml" {
			t.Errorf("unexpected robots sitemaps %v", robots.Sitemaps)
		}
		if !robots.Disallows("/private/x") {
			t.Error("expected disallow rule")
		}
		if got := readOut(t, dir, "googleabc123.html"); got != "google-site-verification: googleabc123.html" {
			t.Errorf("unexpected google file %q", got)
		}
		if got := readOut(t, dir, "0123456789abcdef0123456789abcdef.txt"); got != "0123456789abcdef0123456789abcdef" {
			t.Errorf("unexpected key file %q", got)
		}
		if readOut(t, dir, "favicon.ico") != "icon" {
			t.Error("expected static file copied")
		}
	})

	t.Run("manifest", func(t *testing.T) {
		t.Parallel()
		m, err := LoadManifest(dir)
		if err != nil {
			t.Fatal(err)
		}
		if !m.GeneratedAt.Equal(now) || m.BaseURL != "https://example.com" {
			t.Errorf("unexpected manifest header %+v", m)
		}
		digest, ok := m.Digest("robots.txt")
		if !ok || digest != model.HashBytes([]byte(readOut(t, dir, "robots.txt"))) {
			t.Error("robots.txt digest mismatch")
		}
		if len(m.Files) != len(result.Files) {
			t.Errorf("manifest has %d files, result %d", len(m.Files), len(result.Files))
		}
	})
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*config.File)
		wantErr error
	}{
		{"no base URL", func(f *config.File) { f.Site.BaseURL = "" }, config.ErrNoBaseURL},
		{"invalid base URL", func(f *config.File) { f.Site.BaseURL = "ftp://example.com" }, config.ErrInvalidBaseURL},
		{"no product name", func(f *config.File) { f.Site.Product.Name = "" }, ErrNoProductName},
		{"unknown topic", func(f *config.File) { f.Site.Topics = []string{"blog"} }, ErrUnknownTopic},
		{"invalid token", func(f *config.File) { f.Verification.Bing = "bad token" }, seo.ErrInvalidToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			project := testProject(t.TempDir())
			tc.mutate(project)
			_, err := NewBuilder(loadCatalog(t), project).Build(t.Context())
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestOGLocale(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	testCases := map[string]string{
		"en": "en_US",
		"ja": "ja_JP",
		"de": "de_DE",
		"pt": "pt_BR",
		"ko": "ko_KR",
	}
	for locale, want := range testCases {
		if got := OGLocale(c, locale); got != want {
			t.Errorf("OGLocale(%q) = %q, want %q", locale, got, want)
		}
	}
}
