package audit

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/nao1215/sitectl/internal/model"
)

const site = "https://example.com"

func htmlPage(u string, mods ...func(*model.Page)) *model.Page {
	p := &model.Page{
		URL:         u,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Title:       "Title of " + u,
		Description: "Description of " + u,
		Canonical:   u,
	}
	for _, mod := range mods {
		mod(p)
	}
	return p
}

// localized returns the en and ja home pages linking each other.
func localized() (*model.Page, *model.Page) {
	alts := []model.Alternate{
		{Hreflang: "en", Href: site + "/"},
		{Hreflang: "ja", Href: site + "/ja/"},
		{Hreflang: "x-default", Href: site + "/"},
	}
	en := htmlPage(site+"/", func(p *model.Page) {
		p.Lang = "en"
		p.Alternates = alts
	})
	ja := htmlPage(site+"/ja/", func(p *model.Page) {
		p.Lang = "ja"
		p.Alternates = alts
	})
	return en, ja
}

func findingTypes(findings []model.Finding) []string {
	types := make([]string, 0, len(findings))
	for _, f := range findings {
		types = append(types, f.Type)
	}
	return types
}

func countType(findings []model.Finding, findingType string) int {
	n := 0
	for _, f := range findings {
		if f.Type == findingType {
			n++
		}
	}
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type stubAnalyzer struct {
	name     string
	findings []model.Finding
	err      error
}

func (s *stubAnalyzer) Name() string     { return s.name }
func (s *stubAnalyzer) Category() string { return CategoryPage }
func (s *stubAnalyzer) Analyze(context.Context, *AnalysisData) ([]model.Finding, error) {
	return s.findings, s.err
}

func TestNewAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("registers built-in analyzers", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer()
		want := []string{"status", "canonical", "meta", "hreflang", "sitemap", "exif"}
		if !slices.Equal(a.Names(), want) {
			t.Errorf("expected %v, got %v", want, a.Names())
		}
	})

	t.Run("EXIF can be disabled", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(func(o *AnalyzerOptions) { o.EnableEXIF = false })
		if slices.Contains(a.Names(), "exif") {
			t.Error("exif analyzer should not be registered")
		}
	})

	t.Run("EXIF is enabled by default", func(t *testing.T) {
		t.Parallel()
		if !DefaultOptions().EnableEXIF {
			t.Error("expected EnableEXIF by default")
		}
	})
}

func TestAnalyzerAnalyze(t *testing.T) {
	t.Parallel()

	dup := model.NewFinding(model.FindingTitleMissing, "t", "d", "", site+"/a")

	t.Run("deduplicates and skips failing analyzers", func(t *testing.T) {
		t.Parallel()
		a := &Analyzer{logger: discardLogger()}
		a.Register(&stubAnalyzer{name: "one", findings: []model.Finding{dup}})
		a.Register(&stubAnalyzer{name: "broken", err: errors.New("boom")})
		a.Register(&stubAnalyzer{name: "two", findings: []model.Finding{dup}})

		findings, err := a.Analyze(t.Context(), &AnalysisData{Site: site})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 1 {
			t.Errorf("expected 1 finding, got %d", len(findings))
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()
		a := &Analyzer{logger: discardLogger()}
		a.Register(&stubAnalyzer{name: "one", findings: []model.Finding{dup}})

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		if _, err := a.Analyze(ctx, &AnalysisData{Site: site}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("takes pages from the report", func(t *testing.T) {
		t.Parallel()
		report := model.NewAuditReport(site)
		report.AddPage(htmlPage(site+"/broken", func(p *model.Page) { p.StatusCode = 500 }))

		a := &Analyzer{logger: discardLogger()}
		a.Register(NewStatusAnalyzer())
		findings, err := a.Analyze(t.Context(), &AnalysisData{Site: site, Report: report})
		if err != nil {
			t.Fatal(err)
		}
		if countType(findings, model.FindingStatusError) != 1 {
			t.Errorf("expected a status finding, got %v", findingTypes(findings))
		}
	})

	t.Run("clean localized site has no findings", func(t *testing.T) {
		t.Parallel()
		en, ja := localized()
		report := model.NewAuditReport(site)
		report.RobotsFound = true
		report.RobotsSitemaps = []string{site + "/sitemap.xml"}
		report.SitemapURL = site + "/sitemap.xml"
		report.SitemapFound = true
		report.SitemapEntries = []string{site + "/", site + "/ja/"}
		report.AddPage(en)
		report.AddPage(ja)

		a := NewAnalyzer(func(o *AnalyzerOptions) {
			o.EnableEXIF = false
			o.Logger = discardLogger()
		})
		findings, err := a.Analyze(t.Context(), &AnalysisData{Site: site, Report: report})
		if err != nil {
			t.Fatal(err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %v", findingTypes(findings))
		}
	})
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		a, b string
		same bool
	}{
		{"https://Example.com", "https://example.com/", true},
		{"HTTPS://example.com/ja/", "https://example.com/ja/#top", true},
		{"https://example.com/ja", "https://example.com/ja/", false},
		{"http://example.com/", "https://example.com/", false},
	}
	for _, tc := range testCases {
		if got := sameURL(tc.a, tc.b); got != tc.same {
			t.Errorf("sameURL(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.same)
		}
	}
}
