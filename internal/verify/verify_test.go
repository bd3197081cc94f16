package verify

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/i18n"
	"github.com/nao1215/sitectl/internal/probe"
	"github.com/nao1215/sitectl/internal/seo"
	"github.com/nao1215/sitectl/internal/site"
)

// buildSite renders a two-locale site into a temporary directory.
func buildSite(t *testing.T, baseURL string) (string, *site.Plan, []seo.Artifact) {
	t.Helper()

	dir := t.TempDir()
	catalog, err := i18n.Load(i18n.WithLocales([]string{"ja"}))
	if err != nil {
		t.Fatal(err)
	}
	project := config.NewFile()
	project.Site.BaseURL = baseURL
	project.Site.OutputDir = dir
	project.Site.Product.Name = "gup"
	project.Verification.Bing = "BING123"
	project.IndexNow.Key = "0123456789abcdef"

	result, err := site.NewBuilder(catalog, project).Build(t.Context())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	artifacts, err := site.Artifacts(project)
	if err != nil {
		t.Fatal(err)
	}
	return dir, result.Plan, artifacts
}

func newClient(t *testing.T) *probe.Client {
	t.Helper()
	c, err := probe.NewClient(probe.WithTimeout(2 * time.Second))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLocalVerification(t *testing.T) {
	t.Parallel()

	t.Run("complete build passes", func(t *testing.T) {
		t.Parallel()
		dir, plan, artifacts := buildSite(t, "https://example.com")

		report, err := New(plan, dir, artifacts).Run(t.Context(), false)
		if err != nil {
			t.Fatal(err)
		}
		if !report.AllPassed() {
			t.Errorf("expected all checks to pass, failed: %+v", report.Failed())
		}
		// index, sitemap, robots, ja index, bing, key file + two markup checks
		if len(report.Checks) != 8 {
			t.Errorf("expected 8 checks, got %d", len(report.Checks))
		}
	})

	t.Run("missing and empty files fail", func(t *testing.T) {
		t.Parallel()
		dir, plan, artifacts := buildSite(t, "https://example.com")
		if err := os.Remove(filepath.Join(dir, "robots.txt")); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "BingSiteAuth.xml"), nil, 0o600); err != nil {
			t.Fatal(err)
		}

		report, err := New(plan, dir, artifacts).Run(t.Context(), false)
		if err != nil {
			t.Fatal(err)
		}
		failed := report.Failed()
		if len(failed) != 2 {
			t.Fatalf("expected 2 failures, got %+v", failed)
		}
		if failed[0].Name != "robots.txt" || failed[0].Status != StatusMissing {
			t.Errorf("unexpected failure %+v", failed[0])
		}
		if failed[1].Name != "BingSiteAuth.xml" || failed[1].Status != StatusInvalid {
			t.Errorf("unexpected failure %+v", failed[1])
		}
	})

	t.Run("wrong canonical is reported", func(t *testing.T) {
		t.Parallel()
		dir, plan, artifacts := buildSite(t, "https://example.com")
		other, err := site.NewPlan("https://staging.example.com", plan.DefaultLocale, plan.Locales, plan.Topics)
		if err != nil {
			t.Fatal(err)
		}

		report, err := New(other, dir, artifacts).Run(t.Context(), false)
		if err != nil {
			t.Fatal(err)
		}
		markup := 0
		for _, c := range report.Failed() {
			if c.Kind == KindMarkup && strings.Contains(c.Detail, "canonical") {
				markup++
			}
		}
		if markup != 2 {
			t.Errorf("expected 2 canonical failures, got %d", markup)
		}
	})

	t.Run("online needs a client", func(t *testing.T) {
		t.Parallel()
		plan, err := site.NewPlan("https://example.com", "en", nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := New(plan, t.TempDir(), nil).Run(t.Context(), true); !errors.Is(err, ErrNoClient) {
			t.Errorf("expected ErrNoClient, got %v", err)
		}
	})

	t.Run("empty directory fails", func(t *testing.T) {
		t.Parallel()
		plan, err := site.NewPlan("https://example.com", "en", nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		report, err := New(plan, t.TempDir(), nil).Run(t.Context(), false)
		if err != nil {
			t.Fatal(err)
		}
		if report.AllPassed() || report.Passed() != 0 {
			t.Errorf("expected every check to fail, passed %d", report.Passed())
		}
	})
}

func TestOnlineVerification(t *testing.T) {
	t.Parallel()

	t.Run("deployed build passes", func(t *testing.T) {
		t.Parallel()

		var dir string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
		}))
		defer server.Close()

		var plan *site.Plan
		var artifacts []seo.Artifact
		dir, plan, artifacts = buildSite(t, server.URL)

		report, err := New(plan, dir, artifacts, WithClient(newClient(t))).Run(t.Context(), true)
		if err != nil {
			t.Fatal(err)
		}
		if !report.AllPassed() {
			t.Errorf("expected all checks to pass, failed: %+v", report.Failed())
		}
		if report.Target != server.URL {
			t.Errorf("expected base URL as target, got %q", report.Target)
		}

		rec := report.Record()
		if rec.Command != "verify" || rec.Total != len(report.Checks) || !rec.AllSucceeded() {
			t.Errorf("unexpected record %+v", rec)
		}
	})

	t.Run("stale deployment drifts", func(t *testing.T) {
		t.Parallel()

		var dir string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/robots.txt":
				_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n")) //nolint:errcheck // test handler
			case "/ja/":
				http.Redirect(w, r, "/", http.StatusFound)
			default:
				http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
			}
		}))
		defer server.Close()

		var plan *site.Plan
		var artifacts []seo.Artifact
		dir, plan, artifacts = buildSite(t, server.URL)

		report, err := New(plan, dir, artifacts, WithClient(newClient(t))).Run(t.Context(), true)
		if err != nil {
			t.Fatal(err)
		}

		var drift, redirect bool
		for _, c := range report.Failed() {
			if c.Kind == KindDrift && c.Name == "robots.txt" && c.Status == StatusDrift {
				drift = true
			}
			if c.Kind == KindOnline && c.StatusCode == http.StatusFound && strings.Contains(c.Detail, "redirects to") {
				redirect = true
			}
		}
		if !drift {
			t.Error("expected robots.txt drift")
		}
		if !redirect {
			t.Error("expected redirected locale page to fail")
		}
		if len(report.Failed()) != 2 {
			t.Errorf("expected exactly 2 failures, got %+v", report.Failed())
		}
	})

	t.Run("files over the size cap are not compared", func(t *testing.T) {
		t.Parallel()

		var dir string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
		}))
		defer server.Close()

		var plan *site.Plan
		var artifacts []seo.Artifact
		dir, plan, artifacts = buildSite(t, server.URL)

		small, err := probe.NewClient(probe.WithTimeout(2*time.Second), probe.WithMaxBodySize(64))
		if err != nil {
			t.Fatal(err)
		}
		report, err := New(plan, dir, artifacts, WithClient(small)).Run(t.Context(), true)
		if err != nil {
			t.Fatal(err)
		}
		if !report.AllPassed() {
			t.Errorf("an unchanged deployment must not fail, failed: %+v", report.Failed())
		}

		var skipped bool
		for _, c := range report.Checks {
			if c.Kind != KindDrift {
				continue
			}
			if c.Status == StatusDrift {
				t.Errorf("%s reported as drifted", c.Name)
			}
			if c.Name == site.SitemapFile && c.Status == StatusSkipped && strings.Contains(c.Detail, "too large to compare") {
				skipped = true
			}
		}
		if !skipped {
			t.Errorf("expected sitemap.xml drift check to be skipped, got %+v", report.Checks)
		}
	})
}
