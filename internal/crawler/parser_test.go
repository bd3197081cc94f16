package crawler

import (
	"strings"
	"testing"

	"github.com/nao1215/sitectl/internal/model"
)

func parse(t *testing.T, base, html string) *ParseResult {
	t.Helper()
	parser, err := NewParser(base)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	result, err := parser.Parse(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return result
}

// TestParser tests HTML parsing functionality.
func TestParser(t *testing.T) {
	t.Parallel()

	const page = `<!DOCTYPE html>
<html lang="ja">
<head>
<title> 機能 - gup </title>
<title>Second</title>
<meta name="Description" content="説明">
<meta name="robots" content="noindex, follow">
<meta property="og:locale" content="ja_JP">
<link rel="canonical" href="/ja/features/">
<link rel="alternate" hreflang="en" href="https://example.com/features/">
<link rel="alternate" hreflang="ja" href="/ja/features/">
<link rel="alternate" hreflang="x-default" href="https://example.com/features/">
<link rel="alternate" type="application/rss+xml" href="/feed.xml">
<link rel="stylesheet" href="/style.css">
</head>
<body>
<a href="/ja/docs/#install">Docs</a>
<a href="https://github.com/nao1215/gup">GitHub</a>
<a href="#top">Top</a>
<a href="mailto:a@example.com">Mail</a>
<img src="/img/shot.jpg">
</body>
</html>`

	result := parse(t, "https://example.com/ja/features/", page)

	t.Run("extracts title and lang", func(t *testing.T) {
		t.Parallel()
		if result.Title != "機能 - gup" {
			t.Errorf("expected first title trimmed, got %q", result.Title)
		}
		if result.Lang != "ja" {
			t.Errorf("expected lang ja, got %q", result.Lang)
		}
	})

	t.Run("extracts meta", func(t *testing.T) {
		t.Parallel()
		if result.Description != "説明" {
			t.Errorf("expected description, got %q", result.Description)
		}
		if result.Robots != "noindex, follow" {
			t.Errorf("expected robots, got %q", result.Robots)
		}
		if result.MetaTags["og:locale"] != "ja_JP" {
			t.Errorf("expected og:locale, got %q", result.MetaTags["og:locale"])
		}
	})

	t.Run("resolves canonical and alternates", func(t *testing.T) {
		t.Parallel()
		if result.Canonical != "https://example.com/ja/features/" {
			t.Errorf("unexpected canonical %q", result.Canonical)
		}
		want := []model.Alternate{
			{Hreflang: "en", Href: "https://example.com/features/"},
			{Hreflang: "ja", Href: "https://example.com/ja/features/"},
			{Hreflang: "x-default", Href: "https://example.com/features/"},
		}
		if len(result.Alternates) != len(want) {
			t.Fatalf("expected %d alternates, got %v", len(want), result.Alternates)
		}
		for i := range want {
			if result.Alternates[i] != want[i] {
				t.Errorf("alternate %d = %+v, want %+v", i, result.Alternates[i], want[i])
			}
		}
	})

	t.Run("classifies links", func(t *testing.T) {
		t.Parallel()
		if len(result.Links) != 2 {
			t.Errorf("expected 2 links, got %v", result.Links)
		}
		if len(result.InternalLinks) != 1 || result.InternalLinks[0] != "https://example.com/ja/docs/" {
			t.Errorf("expected fragment-free internal link, got %v", result.InternalLinks)
		}
		if len(result.ExternalLinks) != 1 {
			t.Errorf("expected 1 external link, got %v", result.ExternalLinks)
		}
	})

	t.Run("extracts images", func(t *testing.T) {
		t.Parallel()
		if len(result.Images) != 1 || result.Images[0] != "https://example.com/img/shot.jpg" {
			t.Errorf("unexpected images %v", result.Images)
		}
	})
}

func TestParseResultApply(t *testing.T) {
	t.Parallel()

	result := parse(t, "https://example.com/", `<html lang="en"><head>
<title>Home</title><meta name="robots" content="nofollow">
</head><body><a href="/docs/">d</a><a href="https://other.example/">o</a></body></html>`)

	page := &model.Page{URL: "https://example.com/", Robots: "noindex"}
	result.Apply(page)

	if page.Title != "Home" || page.Lang != "en" {
		t.Errorf("unexpected page %+v", page)
	}
	if page.Robots != "nofollow, noindex" {
		t.Errorf("expected meta and header robots joined, got %q", page.Robots)
	}
	if !page.IsNoIndex() {
		t.Error("expected noindex from header")
	}
	if len(page.Links) != 1 {
		t.Errorf("expected only internal links on the page, got %v", page.Links)
	}
}

func TestParserEdgeCases(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		html  string
		check func(t *testing.T, r *ParseResult)
	}{
		{
			name: "empty document",
			html: "",
			check: func(t *testing.T, r *ParseResult) {
				if r.Title != "" || r.Lang != "" || len(r.Links) != 0 {
					t.Errorf("expected empty result, got %+v", r)
				}
			},
		},
		{
			name: "malformed markup",
			html: `<html><head><title>Broken</title><body><div><p><a href="/x">x`,
			check: func(t *testing.T, r *ParseResult) {
				if len(r.Links) != 1 {
					t.Errorf("expected link despite malformed markup, got %v", r.Links)
				}
			},
		},
		{
			name: "only first canonical counts",
			html: `<link rel="canonical" href="/a"><link rel="canonical" href="/b">`,
			check: func(t *testing.T, r *ParseResult) {
				if r.Canonical != "https://example.com/a" {
					t.Errorf("unexpected canonical %q", r.Canonical)
				}
			},
		},
		{
			name: "rel with several tokens",
			html: `<link rel="Alternate nofollow" hreflang="de" href="/de/">`,
			check: func(t *testing.T, r *ParseResult) {
				if len(r.Alternates) != 1 || r.Alternates[0].Hreflang != "de" {
					t.Errorf("unexpected alternates %v", r.Alternates)
				}
			},
		},
		{
			name: "javascript and data links skipped",
			html: `<a href="javascript:void(0)">j</a><a href="data:text/plain,x">d</a><a href="tel:123">t</a>`,
			check: func(t *testing.T, r *ParseResult) {
				if len(r.Links) != 0 {
					t.Errorf("expected no links, got %v", r.Links)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tc.check(t, parse(t, "https://example.com/", tc.html))
		})
	}
}
