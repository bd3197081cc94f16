package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Page represents a fetched page of the live site.
// It keeps the response metadata plus the markup that matters for indexing:
// title, language, canonical link, hreflang alternates and robots directives.
type Page struct {
	// URL is the fetched URL.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. Empty when no redirect happened.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type"`

	// Title is the text of the <title> element.
	Title string `json:"title,omitempty"`

	// Lang is the lang attribute of the <html> element.
	Lang string `json:"lang,omitempty"`

	// Canonical is the resolved href of <link rel="canonical">.
	Canonical string `json:"canonical,omitempty"`

	// Alternates are the <link rel="alternate" hreflang> entries.
	Alternates []Alternate `json:"alternates,omitempty"`

	// Description is the content of <meta name="description">.
	Description string `json:"description,omitempty"`

	// Robots is the content of <meta name="robots"> joined with any
	// X-Robots-Tag header.
	Robots string `json:"robots,omitempty"`

	// Links contains resolved same-site links found on the page.
	Links []string `json:"links,omitempty"`

	// Images contains resolved image sources found on the page.
	Images []string `json:"images,omitempty"`

	// Raw contains the raw response body bytes, capped at MaxPageSize.
	Raw []byte `json:"-"`

	// Hash is the SHA3-256 hash of the raw content.
	Hash string `json:"hash"`
}

// Alternate is a single hreflang annotation.
type Alternate struct {
	// Hreflang is the language tag or "x-default".
	Hreflang string `json:"hreflang"`

	// Href is the resolved URL of the locale variant.
	Href string `json:"href"`
}

// MaxPageSize is the maximum size of raw page content to keep.
const MaxPageSize = 2 * 1024 * 1024 // 2 MB

// XDefault is the hreflang value for the fallback variant.
const XDefault = "x-default"

// ComputeHash calculates and sets the SHA3-256 hash of the page's raw content.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}
	p.Hash = HashBytes(p.Raw)
}

// HashBytes returns the hex encoded SHA3-256 digest of data.
// The same digest is used for build manifests and deployment drift checks.
func HashBytes(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return strings.HasPrefix(p.ContentType, "text/html") ||
		strings.HasPrefix(p.ContentType, "application/xhtml+xml")
}

// IsSuccess reports whether the page returned a 2xx status.
func (p *Page) IsSuccess() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// IsNoIndex reports whether robots directives exclude the page from the index.
func (p *Page) IsNoIndex() bool {
	for _, directive := range strings.Split(strings.ToLower(p.Robots), ",") {
		switch strings.TrimSpace(directive) {
		case "noindex", "none":
			return true
		}
	}
	return false
}

// AlternateFor returns the href of the alternate with the given hreflang.
// The comparison is case-insensitive.
func (p *Page) AlternateFor(hreflang string) (string, bool) {
	for _, alt := range p.Alternates {
		if strings.EqualFold(alt.Hreflang, hreflang) {
			return alt.Href, true
		}
	}
	return "", false
}

// TruncateRaw ensures the raw content doesn't exceed MaxPageSize.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}
