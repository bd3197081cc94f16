package seo

import "errors"

var (
	// ErrEmptyToken is returned when a verification token is empty.
	ErrEmptyToken = errors.New("verification token is empty")

	// ErrInvalidToken is returned when a token contains characters that
	// cannot appear in a file name or XML text.
	ErrInvalidToken = errors.New("verification token contains invalid characters")

	// ErrNotSitemap is returned when a document is neither a urlset nor a sitemapindex.
	ErrNotSitemap = errors.New("document is not a sitemap")
)
