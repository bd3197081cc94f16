package submit

import "errors"

var (
	// ErrNoEngines is returned when no ping endpoint is configured.
	ErrNoEngines = errors.New("no sitemap ping endpoints configured")

	// ErrNoURLs is returned when there is nothing to submit.
	ErrNoURLs = errors.New("no URLs to submit")

	// ErrNoEndpoint is returned when the IndexNow endpoint is empty.
	ErrNoEndpoint = errors.New("IndexNow endpoint is not configured")
)
