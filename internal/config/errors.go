package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the Require helpers.
// Callers use errors.Is() to tell them apart.
var (
	// ErrNoTarget is returned when a command that works on sites got none.
	ErrNoTarget = errors.New("no target specified: provide a base URL or configure site.baseURL")

	// ErrNoBaseURL is returned when a command needs the production base URL
	// and neither --base-url nor site.baseURL provides one.
	ErrNoBaseURL = errors.New("no base URL: use --base-url or set site.baseURL in .sitectl.yaml")

	// ErrInvalidBaseURL is returned when a base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the probe timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidConcurrency is returned when probe concurrency is below one.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

	// ErrNoIndexNowKey is returned when IndexNow submission is requested
	// without a key.
	ErrNoIndexNowKey = errors.New("no IndexNow key: set indexnow.key in .sitectl.yaml or use --indexnow-key")

	// ErrInvalidIndexNowKey is returned when the key does not match the
	// IndexNow format: 8 to 128 characters of a-z, A-Z, 0-9 and '-'.
	ErrInvalidIndexNowKey = errors.New("invalid IndexNow key: use 8-128 characters from a-z, A-Z, 0-9 and '-'")
)
