// Package crawler fetches the pages of a live site for indexing audits.
//
// # Architecture
//
// The Spider coordinates the crawl: a breadth-first queue with depth and
// page limits, a politeness delay, glob ignore/follow patterns and optional
// robots.txt rules. The Parser extracts what search engines index: title,
// <html lang>, canonical link, hreflang alternates, meta description,
// robots directives, links and images.
//
// Design decision: We implement our own crawler rather than using a third-party
// library because:
//  1. We need tight control over request timing to stay polite
//  2. Custom parsing is needed for indexing-specific data extraction
//  3. The HTTP client comes from the probe package, with the same proxy and
//     header settings as every other check
//
// # Usage
//
//	spider := crawler.NewSpider(client.HTTPClient(), crawler.WithMaxDepth(3))
//	pages, err := spider.Crawl(ctx, "https://example.com/")
//
// Only pages on the start host are fetched. Response bodies are capped to
// keep memory bounded on unexpectedly large pages.
package crawler
