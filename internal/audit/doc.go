// Package audit finds indexing problems on a crawled multilingual site.
//
// # Design Philosophy
//
// The audit package follows a modular analyzer pattern where each type of
// check is implemented as a separate CheckAnalyzer. This design was chosen
// because:
//  1. Each check type has unique logic and data requirements
//  2. Enables selective auditing based on configuration
//  3. Makes it easy to add new checks without modifying existing code
//
// # Analyzer Categories
//
// ## Page
//   - HTTP status and redirects
//   - Canonical links
//   - Titles, descriptions and robots directives
//
// ## Locale
//   - hreflang alternates, reciprocity and x-default
//   - <html lang> against the page's own hreflang
//
// ## Site
//   - sitemap.xml and robots.txt reachability and consistency
//
// ## Media
//   - EXIF metadata in published JPEG and TIFF images
//
// Analyzers decide that something is wrong; the severity of each finding
// type lives in the model package.
package audit
