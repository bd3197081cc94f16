// Package main provides the entry point for the sitectl CLI.
//
// sitectl builds the multilingual static website of a CLI product and runs
// the search engine and deployment tooling around it: deployment checks,
// sitemap pings, IndexNow submissions, verification files and indexing
// audits of the live site.
//
// Usage:
//
//	sitectl build
//	sitectl verify --online
//	sitectl submit --accelerate
//	sitectl audit https://example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
