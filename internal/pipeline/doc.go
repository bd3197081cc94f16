// Package pipeline runs the steps of an indexing audit in sequence.
//
// An audit fetches robots.txt and the sitemap, crawls the site seeded
// with the sitemap URLs, and finally runs the audit analyzers over the
// collected pages. Each stage is a Step that receives the current report
// and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running audits
//
// The pipeline supports both single-site audits and batch processing with
// concurrency control using errgroup.
package pipeline
