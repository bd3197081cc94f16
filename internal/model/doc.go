// Package model defines the core data structures used throughout sitectl.
//
// This package contains the following main types:
//   - Page: A fetched page of the live site with the SEO-relevant markup extracted
//   - AuditReport: The result of an indexing audit of one site
//   - Summary: Severity counts and the findings of an audit
//   - RunRecord: The outcome of a verify/submit run, kept for history
//
// Models live in their own package because the crawler, audit, pipeline,
// report and database packages all exchange them. Everything here is
// serializable to JSON for report output and database storage.
package model
