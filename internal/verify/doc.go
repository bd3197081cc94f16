// Package verify checks that a site build is complete and that the host
// serves it.
//
// Local checks look at the export directory: every required file must exist
// and every locale home page must declare its language and canonical URL.
// Online checks probe the deployed URLs and compare the SHA3-256 digests of
// sitemap.xml and robots.txt with the build manifest, so a stale deployment
// is reported even when every URL answers 200.
package verify
