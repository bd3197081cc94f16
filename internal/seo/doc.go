// Package seo generates and parses the fixed-format files search engines
// read from a site root: sitemap.xml, robots.txt, the Google and Bing
// ownership verification files, and the IndexNow key file.
package seo
