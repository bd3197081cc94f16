// Package config provides configuration structures and utilities for sitectl.
// It defines the runtime options assembled from CLI flags and the
// .sitectl.yaml project file: the site being built, verification tokens,
// search engine endpoints, probe and crawl settings, and report preferences.
package config
