package seo

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// RobotsOptions configures GenerateRobots.
type RobotsOptions struct {
	// SitemapURL is advertised with a Sitemap: line when set.
	SitemapURL string

	// Disallow lists paths closed to all crawlers.
	Disallow []string
}

// GenerateRobots renders a robots.txt that allows everything except the
// disallowed paths.
func GenerateRobots(opts RobotsOptions) []byte {
	var buf bytes.Buffer
	buf.WriteString("User-agent: *\n")
	if len(opts.Disallow) == 0 {
		buf.WriteString("Allow: /\n")
	}
	for _, path := range opts.Disallow {
		fmt.Fprintf(&buf, "Disallow: %s\n", path)
	}
	if opts.SitemapURL != "" {
		fmt.Fprintf(&buf, "\nSitemap: %s\n", opts.SitemapURL)
	}
	return buf.Bytes()
}

// Robots is the part of a robots.txt that matters to an audit.
type Robots struct {
	// Sitemaps are the Sitemap: URLs, in file order.
	Sitemaps []string

	// Disallow are the Disallow: paths of the "*" group.
	Disallow []string
}

// ParseRobots reads Sitemap lines and the Disallow rules that apply to
// every user agent. Unknown lines and comments are ignored.
func ParseRobots(data []byte) Robots {
	var robots Robots
	inStarGroup := false
	lastWasAgent := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "user-agent":
			// Consecutive User-agent lines share one group.
			if !lastWasAgent {
				inStarGroup = false
			}
			if value == "*" {
				inStarGroup = true
			}
			lastWasAgent = true
			continue
		case "sitemap":
			if value != "" {
				robots.Sitemaps = append(robots.Sitemaps, value)
			}
		case "disallow":
			if inStarGroup && value != "" {
				robots.Disallow = append(robots.Disallow, value)
			}
		}
		lastWasAgent = false
	}
	return robots
}

// Disallows reports whether path is blocked for all crawlers, using
// prefix matching with "*" wildcards and a "$" end anchor.
func (r Robots) Disallows(path string) bool {
	for _, rule := range r.Disallow {
		if matchRobotsRule(rule, path) {
			return true
		}
	}
	return false
}

func matchRobotsRule(rule, path string) bool {
	anchored := strings.HasSuffix(rule, "$")
	rule = strings.TrimSuffix(rule, "$")
	pattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(rule), `\*`, ".*")
	if anchored {
		pattern += "$"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(path)
}
