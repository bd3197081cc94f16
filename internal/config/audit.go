package config

// AuditSite holds audit crawl settings for one site.
type AuditSite struct {
	// Cookie is an HTTP cookie sent while crawling, for staging hosts
	// behind a login. Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth. Zero keeps the global value.
	Depth int `yaml:"depth,omitempty"`

	// IgnorePatterns are glob patterns of URL paths to skip.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns restrict the crawl to matching URL paths when set.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// Audit is the audit section of the project file.
type Audit struct {
	// Defaults apply to every audited site.
	Defaults AuditSite `yaml:"defaults,omitempty"`

	// Sites maps a host (for example "www.example.com") to its overrides.
	Sites map[string]AuditSite `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the settings for host, merged over the defaults.
func (a *Audit) GetSiteConfig(host string) AuditSite {
	result := a.Defaults
	if len(a.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(a.Defaults.Headers))
		for k, v := range a.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := a.Sites[host]
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.Depth != 0 {
		result.Depth = site.Depth
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	if len(site.IgnorePatterns) > 0 {
		result.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		result.FollowPatterns = site.FollowPatterns
	}
	return result
}
