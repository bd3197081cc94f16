package model

import "strings"

// Severity represents how much an indexing issue hurts the site in search.
//
// We use iota-based constants rather than strings so that severities can be
// compared and sorted. String() provides the human-readable form.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct impact.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues, such as a missing x-default alternate.
	SeverityLow

	// SeverityMedium indicates issues that degrade how pages are indexed,
	// such as missing canonical links or duplicate titles.
	SeverityMedium

	// SeverityHigh indicates issues that keep pages out of the index for
	// some locales, such as broken pages or an unreachable sitemap.
	SeverityHigh

	// SeverityCritical indicates issues that actively remove pages from the
	// index, such as noindex on a page listed in the sitemap.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a severity name (case-insensitive) to a Severity.
// The second return value is false when the name is not recognized.
func ParseSeverity(name string) (Severity, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INFO":
		return SeverityInfo, true
	case "LOW":
		return SeverityLow, true
	case "MEDIUM":
		return SeverityMedium, true
	case "HIGH":
		return SeverityHigh, true
	case "CRITICAL":
		return SeverityCritical, true
	default:
		return SeverityInfo, false
	}
}

// Finding type identifiers produced by the audit analyzers.
const (
	FindingStatusError          = "status_error"
	FindingStatusRedirect       = "status_redirect"
	FindingCanonicalMissing     = "canonical_missing"
	FindingCanonicalCrossHost   = "canonical_cross_host"
	FindingCanonicalMismatch    = "canonical_mismatch"
	FindingHreflangMissing      = "hreflang_missing"
	FindingHreflangReciprocal   = "hreflang_not_reciprocal"
	FindingHreflangNoXDefault   = "hreflang_no_x_default"
	FindingHreflangInvalidTag   = "hreflang_invalid_tag"
	FindingTitleMissing         = "title_missing"
	FindingTitleDuplicate       = "title_duplicate"
	FindingDescriptionMissing   = "description_missing"
	FindingNoIndex              = "noindex_page"
	FindingLangMismatch         = "lang_mismatch"
	FindingSitemapUnreachable   = "sitemap_unreachable"
	FindingSitemapURLNotCrawled = "sitemap_url_not_crawled"
	FindingSitemapURLNotChecked = "sitemap_url_not_checked"
	FindingRobotsUnreachable    = "robots_unreachable"
	FindingRobotsNoSitemap      = "robots_no_sitemap"
	FindingExifGPS              = "exif_gps"
	FindingExifCamera           = "exif_camera"
	FindingExifSoftware         = "exif_software"
	FindingExifAuthor           = "exif_author"
)

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// Analyzers only decide that something is wrong; how bad it is lives here.
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL
	FindingNoIndex: {
		Severity:       SeverityCritical,
		Impact:         "The page is listed in the sitemap but tells crawlers not to index it, so it is dropped from search results.",
		Recommendation: "Remove the noindex directive or drop the page from sitemap.xml.",
	},

	// HIGH
	FindingStatusError: {
		Severity:       SeverityHigh,
		Impact:         "The page does not return a 2xx status and cannot be indexed.",
		Recommendation: "Fix the route or remove links pointing to it. Check the static export for the missing file.",
	},
	FindingCanonicalCrossHost: {
		Severity:       SeverityHigh,
		Impact:         "The canonical link points to another host, handing the page's ranking to that host.",
		Recommendation: "Point canonical links at the production base URL of this site.",
	},
	FindingHreflangInvalidTag: {
		Severity:       SeverityHigh,
		Impact:         "Search engines ignore the whole hreflang cluster when a language tag is invalid.",
		Recommendation: "Use BCP 47 language tags (for example en, ja, zh-Hans, pt-BR) or x-default.",
	},
	FindingSitemapUnreachable: {
		Severity:       SeverityHigh,
		Impact:         "Search engines cannot read the sitemap and have to discover locale pages by crawling alone.",
		Recommendation: "Make sure sitemap.xml is part of the deployed export and served with a 2xx status.",
	},

	// MEDIUM
	FindingCanonicalMissing: {
		Severity:       SeverityMedium,
		Impact:         "Without a canonical link, duplicate URLs (trailing slash, query strings) compete with each other.",
		Recommendation: "Emit <link rel=\"canonical\"> on every page.",
	},
	FindingHreflangMissing: {
		Severity:       SeverityMedium,
		Impact:         "Locale variants are not linked, so search engines may show the wrong language to users.",
		Recommendation: "Emit <link rel=\"alternate\" hreflang> for every locale variant of the page.",
	},
	FindingHreflangReciprocal: {
		Severity:       SeverityMedium,
		Impact:         "Hreflang annotations that are not confirmed by the target page are ignored.",
		Recommendation: "Make every locale variant list all the others, including itself.",
	},
	FindingTitleMissing: {
		Severity:       SeverityMedium,
		Impact:         "Search engines generate a title from page content, usually poorly.",
		Recommendation: "Add a translated <title> to the page template.",
	},
	FindingTitleDuplicate: {
		Severity:       SeverityMedium,
		Impact:         "Several pages share the same title, which usually means a translation is missing.",
		Recommendation: "Give every page and locale a distinct title.",
	},
	FindingLangMismatch: {
		Severity:       SeverityMedium,
		Impact:         "The html lang attribute disagrees with the hreflang of the page, confusing language detection.",
		Recommendation: "Render <html lang> from the same locale table as the hreflang links.",
	},
	FindingSitemapURLNotCrawled: {
		Severity:       SeverityMedium,
		Impact:         "The sitemap lists a URL that could not be fetched.",
		Recommendation: "Regenerate sitemap.xml from the build output so that it only lists exported pages.",
	},

	// LOW
	FindingStatusRedirect: {
		Severity:       SeverityLow,
		Impact:         "Internal links go through a redirect, wasting crawl budget.",
		Recommendation: "Link directly to the final URL.",
	},
	FindingCanonicalMismatch: {
		Severity:       SeverityLow,
		Impact:         "The canonical URL differs from the fetched URL on the same host.",
		Recommendation: "Check that trailing slashes and locale prefixes in canonical links match the export layout.",
	},
	FindingHreflangNoXDefault: {
		Severity:       SeverityLow,
		Impact:         "Users whose language is not offered get an arbitrary variant.",
		Recommendation: "Add an x-default alternate pointing at the default locale.",
	},
	FindingDescriptionMissing: {
		Severity:       SeverityLow,
		Impact:         "Search engines build the snippet from page text.",
		Recommendation: "Add a translated meta description.",
	},
	FindingRobotsUnreachable: {
		Severity:       SeverityLow,
		Impact:         "robots.txt could not be fetched; crawlers fall back to defaults.",
		Recommendation: "Deploy robots.txt at the site root.",
	},
	FindingRobotsNoSitemap: {
		Severity:       SeverityLow,
		Impact:         "robots.txt does not advertise the sitemap.",
		Recommendation: "Add a Sitemap: line to robots.txt.",
	},
	FindingExifGPS: {
		Severity:       SeverityHigh,
		Impact:         "A published image carries GPS coordinates.",
		Recommendation: "Strip EXIF metadata from images before adding them to the site.",
	},
	FindingExifAuthor: {
		Severity:       SeverityLow,
		Impact:         "A published image carries author or copyright metadata.",
		Recommendation: "Strip EXIF metadata unless attribution is intended.",
	},
	FindingExifCamera: {
		Severity:       SeverityLow,
		Impact:         "A published image carries camera metadata, adding weight to every download.",
		Recommendation: "Strip EXIF metadata from images before adding them to the site.",
	},

	// INFO
	FindingSitemapURLNotChecked: {
		Severity:       SeverityInfo,
		Impact:         "The crawl reached its page limit before this sitemap URL, so it was not checked.",
		Recommendation: "Raise --max-pages to audit every sitemap URL.",
	},
	FindingExifSoftware: {
		Severity:       SeverityInfo,
		Impact:         "A published image records the software used to edit it.",
		Recommendation: "Strip EXIF metadata if image size matters.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "No impact information available for this finding type.",
		Recommendation: "Review the finding and decide whether it needs action.",
	}
}

// NewFinding builds a Finding whose severity, impact and recommendation
// come from the finding type mapping.
func NewFinding(findingType, title, description, value, location string) Finding {
	info := GetFindingInfo(findingType)
	return Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Description:    description,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
		Location:       location,
	}
}
