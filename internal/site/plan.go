package site

import (
	"path"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/sitectl/internal/seo"
)

// Fixed artifact names at the site root.
const (
	IndexFile    = "index.html"
	SitemapFile  = "sitemap.xml"
	RobotsFile   = "robots.txt"
	ManifestFile = "manifest.json"
)

// Plan maps locales and topics to URLs and output files.
// It is shared by the builder, deployment verification and submission,
// so all of them agree on where every page lives.
type Plan struct {
	BaseURL       string
	DefaultLocale string
	Locales       []string
	Topics        []Topic
}

// PageRef is one rendered page of a plan.
type PageRef struct {
	Locale string
	Topic  Topic

	// Path is the URL path, always with a trailing slash.
	Path string

	// URL is the absolute URL.
	URL string

	// File is the output file relative to the export directory.
	File string
}

// NewPlan builds a plan. The default locale is moved to the front of the
// locale list when missing there.
func NewPlan(baseURL, defaultLocale string, locales []string, topicList []Topic) (*Plan, error) {
	if len(locales) == 0 && defaultLocale == "" {
		return nil, ErrNoLocales
	}
	ordered := make([]string, 0, len(locales)+1)
	ordered = append(ordered, defaultLocale)
	for _, l := range locales {
		if l != defaultLocale && !slices.Contains(ordered, l) {
			ordered = append(ordered, l)
		}
	}
	if len(topicList) == 0 {
		topicList = Topics()
	}
	return &Plan{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		DefaultLocale: defaultLocale,
		Locales:       ordered,
		Topics:        topicList,
	}, nil
}

// Path returns the URL path of topic in locale.
func (p *Plan) Path(locale string, topic Topic) string {
	segments := make([]string, 0, 2)
	if locale != p.DefaultLocale {
		segments = append(segments, locale)
	}
	if topic.Slug != "" {
		segments = append(segments, topic.Slug)
	}
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/") + "/"
}

// URL returns the absolute URL of topic in locale.
func (p *Plan) URL(locale string, topic Topic) string {
	return p.BaseURL + p.Path(locale, topic)
}

// File returns the output file of topic in locale.
func (p *Plan) File(locale string, topic Topic) string {
	return path.Join(strings.TrimPrefix(p.Path(locale, topic), "/"), IndexFile)
}

// AbsURL joins a root-relative path to the base URL.
func (p *Plan) AbsURL(rel string) string {
	return p.BaseURL + "/" + strings.TrimPrefix(rel, "/")
}

// Pages returns every page, locale by locale, topics in navigation order.
func (p *Plan) Pages() []PageRef {
	refs := make([]PageRef, 0, len(p.Locales)*len(p.Topics))
	for _, locale := range p.Locales {
		for _, topic := range p.Topics {
			refs = append(refs, PageRef{
				Locale: locale,
				Topic:  topic,
				Path:   p.Path(locale, topic),
				URL:    p.URL(locale, topic),
				File:   p.File(locale, topic),
			})
		}
	}
	return refs
}

// HomeURLs returns the home page URL of every locale.
func (p *Plan) HomeURLs() []string {
	urls := make([]string, 0, len(p.Locales))
	for _, locale := range p.Locales {
		urls = append(urls, p.URL(locale, topics[0]))
	}
	return urls
}

// Alternates returns the hreflang cluster of topic: one entry per locale
// and x-default pointing at the default locale.
func (p *Plan) Alternates(topic Topic) []seo.Alternate {
	alts := make([]seo.Alternate, 0, len(p.Locales)+1)
	for _, locale := range p.Locales {
		alts = append(alts, seo.Alternate{Hreflang: locale, Href: p.URL(locale, topic)})
	}
	alts = append(alts, seo.Alternate{Hreflang: "x-default", Href: p.URL(p.DefaultLocale, topic)})
	return alts
}

// SitemapEntries returns one sitemap entry per page with its alternates.
func (p *Plan) SitemapEntries(lastMod time.Time) []seo.SitemapEntry {
	pages := p.Pages()
	entries := make([]seo.SitemapEntry, 0, len(pages))
	for _, ref := range pages {
		entries = append(entries, seo.SitemapEntry{
			Loc:        ref.URL,
			LastMod:    lastMod,
			ChangeFreq: ref.Topic.ChangeFreq,
			Priority:   ref.Topic.Priority,
			Alternates: p.Alternates(ref.Topic),
		})
	}
	return entries
}

// RequiredFiles lists the files a complete deployment must contain:
// the root index, sitemap.xml, robots.txt, every locale home page and the
// given extra artifacts (verification and key files).
func (p *Plan) RequiredFiles(extra []seo.Artifact) []string {
	files := []string{IndexFile, SitemapFile, RobotsFile}
	for _, locale := range p.Locales {
		f := p.File(locale, topics[0])
		if !slices.Contains(files, f) {
			files = append(files, f)
		}
	}
	for _, a := range extra {
		files = append(files, a.Path)
	}
	return files
}
