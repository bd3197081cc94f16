package seo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

// Alternate is one hreflang variant of a sitemap URL.
type Alternate struct {
	Hreflang string
	Href     string
}

// SitemapEntry is one <url> of sitemap.xml.
type SitemapEntry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
	Alternates []Alternate
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	XHTML   string   `xml:"xmlns:xhtml,attr,omitempty"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string         `xml:"loc"`
	LastMod    string         `xml:"lastmod,omitempty"`
	ChangeFreq string         `xml:"changefreq,omitempty"`
	Priority   string         `xml:"priority,omitempty"`
	Links      []xmlXHTMLLink `xml:"xhtml:link"`
}

type xmlXHTMLLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// GenerateSitemap renders entries as a sitemaps.org 0.9 urlset with
// xhtml:link alternates. Entries keep their order.
func GenerateSitemap(entries []SitemapEntry) ([]byte, error) {
	set := xmlURLSet{XMLNS: sitemapNS}
	for _, e := range entries {
		u := xmlURL{Loc: e.Loc, ChangeFreq: e.ChangeFreq}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		if e.Priority > 0 {
			u.Priority = fmt.Sprintf("%.1f", e.Priority)
		}
		for _, alt := range e.Alternates {
			u.Links = append(u.Links, xmlXHTMLLink{Rel: "alternate", Hreflang: alt.Hreflang, Href: alt.Href})
		}
		if len(u.Links) > 0 {
			set.XHTML = xhtmlNS
		}
		set.URLs = append(set.URLs, u)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Sitemap is a parsed sitemap.xml: either a list of page URLs (urlset) or
// a list of child sitemaps (sitemapindex).
type Sitemap struct {
	URLs     []SitemapEntry
	Children []string
}

// Locs returns the <loc> of every URL entry.
func (s *Sitemap) Locs() []string {
	locs := make([]string, 0, len(s.URLs))
	for _, u := range s.URLs {
		locs = append(locs, u.Loc)
	}
	return locs
}

type parseURLSet struct {
	URLs []struct {
		Loc   string `xml:"loc"`
		Links []struct {
			Rel      string `xml:"rel,attr"`
			Hreflang string `xml:"hreflang,attr"`
			Href     string `xml:"href,attr"`
		} `xml:"http://www.w3.org/1999/xhtml link"`
	} `xml:"url"`
}

type parseIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// ParseSitemap parses a urlset or sitemapindex document.
func ParseSitemap(data []byte) (*Sitemap, error) {
	var root struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	switch root.XMLName.Local {
	case "urlset":
		var set parseURLSet
		if err := xml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("parse sitemap: %w", err)
		}
		sm := &Sitemap{}
		for _, u := range set.URLs {
			entry := SitemapEntry{Loc: u.Loc}
			for _, l := range u.Links {
				if l.Rel == "alternate" {
					entry.Alternates = append(entry.Alternates, Alternate{Hreflang: l.Hreflang, Href: l.Href})
				}
			}
			sm.URLs = append(sm.URLs, entry)
		}
		return sm, nil
	case "sitemapindex":
		var idx parseIndex
		if err := xml.Unmarshal(data, &idx); err != nil {
			return nil, fmt.Errorf("parse sitemap index: %w", err)
		}
		sm := &Sitemap{}
		for _, s := range idx.Sitemaps {
			sm.Children = append(sm.Children, s.Loc)
		}
		return sm, nil
	default:
		return nil, fmt.Errorf("%w: root element <%s>", ErrNotSitemap, root.XMLName.Local)
	}
}
