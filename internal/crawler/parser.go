package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/sitectl/internal/model"
)

// Parser extracts the indexing-relevant markup of an HTML page.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Attribute order and quoting do not matter
//  3. The same parser serves the crawler and local build checks
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains all information extracted from an HTML page.
type ParseResult struct {
	// Title is the page title from <title> tag.
	Title string

	// Lang is the lang attribute of <html>.
	Lang string

	// Canonical is the resolved href of <link rel="canonical">.
	Canonical string

	// Alternates are the hreflang annotations in document order.
	Alternates []model.Alternate

	// Description is the content of <meta name="description">.
	Description string

	// Robots is the content of <meta name="robots">.
	Robots string

	// Links contains all discovered URLs (href attributes of <a>).
	Links []string

	// InternalLinks are links to the same host.
	InternalLinks []string

	// ExternalLinks are links to other hosts.
	ExternalLinks []string

	// Images contains image sources.
	Images []string

	// MetaTags contains meta tag information, keyed by name or property.
	MetaTags map[string]string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts all relevant information.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Alternates:    make([]model.Alternate, 0),
		Links:         make([]string, 0),
		InternalLinks: make([]string, 0),
		ExternalLinks: make([]string, 0),
		Images:        make([]string, 0),
		MetaTags:      make(map[string]string),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			p.processElement(n, result)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result.Description = result.MetaTags["description"]
	result.Robots = result.MetaTags["robots"]
	return result, nil
}

// processElement handles HTML element nodes.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "html":
		result.Lang = strings.TrimSpace(getAttr(n, "lang"))

	case "title":
		// Only the first title counts, like in browsers.
		if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			resolved := p.resolveURL(href)
			if resolved != "" {
				result.Links = append(result.Links, resolved)
				p.classifyLink(resolved, result)
			}
		}

	case "img":
		if src := getAttr(n, "src"); src != "" {
			if resolved := p.resolveURL(src); resolved != "" {
				result.Images = append(result.Images, resolved)
			}
		}

	case "meta":
		name := strings.ToLower(getAttr(n, "name"))
		if name == "" {
			name = getAttr(n, "property") // OpenGraph uses property
		}
		content := strings.TrimSpace(getAttr(n, "content"))
		if name != "" && content != "" {
			if _, exists := result.MetaTags[name]; !exists {
				result.MetaTags[name] = content
			}
		}

	case "link":
		p.processLink(n, result)
	}
}

// processLink handles canonical and hreflang <link> elements.
func (p *Parser) processLink(n *html.Node, result *ParseResult) {
	href := getAttr(n, "href")
	if href == "" {
		return
	}
	for _, rel := range strings.Fields(strings.ToLower(getAttr(n, "rel"))) {
		switch rel {
		case "canonical":
			if result.Canonical == "" {
				result.Canonical = p.resolveURL(href)
			}
		case "alternate":
			if hreflang := strings.TrimSpace(getAttr(n, "hreflang")); hreflang != "" {
				result.Alternates = append(result.Alternates, model.Alternate{
					Hreflang: hreflang,
					Href:     p.resolveURL(href),
				})
			}
		}
	}
}

// resolveURL resolves a relative URL against the base URL and drops the
// fragment.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Makes deduplication easier
//  2. Canonical and hreflang targets must be compared as absolute URLs
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	resolved.Fragment = ""
	return resolved.String()
}

// classifyLink categorizes a link as internal or external.
func (p *Parser) classifyLink(link string, result *ParseResult) {
	u, err := url.Parse(link)
	if err != nil {
		return
	}
	if u.Host == "" || strings.EqualFold(u.Host, p.baseURL.Host) {
		result.InternalLinks = append(result.InternalLinks, link)
		return
	}
	result.ExternalLinks = append(result.ExternalLinks, link)
}

// Apply copies the parsed markup into page.
func (r *ParseResult) Apply(page *model.Page) {
	page.Title = r.Title
	page.Lang = r.Lang
	page.Canonical = r.Canonical
	page.Alternates = r.Alternates
	page.Description = r.Description
	page.Links = r.InternalLinks
	page.Images = r.Images
	if r.Robots != "" {
		if page.Robots != "" {
			page.Robots = r.Robots + ", " + page.Robots
		} else {
			page.Robots = r.Robots
		}
	}
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
