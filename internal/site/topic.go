package site

import (
	"fmt"
	"slices"
)

// Topic is one page of the site, rendered in every locale.
type Topic struct {
	// Slug is the path segment; empty for the home page.
	Slug string

	// Name identifies the topic in configuration ("home", "docs").
	Name string

	// Template is the file name under templates/.
	Template string

	// Priority and ChangeFreq are written to sitemap.xml.
	Priority   float64
	ChangeFreq string
}

// topics lists the built-in topics in navigation order.
var topics = []Topic{
	{Name: "home", Slug: "", Template: "home.html.tmpl", Priority: 1.0, ChangeFreq: "weekly"},
	{Name: "features", Slug: "features", Template: "features.html.tmpl", Priority: 0.8, ChangeFreq: "monthly"},
	{Name: "docs", Slug: "docs", Template: "docs.html.tmpl", Priority: 0.8, ChangeFreq: "weekly"},
	{Name: "download", Slug: "download", Template: "download.html.tmpl", Priority: 0.6, ChangeFreq: "weekly"},
}

// Topics returns the built-in topics in navigation order.
func Topics() []Topic {
	return slices.Clone(topics)
}

// TopicNames returns the names of the built-in topics.
func TopicNames() []string {
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Name)
	}
	return names
}

// LookupTopics resolves topic names, keeping navigation order. An empty
// list selects every topic. The home topic is always included.
func LookupTopics(names []string) ([]Topic, error) {
	if len(names) == 0 {
		return Topics(), nil
	}
	for _, name := range names {
		if !slices.Contains(TopicNames(), name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, name)
		}
	}
	selected := make([]Topic, 0, len(names)+1)
	for _, t := range topics {
		if t.Name == "home" || slices.Contains(names, t.Name) {
			selected = append(selected, t)
		}
	}
	return selected, nil
}

// navKey is the catalog key of the topic's navigation label.
func (t Topic) navKey() string {
	return "nav." + t.Name
}

func (t Topic) titleKey() string {
	return t.Name + ".title"
}

func (t Topic) descriptionKey() string {
	return t.Name + ".description"
}
