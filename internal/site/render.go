package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path"
	"strings"

	"golang.org/x/text/language"

	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/i18n"
	"github.com/nao1215/sitectl/internal/seo"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const layoutTemplate = "layout.html.tmpl"

// featureIDs and stepIDs name the catalog entries of the feature grid and
// the getting-started steps, in display order.
var (
	featureIDs = []string{"parallel", "selective", "export", "crossplatform"}
	stepIDs    = []string{"install", "update", "check"}
)

// Renderer executes the page templates. Templates are parsed once per
// topic; a Renderer is safe for concurrent use.
type Renderer struct {
	catalog   *i18n.Catalog
	plan      *Plan
	product   productView
	templates map[string]*template.Template
}

// NewRenderer parses the layout together with every topic of plan.
func NewRenderer(catalog *i18n.Catalog, plan *Plan, product config.Product) (*Renderer, error) {
	if strings.TrimSpace(product.Name) == "" {
		return nil, ErrNoProductName
	}
	r := &Renderer{
		catalog:   catalog,
		plan:      plan,
		product:   newProductView(product),
		templates: make(map[string]*template.Template, len(plan.Topics)),
	}
	for _, topic := range plan.Topics {
		tmpl, err := template.New(layoutTemplate).ParseFS(templateFS,
			path.Join("templates", layoutTemplate),
			path.Join("templates", topic.Template),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", topic.Template, err)
		}
		r.templates[topic.Name] = tmpl
	}
	return r, nil
}

// Render returns the HTML of topic in locale.
func (r *Renderer) Render(locale string, topic Topic) ([]byte, error) {
	tmpl, ok := r.templates[topic.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic.Name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.pageData(locale, topic)); err != nil {
		return nil, fmt.Errorf("failed to render %s/%s: %w", locale, topic.Name, err)
	}
	return buf.Bytes(), nil
}

// pageData is the value every template executes against.
type pageData struct {
	catalog *i18n.Catalog
	plan    *Plan

	Locale             string
	Lang               string
	OGLocale           string
	OGAlternateLocales []string
	Title              string
	Description        string
	Canonical          string
	Alternates         []seo.Alternate
	Nav                []navItem
	Languages          []languageItem
	Product            productView
	Features           []textBlock
	Steps              []textBlock
	PageCount          int
	LocaleCount        int
}

type navItem struct {
	Label   string
	Href    string
	Current bool
}

type languageItem struct {
	Locale  string
	Name    string
	Href    string
	Current bool
}

type textBlock struct {
	ID    string
	Title string
	Body  string
}

type productView struct {
	Name       string
	Repository string
	Version    string
	Install    string
	Usage      string
	Downloads  []downloadView
}

type downloadView struct {
	OS       string
	Arch     string
	URL      string
	FileName string
}

func newProductView(p config.Product) productView {
	v := productView{
		Name:       p.Name,
		Repository: p.Repository,
		Version:    p.Version,
		Install:    p.Install,
		Usage:      p.Usage,
	}
	for _, d := range p.Downloads {
		v.Downloads = append(v.Downloads, downloadView{
			OS:       d.OS,
			Arch:     d.Arch,
			URL:      d.URL,
			FileName: path.Base(d.URL),
		})
	}
	return v
}

func (r *Renderer) pageData(locale string, topic Topic) *pageData {
	d := &pageData{
		catalog:     r.catalog,
		plan:        r.plan,
		Locale:      locale,
		Lang:        r.catalog.Tag(locale).String(),
		OGLocale:    OGLocale(r.catalog, locale),
		Title:       r.catalog.Sprintf(locale, topic.titleKey(), r.product.Name),
		Description: r.catalog.Sprintf(locale, topic.descriptionKey(), r.product.Name),
		Canonical:   r.plan.URL(locale, topic),
		Alternates:  r.plan.Alternates(topic),
		Product:     r.product,
		PageCount:   len(r.plan.Locales) * len(r.plan.Topics),
		LocaleCount: len(r.plan.Locales),
	}
	if d.Lang == "und" {
		d.Lang = locale
	}

	for _, t := range r.plan.Topics {
		d.Nav = append(d.Nav, navItem{
			Label:   r.catalog.T(locale, t.navKey()),
			Href:    r.plan.Path(locale, t),
			Current: t.Name == topic.Name,
		})
	}
	for _, l := range r.plan.Locales {
		d.Languages = append(d.Languages, languageItem{
			Locale:  l,
			Name:    r.catalog.Name(l),
			Href:    r.plan.Path(l, topic),
			Current: l == locale,
		})
		if l != locale {
			d.OGAlternateLocales = append(d.OGAlternateLocales, OGLocale(r.catalog, l))
		}
	}
	for _, id := range featureIDs {
		d.Features = append(d.Features, textBlock{
			ID:    id,
			Title: r.catalog.T(locale, "feature."+id+".title"),
			Body:  r.catalog.T(locale, "feature."+id+".body"),
		})
	}
	for _, id := range stepIDs {
		d.Steps = append(d.Steps, textBlock{
			ID:    id,
			Title: r.catalog.T(locale, "docs.step."+id+".title"),
			Body:  r.catalog.T(locale, "docs.step."+id+".body"),
		})
	}
	return d
}

// T returns the translation of key for the page locale.
func (d *pageData) T(key string) string {
	return d.catalog.T(d.Locale, key)
}

// F formats the translation of key for the page locale.
func (d *pageData) F(key string, args ...any) string {
	return d.catalog.Sprintf(d.Locale, key, args...)
}

// TopicHref returns the path of the named topic in the page locale, or
// the locale home page when the topic is not rendered.
func (d *pageData) TopicHref(name string) string {
	for _, t := range d.plan.Topics {
		if t.Name == name {
			return d.plan.Path(d.Locale, t)
		}
	}
	return d.plan.Path(d.Locale, topics[0])
}

// OGLocale returns the OpenGraph locale of locale ("ja_JP", "en_US"),
// using the most likely region when the tag has none.
func OGLocale(catalog *i18n.Catalog, locale string) string {
	tag := catalog.Tag(locale)
	base, conf := tag.Base()
	if conf == language.No {
		return strings.ReplaceAll(locale, "-", "_")
	}
	region, conf := tag.Region()
	if conf == language.No {
		return base.String()
	}
	return base.String() + "_" + region.String()
}
