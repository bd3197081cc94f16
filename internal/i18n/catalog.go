package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var bundled embed.FS

// DefaultLocale is the locale served at the site root.
const DefaultLocale = "en"

// BundledLocales lists the locales shipped with the binary, in the order
// they appear in language switchers.
var BundledLocales = []string{"en", "ja", "zh", "es", "de", "fr", "ko", "pt"}

// Catalog holds the translation tables of all enabled locales.
// It is read-only after Load and safe for concurrent use.
type Catalog struct {
	defaultLocale string
	locales       []string
	tags          map[string]language.Tag
	tables        map[string]map[string]string
	messages      *catalog.Builder
	matcher       language.Matcher
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	dir           string
	defaultLocale string
	only          []string
}

// WithDir loads additional <locale>.yaml tables from dir. Entries override
// the bundled ones key by key; unknown locales are added.
func WithDir(dir string) Option {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// WithDefault sets the default locale. Defaults to "en".
func WithDefault(locale string) Option {
	return func(o *loadOptions) {
		if locale != "" {
			o.defaultLocale = locale
		}
	}
}

// WithLocales restricts the catalog to the given locales, in that order.
// An empty list keeps every available locale.
func WithLocales(locales []string) Option {
	return func(o *loadOptions) {
		o.only = locales
	}
}

// Load builds a Catalog from the bundled tables and any options.
func Load(opts ...Option) (*Catalog, error) {
	o := loadOptions{defaultLocale: DefaultLocale}
	for _, opt := range opts {
		opt(&o)
	}

	tables := make(map[string]map[string]string)
	order := make([]string, 0, len(BundledLocales))

	if err := readTables(bundled, "locales", tables, &order); err != nil {
		return nil, err
	}
	if o.dir != "" {
		if err := readTables(os.DirFS(o.dir), ".", tables, &order); err != nil {
			return nil, err
		}
	}
	sortBundledFirst(order)

	if len(o.only) > 0 {
		selected := make([]string, 0, len(o.only))
		for _, code := range o.only {
			if _, ok := tables[code]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, code)
			}
			if !slices.Contains(selected, code) {
				selected = append(selected, code)
			}
		}
		if !slices.Contains(selected, o.defaultLocale) {
			selected = append([]string{o.defaultLocale}, selected...)
		}
		order = selected
	}

	if _, ok := tables[o.defaultLocale]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDefaultLocale, o.defaultLocale)
	}

	c := &Catalog{
		defaultLocale: o.defaultLocale,
		locales:       order,
		tags:          make(map[string]language.Tag, len(order)),
		tables:        make(map[string]map[string]string, len(order)),
	}

	defaultTag, err := language.Parse(o.defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLocale, o.defaultLocale)
	}
	c.messages = catalog.NewBuilder(catalog.Fallback(defaultTag))

	tags := make([]language.Tag, 0, len(order))
	// The matcher prefers its first tag, so the default locale goes first.
	for _, code := range append([]string{o.defaultLocale}, order...) {
		if _, done := c.tags[code]; done {
			continue
		}
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLocale, code)
		}
		c.tags[code] = tag
		c.tables[code] = tables[code]
		tags = append(tags, tag)
		for key, text := range tables[code] {
			if err := c.messages.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", code, key, err)
			}
		}
	}
	c.matcher = language.NewMatcher(tags)

	return c, nil
}

// readTables reads every *.yaml file of dir in fsys into tables.
// New locale codes are appended to order.
func readTables(fsys fs.FS, dir string, tables map[string]map[string]string, order *[]string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read locale directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}
		code := strings.TrimSuffix(name, ".yaml")
		if _, err := language.Parse(code); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidLocale, code)
		}

		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, name)))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		var table map[string]string
		if err := yaml.Unmarshal(data, &table); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}

		existing, ok := tables[code]
		if !ok {
			existing = make(map[string]string, len(table))
			tables[code] = existing
			*order = append(*order, code)
		}
		for key, text := range table {
			existing[key] = text
		}
	}
	return nil
}

// sortBundledFirst orders bundled locales as in BundledLocales, followed by
// any extra locales alphabetically.
func sortBundledFirst(order []string) {
	rank := func(code string) int {
		if i := slices.Index(BundledLocales, code); i >= 0 {
			return i
		}
		return len(BundledLocales)
	}
	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := rank(order[i]), rank(order[j])
		if ri != rj {
			return ri < rj
		}
		return order[i] < order[j]
	})
}

// Default returns the default locale code.
func (c *Catalog) Default() string {
	return c.defaultLocale
}

// Locales returns the enabled locale codes, default locale first when it
// is bundled, in switcher order.
func (c *Catalog) Locales() []string {
	return slices.Clone(c.locales)
}

// Has reports whether locale is enabled.
func (c *Catalog) Has(locale string) bool {
	_, ok := c.tags[locale]
	return ok && slices.Contains(c.locales, locale)
}

// Tag returns the language tag of locale, or language.Und when unknown.
func (c *Catalog) Tag(locale string) language.Tag {
	if tag, ok := c.tags[locale]; ok {
		return tag
	}
	return language.Und
}

// T returns the raw entry for key in locale, falling back to the default
// locale and then to the key itself.
func (c *Catalog) T(locale, key string) string {
	if text, ok := c.tables[locale][key]; ok {
		return text
	}
	if text, ok := c.tables[c.defaultLocale][key]; ok {
		return text
	}
	return key
}

// Lookup returns the entry for key in locale without any fallback.
func (c *Catalog) Lookup(locale, key string) (string, bool) {
	text, ok := c.tables[locale][key]
	return text, ok
}

// Printer returns a message printer for locale. Unknown locales get the
// default locale's printer.
func (c *Catalog) Printer(locale string) *message.Printer {
	tag, ok := c.tags[locale]
	if !ok {
		tag = c.tags[c.defaultLocale]
	}
	return message.NewPrinter(tag, message.Catalog(c.messages))
}

// Sprintf formats the entry for key in locale with args. Numbers are
// formatted for the locale (1,234 in en, 1.234 in de).
func (c *Catalog) Sprintf(locale, key string, args ...any) string {
	if _, ok := c.tables[c.defaultLocale][key]; !ok {
		if _, ok := c.tables[locale][key]; !ok {
			return key
		}
	}
	return c.Printer(locale).Sprintf(key, args...)
}

// Name returns the name of locale in its own language, capitalized for
// that language ("日本語", "Español").
func (c *Catalog) Name(locale string) string {
	tag, ok := c.tags[locale]
	if !ok {
		return locale
	}
	name := display.Self.Name(tag)
	if name == "" {
		return locale
	}
	return cases.Title(tag, cases.NoLower).String(name)
}

// Missing lists keys of the default locale that locale does not define,
// sorted.
func (c *Catalog) Missing(locale string) []string {
	missing := make([]string, 0)
	table := c.tables[locale]
	for key := range c.tables[c.defaultLocale] {
		if _, ok := table[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// Extra lists keys locale defines that the default locale does not, sorted.
// They are usually typos or leftovers of removed strings.
func (c *Catalog) Extra(locale string) []string {
	extra := make([]string, 0)
	defaults := c.tables[c.defaultLocale]
	for key := range c.tables[locale] {
		if _, ok := defaults[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}

// Keys returns all keys of the default locale, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.tables[c.defaultLocale]))
	for key := range c.tables[c.defaultLocale] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
