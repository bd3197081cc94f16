package config

import "time"

// File represents the .sitectl.yaml project file.
type File struct {
	Site         Site         `yaml:"site"`
	Verification Verification `yaml:"verification,omitempty"`
	IndexNow     IndexNow     `yaml:"indexnow,omitempty"`
	Ping         Ping         `yaml:"ping,omitempty"`
	Robots       Robots       `yaml:"robots,omitempty"`
	Probe        Probe        `yaml:"probe,omitempty"`
	Audit        Audit        `yaml:"audit,omitempty"`

	// KeyPages are site paths warmed and submitted by `submit --accelerate`.
	// Empty means the home page of every locale.
	KeyPages []string `yaml:"keyPages,omitempty"`
}

// Site describes the website that `sitectl build` renders.
type Site struct {
	// BaseURL is the production origin, e.g. https://example.com.
	BaseURL string `yaml:"baseURL"`

	// OutputDir is the export directory. Defaults to "out".
	OutputDir string `yaml:"outputDir,omitempty"`

	// DefaultLocale is served at "/". Defaults to "en".
	DefaultLocale string `yaml:"defaultLocale,omitempty"`

	// Locales lists the locales to render. Empty means every bundled locale.
	Locales []string `yaml:"locales,omitempty"`

	// LocalesDir holds extra or overriding translation tables (<locale>.yaml).
	LocalesDir string `yaml:"localesDir,omitempty"`

	// Topics lists the pages to render. Empty means every built-in topic.
	Topics []string `yaml:"topics,omitempty"`

	// StaticDir is copied verbatim into the export (images, favicon).
	StaticDir string `yaml:"staticDir,omitempty"`

	Product Product `yaml:"product"`
}

// Product is the language-independent data of the advertised CLI product.
type Product struct {
	Name       string     `yaml:"name"`
	Repository string     `yaml:"repository,omitempty"`
	Version    string     `yaml:"version,omitempty"`
	Install    string     `yaml:"install,omitempty"`
	Usage      string     `yaml:"usage,omitempty"`
	Downloads  []Download `yaml:"downloads,omitempty"`
}

// Download is one prebuilt binary offered on the download page.
type Download struct {
	OS   string `yaml:"os"`
	Arch string `yaml:"arch"`
	URL  string `yaml:"url"`
}

// Verification holds search console ownership tokens.
type Verification struct {
	// Google is the token of google<token>.html.
	Google string `yaml:"google,omitempty"`

	// Bing is the token written into BingSiteAuth.xml.
	Bing string `yaml:"bing,omitempty"`
}

// IndexNow configures IndexNow submissions.
type IndexNow struct {
	Key         string `yaml:"key,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	KeyLocation string `yaml:"keyLocation,omitempty"`
}

// Ping configures sitemap ping endpoints by engine name.
type Ping struct {
	Engines map[string]string `yaml:"engines,omitempty"`
}

// Robots configures robots.txt generation.
type Robots struct {
	Disallow []string `yaml:"disallow,omitempty"`
}

// Probe holds HTTP check settings.
type Probe struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	UserAgent   string        `yaml:"userAgent,omitempty"`
}

// NewFile returns an empty project with default endpoints filled in.
func NewFile() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

func (f *File) applyDefaults() {
	if f.Site.DefaultLocale == "" {
		f.Site.DefaultLocale = "en"
	}
	if f.IndexNow.Endpoint == "" {
		f.IndexNow.Endpoint = DefaultIndexNowEndpoint
	}
	if len(f.Ping.Engines) == 0 {
		f.Ping.Engines = DefaultPingEngines()
	}
	if f.Audit.Sites == nil {
		f.Audit.Sites = make(map[string]AuditSite)
	}
}
