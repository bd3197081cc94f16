package site

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/i18n"
	"github.com/nao1215/sitectl/internal/model"
	"github.com/nao1215/sitectl/internal/seo"
)

// Builder renders the whole site into an export directory.
type Builder struct {
	catalog     *i18n.Catalog
	project     *config.File
	baseURL     string
	outputDir   string
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBaseURL overrides site.baseURL of the project file.
func WithBaseURL(baseURL string) BuilderOption {
	return func(b *Builder) {
		if baseURL != "" {
			b.baseURL = baseURL
		}
	}
}

// WithOutputDir overrides site.outputDir of the project file.
func WithOutputDir(dir string) BuilderOption {
	return func(b *Builder) {
		if dir != "" {
			b.outputDir = dir
		}
	}
}

// WithConcurrency sets how many pages are rendered at once.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithNow sets the clock used for sitemap lastmod and the manifest.
func WithNow(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder for project, reading text from catalog.
func NewBuilder(catalog *i18n.Catalog, project *config.File, opts ...BuilderOption) *Builder {
	b := &Builder{
		catalog:     catalog,
		project:     project,
		baseURL:     project.Site.BaseURL,
		outputDir:   project.Site.OutputDir,
		concurrency: 4,
		now:         time.Now,
		logger:      slog.Default(),
	}
	if b.outputDir == "" {
		b.outputDir = config.DefaultOutputDir
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildResult describes a finished build.
type BuildResult struct {
	OutputDir string
	Plan      *Plan
	Pages     int
	Files     []string
	Manifest  *Manifest
}

// PlanFor returns the page plan of project using the locales enabled in
// catalog. It is what a build renders, so verify and submit use it too.
func PlanFor(catalog *i18n.Catalog, project *config.File, baseURL string) (*Plan, error) {
	if baseURL == "" {
		baseURL = project.Site.BaseURL
	}
	topicList, err := LookupTopics(project.Site.Topics)
	if err != nil {
		return nil, err
	}
	return NewPlan(baseURL, catalog.Default(), catalog.Locales(), topicList)
}

// Artifacts returns the verification and IndexNow key files of project.
func Artifacts(project *config.File) ([]seo.Artifact, error) {
	return seo.VerificationFiles(project.Verification.Google, project.Verification.Bing, project.IndexNow.Key)
}

// Build renders every page and writes the fixed-format artifacts.
// Pages are rendered in parallel; the first failure cancels the rest.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	if b.baseURL == "" {
		return nil, config.ErrNoBaseURL
	}
	if err := config.ValidateBaseURL(b.baseURL); err != nil {
		return nil, err
	}
	plan, err := PlanFor(b.catalog, b.project, b.baseURL)
	if err != nil {
		return nil, err
	}
	renderer, err := NewRenderer(b.catalog, plan, b.project.Site.Product)
	if err != nil {
		return nil, err
	}
	artifacts, err := Artifacts(b.project)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(b.outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	now := b.now().UTC()
	manifest := &Manifest{
		GeneratedAt: now,
		BaseURL:     plan.BaseURL,
		Files:       make(map[string]string),
	}
	var mu sync.Mutex
	record := func(rel string, data []byte) error {
		if err := b.writeFile(rel, data); err != nil {
			return err
		}
		mu.Lock()
		manifest.Files[rel] = model.HashBytes(data)
		mu.Unlock()
		return nil
	}

	if b.project.Site.StaticDir != "" {
		if err := b.copyStatic(b.project.Site.StaticDir, record); err != nil {
			return nil, err
		}
	}

	pages := plan.Pages()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, ref := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			html, err := renderer.Render(ref.Locale, ref.Topic)
			if err != nil {
				return err
			}
			b.logger.Debug("rendered page", "locale", ref.Locale, "topic", ref.Topic.Name, "file", ref.File)
			return record(ref.File, html)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sitemap, err := seo.GenerateSitemap(plan.SitemapEntries(now))
	if err != nil {
		return nil, err
	}
	if err := record(SitemapFile, sitemap); err != nil {
		return nil, err
	}
	robots := seo.GenerateRobots(seo.RobotsOptions{
		SitemapURL: plan.AbsURL(SitemapFile),
		Disallow:   b.project.Robots.Disallow,
	})
	if err := record(RobotsFile, robots); err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		if err := record(a.Path, a.Data); err != nil {
			return nil, err
		}
	}

	if err := WriteManifest(b.outputDir, manifest); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(manifest.Files))
	for f := range manifest.Files {
		files = append(files, f)
	}
	slices.Sort(files)

	b.logger.Info("build complete", "pages", len(pages), "files", len(files), "dir", b.outputDir)
	return &BuildResult{
		OutputDir: b.outputDir,
		Plan:      plan,
		Pages:     len(pages),
		Files:     files,
		Manifest:  manifest,
	}, nil
}

func (b *Builder) writeFile(rel string, data []byte) error {
	dst := filepath.Join(b.outputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil { //nolint:gosec // published file
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// copyStatic copies every regular file under dir into the export root.
func (b *Builder) copyStatic(dir string, record func(string, []byte) error) error {
	fsys := os.DirFS(dir)
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to read static files: %w", err)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		return record(p, data)
	})
}
