package verify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/sitectl/internal/crawler"
	"github.com/nao1215/sitectl/internal/i18n"
	"github.com/nao1215/sitectl/internal/model"
	"github.com/nao1215/sitectl/internal/probe"
	"github.com/nao1215/sitectl/internal/seo"
	"github.com/nao1215/sitectl/internal/site"
)

// Verifier runs deployment checks for one build.
type Verifier struct {
	plan      *site.Plan
	dir       string
	artifacts []seo.Artifact
	client    *probe.Client
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClient sets the probe client used by online checks. It should not
// follow redirects so that a redirected artifact counts as failed.
func WithClient(c *probe.Client) Option {
	return func(v *Verifier) {
		v.client = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a Verifier for the build in dir laid out by plan.
// artifacts are the verification and key files the build must contain.
func New(plan *site.Plan, dir string, artifacts []seo.Artifact, opts ...Option) *Verifier {
	v := &Verifier{
		plan:      plan,
		dir:       dir,
		artifacts: artifacts,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run performs the local checks and, when online is set, the online and
// drift checks.
func (v *Verifier) Run(ctx context.Context, online bool) (*Report, error) {
	if online && v.client == nil {
		return nil, ErrNoClient
	}
	report := &Report{Target: v.dir, Online: online, StartedAt: v.now()}
	v.checkFiles(report)
	v.checkMarkup(report)
	if online {
		report.Target = v.plan.BaseURL
		v.checkOnline(ctx, report)
		v.checkDrift(ctx, report)
	}
	v.logger.Debug("verification finished", "checks", len(report.Checks), "passed", report.Passed())
	return report, nil
}

// checkFiles checks that every required file is a non-empty regular file.
func (v *Verifier) checkFiles(report *Report) {
	for _, rel := range v.plan.RequiredFiles(v.artifacts) {
		info, err := os.Stat(filepath.Join(v.dir, filepath.FromSlash(rel)))
		switch {
		case err != nil:
			report.add(Check{Kind: KindFile, Name: rel, Status: StatusMissing})
		case !info.Mode().IsRegular():
			report.add(Check{Kind: KindFile, Name: rel, Status: StatusMissing, Detail: "not a regular file"})
		case info.Size() == 0:
			report.add(Check{Kind: KindFile, Name: rel, Status: StatusInvalid, Detail: "empty file"})
		default:
			report.add(Check{Kind: KindFile, Name: rel, OK: true, Status: StatusPresent})
		}
	}
}

// checkMarkup parses every locale home page and checks its lang attribute
// and canonical link. Missing files are already reported by checkFiles.
func (v *Verifier) checkMarkup(report *Report) {
	home := v.plan.Topics[0]
	for _, locale := range v.plan.Locales {
		rel := v.plan.File(locale, home)
		data, err := os.ReadFile(filepath.Join(v.dir, filepath.FromSlash(rel))) //nolint:gosec // build output
		if err != nil {
			continue
		}
		want := v.plan.URL(locale, home)
		parser, err := crawler.NewParser(want)
		if err != nil {
			continue
		}
		result, err := parser.Parse(bytes.NewReader(data))
		if err != nil {
			report.add(Check{Kind: KindMarkup, Name: rel, Status: StatusInvalid, Detail: err.Error()})
			continue
		}

		var problems []string
		if !i18n.SameLanguage(result.Lang, locale) {
			problems = append(problems, fmt.Sprintf("lang %q, want %q", result.Lang, locale))
		}
		if result.Canonical != want {
			problems = append(problems, fmt.Sprintf("canonical %q, want %q", result.Canonical, want))
		}
		if len(problems) > 0 {
			report.add(Check{Kind: KindMarkup, Name: rel, Status: StatusInvalid, Detail: strings.Join(problems, "; ")})
			continue
		}
		report.add(Check{Kind: KindMarkup, Name: rel, OK: true, Status: StatusValid})
	}
}

// onlineURLs returns the deployed URL of every required file. Index files
// are requested by their directory URL, as a browser would.
func (v *Verifier) onlineURLs() []string {
	urls := make([]string, 0)
	for _, rel := range v.plan.RequiredFiles(v.artifacts) {
		if rel == site.IndexFile || strings.HasSuffix(rel, "/"+site.IndexFile) {
			rel = strings.TrimSuffix(rel, site.IndexFile)
		}
		urls = append(urls, v.plan.AbsURL(rel))
	}
	return urls
}

func (v *Verifier) checkOnline(ctx context.Context, report *Report) {
	summary := v.client.ProbeAll(ctx, v.onlineURLs())
	for _, r := range summary.Results {
		c := Check{
			Kind:       KindOnline,
			Name:       r.URL,
			OK:         r.OK(),
			Status:     r.Status.String(),
			StatusCode: r.StatusCode,
			Detail:     r.Error,
		}
		if r.Location != "" {
			c.Detail = "redirects to " + r.Location
		}
		report.add(c)
	}
}

// checkDrift compares deployed sitemap.xml and robots.txt with the build.
// Local digests come from the manifest, or from the files themselves when
// the build has none.
func (v *Verifier) checkDrift(ctx context.Context, report *Report) {
	manifest, err := site.LoadManifest(v.dir)
	if err != nil {
		v.logger.Debug("no build manifest, hashing local files", "error", err)
		manifest = nil
	}

	for _, rel := range []string{site.SitemapFile, site.RobotsFile} {
		local, ok := "", false
		if manifest != nil {
			local, ok = manifest.Digest(rel)
		}
		if !ok {
			data, err := os.ReadFile(filepath.Join(v.dir, rel)) //nolint:gosec // build output
			if err != nil {
				report.add(Check{Kind: KindDrift, Name: rel, Status: StatusMissing, Detail: "no local copy"})
				continue
			}
			local = model.HashBytes(data)
		}

		r := v.client.Snapshot(ctx, v.plan.AbsURL(rel))
		switch {
		case !r.OK():
			report.add(Check{Kind: KindDrift, Name: rel, Status: r.Status.String(), StatusCode: r.StatusCode, Detail: r.Error})
		case r.Truncated:
			// A partial body never matches the local digest.
			report.add(Check{Kind: KindDrift, Name: rel, OK: true, Status: StatusSkipped, StatusCode: r.StatusCode,
				Detail: fmt.Sprintf("too large to compare (over %d bytes)", len(r.Body))})
		case r.Digest != local:
			report.add(Check{Kind: KindDrift, Name: rel, Status: StatusDrift, StatusCode: r.StatusCode, Detail: "deployed content differs from the local build"})
		default:
			report.add(Check{Kind: KindDrift, Name: rel, OK: true, Status: StatusMatch, StatusCode: r.StatusCode})
		}
	}
}
