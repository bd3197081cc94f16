package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/database"
	"github.com/nao1215/sitectl/internal/model"
	"github.com/nao1215/sitectl/internal/pipeline"
	"github.com/nao1215/sitectl/internal/probe"
)

// ErrInvalidFailOn is returned for an unknown --fail-on severity.
var ErrInvalidFailOn = errors.New("invalid --fail-on severity (use critical, high, medium, low or info)")

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [base-url...]",
		Short: "Crawl deployed sites and report indexing problems",
		Long: `Audit crawls one or more deployed sites and reports what keeps search
engines from indexing them:

- robots.txt and sitemap problems
- HTTP errors and redirect chains
- noindex on pages listed in the sitemap
- missing or conflicting canonical links
- hreflang alternates that are invalid or not reciprocal
- missing titles and descriptions
- camera and location metadata in images

Without arguments the base URL of the project file is audited.

Examples:
  # Audit the configured site
  sitectl audit

  # Audit production and staging side by side, store the results
  sitectl audit --save https://example.com https://staging.example.com

  # Fail the CI job on anything high or worse
  sitectl audit --fail-on high

Per-site settings in .sitectl.yaml:
  audit:
    defaults:
      depth: 3
    sites:
      staging.example.com:
        cookie: "session=abc123"
        headers:
          Authorization: "Basic dXNlcjpwYXNz"
        ignorePatterns:
          - "/drafts/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	cmd.Flags().Int("depth", config.DefaultCrawlDepth, "Maximum crawl depth")
	cmd.Flags().Int("max-pages", config.DefaultMaxPages, "Maximum number of pages per site")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of sites audited concurrently")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Delay between requests to the same site")
	cmd.Flags().Bool("no-exif", false, "Skip image metadata checks")
	cmd.Flags().String("fail-on", "",
		"Exit with status 1 when a finding of this severity or worse exists")
	addProbeFlags(cmd)
	addReportFlags(cmd)
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}

	cfg.Targets = make([]string, 0, len(args))
	for _, arg := range args {
		cfg.Targets = append(cfg.Targets, config.TrimBaseURL(arg))
	}
	if len(cfg.Targets) == 0 && cfg.BaseURL != "" {
		cfg.Targets = []string{cfg.BaseURL}
	}
	if err := cfg.RequireTargets(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	failOn, err := failOnSeverity(cmd)
	if err != nil {
		return err
	}
	noEXIF, err := cmd.Flags().GetBool("no-exif")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	var db *database.HistoryDB
	if cfg.SaveToDB {
		if db, err = openHistory(cfg); err != nil {
			return err
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	output, closeOutput, err := openReportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // reports are flushed on every write
	writer := newReportWriter(cfg, output)

	logger.Info("starting audit",
		"targets", cfg.Targets,
		"batch", cfg.BatchSize,
		"save", cfg.SaveToDB,
	)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(site string) (*pipeline.Pipeline, error) {
			return newAuditPipeline(ctx, cfg, site, !noEXIF, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu       sync.Mutex
		failures int
		failed   int
	)
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(r *model.AuditReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Audit completed: %s\n", index+1, len(cfg.Targets), r.Site)

		if r.ErrorMessage != "" {
			failed++
		}
		if failOn != nil && r.Summary != nil && r.Summary.CountAtLeast(*failOn) > 0 {
			failures++
		}
		if _, err := writer.Write(r); err != nil {
			logger.Error("report failed", "site", r.Site, "error", err)
		}
		if err := saveAuditReport(ctx, db, r, logger); err != nil {
			logger.Error("failed to save audit", "site", r.Site, "error", err)
		}
	})
	logger.Info("audit finished", "elapsed", time.Since(startTime).Round(time.Millisecond))
	if err != nil {
		return err
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%w: %d of %d audits did not complete", ErrChecksFailed, failed, len(cfg.Targets))
	case failures > 0:
		return fmt.Errorf("%w: %d of %d sites have %s findings or worse",
			ErrChecksFailed, failures, len(cfg.Targets), *failOn)
	}
	return nil
}

// failOnSeverity parses --fail-on. A nil result means findings never fail
// the command.
func failOnSeverity(cmd *cobra.Command) (*model.Severity, error) {
	name, err := cmd.Flags().GetString("fail-on")
	if err != nil || name == "" {
		return nil, err
	}
	severity, ok := model.ParseSeverity(name)
	if !ok {
		return nil, ErrInvalidFailOn
	}
	return &severity, nil
}

// newAuditPipeline creates the pipeline for one site. Cookies and headers
// of the site's audit section go into a dedicated client, so every site in
// a batch gets its own settings.
func newAuditPipeline(ctx context.Context, cfg *config.Config, site string, exif bool, logger *slog.Logger) (*pipeline.Pipeline, error) {
	u, err := url.Parse(site)
	if err != nil {
		return nil, fmt.Errorf("invalid site %q: %w", site, err)
	}
	siteConfig := cfg.Project.Audit.GetSiteConfig(u.Host)

	extra := []probe.Option{probe.WithFollowRedirects()}
	if siteConfig.Cookie != "" {
		extra = append(extra, probe.WithCookie(siteConfig.Cookie))
	}
	if len(siteConfig.Headers) > 0 {
		extra = append(extra, probe.WithHeaders(siteConfig.Headers))
	}
	client, err := newProbeClient(cfg, logger, extra...)
	if err != nil {
		return nil, err
	}
	if err := checkProxy(ctx, client, site); err != nil {
		return nil, err
	}

	depth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		depth = siteConfig.Depth
	}
	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineCrawlDepth(depth),
		pipeline.WithPipelineCrawlMaxPages(cfg.MaxPages),
		pipeline.WithPipelineCrawlDelay(cfg.CrawlDelay),
		pipeline.WithPipelineMaxBodySize(cfg.MaxBodySize),
		pipeline.WithPipelineEXIF(exif),
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineIgnorePatterns(siteConfig.IgnorePatterns))
	}
	if len(siteConfig.FollowPatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineFollowPatterns(siteConfig.FollowPatterns))
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger.With("site", site)),
		pipeline.WithContinueOnError(true),
	}
	return pipeline.DefaultPipeline(client, pipelineOpts, configOpts...), nil
}

// saveAuditReport stores the summary and page snapshots of r.
// If db is nil, this function is a no-op.
func saveAuditReport(ctx context.Context, db *database.HistoryDB, r *model.AuditReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.SaveAudit(ctx, r)
	if err != nil {
		return err
	}
	changed, err := db.SavePages(ctx, r)
	if err != nil {
		return err
	}
	logger.Info("audit saved to history", "site", r.Site, "id", id, "changed_pages", changed)
	return nil
}
