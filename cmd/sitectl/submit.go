package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitectl/internal/site"
	"github.com/nao1215/sitectl/internal/submit"
)

// NewSubmitCmd creates the submit command.
func NewSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Notify search engines about the sitemap or new pages",
		Long: `Submit notifies search engines with plain GET requests. Every request is
sent once: a 2xx answer counts as success and nothing is retried.

Modes:
  (default)      ping each configured engine with the sitemap URL
  --indexnow     submit every page of the site to IndexNow
  --accelerate   request each key page, then submit it to IndexNow

The exit status is 0 when at least one submission succeeded, or when all
of them did with --strict.

Examples:
  # Ping Google and Bing with https://example.com/sitemap.xml
  sitectl submit

  # Warm and submit the key pages
  sitectl submit --accelerate

  # Fail unless every page was accepted
  sitectl submit --indexnow --strict`,
		Args: cobra.NoArgs,
		RunE: runSubmitCmd,
	}

	cmd.Flags().Bool("indexnow", false, "Submit every page to IndexNow")
	cmd.Flags().Bool("accelerate", false, "Warm key pages and submit them to IndexNow")
	cmd.Flags().Bool("strict", false, "Require every submission to succeed")
	cmd.Flags().String("indexnow-key", "", "IndexNow key (default: indexnow.key of the project file)")
	cmd.Flags().StringP("base-url", "u", "",
		"Production base URL (default: site.baseURL of the project file)")
	addProbeFlags(cmd)
	addReportFlags(cmd)
	cmd.MarkFlagsMutuallyExclusive("indexnow", "accelerate")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runSubmitCmd executes the submit command.
func runSubmitCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireBaseURL(); err != nil {
		return err
	}

	flags := cmd.Flags()
	indexNow, err := flags.GetBool("indexnow")
	if err != nil {
		return err
	}
	accelerate, err := flags.GetBool("accelerate")
	if err != nil {
		return err
	}
	strict, err := flags.GetBool("strict")
	if err != nil {
		return err
	}
	settings := submit.IndexNowSettings{
		Endpoint:    cfg.Project.IndexNow.Endpoint,
		Key:         cfg.Project.IndexNow.Key,
		KeyLocation: cfg.Project.IndexNow.KeyLocation,
	}
	if flags.Changed("indexnow-key") {
		if settings.Key, err = flags.GetString("indexnow-key"); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	client, err := newProbeClient(cfg, logger)
	if err != nil {
		return err
	}
	if err := checkProxy(ctx, client, cfg.BaseURL); err != nil {
		return err
	}
	submitter := submit.New(client, submit.WithLogger(logger))

	var result *submit.Result
	switch {
	case indexNow || accelerate:
		catalog, err := loadCatalog(cfg.Project)
		if err != nil {
			return err
		}
		plan, err := site.PlanFor(catalog, cfg.Project, cfg.BaseURL)
		if err != nil {
			return err
		}
		if accelerate {
			pages := submit.KeyPageURLs(cfg.BaseURL, cfg.Project.KeyPages, plan.HomeURLs())
			result, err = submitter.Accelerate(ctx, settings, pages)
		} else {
			pages := make([]string, 0, len(plan.Pages()))
			for _, ref := range plan.Pages() {
				pages = append(pages, ref.URL)
			}
			result, err = submitter.IndexNow(ctx, settings, pages)
		}
		if err != nil {
			return fmt.Errorf("submission failed: %w", err)
		}
	default:
		result, err = submitter.PingSitemaps(ctx, cfg.BaseURL+"/"+site.SitemapFile, cfg.Project.Ping.Engines)
		if err != nil {
			return fmt.Errorf("submission failed: %w", err)
		}
	}

	if err := writeRun(ctx, cmd, cfg, result.Record(), logger); err != nil {
		return err
	}
	if accelerate {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warmed %d/%d key pages, submitted %d/%d\n",
			result.Warmed(), len(result.Warmups), result.Succeeded(), result.Total())
	}
	if !result.OK(strict) {
		return fmt.Errorf("%w: %d of %d submissions succeeded", ErrChecksFailed, result.Succeeded(), result.Total())
	}
	return nil
}
