package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/site"
	"github.com/nao1215/sitectl/internal/verify"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the static export and, with --online, the deployed site",
		Long: `Verify checks that the static export contains every page, sitemap.xml,
robots.txt, verification file and IndexNow key file, and that each locale
home page carries the right lang attribute and canonical link.

With --online it also requests every artifact from the production host
(2xx is success, no retries, redirects count as failures) and compares the
deployed sitemap.xml and robots.txt with the local build.

The exit status is 0 only when every check passes.

Examples:
  # Check the export in ./out
  sitectl verify

  # Check the deployment as well
  sitectl verify --online

  # Store the result for 'sitectl history'
  sitectl verify --online --save`,
		Args: cobra.NoArgs,
		RunE: runVerifyCmd,
	}

	cmd.Flags().Bool("online", false, "Also check the deployed site")
	addSiteFlags(cmd)
	addProbeFlags(cmd)
	addReportFlags(cmd)
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runVerifyCmd executes the verify command.
func runVerifyCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}
	online, err := cmd.Flags().GetBool("online")
	if err != nil {
		return err
	}

	// The build records its base URL, so a plain local check works
	// without repeating --base-url.
	if cfg.BaseURL == "" {
		if manifest, err := site.LoadManifest(cfg.OutputDir); err == nil {
			cfg.BaseURL = config.TrimBaseURL(manifest.BaseURL)
		}
	}
	if err := cfg.RequireBaseURL(); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	catalog, err := loadCatalog(cfg.Project)
	if err != nil {
		return err
	}
	plan, err := site.PlanFor(catalog, cfg.Project, cfg.BaseURL)
	if err != nil {
		return err
	}
	artifacts, err := site.Artifacts(cfg.Project)
	if err != nil {
		return err
	}

	opts := []verify.Option{verify.WithLogger(logger)}
	if online {
		client, err := newProbeClient(cfg, logger)
		if err != nil {
			return err
		}
		if err := checkProxy(ctx, client, cfg.BaseURL); err != nil {
			return err
		}
		opts = append(opts, verify.WithClient(client))
	}

	result, err := verify.New(plan, cfg.OutputDir, artifacts, opts...).Run(ctx, online)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if err := writeRun(ctx, cmd, cfg, result.Record(), logger); err != nil {
		return err
	}
	if !result.AllPassed() {
		return fmt.Errorf("%w: %d of %d", ErrChecksFailed, len(result.Failed()), len(result.Checks))
	}
	return nil
}
