package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitectl/internal/site"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the static site into the export directory",
		Long: `Build renders every topic once per locale from the same template and
writes the static export:

- /, /<topic>/ for the default locale
- /<locale>/, /<locale>/<topic>/ for every other locale
- sitemap.xml with hreflang alternates, robots.txt
- verification files and the IndexNow key file configured in .sitectl.yaml
- manifest.json with the SHA3-256 digest of every file

Examples:
  # Build with the settings of .sitectl.yaml
  sitectl build

  # Build a staging export
  sitectl build --base-url https://staging.example.com --out-dir staging`,
		Args: cobra.NoArgs,
		RunE: runBuildCmd,
	}

	addSiteFlags(cmd)
	cmd.Flags().IntP("parallel", "p", runtime.NumCPU(),
		"Number of pages rendered at once")

	return cmd
}

// runBuildCmd executes the build command.
func runBuildCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireBaseURL(); err != nil {
		return err
	}
	parallel, err := cmd.Flags().GetInt("parallel")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	catalog, err := loadCatalog(cfg.Project)
	if err != nil {
		return err
	}

	builder := site.NewBuilder(catalog, cfg.Project,
		site.WithBaseURL(cfg.BaseURL),
		site.WithOutputDir(cfg.OutputDir),
		site.WithConcurrency(parallel),
		site.WithLogger(logger),
	)
	result, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Built %d pages in %d locales (%d files) into %s\n",
		result.Pages, len(result.Plan.Locales), len(result.Files), result.OutputDir)
	if cfg.Verbose {
		for _, f := range result.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}
	return nil
}
