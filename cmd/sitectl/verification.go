package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitectl/internal/seo"
)

// ErrNothingToGenerate is returned when no token or key was given.
var ErrNothingToGenerate = errors.New("no verification token or IndexNow key given")

// NewVerificationCmd creates the verification command.
func NewVerificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verification",
		Short: "Write search engine ownership and IndexNow key files",
		Long: `Verification writes the files search engines fetch to confirm site
ownership into the static export:

  google<token>.html   Google Search Console
  BingSiteAuth.xml     Bing Webmaster Tools
  <key>.txt            IndexNow key file

Tokens default to the verification and indexnow sections of the project
file. Files are overwritten when they exist.

Examples:
  sitectl verification --google abc123 --bing 0F1E2D
  sitectl verification --new-indexnow-key`,
		Args: cobra.NoArgs,
		RunE: runVerificationCmd,
	}

	cmd.Flags().String("google", "", "Google Search Console token")
	cmd.Flags().String("bing", "", "Bing Webmaster Tools token")
	cmd.Flags().String("indexnow-key", "", "IndexNow key")
	cmd.Flags().Bool("new-indexnow-key", false, "Generate a random IndexNow key")
	cmd.Flags().StringP("out-dir", "d", "", "Directory of the static export (default: site.outputDir or out)")
	cmd.MarkFlagsMutuallyExclusive("indexnow-key", "new-indexnow-key")

	return cmd
}

// runVerificationCmd executes the verification command.
func runVerificationCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	google := cfg.Project.Verification.Google
	bing := cfg.Project.Verification.Bing
	key := cfg.Project.IndexNow.Key

	if flags.Changed("google") {
		if google, err = flags.GetString("google"); err != nil {
			return err
		}
	}
	if flags.Changed("bing") {
		if bing, err = flags.GetString("bing"); err != nil {
			return err
		}
	}
	if flags.Changed("indexnow-key") {
		if key, err = flags.GetString("indexnow-key"); err != nil {
			return err
		}
	}
	generate, err := flags.GetBool("new-indexnow-key")
	if err != nil {
		return err
	}
	if generate {
		if key, err = seo.NewIndexNowKey(); err != nil {
			return err
		}
		logger.Info("generated IndexNow key; add it to indexnow.key in the project file")
	}

	artifacts, err := seo.VerificationFiles(google, bing, key)
	if err != nil {
		return fmt.Errorf("invalid verification settings: %w", err)
	}
	if len(artifacts) == 0 {
		return ErrNothingToGenerate
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, a := range artifacts {
		path := filepath.Join(cfg.OutputDir, a.Path)
		if err := os.WriteFile(path, a.Data, 0o644); err != nil { //nolint:gosec // published file
			return fmt.Errorf("failed to write %s: %w", a.Path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	if generate {
		fmt.Fprintf(cmd.OutOrStdout(), "IndexNow key: %s\n", key)
	}
	return nil
}
