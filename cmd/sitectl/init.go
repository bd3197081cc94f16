package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitectl/internal/config"
)

//go:embed templates/sitectl.yaml
var projectTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sitectl project file",
		Long: `Init writes a commented .sitectl.yaml into the current directory.

The file documents every section: the site to build, verification tokens,
IndexNow and ping settings, HTTP check options and per-site audit settings.

Examples:
  # Create .sitectl.yaml in the current directory
  sitectl init

  # Create the project file at a specific path
  sitectl init -o site/sitectl.yaml

  # Overwrite an existing file
  sitectl init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the project file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite an existing project file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("project file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := projectTemplate.ReadFile("templates/sitectl.yaml")
	if err != nil {
		return fmt.Errorf("failed to read project template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	// Tokens and audit cookies end up in this file.
	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created project file: %s\n", outputPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Set site.baseURL and site.product")
	fmt.Fprintln(out, "  2. sitectl build")
	fmt.Fprintln(out, "  3. sitectl verify")
	return nil
}
