package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitectl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitectl",
		Short: "Build, verify and promote a multilingual product website",
		Long: `sitectl renders the statically exported, multilingual website of a
command-line product and runs the search engine tooling around it.

Every command reads the project file (.sitectl.yaml) from the current
directory, the XDG config directory or the home directory. Use
'sitectl init' to create one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Project file path (default: .sitectl.yaml in current or home directory)")

	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewSubmitCmd())
	cmd.AddCommand(NewVerificationCmd())
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewI18nCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
