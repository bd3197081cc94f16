package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewI18nCmd creates the i18n command and its subcommands.
func NewI18nCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "i18n",
		Short: "Inspect translation tables",
	}
	cmd.AddCommand(newI18nCheckCmd(), newI18nNegotiateCmd())
	return cmd
}

// localeStatus is the completeness of one translation table.
type localeStatus struct {
	Locale  string   `json:"locale"`
	Name    string   `json:"name"`
	Missing []string `json:"missing,omitempty"`
	Extra   []string `json:"extra,omitempty"`
}

func newI18nCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report missing and unused translation keys",
		Long: `Check compares every enabled locale with the default locale.

Missing keys fall back to the default locale when the site is built, so
pages still render, but the text is not translated. Extra keys are never
used. The command fails when any key is missing.

Examples:
  sitectl i18n check
  sitectl i18n check --json`,
		Args: cobra.NoArgs,
		RunE: runI18nCheckCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	return cmd
}

// runI18nCheckCmd executes `i18n check`.
func runI18nCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := prepare(cmd)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg.Project)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var statuses []localeStatus
	missing := 0
	for _, locale := range catalog.Locales() {
		if locale == catalog.Default() {
			continue
		}
		s := localeStatus{
			Locale:  locale,
			Name:    catalog.Name(locale),
			Missing: catalog.Missing(locale),
			Extra:   catalog.Extra(locale),
		}
		missing += len(s.Missing)
		statuses = append(statuses, s)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(statuses); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Default locale: %s (%d keys)\n\n", catalog.Default(), len(catalog.Keys()))
		for _, s := range statuses {
			mark := "[ OK ]"
			if len(s.Missing) > 0 {
				mark = "[FAIL]"
			}
			fmt.Fprintf(out, "%s %-6s %s: %d missing, %d extra\n", mark, s.Locale, s.Name, len(s.Missing), len(s.Extra))
			for _, key := range s.Missing {
				fmt.Fprintf(out, "         - %s\n", key)
			}
			for _, key := range s.Extra {
				fmt.Fprintf(out, "         + %s\n", key)
			}
		}
	}

	if missing > 0 {
		return fmt.Errorf("%w: %d missing translations", ErrChecksFailed, missing)
	}
	return nil
}

func newI18nNegotiateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "negotiate <accept-language>",
		Short: "Print the locale served for an Accept-Language header",
		Long: `Negotiate prints the enabled locale that best matches an Accept-Language
header, or the default locale when nothing matches.

Example:
  sitectl i18n negotiate "ja-JP,ja;q=0.9,en;q=0.8"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := prepare(cmd)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg.Project)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), catalog.Negotiate(args[0]))
			return nil
		},
	}
}
