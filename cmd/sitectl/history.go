package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/database"
	"github.com/nao1215/sitectl/internal/model"
	"github.com/nao1215/sitectl/internal/report"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

var (
	// ErrAuditNotFound is returned by `history show` for an unknown ID or site.
	ErrAuditNotFound = errors.New("audit not found")

	// ErrPageNotFound is returned by `history page` for a URL that was never saved.
	ErrPageNotFound = errors.New("page not found")
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored runs and compare audits",
		Long: `History reads the results stored with --save.

Without a subcommand it lists recent verify and submit runs.

Examples:
  # Last 20 runs of every command
  sitectl history

  # Submissions only
  sitectl history --command submit --limit 5

  # What changed between the two latest audits
  sitectl history compare https://example.com`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("command", "", "Only list runs of this command (verify, submit)")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs (0 lists all)")
	addOutputFlags(cmd)

	cmd.AddCommand(
		newHistoryCompareCmd(),
		newHistoryAuditsCmd(),
		newHistorySitesCmd(),
		newHistoryShowCmd(),
		newHistoryPageCmd(),
	)
	return cmd
}

// addOutputFlags registers the report format flags of read-only commands.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	addHistoryFlags(cmd)
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// runHistoryCmd lists stored runs.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := prepare(cmd)
	if err != nil {
		return err
	}
	command, err := cmd.Flags().GetString("command")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), strings.ToLower(command), limit)
	if err != nil {
		return err
	}
	return withReportWriter(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteRuns(runs)
		return err
	})
}

func newHistoryCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <base-url>",
		Short: "Compare the two latest audits of a site",
		Long: `Compare shows the findings that appeared and disappeared between the two
most recent stored audits of a site. Findings are matched by type, value and
location.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := prepare(cmd)
			if err != nil {
				return err
			}
			db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			comparison, err := db.CompareLatest(cmd.Context(), config.TrimBaseURL(args[0]))
			if errors.Is(err, database.ErrNotEnoughAudits) {
				return fmt.Errorf("%w: run 'sitectl audit --save %s' again", err, args[0])
			}
			if err != nil {
				return err
			}
			return withReportWriter(cmd, cfg, func(w report.Writer) error {
				_, err := w.WriteComparison(comparison)
				return err
			})
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func newHistoryAuditsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audits <base-url>",
		Short: "List the stored audits of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := prepare(cmd)
			if err != nil {
				return err
			}
			db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			site := config.TrimBaseURL(args[0])
			audits, err := db.GetAuditHistory(cmd.Context(), site)
			if err != nil {
				return err
			}
			total, failing, err := db.PageStats(cmd.Context(), site)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.JSONReport {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Site         string                   `json:"site"`
					Audits       []database.AuditMetadata `json:"audits"`
					PagesTracked int                      `json:"pages_tracked"`
					PagesFailing int                      `json:"pages_failing"`
				}{site, audits, total, failing})
			}

			if len(audits) == 0 {
				fmt.Fprintf(out, "No audits stored for %s.\n", site)
				return nil
			}
			fmt.Fprintf(out, "Audits of %s (%d pages tracked, %d failing)\n\n", site, total, failing)
			fmt.Fprintf(out, "%-6s %-20s %-6s %s\n", "ID", "DATE", "SCORE", "CRIT/HIGH/MED/LOW/INFO")
			for _, a := range audits {
				fmt.Fprintf(out, "%-6d %-20s %-6d %d/%d/%d/%d/%d\n",
					a.ID,
					a.Timestamp.Format("2006-01-02 15:04:05"),
					a.RiskScore,
					a.RiskSummary["critical"],
					a.RiskSummary["high"],
					a.RiskSummary["medium"],
					a.RiskSummary["low"],
					a.RiskSummary["info"],
				)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	addHistoryFlags(cmd)
	return cmd
}

func newHistorySitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List every site with stored audits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := prepare(cmd)
			if err != nil {
				return err
			}
			db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			sites, err := db.ListAuditedSites(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sites) == 0 {
				fmt.Fprintln(out, "No audits stored.")
				return nil
			}
			for _, site := range sites {
				fmt.Fprintln(out, site)
			}
			return nil
		},
	}
	addHistoryFlags(cmd)
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <audit-id>",
		Short: "Print a stored audit",
		Long: `Show prints a stored audit summary. IDs are listed by
'sitectl history audits <base-url>'.

Examples:
  sitectl history show 12

  # Latest audit of a site
  sitectl history show --latest https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			latest, err := cmd.Flags().GetBool("latest")
			if err != nil {
				return err
			}
			var id int64
			if !latest {
				id, err = strconv.ParseInt(args[0], 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid audit ID %q", args[0])
				}
			}
			cfg, _, err := prepare(cmd)
			if err != nil {
				return err
			}
			db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			var summary *model.Summary
			if latest {
				summary, err = db.GetLatestAudit(cmd.Context(), config.TrimBaseURL(args[0]))
			} else {
				summary, err = db.GetAuditByID(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			if summary == nil {
				return fmt.Errorf("%w: %s", ErrAuditNotFound, args[0])
			}
			return withReportWriter(cmd, cfg, func(w report.Writer) error {
				_, err := w.WriteSummary(summary)
				return err
			})
		},
	}
	cmd.Flags().Bool("latest", false, "Treat the argument as a base URL and show its latest audit")
	addOutputFlags(cmd)
	return cmd
}

func newHistoryPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page <base-url> <page-url>",
		Short: "Print the stored state of one audited page",
		Long: `Page prints what the latest saved audit recorded for one URL: status,
title, language, canonical link and content digest.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := prepare(cmd)
			if err != nil {
				return err
			}
			db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			page, err := db.GetPage(cmd.Context(), args[1], config.TrimBaseURL(args[0]))
			if err != nil {
				return err
			}
			if page == nil {
				return fmt.Errorf("%w: %s", ErrPageNotFound, args[1])
			}

			out := cmd.OutOrStdout()
			if cfg.JSONReport {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			fmt.Fprintf(out, "URL:          %s\n", page.URL)
			fmt.Fprintf(out, "Last audited: %s\n", page.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Status:       %d\n", page.StatusCode)
			fmt.Fprintf(out, "Title:        %s\n", page.Title)
			fmt.Fprintf(out, "Lang:         %s\n", page.Lang)
			fmt.Fprintf(out, "Canonical:    %s\n", page.Canonical)
			fmt.Fprintf(out, "Digest:       %s\n", page.RawHash)
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	addHistoryFlags(cmd)
	return cmd
}
