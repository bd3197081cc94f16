package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitectl/internal/config"
	"github.com/nao1215/sitectl/internal/database"
	"github.com/nao1215/sitectl/internal/i18n"
	sitelog "github.com/nao1215/sitectl/internal/log"
	"github.com/nao1215/sitectl/internal/model"
	"github.com/nao1215/sitectl/internal/probe"
	"github.com/nao1215/sitectl/internal/report"
)

// ErrChecksFailed is returned by commands whose checks ran but did not all
// pass. Execute turns it into exit status 1.
var ErrChecksFailed = errors.New("one or more checks failed")

// addSiteFlags registers the flags that locate the site and its export.
func addSiteFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("base-url", "u", "",
		"Production base URL (default: site.baseURL of the project file)")
	cmd.Flags().StringP("out-dir", "d", config.DefaultOutputDir,
		"Directory of the static export")
}

// addProbeFlags registers the HTTP check flags.
func addProbeFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of each request (no retries)")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of requests in flight (1 sends them one after another)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for outgoing requests (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header of outgoing requests")
}

// addReportFlags registers output format and history flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	addHistoryFlags(cmd)
	cmd.Flags().Bool("save", false,
		"Store the result in the history database")
}

// addHistoryFlags registers the history database location.
func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
}

// buildConfig creates a Config from the project file and command flags.
// Project values are applied first; flags win only when set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	defined := func(name string) bool { return flags.Lookup(name) != nil }

	var err error
	if defined("verbose") {
		if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
			return nil, err
		}
	}
	if defined("log-json") {
		if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
			return nil, err
		}
	}
	if defined("config") {
		if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
			return nil, err
		}
	}

	// If the user explicitly specified a project file, it must exist.
	// Otherwise a missing file means an empty project.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		project, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyProject(project)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	var err error
	if changed("base-url") {
		var raw string
		if raw, err = flags.GetString("base-url"); err != nil {
			return err
		}
		cfg.BaseURL = config.TrimBaseURL(raw)
	}
	if changed("out-dir") {
		if cfg.OutputDir, err = flags.GetString("out-dir"); err != nil {
			return err
		}
	}
	if changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if changed("depth") {
		if cfg.CrawlDepth, err = flags.GetInt("depth"); err != nil {
			return err
		}
	}
	if changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return err
		}
	}
	if changed("delay") {
		if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return err
		}
	}
	if changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return err
		}
	}
	if changed("json") {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return err
		}
	}
	if changed("markdown") {
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return err
		}
	}
	if changed("output") {
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if changed("save") {
		if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
			return err
		}
	}
	return nil
}

// prepare builds and validates the config and installs the logger.
// Every command that reads the project file starts here.
func prepare(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// setupLogger creates a structured logger whose output masks IndexNow
// keys, verification tokens and credentials.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return sitelog.NewSecureLogger(w, cfg.Verbose, sitelog.WithJSON(cfg.LogJSON))
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// loadCatalog loads the translation tables the project renders.
func loadCatalog(project *config.File) (*i18n.Catalog, error) {
	opts := []i18n.Option{
		i18n.WithDefault(project.Site.DefaultLocale),
		i18n.WithLocales(project.Site.Locales),
	}
	if project.Site.LocalesDir != "" {
		opts = append(opts, i18n.WithDir(project.Site.LocalesDir))
	}
	catalog, err := i18n.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	return catalog, nil
}

// newProbeClient creates the shared HTTP check client from cfg.
func newProbeClient(cfg *config.Config, logger *slog.Logger, extra ...probe.Option) (*probe.Client, error) {
	opts := []probe.Option{
		probe.WithTimeout(cfg.Timeout),
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithConcurrency(cfg.Concurrency),
		probe.WithMaxBodySize(cfg.MaxBodySize),
		probe.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, probe.WithProxy(cfg.ProxyAddress))
	}
	client, err := probe.NewClient(append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// checkProxy verifies a configured proxy before any request is sent
// through it, so a dead proxy fails fast instead of timing out per URL.
func checkProxy(ctx context.Context, client *probe.Client, target string) error {
	if client.ProxyAddress() == "" {
		return nil
	}
	host, port := hostPort(target)
	status := client.CheckProxy(ctx, host, port)
	if status != probe.ProxyStatusOK {
		return fmt.Errorf("proxy check failed for %s: %w", client.ProxyAddress(), status.Error())
	}
	return nil
}

// hostPort returns the host and port a request to rawURL connects to.
func hostPort(rawURL string) (string, uint16) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL, 443
	}
	if _, p, err := net.SplitHostPort(u.Host); err == nil {
		if n, err := strconv.ParseUint(p, 10, 16); err == nil {
			return u.Hostname(), uint16(n)
		}
	}
	if u.Scheme == "http" {
		return u.Hostname(), 80
	}
	return u.Hostname(), 443
}

// openReportOutput returns the report destination: the --output file or
// the command's stdout. The returned close function is never nil.
func openReportOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	// Reports may list staging hosts and tokens in URLs, so keep them private.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter returns the writer for the selected report format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// withReportWriter opens the report destination, passes the writer for
// the selected format to fn and closes the destination.
func withReportWriter(cmd *cobra.Command, cfg *config.Config, fn func(report.Writer) error) error {
	output, closeOutput, err := openReportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	if err := fn(newReportWriter(cfg, output)); err != nil {
		_ = closeOutput() //nolint:errcheck // the write error is more useful
		return fmt.Errorf("failed to write report: %w", err)
	}
	return closeOutput()
}

// writeRun writes run in the selected format and stores it when --save
// is set.
func writeRun(ctx context.Context, cmd *cobra.Command, cfg *config.Config, run *model.RunRecord, logger *slog.Logger) error {
	err := withReportWriter(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteRun(run)
		return err
	})
	if err != nil {
		return err
	}

	if !cfg.SaveToDB {
		return nil
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("run saved to history", "command", run.Command, "id", run.ID)
	return nil
}

// openHistory opens the history database in cfg.DBDir.
func openHistory(cfg *config.Config) (*database.HistoryDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
