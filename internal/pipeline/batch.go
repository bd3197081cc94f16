package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitectl/internal/model"
)

// BatchProcessor audits several sites concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-site execution
// 2. Each site gets its own pipeline, with its own cookie and headers
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each site.
	pipelineFactory func(site string) (*Pipeline, error)

	// concurrency is the maximum number of concurrent audits.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent audits.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each site to create a fresh
// pipeline instance, so that crawl state doesn't leak between sites.
func NewBatchProcessor(pipelineFactory func(site string) (*Pipeline, error), opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch audits every site and returns the reports in input order.
// A failing audit is recorded in its report and does not stop the others.
// The error is non-nil only when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sites []string) ([]*model.AuditReport, error) {
	reports := make([]*model.AuditReport, len(sites))
	err := bp.ProcessBatchWithCallback(ctx, sites, func(report *model.AuditReport, index int) {
		reports[index] = report
	})
	return reports, err
}

// ProcessBatchWithCallback audits every site and calls callback for each
// completed audit. This is useful for streaming results.
//
// The callback is called from the goroutine that completed the audit, so
// it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sites []string,
	callback func(report *model.AuditReport, index int),
) error {
	bp.logger.Info("starting batch audit",
		"total_sites", len(sites),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, site := range sites {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bp.logger.Info("auditing site",
				"site", site,
				"index", i+1,
				"total", len(sites),
			)

			report := model.NewAuditReport(site)
			p, err := bp.pipelineFactory(site)
			if err != nil {
				report.SetError(err)
			} else if err := p.Execute(gctx, report); err != nil {
				bp.logger.Warn("audit failed", "site", site, "error", err)
			} else {
				bp.logger.Info("audit completed", "site", site)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch audit complete",
		"total_sites", len(sites),
		"elapsed", time.Since(startTime),
	)
	return err
}
