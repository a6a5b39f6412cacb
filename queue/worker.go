package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cerno-sec/cerno/coverage"
	"github.com/cerno-sec/cerno/endpoint"
	"github.com/cerno-sec/cerno/finding"
	"github.com/google/uuid"
)

// Worker consumes analysis jobs from the queue, runs coverage analysis over
// each job's findings, and publishes results to the job's result channel.
type Worker struct {
	client   Client
	parser   *endpoint.Parser
	analyzer *coverage.Analyzer
	logger   *slog.Logger
	id       string
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger sets the worker's structured logger.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithWorkerParser sets the endpoint parser, typically one sharing a cache
// with the rest of the process.
func WithWorkerParser(p *endpoint.Parser) WorkerOption {
	return func(w *Worker) {
		w.parser = p
	}
}

// WithWorkerAnalyzer sets the coverage analyzer.
func WithWorkerAnalyzer(a *coverage.Analyzer) WorkerOption {
	return func(w *Worker) {
		w.analyzer = a
	}
}

// NewWorker creates a Worker consuming from the given client. Without
// options it uses an uncached parser, a default analyzer, and slog.Default.
func NewWorker(client Client, opts ...WorkerOption) *Worker {
	w := &Worker{
		client: client,
		id:     uuid.New().String(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.parser == nil {
		w.parser = endpoint.NewParser()
	}
	if w.analyzer == nil {
		w.analyzer = coverage.New()
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// ID returns the worker's unique identifier, recorded on every result it
// publishes.
func (w *Worker) ID() string {
	return w.id
}

// Run consumes jobs until the context is cancelled. Individual job failures
// are published as results and logged; they do not stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.client.PopJob(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if job == nil {
			continue
		}

		result := w.process(ctx, job)
		if err := w.client.PublishResult(ctx, result); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("failed to publish result",
				"job_id", job.ID,
				"error", err)
		}
	}
}

// process analyzes one job and builds its result.
func (w *Worker) process(ctx context.Context, job *Job) JobResult {
	result := JobResult{
		JobID:     job.ID,
		ScanID:    job.ScanID,
		WorkerID:  w.id,
		StartedAt: time.Now().UnixMilli(),
	}

	records, warnings := finding.Records(w.parser, job.Findings)
	for id, warns := range warnings {
		w.logger.Warn("endpoint lines not parsed",
			"job_id", job.ID,
			"finding_id", id,
			"warning_count", len(warns))
	}

	analysis, err := w.analyzer.Analyze(ctx, records)
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Analysis = analysis
	}
	result.CompletedAt = time.Now().UnixMilli()

	w.logger.Info("job processed",
		"job_id", job.ID,
		"scan_id", job.ScanID,
		"finding_count", len(job.Findings),
		"succeeded", result.Succeeded())

	return result
}
