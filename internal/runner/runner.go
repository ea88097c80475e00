// Package runner executes extraction tasks concurrently and aggregates their
// outcomes into a health verdict.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"eduparser/internal/components/assert"
	"eduparser/internal/components/chrono"
	"eduparser/internal/components/telemetry"
	"eduparser/internal/extract"
	"eduparser/internal/scraper"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const (
	report_runner_task        = "runner.task"
	report_runner_task_panic  = "runner.task-panic"
	report_runner_large_count = "runner.large-count"
	report_runner_save        = "runner.save-results"
	report_runner_succeeded   = "runner.succeeded"
	report_runner_failed      = "runner.failed"
)

// SuspiciousCount is the count above which a result is reported as a warning.
// it is still recorded as a success.
const SuspiciousCount = 10000

var tracer = otel.Tracer("eduparser/runner")
var meter = otel.Meter("eduparser/runner")

var taskCounter, _ = meter.Int64Counter(
	"eduparser.tasks",
	metric.WithDescription("The number of finished tasks by status."),
)
var taskDuration, _ = meter.Float64Histogram(
	"eduparser.task_duration",
	metric.WithDescription("The wall time of a task."),
	metric.WithUnit("s"),
)

// Fetcher downloads the document a task extracts from.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (scraper.Document, error)
}

// ResultSink persists the results of a run.
type ResultSink interface {
	SaveResults(ctx context.Context, results []scraper.TaskResult) error
}

type Runner struct {
	fetcher Fetcher
	sink    ResultSink
	clock   chrono.API
	tel     telemetry.API
}

// New creates a Runner. sink may be nil, then results are not persisted.
func New(fetcher Fetcher, sink ResultSink, clock chrono.API, tel telemetry.API) Runner {
	assert.NotNil(fetcher, "fetcher")
	assert.NotNil(clock, "clock")
	assert.NotNil(tel, "telemetry")

	return Runner{
		fetcher: fetcher,
		sink:    sink,
		clock:   clock,
		tel:     telemetry.NewScopedAPI("runner", tel),
	}
}

// Run executes every descriptor and returns exactly one result per
// descriptor, in descriptor order.
//
// at most cfg.MaxWorkers tasks are in flight. a task that fails, panics or
// exceeds its timeout only affects its own result. after every task finished
// the results are saved with a single SaveResults call; a save failure is
// returned together with the complete summary and results.
func (r Runner) Run(ctx context.Context, descriptors []scraper.Descriptor, cfg Config) (Summary, []scraper.TaskResult, error) {
	cfg = cfg.WithDefaults()
	err := cfg.Validate()
	if err != nil {
		return Summary{}, nil, fmt.Errorf("invalid runner config: %w", err)
	}

	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.Int("tasks", len(descriptors)),
		attribute.Int("max_workers", cfg.MaxWorkers),
	)

	startedAt := r.clock.Now()
	began := time.Now()
	docs := newDocuments(r.fetcher)

	results := make([]scraper.TaskResult, len(descriptors))
	group := errgroup.Group{}
	group.SetLimit(cfg.MaxWorkers)
	for i, desc := range descriptors {
		group.Go(func() error {
			results[i] = r.runTask(ctx, docs, desc, cfg)
			return nil
		})
	}
	// tasks never return errors, they are folded into the results.
	_ = group.Wait()

	summary := Summarize(results, cfg)
	summary.RunID = runID
	summary.StartedAt = startedAt
	summary.Duration = time.Since(began)

	r.tel.ReportCount(report_runner_succeeded, int64(summary.Succeeded))
	r.tel.ReportCount(report_runner_failed, int64(summary.Failed))
	span.SetAttributes(
		attribute.Int("succeeded", summary.Succeeded),
		attribute.Int("failed", summary.Failed),
		attribute.String("status", string(summary.Status)),
	)

	if r.sink == nil {
		return summary, results, nil
	}
	err = r.sink.SaveResults(ctx, results)
	if err != nil {
		r.tel.ReportBroken(report_runner_save, runID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save results")
		return summary, results, fmt.Errorf("save results: %w", err)
	}
	return summary, results, nil
}

type outcome struct {
	count int
	err   error
}

// runTask runs one task under its own timeout. the work happens on a separate
// goroutine so a task stuck outside of context-aware code is abandoned when
// the timeout fires instead of holding its worker slot.
func (r Runner) runTask(ctx context.Context, docs *documents, desc scraper.Descriptor, cfg Config) scraper.TaskResult {
	ctx, span := tracer.Start(ctx, "Task")
	defer span.End()
	span.SetAttributes(
		attribute.String("task_id", desc.ID),
		attribute.String("strategy", string(desc.Spec.Strategy)),
	)

	began := time.Now()
	taskCtx, cancel := context.WithTimeout(ctx, cfg.perTaskTimeout())
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: &taskPanic{value: p, stack: debug.Stack()}}
			}
		}()
		count, err := r.execute(taskCtx, docs, desc, cfg)
		done <- outcome{count: count, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-taskCtx.Done():
		out = outcome{err: taskCtx.Err()}
	}
	// a failure caused by the task's own deadline is recorded as a timeout,
	// whichever error the task raced it with.
	if out.err != nil && ctx.Err() == nil && errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
		out.err = scraper.ErrTimeout
	}
	var panicked *taskPanic
	if errors.As(out.err, &panicked) {
		r.tel.ReportBroken(report_runner_task_panic, desc.ID, panicked.value, string(panicked.stack))
	}

	took := time.Since(began)
	at := r.clock.Now()

	var result scraper.TaskResult
	if out.err != nil {
		result = scraper.Failed(desc, out.err, at, took)
		r.tel.ReportWarning(report_runner_task, desc.ID, out.err)
		span.RecordError(out.err)
		span.SetStatus(codes.Error, result.Error)
	} else {
		result = scraper.Succeeded(desc, out.count, at, took)
		if out.count > SuspiciousCount {
			r.tel.ReportWarning(report_runner_large_count, desc.ID, out.count)
		}
		span.SetAttributes(attribute.Int("count", out.count))
	}

	attrs := metric.WithAttributes(
		attribute.String("status", string(result.Status)),
		attribute.String("university", desc.University),
	)
	taskCounter.Add(ctx, 1, attrs)
	taskDuration.Record(ctx, took.Seconds(), attrs)

	return result
}

func (r Runner) execute(ctx context.Context, docs *documents, desc scraper.Descriptor, cfg Config) (int, error) {
	doc, err := docs.get(ctx, desc.Spec.URL, cfg.fetchTimeout())
	if err != nil {
		return 0, err
	}
	return extract.Extract(doc, desc.Spec)
}
