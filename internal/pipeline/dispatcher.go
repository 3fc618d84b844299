package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/deputes/internal/fetch"
	"github.com/nao1215/deputes/internal/model"
)

// Extractor turns one reference into a record. It must always return a
// record, degrading fields it cannot obtain.
type Extractor interface {
	Extract(ctx context.Context, ref model.EntityReference, p fetch.Params) model.Record
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, ref model.EntityReference, p fetch.Params) model.Record

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, ref model.EntityReference, p fetch.Params) model.Record {
	return f(ctx, ref, p)
}

// Dispatcher fans references out to a bounded set of workers and
// collects exactly one record per reference.
type Dispatcher struct {
	extractor Extractor
	workers   int
	logger    *slog.Logger
}

// DispatchOption configures a Dispatcher.
type DispatchOption func(*Dispatcher)

// WithWorkers sets the number of concurrent extractions. Values below
// one are ignored.
func WithWorkers(n int) DispatchOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithDispatchLogger sets a custom logger for the dispatcher.
func WithDispatchLogger(logger *slog.Logger) DispatchOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher running one worker by default.
func NewDispatcher(extractor Extractor, opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{
		extractor: extractor,
		workers:   1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Workers returns the configured worker count.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Dispatch extracts every reference and returns one record per reference.
// With a single worker records keep the input order; otherwise they come
// in completion order.
//
// Cancelling ctx does not drop references: each one is still handed to
// the extractor, which degrades the record.
func (d *Dispatcher) Dispatch(ctx context.Context, refs []model.EntityReference, p fetch.Params) []model.Record {
	start := time.Now()
	workers := min(d.workers, len(refs))

	d.logger.Debug("dispatching extractions", "members", len(refs), "workers", workers)

	var records []model.Record
	if workers <= 1 {
		records = d.sequential(ctx, refs, p)
	} else {
		records = d.concurrent(ctx, refs, p, workers)
	}

	d.logger.Debug("extractions complete", "records", len(records), "elapsed", time.Since(start))
	return records
}

func (d *Dispatcher) sequential(ctx context.Context, refs []model.EntityReference, p fetch.Params) []model.Record {
	records := make([]model.Record, 0, len(refs))
	for _, ref := range refs {
		records = append(records, d.extractor.Extract(ctx, ref, p))
	}
	return records
}

// concurrent runs workers goroutines reading from a work queue. Their
// records are sent on one channel drained by the calling goroutine.
func (d *Dispatcher) concurrent(ctx context.Context, refs []model.EntityReference, p fetch.Params, workers int) []model.Record {
	jobs := make(chan model.EntityReference)
	results := make(chan model.Record, workers)

	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for ref := range jobs {
				results <- d.extractor.Extract(ctx, ref, p)
			}
			return nil
		})
	}

	go func() {
		for _, ref := range refs {
			jobs <- ref
		}
		close(jobs)
	}()

	go func() {
		_ = g.Wait() //nolint:errcheck // workers never return an error
		close(results)
	}()

	records := make([]model.Record, 0, len(refs))
	for rec := range results {
		records = append(records, rec)
	}
	return records
}
