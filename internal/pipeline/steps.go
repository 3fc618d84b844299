package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/deputes/internal/fetch"
	"github.com/nao1215/deputes/internal/model"
)

// Lister discovers the members of the requested regions.
type Lister interface {
	List(ctx context.Context, regions []string, p fetch.Params) ([]model.EntityReference, error)
}

// RunSaver persists a finished run and returns its identifier.
type RunSaver interface {
	SaveRun(ctx context.Context, run *model.Run) (int64, error)
}

// ErrNoStore is returned by PersistStep when no store is configured.
var ErrNoStore = errors.New("no run store configured")

// ListStep fills run.References from the roster page.
// It is the only step whose failure ends a run.
type ListStep struct {
	lister Lister
	params fetch.Params
	logger *slog.Logger
}

type stepSettings struct {
	logger *slog.Logger
}

// StepOption configures a step.
type StepOption func(*stepSettings)

// WithStepLogger sets the step logger.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(s *stepSettings) {
		s.logger = logger
	}
}

func stepLogger(opts []StepOption) *slog.Logger {
	s := stepSettings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// NewListStep creates a ListStep.
func NewListStep(lister Lister, p fetch.Params, opts ...StepOption) *ListStep {
	return &ListStep{lister: lister, params: p, logger: stepLogger(opts)}
}

// Name returns the step name.
func (s *ListStep) Name() string {
	return "list"
}

// Do fetches the roster once and records the members of run.Regions.
func (s *ListStep) Do(ctx context.Context, run *model.Run) error {
	refs, err := s.lister.List(ctx, run.Regions, s.params)
	if err != nil {
		return err
	}
	run.References = refs
	s.logger.Info("members listed", "count", len(refs))
	return nil
}

// ExtractStep fills run.Records with one record per reference.
type ExtractStep struct {
	dispatcher *Dispatcher
	params     fetch.Params
	logger     *slog.Logger
}

// NewExtractStep creates an ExtractStep.
func NewExtractStep(dispatcher *Dispatcher, p fetch.Params, opts ...StepOption) *ExtractStep {
	return &ExtractStep{dispatcher: dispatcher, params: p, logger: stepLogger(opts)}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts every reference. It never fails; degraded records are
// kept with nil fields.
func (s *ExtractStep) Do(ctx context.Context, run *model.Run) error {
	run.Records = s.dispatcher.Dispatch(ctx, run.References, s.params)
	s.logger.Info("members extracted",
		"records", len(run.Records),
		"complete", run.CompleteCount(),
	)
	return nil
}

// PersistStep saves the run and sets run.ID.
type PersistStep struct {
	store  RunSaver
	logger *slog.Logger
}

// NewPersistStep creates a PersistStep.
func NewPersistStep(store RunSaver, opts ...StepOption) *PersistStep {
	return &PersistStep{store: store, logger: stepLogger(opts)}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do stamps the run as finished and stores it.
func (s *PersistStep) Do(ctx context.Context, run *model.Run) error {
	if s.store == nil {
		return ErrNoStore
	}
	run.Finish()
	id, err := s.store.SaveRun(ctx, run)
	if err != nil {
		return err
	}
	run.ID = id
	s.logger.Info("run saved", "id", id, "records", len(run.Records))
	return nil
}
