package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/deputes/internal/model"
)

// Step is one stage of a run. Steps execute in sequence, each receiving
// the run extended by the previous ones.
type Step interface {
	// Do executes the step. Per-member problems are absorbed into the run;
	// a returned error means the run cannot go on.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step in sequence. Cancellation is checked between
// steps; steps observe ctx themselves while running.
//
// It stops at the first step error, which is also recorded in run.Errors.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	defer func() {
		if run.FinishedAt.IsZero() {
			run.Finish()
		}
	}()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			run.AddError(err)
			return err
		}

		p.logger.Info("executing step", "step", step.Name(), "regions", run.Regions)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "error", err)
			run.AddError(err)
			return err
		}
		p.logger.Debug("step completed", "step", step.Name())

		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
