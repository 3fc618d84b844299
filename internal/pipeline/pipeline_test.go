package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/deputes/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, run *model.Run) error
	callCount int
}

func (m *mockStep) Do(ctx context.Context, run *model.Run) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	return nil
}

func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if len(p.StepNames()) != 0 {
			t.Errorf("expected 0 steps, got %v", p.StepNames())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

		expected := []string{"first", "second", "third"}
		for i, name := range p.StepNames() {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *model.Run) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New()
		p.AddSteps(record("list"), record("extract"))

		run := model.NewRun([]string{"Corse"})
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 2 || order[0] != "list" || order[1] != "extract" {
			t.Errorf("unexpected order %v", order)
		}
		if len(run.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %v", run.PerformedSteps)
		}
		if run.FinishedAt.IsZero() {
			t.Error("expected run to be finished")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		errList := errors.New("roster down")
		failing := &mockStep{name: "list", doFunc: func(context.Context, *model.Run) error { return errList }}
		next := &mockStep{name: "extract"}

		p := New()
		p.AddSteps(failing, next)

		run := model.NewRun(nil)
		err := p.Execute(context.Background(), run)
		if !errors.Is(err, errList) {
			t.Errorf("expected step error, got %v", err)
		}
		if next.callCount != 0 {
			t.Error("expected following step to be skipped")
		}
		if len(run.Errors) != 1 || run.Errors[0] != "roster down" {
			t.Errorf("expected error recorded in run, got %v", run.Errors)
		}
	})

	t.Run("respects cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "list"}
		p := New()
		p.AddStep(step)

		err := p.Execute(ctx, model.NewRun(nil))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
	})
}
