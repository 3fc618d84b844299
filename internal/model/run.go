package model

import "time"

// Run holds the state of one pipeline execution.
// Pipeline steps read and extend it in order.
type Run struct {
	// ID is the database identifier, zero until the run is persisted.
	ID int64 `json:"id,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// Regions are the region headings requested for this run.
	Regions []string `json:"regions"`

	// References are the members discovered on the roster page.
	References []EntityReference `json:"references"`

	// Records are the extracted members, one per reference.
	Records []Record `json:"records"`

	// Errors collects run-level problems such as an unreachable roster.
	Errors []string `json:"errors,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewRun creates a Run for the given regions.
func NewRun(regions []string) *Run {
	return &Run{
		StartedAt:  time.Now(),
		Regions:    append([]string(nil), regions...),
		References: make([]EntityReference, 0),
		Records:    make([]Record, 0),
	}
}

// AddError records a run-level error message.
func (r *Run) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// Finish stamps the completion time.
func (r *Run) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns how long the run took, zero if it has not finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CompleteCount returns how many records have every optional field.
func (r *Run) CompleteCount() int {
	n := 0
	for _, rec := range r.Records {
		if rec.IsComplete() {
			n++
		}
	}
	return n
}
