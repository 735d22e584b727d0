package engine

import (
	"time"

	"github.com/google/uuid"
)

// StepState is the terminal or in-flight state of one step in a run.
type StepState string

const (
	StatePending   StepState = "pending"
	StateRunning   StepState = "running"
	StateRetrying  StepState = "retrying"
	StateSucceeded StepState = "succeeded"
	StateFailed    StepState = "failed"
	StateSkipped   StepState = "skipped"
)

// StepOutcome records what happened to a single step.
type StepOutcome struct {
	Module      string        `json:"module"`
	Description string        `json:"description"`
	State       StepState     `json:"state"`
	Attempts    int           `json:"attempts"`
	Elapsed     time.Duration `json:"elapsed"`
	Error       string        `json:"error,omitempty"`
}

// Report is the full record of one pipeline run. It is journaled on disk and
// served by the status API.
type Report struct {
	ID       string        `json:"id"`
	Hostname string        `json:"hostname"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Steps    []StepOutcome `json:"steps"`
	Success  bool          `json:"success"`
}

func newReport(hostname string) *Report {
	return &Report{
		ID:       uuid.NewString(),
		Hostname: hostname,
		Started:  time.Now().UTC(),
		Success:  true,
	}
}

// Failures returns the outcomes of every failed step.
func (r *Report) Failures() []StepOutcome {
	var out []StepOutcome
	for _, s := range r.Steps {
		if s.State == StateFailed {
			out = append(out, s)
		}
	}
	return out
}
