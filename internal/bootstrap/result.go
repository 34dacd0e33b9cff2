// Package bootstrap implements the environment bootstrap pipeline: an
// ordered sequence of idempotent ensure steps that take a machine from an
// arbitrary state to one with a working Nix + direnv developer setup.
package bootstrap

import (
	"fmt"
	"time"
)

// Status is the tri-state outcome of an ensure step, plus a skipped state
// for steps that do not apply to the run.
type Status int

const (
	// StatusSatisfied indicates the step found the desired state already
	// in place and changed nothing.
	StatusSatisfied Status = iota

	// StatusChanged indicates the step brought the machine into the
	// desired state during this run.
	StatusChanged

	// StatusSkipped indicates the step did not apply (missing
	// prerequisite, user kept the status quo, dry run).
	StatusSkipped

	// StatusFailed indicates the step could not reach the desired state.
	// The pipeline continues with reduced functionality.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSatisfied:
		return "satisfied"
	case StatusChanged:
		return "changed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a step reports back to the pipeline.
type Result struct {
	// Status is the step outcome.
	Status Status

	// Message describes the outcome in one human-readable line.
	Message string
}

// Satisfied builds an already-in-place result.
func Satisfied(msg string) *Result {
	return &Result{Status: StatusSatisfied, Message: msg}
}

// Changedf builds a newly-satisfied result.
func Changedf(format string, args ...any) *Result {
	return &Result{Status: StatusChanged, Message: fmt.Sprintf(format, args...)}
}

// Skipped builds a not-applicable result.
func Skipped(msg string) *Result {
	return &Result{Status: StatusSkipped, Message: msg}
}

// Failedf builds a failed-with-reason result. The pipeline keeps going.
func Failedf(format string, args ...any) *Result {
	return &Result{Status: StatusFailed, Message: fmt.Sprintf(format, args...)}
}

// StepResult is one step's outcome inside a report.
type StepResult struct {
	// Name is the step identifier.
	Name string `json:"name" yaml:"name"`

	// Status is the step outcome.
	Status Status `json:"status" yaml:"status"`

	// Message describes the outcome.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Summary aggregates counts of step results by status.
type Summary struct {
	Satisfied int `json:"satisfied" yaml:"satisfied"`
	Changed   int `json:"changed" yaml:"changed"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Report aggregates all step results with timing and summary.
type Report struct {
	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Results contains the outcome of each executed step, in order.
	Results []StepResult `json:"results" yaml:"results"`

	// Summary contains counts by status.
	Summary Summary `json:"summary" yaml:"summary"`
}

// Append records a step outcome and updates the summary counts.
func (r *Report) Append(name string, res *Result) {
	r.Results = append(r.Results, StepResult{
		Name:    name,
		Status:  res.Status,
		Message: res.Message,
	})

	switch res.Status {
	case StatusSatisfied:
		r.Summary.Satisfied++
	case StatusChanged:
		r.Summary.Changed++
	case StatusSkipped:
		r.Summary.Skipped++
	case StatusFailed:
		r.Summary.Failed++
	}
}

// HasFailures returns true if any step failed.
func (r *Report) HasFailures() bool {
	return r.Summary.Failed > 0
}

// AllSatisfied returns true when every executed step found its state
// already in place. A second run on a fully bootstrapped machine should
// report this.
func (r *Report) AllSatisfied() bool {
	return len(r.Results) > 0 &&
		r.Summary.Changed == 0 && r.Summary.Failed == 0 && r.Summary.Skipped == 0
}
