package batch

import (
	"time"

	"github.com/google/uuid"

	"thoreinstein.com/gitman/pkg/repo"
)

// State is the lifecycle of a batch run.
type State int

const (
	StatePlanned State = iota
	StateExecuting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON and YAML reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Action is the operation performed for one record.
type Action string

const (
	ActionPull  Action = "pull"
	ActionClone Action = "clone"
)

// Outcome is the result of one item.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// ItemResult records what happened to one planned record.
type ItemResult struct {
	Record   repo.Record   `json:"record" yaml:"record"`
	Action   Action        `json:"action" yaml:"action"`
	Outcome  Outcome       `json:"outcome" yaml:"outcome"`
	Err      error         `json:"-" yaml:"-"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Skip is a selected or discovered repository that never reached execution.
type Skip struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report summarises a batch run.
type Report struct {
	RunID     uuid.UUID     `json:"run_id" yaml:"run_id"`
	Root      string        `json:"root" yaml:"root"`
	State     State         `json:"state" yaml:"state"`
	Items     []ItemResult  `json:"items" yaml:"items"`
	Skipped   []Skip        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Succeeded returns the items that completed without error.
func (r *Report) Succeeded() []ItemResult {
	return r.filter(OutcomeSucceeded)
}

// Failed returns the items whose action returned an error.
func (r *Report) Failed() []ItemResult {
	return r.filter(OutcomeFailed)
}

// AllSucceeded reports whether no item failed. Skipped names do not count.
func (r *Report) AllSucceeded() bool {
	return len(r.Failed()) == 0
}

// ExitCode is 0 when every planned item succeeded and 1 otherwise.
func (r *Report) ExitCode() int {
	if r.AllSucceeded() {
		return 0
	}
	return 1
}

func (r *Report) filter(outcome Outcome) []ItemResult {
	var out []ItemResult
	for _, item := range r.Items {
		if item.Outcome == outcome {
			out = append(out, item)
		}
	}
	return out
}
