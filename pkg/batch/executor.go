// Package batch executes an action plan: pulls first, then clones, one item
// at a time, recording every outcome without stopping at the first failure.
package batch

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
	"thoreinstein.com/gitman/pkg/repo"
)

// ActionFunc performs one pull or clone for rec under root.
type ActionFunc func(ctx context.Context, root string, rec repo.Record) error

// Observer is notified as items run. Calls happen on the executing goroutine
// in item order.
type Observer interface {
	ItemStarted(action Action, rec repo.Record, index, total int)
	ItemFinished(result ItemResult, index, total int)
	BatchCompleted(report *Report)
}

// Executor runs plans against a working root.
type Executor struct {
	Root     string
	Pull     ActionFunc
	Clone    ActionFunc
	Observer Observer
	Logger   *slog.Logger
}

// Run executes plan sequentially. An error is returned only for conditions
// detected before any item runs; item failures are recorded in the report,
// which always ends in StateCompleted.
func (e *Executor) Run(ctx context.Context, plan repo.Plan, skipped []Skip) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		Root:      e.Root,
		State:     StatePlanned,
		Items:     make([]ItemResult, 0, plan.Len()),
		Skipped:   skipped,
		StartedAt: time.Now(),
	}

	if err := e.precheck(ctx); err != nil {
		return report, err
	}

	report.State = StateExecuting
	e.logDebug("batch started", "run_id", report.RunID, "pulls", len(plan.Pulls), "clones", len(plan.Clones))

	total := plan.Len()
	index := 0
	for _, rec := range plan.Pulls {
		index++
		report.Items = append(report.Items, e.runItem(ctx, ActionPull, e.Pull, rec, index, total))
	}
	for _, rec := range plan.Clones {
		index++
		report.Items = append(report.Items, e.runItem(ctx, ActionClone, e.Clone, rec, index, total))
	}

	report.State = StateCompleted
	report.Duration = time.Since(report.StartedAt)
	e.logDebug("batch completed",
		"run_id", report.RunID,
		"succeeded", len(report.Succeeded()),
		"failed", len(report.Failed()),
		"skipped", len(report.Skipped))

	if e.Observer != nil {
		e.Observer.BatchCompleted(report)
	}
	return report, nil
}

// precheck fails the run before any item when the context is already done
// or the working root cannot be used.
func (e *Executor) precheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "interrupted before execution")
	}
	if e.Pull == nil || e.Clone == nil {
		return gitmanerrors.New("executor requires both pull and clone actions")
	}
	info, err := os.Stat(e.Root)
	if err != nil {
		return gitmanerrors.NewDiscoveryErrorWithCause(e.Root, "working root is not accessible", err)
	}
	if !info.IsDir() {
		return gitmanerrors.NewDiscoveryErrorWithCause(e.Root, "working root is not a directory", nil)
	}
	f, err := os.Open(e.Root)
	if err != nil {
		return gitmanerrors.NewDiscoveryErrorWithCause(e.Root, "working root is not readable", err)
	}
	return f.Close()
}

func (e *Executor) runItem(ctx context.Context, action Action, fn ActionFunc, rec repo.Record, index, total int) ItemResult {
	if e.Observer != nil {
		e.Observer.ItemStarted(action, rec, index, total)
	}

	start := time.Now()
	err := fn(ctx, e.Root, rec)

	result := ItemResult{
		Record:   rec,
		Action:   action,
		Outcome:  OutcomeSucceeded,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		result.Error = err.Error()
		e.logDebug("item failed", "action", action, "name", rec.Name, "error", err)
	}

	if e.Observer != nil {
		e.Observer.ItemFinished(result, index, total)
	}
	return result
}

func (e *Executor) logDebug(msg string, args ...any) {
	if e.Logger != nil {
		e.Logger.Debug(msg, args...)
	}
}
