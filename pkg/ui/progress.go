package ui

import (
	"fmt"
	"io"

	"thoreinstein.com/gitman/pkg/batch"
	"thoreinstein.com/gitman/pkg/repo"
)

// ProgressPrinter reports batch progress one line per item.
type ProgressPrinter struct {
	Out io.Writer
}

var _ batch.Observer = (*ProgressPrinter)(nil)

// ItemStarted implements batch.Observer.
func (p *ProgressPrinter) ItemStarted(action batch.Action, rec repo.Record, index, total int) {
	verb := "Updating"
	if action == batch.ActionClone {
		verb = "Cloning"
	}
	fmt.Fprintf(p.Out, "[%d/%d] %s %s...\n", index, total, verb, ColorLabel(rec))
}

// ItemFinished implements batch.Observer.
func (p *ProgressPrinter) ItemFinished(result batch.ItemResult, index, total int) {
	if result.Outcome == batch.OutcomeFailed {
		fmt.Fprintf(p.Out, "  %s %s: %s\n", failureMark, result.Record.Name, result.Error)
		return
	}
	fmt.Fprintf(p.Out, "  %s %s\n", successMark, result.Record.Name)
}

// BatchCompleted implements batch.Observer.
func (p *ProgressPrinter) BatchCompleted(*batch.Report) {}
