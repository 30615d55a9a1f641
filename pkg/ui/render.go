// Package ui holds gitman's terminal interaction: the fzf multi-select,
// line prompts, colored repository labels, batch progress and the final
// report.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"thoreinstein.com/gitman/pkg/repo"
)

var (
	localName    = color.New(color.FgGreen).SprintFunc()
	remoteName   = color.New(color.FgYellow).SprintFunc()
	mainBranch   = color.New(color.FgCyan).SprintFunc()
	otherBranch  = color.New(color.FgRed).SprintFunc()
	warning      = color.New(color.FgRed, color.Bold).SprintFunc()
	heading      = color.New(color.Bold).SprintFunc()
	successMark  = color.New(color.FgGreen).Sprint("✓")
	failureMark  = color.New(color.FgRed).Sprint("✗")
	skippedMark  = color.New(color.FgYellow).Sprint("-")
	dimmed       = color.New(color.Faint).SprintFunc()
	defaultNames = []string{"main", "master"}
)

// SetColorEnabled turns ANSI colors on or off for all output.
func SetColorEnabled(enabled bool) {
	color.NoColor = !enabled
}

// ColorLabel renders the record label with terminal colors. The plain form
// is repo.Record.Label.
func ColorLabel(rec repo.Record) string {
	var b strings.Builder
	if rec.IsLocal() {
		b.WriteString(localName(rec.Name))
	} else {
		b.WriteString(remoteName(rec.Name))
	}
	if rec.Branch != "" {
		branch := otherBranch(rec.Branch)
		if lo.Contains(defaultNames, rec.Branch) {
			branch = mainBranch(rec.Branch)
		}
		fmt.Fprintf(&b, " (%s)", branch)
	}
	if rec.HasUncommittedChanges {
		b.WriteString(" " + warning("! uncommitted changes"))
	}
	return b.String()
}

// Choices builds selector choices for records, local first then remote.
func Choices(local, remote []repo.Record) []Choice {
	toChoice := func(rec repo.Record, _ int) Choice {
		label := ColorLabel(rec)
		if rec.IsRemote() {
			label += " " + dimmed("(remote)")
		}
		return Choice{Name: rec.Name, Label: label}
	}
	return append(lo.Map(local, toChoice), lo.Map(remote, toChoice)...)
}

// PlanSummary prints what a plan is about to do.
func PlanSummary(w io.Writer, plan repo.Plan) {
	if len(plan.Pulls) > 0 {
		fmt.Fprintln(w, heading("Updating:"))
		for _, rec := range plan.Pulls {
			fmt.Fprintf(w, "  %s\n", ColorLabel(rec))
		}
	}
	if len(plan.Clones) > 0 {
		fmt.Fprintln(w, heading("Cloning:"))
		for _, rec := range plan.Clones {
			fmt.Fprintf(w, "  %s\n", ColorLabel(rec))
		}
	}
}

// Listing prints the discovered repositories, used when nothing is selected interactively.
func Listing(w io.Writer, local, remote []repo.Record) {
	fmt.Fprintln(w, heading(fmt.Sprintf("Local repositories (%d):", len(local))))
	for _, rec := range local {
		fmt.Fprintf(w, "  %s\n", ColorLabel(rec))
	}
	if len(remote) > 0 {
		fmt.Fprintln(w, heading(fmt.Sprintf("Remote repositories not cloned (%d):", len(remote))))
		for _, rec := range remote {
			fmt.Fprintf(w, "  %s\n", ColorLabel(rec))
		}
	}
}
