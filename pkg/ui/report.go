package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"go.yaml.in/yaml/v3"

	"thoreinstein.com/gitman/pkg/batch"
)

// OutputFormat selects how the final report is written. It implements
// pflag.Value so it can back a command-line flag directly.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

var _ pflag.Value = (*OutputFormat)(nil)

// String implements pflag.Value.
func (f *OutputFormat) String() string {
	if *f == "" {
		return string(FormatText)
	}
	return string(*f)
}

// Set implements pflag.Value.
func (f *OutputFormat) Set(v string) error {
	switch OutputFormat(strings.ToLower(v)) {
	case FormatText, FormatJSON, FormatYAML:
		*f = OutputFormat(strings.ToLower(v))
		return nil
	default:
		return errors.Newf("invalid output format %q: must be one of: text, json, yaml", v)
	}
}

// Type implements pflag.Value.
func (f *OutputFormat) Type() string {
	return "format"
}

// WriteReport writes the final batch report in the given format.
func WriteReport(w io.Writer, report *batch.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "failed to encode report")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "failed to encode report")
		}
		return errors.Wrap(enc.Close(), "failed to encode report")
	default:
		writeTextReport(w, report)
		return nil
	}
}

func writeTextReport(w io.Writer, report *batch.Report) {
	succeeded := report.Succeeded()
	failed := report.Failed()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d/%d succeeded", heading("Done:"), len(succeeded), len(report.Items))
	if len(failed) > 0 {
		fmt.Fprintf(w, ", %d failed", len(failed))
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(w, ", %d skipped", len(report.Skipped))
	}
	fmt.Fprintf(w, " %s\n", dimmed(fmt.Sprintf("(%s)", report.Duration.Round(time.Millisecond))))

	for _, item := range failed {
		fmt.Fprintf(w, "  %s %s %s: %s\n", failureMark, item.Action, item.Record.Name, item.Error)
	}
	for _, skip := range report.Skipped {
		fmt.Fprintf(w, "  %s %s: %s\n", skippedMark, skip.Name, skip.Reason)
	}
}
