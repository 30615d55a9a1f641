package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrCancelled is returned when the user cancels the selection
	ErrCancelled = errors.New("selection cancelled")
	// ErrNoRepositories is returned when there is nothing to select from
	ErrNoRepositories = errors.New("no repositories to select")
	// ErrFzfNotFound is returned when fzf is not installed
	ErrFzfNotFound = errors.New("fzf not found in PATH; install it from https://github.com/junegunn/fzf")
)

// Choice is one selectable line: Name is returned, Label is displayed.
type Choice struct {
	Name  string
	Label string
}

// SelectRepositories lets the user pick any number of choices with fzf and
// returns the chosen names in list order.
func SelectRepositories(header string, choices []Choice) ([]string, error) {
	if len(choices) == 0 {
		return nil, ErrNoRepositories
	}

	fzfPath, err := exec.LookPath("fzf")
	if err != nil {
		return nil, ErrFzfNotFound
	}

	// #nosec G204 - fzf binary is looked up in PATH, arguments are constant
	cmd := exec.Command(fzfPath, fzfArgs(header)...)
	cmd.Stdin = strings.NewReader(formatChoices(choices))
	cmd.Stderr = os.Stderr // fzf uses stderr for UI rendering
	var output bytes.Buffer
	cmd.Stdout = &output

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			switch exitErr.ExitCode() {
			case 130: // ESC, Ctrl-C, Ctrl-G
				return nil, ErrCancelled
			case 1: // no match
				return nil, nil
			}
		}
		return nil, fmt.Errorf("fzf failed: %w", err)
	}

	return parseSelection(output.String(), choices), nil
}

func fzfArgs(header string) []string {
	args := []string{
		"--multi",
		"--ansi",
		"--height=60%",
		"--layout=reverse",
		"--delimiter=\t",
		"--with-nth=2",
		"--bind=ctrl-a:select-all,ctrl-d:deselect-all",
	}
	if header != "" {
		args = append(args, "--header="+header+"  (tab: toggle, ctrl-a: all, enter: confirm)")
	}
	return args
}

func formatChoices(choices []Choice) string {
	var b strings.Builder
	for _, c := range choices {
		label := c.Label
		if label == "" {
			label = c.Name
		}
		fmt.Fprintf(&b, "%s\t%s\n", c.Name, label)
	}
	return b.String()
}

// parseSelection maps fzf output lines back to choice names, keeping the
// original list order and ignoring anything that is not a known name.
func parseSelection(output string, choices []Choice) []string {
	picked := make(map[string]struct{})
	for _, line := range strings.Split(output, "\n") {
		name, _, _ := strings.Cut(strings.TrimRight(line, "\r"), "\t")
		if name = strings.TrimSpace(name); name != "" {
			picked[name] = struct{}{}
		}
	}

	return lo.FilterMap(choices, func(c Choice, _ int) (string, bool) {
		_, ok := picked[c.Name]
		return c.Name, ok
	})
}
