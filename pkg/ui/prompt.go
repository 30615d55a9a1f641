package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks line-oriented questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	raw io.Reader
	out io.Writer

	// pending holds a read abandoned by a cancelled context; the next
	// read takes its line instead of starting a second reader.
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewPrompter creates a Prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), raw: in, out: out}
}

// Prompt asks the user for a text input.
func (p *Prompter) Prompt(label, defaultValue string) (string, error) {
	fmt.Fprintf(p.out, "%s ", label)
	if defaultValue != "" {
		fmt.Fprintf(p.out, "(default: %s) ", defaultValue)
	}

	input, err := p.readLine(context.Background())
	if err != nil {
		return "", err
	}
	if input == "" {
		input = defaultValue
	}
	return input, nil
}

// Secret asks for a value without echoing it when reading from a terminal.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s ", label)

	if f, ok := p.raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out) // Move to next line after password entry
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	return p.readLine(context.Background())
}

// Confirm asks the user for a yes/no confirmation.
func (p *Prompter) Confirm(label string, defaultValue bool) (bool, error) {
	return p.ConfirmContext(context.Background(), label, defaultValue)
}

// ConfirmContext is Confirm that gives up with ctx.Err() once ctx is done,
// without waiting for the answer.
func (p *Prompter) ConfirmContext(ctx context.Context, label string, defaultValue bool) (bool, error) {
	suffix := "[y/N]"
	if defaultValue {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s ", label, suffix)

	input, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}

	input = strings.ToLower(input)
	if input == "" {
		return defaultValue, nil
	}
	return strings.HasPrefix(input, "y"), nil
}

// Choose asks the user to choose one of options and returns its index.
func (p *Prompter) Choose(label string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, ErrNoRepositories
	}

	fmt.Fprintln(p.out, label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(p.out, "Select (1-%d): ", len(options))
		input, err := p.readLine(context.Background())
		if err != nil {
			return -1, err
		}
		if input == "" {
			continue
		}

		var idx int
		if _, err := fmt.Sscanf(input, "%d", &idx); err != nil || idx < 1 || idx > len(options) {
			fmt.Fprintln(p.out, "Invalid selection.")
			continue
		}
		return idx - 1, nil
	}
}

// readLine returns the next line, or ctx.Err() when ctx is done first. The
// read itself runs on its own goroutine since a terminal read cannot be
// interrupted.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.readRaw()
			ch <- lineResult{line: line, err: err}
		}()
		p.pending = ch
	}

	select {
	case r := <-p.pending:
		p.pending = nil
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readRaw returns the trimmed next line. A final line without newline is
// accepted; EOF with no input is returned as io.EOF.
func (p *Prompter) readRaw() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
