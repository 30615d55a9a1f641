// Package git wraps the git binary for the operations gitman needs: reading
// working tree status, pulling and cloning.
package git

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// CommandRunner executes external commands. Tests substitute a mock.
type CommandRunner interface {
	Run(dir string, name string, args ...string) error
	Output(dir string, name string, args ...string) ([]byte, error)
}

// RealCommandRunner runs commands with os/exec.
type RealCommandRunner struct {
	Verbose bool
}

// Run executes the command and discards its standard output unless Verbose
// is set. Standard error is attached to the returned error.
func (r *RealCommandRunner) Run(dir string, name string, args ...string) error {
	var stdout io.Writer = io.Discard
	if r.Verbose {
		stdout = os.Stderr
	}
	_, err := r.exec(dir, stdout, name, args...)
	return err
}

// Output executes the command and returns its standard output.
func (r *RealCommandRunner) Output(dir string, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	if _, err := r.exec(dir, &stdout, name, args...); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func (r *RealCommandRunner) exec(dir string, stdout io.Writer, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			return errText, errors.Wrapf(err, "%s %s: %s", name, strings.Join(args, " "), errText)
		}
		return "", errors.Wrapf(err, "%s %s", name, strings.Join(args, " "))
	}
	return "", nil
}
