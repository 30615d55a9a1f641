package git

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

// Options tunes the git operations a Manager performs.
type Options struct {
	// PullFastForwardOnly passes --ff-only to git pull.
	PullFastForwardOnly bool
}

// Manager runs git against working trees under a root directory.
type Manager struct {
	Verbose bool
	opts    Options
	runner  CommandRunner
	logger  *slog.Logger
}

// NewManager creates a Manager that shells out to git.
func NewManager(verbose bool, opts Options) *Manager {
	return &Manager{
		Verbose: verbose,
		opts:    opts,
		runner:  &RealCommandRunner{Verbose: verbose},
	}
}

// NewManagerWithRunner creates a Manager with a custom CommandRunner (for testing)
func NewManagerWithRunner(runner CommandRunner, opts Options) *Manager {
	return &Manager{
		opts:   opts,
		runner: runner,
	}
}

// WithLogger sets the logger used for debug output.
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger
	return m
}

// Pull updates the working tree at path from its upstream.
func (m *Manager) Pull(path string) error {
	args := []string{"pull"}
	if m.opts.PullFastForwardOnly {
		args = append(args, "--ff-only")
	}

	m.logDebug("pulling", "path", path, "args", args)
	if err := m.runner.Run(path, "git", args...); err != nil {
		return gitmanerrors.NewGitErrorWithCause("pull", filepath.Base(path), firstLine(err.Error()), err)
	}
	return nil
}

// Clone clones address into root/name and returns the destination path.
// An existing destination is never overwritten.
func (m *Manager) Clone(root, address, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", gitmanerrors.NewGitError("clone", name, "invalid destination name")
	}
	if strings.TrimSpace(address) == "" {
		return "", gitmanerrors.NewGitError("clone", name, "no clone address")
	}

	dest := filepath.Join(root, name)
	if _, err := os.Lstat(dest); err == nil {
		return "", gitmanerrors.NewGitError("clone", name, "destination "+dest+" already exists")
	}

	m.logDebug("cloning", "address", address, "dest", dest)
	if err := m.runner.Run(root, "git", "clone", address, dest); err != nil {
		return "", gitmanerrors.NewGitErrorWithCause("clone", name, firstLine(err.Error()), err)
	}
	return dest, nil
}

// IsWorkingTree reports whether path holds a .git directory or gitdir file.
func IsWorkingTree(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode().IsRegular()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// logDebug logs a debug message if a logger is configured.
func (m *Manager) logDebug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
