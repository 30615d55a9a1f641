package git

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

// Status is the working tree state gitman shows next to a repository.
type Status struct {
	// Branch is the checked-out branch, or the short commit for a detached HEAD.
	Branch string
	// ChangedPaths counts modified, added, deleted and untracked paths.
	ChangedPaths int
}

// Dirty reports whether the working tree has any uncommitted change.
func (s Status) Dirty() bool {
	return s.ChangedPaths > 0
}

// Status reads the current branch and changed path count of the working tree at path.
func (m *Manager) Status(path string) (Status, error) {
	branch, err := m.currentBranch(path)
	if err != nil {
		return Status{}, err
	}

	out, err := m.runner.Output(path, "git", "status", "--porcelain")
	if err != nil {
		return Status{}, gitmanerrors.NewGitErrorWithCause("status", filepath.Base(path), firstLine(err.Error()), err)
	}

	return Status{
		Branch:       branch,
		ChangedPaths: countLines(out),
	}, nil
}

// currentBranch prefers the symbolic ref and falls back to the short commit
// hash when HEAD is detached.
func (m *Manager) currentBranch(path string) (string, error) {
	out, err := m.runner.Output(path, "git", "symbolic-ref", "--quiet", "--short", "HEAD")
	if err == nil {
		if branch := strings.TrimSpace(string(out)); branch != "" {
			return branch, nil
		}
	}

	out, err = m.runner.Output(path, "git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", gitmanerrors.NewGitErrorWithCause("status", filepath.Base(path), "cannot resolve HEAD", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func countLines(out []byte) int {
	n := 0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n
}
