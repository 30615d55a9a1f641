package git

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

// MockCommandRunner records calls and delegates to the configured funcs.
type MockCommandRunner struct {
	RunFunc    func(dir string, name string, args ...string) error
	OutputFunc func(dir string, name string, args ...string) ([]byte, error)

	Calls [][]string
}

func (m *MockCommandRunner) Run(dir string, name string, args ...string) error {
	m.Calls = append(m.Calls, append([]string{dir, name}, args...))
	if m.RunFunc != nil {
		return m.RunFunc(dir, name, args...)
	}
	return nil
}

func (m *MockCommandRunner) Output(dir string, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, append([]string{dir, name}, args...))
	if m.OutputFunc != nil {
		return m.OutputFunc(dir, name, args...)
	}
	return nil, nil
}

func TestManager_Status(t *testing.T) {
	tests := []struct {
		name        string
		symbolicRef string
		symbolicErr error
		revParse    string
		porcelain   string
		wantBranch  string
		wantChanged int
		wantDirty   bool
	}{
		{
			name:        "clean branch",
			symbolicRef: "main\n",
			wantBranch:  "main",
		},
		{
			name:        "dirty with untracked",
			symbolicRef: "feature\n",
			porcelain:   " M README.md\n?? notes.txt\n",
			wantBranch:  "feature",
			wantChanged: 2,
			wantDirty:   true,
		},
		{
			name:        "single deletion is dirty",
			symbolicRef: "main\n",
			porcelain:   " D old.go\n",
			wantBranch:  "main",
			wantChanged: 1,
			wantDirty:   true,
		},
		{
			name:        "detached head",
			symbolicErr: errors.New("exit status 1"),
			revParse:    "a1b2c3d\n",
			wantBranch:  "a1b2c3d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockCommandRunner{
				OutputFunc: func(dir string, name string, args ...string) ([]byte, error) {
					switch args[0] {
					case "symbolic-ref":
						return []byte(tt.symbolicRef), tt.symbolicErr
					case "rev-parse":
						return []byte(tt.revParse), nil
					case "status":
						return []byte(tt.porcelain), nil
					}
					return nil, errors.New("unexpected command")
				},
			}
			m := NewManagerWithRunner(mock, Options{})

			got, err := m.Status("/src/proj")
			if err != nil {
				t.Fatalf("Status() error = %v", err)
			}
			if got.Branch != tt.wantBranch {
				t.Errorf("Branch = %q, want %q", got.Branch, tt.wantBranch)
			}
			if got.ChangedPaths != tt.wantChanged {
				t.Errorf("ChangedPaths = %d, want %d", got.ChangedPaths, tt.wantChanged)
			}
			if got.Dirty() != tt.wantDirty {
				t.Errorf("Dirty() = %v, want %v", got.Dirty(), tt.wantDirty)
			}
		})
	}
}

func TestManager_StatusFailure(t *testing.T) {
	mock := &MockCommandRunner{
		OutputFunc: func(dir string, name string, args ...string) ([]byte, error) {
			if args[0] == "status" {
				return nil, errors.New("fatal: not a git repository")
			}
			return []byte("main\n"), nil
		},
	}
	m := NewManagerWithRunner(mock, Options{})

	_, err := m.Status("/src/broken")
	if !gitmanerrors.IsGitError(err) {
		t.Fatalf("Status() error = %v, want GitError", err)
	}
}

func TestManager_Pull(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantArgs []string
	}{
		{"plain pull", Options{}, []string{"/src/proj", "git", "pull"}},
		{"fast-forward only", Options{PullFastForwardOnly: true}, []string{"/src/proj", "git", "pull", "--ff-only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockCommandRunner{}
			m := NewManagerWithRunner(mock, tt.opts)

			if err := m.Pull("/src/proj"); err != nil {
				t.Fatalf("Pull() error = %v", err)
			}
			if len(mock.Calls) != 1 || !slices.Equal(mock.Calls[0], tt.wantArgs) {
				t.Errorf("calls = %v, want [%v]", mock.Calls, tt.wantArgs)
			}
		})
	}
}

func TestManager_PullFailure(t *testing.T) {
	mock := &MockCommandRunner{
		RunFunc: func(dir string, name string, args ...string) error {
			return errors.New("git pull: fatal: Not possible to fast-forward, aborting.\nmore detail")
		},
	}
	m := NewManagerWithRunner(mock, Options{})

	err := m.Pull("/src/proj2")
	var gitErr *gitmanerrors.GitError
	if !errors.As(err, &gitErr) {
		t.Fatalf("Pull() error = %v, want GitError", err)
	}
	if gitErr.Repo != "proj2" {
		t.Errorf("Repo = %q, want proj2", gitErr.Repo)
	}
	if gitErr.Message != "git pull: fatal: Not possible to fast-forward, aborting." {
		t.Errorf("Message = %q, want first line only", gitErr.Message)
	}
}

func TestManager_Clone(t *testing.T) {
	root := t.TempDir()
	mock := &MockCommandRunner{
		RunFunc: func(dir string, name string, args ...string) error {
			return os.MkdirAll(args[len(args)-1], 0o755)
		},
	}
	m := NewManagerWithRunner(mock, Options{})

	dest, err := m.Clone(root, "git@github.com:me/proj3.git", "proj3")
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if want := filepath.Join(root, "proj3"); dest != want {
		t.Errorf("Clone() = %q, want %q", dest, want)
	}
	want := []string{root, "git", "clone", "git@github.com:me/proj3.git", filepath.Join(root, "proj3")}
	if len(mock.Calls) != 1 || !slices.Equal(mock.Calls[0], want) {
		t.Errorf("calls = %v, want [%v]", mock.Calls, want)
	}
}

func TestManager_CloneRefusesExistingDestination(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "proj3"), 0o755); err != nil {
		t.Fatal(err)
	}
	mock := &MockCommandRunner{}
	m := NewManagerWithRunner(mock, Options{})

	if _, err := m.Clone(root, "git@github.com:me/proj3.git", "proj3"); !gitmanerrors.IsGitError(err) {
		t.Fatalf("Clone() error = %v, want GitError", err)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("git should not run, got calls %v", mock.Calls)
	}
}

func TestManager_CloneRejectsBadInput(t *testing.T) {
	m := NewManagerWithRunner(&MockCommandRunner{}, Options{})
	root := t.TempDir()

	for _, tc := range []struct{ address, name string }{
		{"git@github.com:me/a.git", ""},
		{"git@github.com:me/a.git", "../escape"},
		{"git@github.com:me/a.git", ".."},
		{"", "a"},
	} {
		if _, err := m.Clone(root, tc.address, tc.name); err == nil {
			t.Errorf("Clone(%q, %q) should fail", tc.address, tc.name)
		}
	}
}

func TestIsWorkingTree(t *testing.T) {
	root := t.TempDir()

	withDir := filepath.Join(root, "dir")
	if err := os.MkdirAll(filepath.Join(withDir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	withFile := filepath.Join(root, "file")
	if err := os.MkdirAll(withFile, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(withFile, ".git"), []byte("gitdir: ../x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(root, "plain")
	if err := os.MkdirAll(plain, 0o755); err != nil {
		t.Fatal(err)
	}

	if !IsWorkingTree(withDir) {
		t.Error("IsWorkingTree() should accept a .git directory")
	}
	if !IsWorkingTree(withFile) {
		t.Error("IsWorkingTree() should accept a gitdir file")
	}
	if IsWorkingTree(plain) {
		t.Error("IsWorkingTree() should reject a directory without .git")
	}
}
