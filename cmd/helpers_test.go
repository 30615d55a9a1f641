package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"

	"thoreinstein.com/gitman/pkg/config"
	"thoreinstein.com/gitman/pkg/git"
	"thoreinstein.com/gitman/pkg/github"
	"thoreinstein.com/gitman/pkg/ui"
)

// fakeGit answers status queries from maps and records pulls and clones.
type fakeGit struct {
	mu       sync.Mutex
	branches map[string]string
	dirty    map[string]bool
	fail     map[string]string
	calls    []string
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		branches: map[string]string{},
		dirty:    map[string]bool{},
		fail:     map[string]string{},
	}
}

func (f *fakeGit) Run(dir string, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var repoName string
	switch args[0] {
	case "pull":
		repoName = filepath.Base(dir)
		f.calls = append(f.calls, "pull "+repoName)
	case "clone":
		repoName = filepath.Base(args[2])
		f.calls = append(f.calls, "clone "+args[1]+" "+repoName)
	}
	if msg, ok := f.fail[repoName]; ok {
		return errors.New(msg)
	}
	return nil
}

func (f *fakeGit) Output(dir string, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	repoName := filepath.Base(dir)
	switch args[0] {
	case "symbolic-ref":
		branch, ok := f.branches[repoName]
		if !ok {
			branch = "main"
		}
		return []byte(branch + "\n"), nil
	case "status":
		if f.dirty[repoName] {
			return []byte(" M README.md\n"), nil
		}
		return nil, nil
	}
	return []byte("abc1234\n"), nil
}

func (f *fakeGit) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeClient is a github.Client serving fixed data.
type fakeClient struct {
	repos []github.Repository
	orgs  []string
	err   error
	seen  []github.ListOptions
}

func (c *fakeClient) ListRepositories(_ context.Context, opts github.ListOptions) ([]github.Repository, error) {
	c.seen = append(c.seen, opts)
	return c.repos, c.err
}

func (c *fakeClient) ListOrgMemberships(context.Context) ([]string, error) {
	return c.orgs, c.err
}

type testSession struct {
	*session
	fakeGit *fakeGit
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

// newTestSession builds a session over root with scripted stdin, a fake git
// and stores under a temp directory. Remote management is off unless a
// client is attached with withClient.
func newTestSession(t *testing.T, root, input string) *testSession {
	t.Helper()

	dir := t.TempDir()
	global, err := config.OpenStore(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	folder, err := config.OpenStore(config.DirectoryStorePath(root))
	if err != nil {
		t.Fatal(err)
	}

	fg := newFakeGit()
	var out, errOut bytes.Buffer
	s := &session{
		cfg: &config.Config{
			GitHub:    config.GitHubConfig{AuthMethod: "token", CloneProtocol: "ssh"},
			Discovery: config.DiscoveryConfig{Concurrency: 2},
		},
		root:   root,
		global: global,
		folder: folder,
		tokens: github.NewFileTokenCache(filepath.Join(dir, "github-token.json"), ""),
		git:    git.NewManagerWithRunner(fg, git.Options{}),
		prompt: ui.NewPrompter(strings.NewReader(input), &out),
		out:    &out,
		errOut: &errOut,
		format: ui.FormatText,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return &testSession{session: s, fakeGit: fg, stdout: &out, stderr: &errOut}
}

func (ts *testSession) withClient(c github.Client) *testSession {
	ts.cfg.GitHub.ManageRemote = true
	ts.client = c
	ts.clientReady = true
	return ts
}

// markConfigured skips the first-run and folder setup.
func (ts *testSession) markConfigured(t *testing.T) {
	t.Helper()
	ts.global.Set(config.KeySetupComplete, true)
	ts.folder.SetOrg("")
	if err := ts.folder.Save(); err != nil {
		t.Fatal(err)
	}
}

// stubSelector replaces the fzf selector for one test and records the
// choices it was offered.
func stubSelector(t *testing.T, names []string, err error) *[]ui.Choice {
	t.Helper()
	var offered []ui.Choice
	orig := selectRepositories
	selectRepositories = func(_ string, choices []ui.Choice) ([]string, error) {
		offered = choices
		return names, err
	}
	t.Cleanup(func() { selectRepositories = orig })
	return &offered
}

func mustMkRepo(t *testing.T, root, name string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, name, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
}
