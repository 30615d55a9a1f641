package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoreinstein.com/gitman/pkg/ui"
)

func TestUpdateCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := updateCmd

	tests := []struct {
		flagName     string
		shorthand    string
		defaultValue string
		wantContain  string
	}{
		{"all", "a", "false", "every repository"},
		{"yes", "y", "false", "confirmation"},
		{"select", "s", "false", "choose"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("update command should have --%s flag", tt.flagName)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("--%s shorthand = %q, want %q", tt.flagName, flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defaultValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defaultValue)
			}
			if !strings.Contains(flag.Usage, tt.wantContain) {
				t.Errorf("--%s usage %q should contain %q", tt.flagName, flag.Usage, tt.wantContain)
			}
		})
	}
}

func TestUpdate_NoSelectionPrintsGuidance(t *testing.T) {
	tests := []struct {
		name      string
		saveEmpty bool
		want      string
	}{
		{"never selected", false, "No repositories are selected"},
		{"empty selection saved", true, "The saved selection of this folder is empty."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			mustMkRepo(t, root, "proj1")
			ts := newTestSession(t, root, "")
			if tt.saveEmpty {
				ts.folder.SetSelectedRepos(nil)
			}

			err := runUpdateCommand(context.Background(), ts.session, updateOptions{})
			require.NoError(t, err)

			assert.Contains(t, ts.stdout.String(), tt.want)
			assert.Contains(t, ts.stdout.String(), "gitman select")
			assert.Contains(t, ts.stdout.String(), "gitman update --all")
			assert.Empty(t, ts.fakeGit.Calls())
		})
	}
}

func TestUpdate_AllPullsEveryLocalRepository(t *testing.T) {
	root := t.TempDir()
	mustMkRepo(t, root, "proj2")
	mustMkRepo(t, root, "proj1")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0o755))

	ts := newTestSession(t, root, "")
	ts.fakeGit.branches["proj2"] = "feature"
	ts.fakeGit.dirty["proj2"] = true

	err := runUpdateCommand(context.Background(), ts.session, updateOptions{All: true, Yes: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"pull proj1", "pull proj2"}, ts.fakeGit.Calls())
	out := ts.stdout.String()
	assert.Contains(t, out, "proj2 (feature) ! uncommitted changes")
	assert.Contains(t, out, "2/2 succeeded")
}

func TestUpdate_SavedSelectionSkipsUnknownNames(t *testing.T) {
	root := t.TempDir()
	mustMkRepo(t, root, "proj1")
	mustMkRepo(t, root, "proj2")

	ts := newTestSession(t, root, "")
	ts.folder.SetSelectedRepos([]string{"proj2", "gone"})

	err := runUpdateCommand(context.Background(), ts.session, updateOptions{Yes: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"pull proj2"}, ts.fakeGit.Calls())
	assert.Contains(t, ts.stdout.String(), "gone: "+unknownRepositoryReason)
	assert.Contains(t, ts.stderr.String(), "gone")
}

func TestUpdate_FailureDoesNotStopOthers(t *testing.T) {
	root := t.TempDir()
	mustMkRepo(t, root, "proj1")
	mustMkRepo(t, root, "proj2")

	ts := newTestSession(t, root, "")
	ts.fakeGit.fail["proj1"] = "fatal: Not possible to fast-forward\nmore detail"

	err := runUpdateCommand(context.Background(), ts.session, updateOptions{All: true, Yes: true})
	assert.True(t, errors.Is(err, errBatchFailed), "err = %v", err)

	assert.Equal(t, []string{"pull proj1", "pull proj2"}, ts.fakeGit.Calls())
	out := ts.stdout.String()
	assert.Contains(t, out, "1/2 succeeded")
	assert.Contains(t, out, "Not possible to fast-forward")
}

func TestUpdate_DeclinedConfirmation(t *testing.T) {
	root := t.TempDir()
	mustMkRepo(t, root, "proj1")

	ts := newTestSession(t, root, "n\n")

	err := runUpdateCommand(context.Background(), ts.session, updateOptions{All: true})
	require.NoError(t, err)

	assert.Contains(t, ts.stdout.String(), "Aborted.")
	assert.Empty(t, ts.fakeGit.Calls())
}

func TestUpdate_SelectOnlySaves(t *testing.T) {
	tests := []struct {
		name        string
		picked      []string
		selectErr   error
		wantSaved   []string
		wantMessage string
	}{
		{"new selection", []string{"proj1"}, nil, []string{"proj1"}, "Saved 1 repositories"},
		{"cancelled", nil, ui.ErrCancelled, []string{"proj2"}, "Selection unchanged."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			mustMkRepo(t, root, "proj1")
			mustMkRepo(t, root, "proj2")
			stubSelector(t, tt.picked, tt.selectErr)

			ts := newTestSession(t, root, "")
			ts.folder.SetSelectedRepos([]string{"proj2"})

			err := runUpdateCommand(context.Background(), ts.session, updateOptions{Select: true, Yes: true})
			require.NoError(t, err)

			assert.Equal(t, tt.wantSaved, ts.folder.SelectedRepos())
			assert.Contains(t, ts.stdout.String(), tt.wantMessage)
			assert.Empty(t, ts.fakeGit.Calls(), "--select must not pull")
		})
	}
}

func TestUpdate_UnreadableRootIsFatal(t *testing.T) {
	ts := newTestSession(t, filepath.Join(t.TempDir(), "missing"), "")

	err := runUpdateCommand(context.Background(), ts.session, updateOptions{All: true, Yes: true})
	assert.Error(t, err)
	assert.Empty(t, ts.fakeGit.Calls())
}
