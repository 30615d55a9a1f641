package cmd

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoreinstein.com/gitman/pkg/config"
	"thoreinstein.com/gitman/pkg/github"
	"thoreinstein.com/gitman/pkg/ui"
)

func TestRootFlow_PullsLocalAndClonesRemote(t *testing.T) {
	root := t.TempDir()
	mustMkRepo(t, root, "proj1")
	mustMkRepo(t, root, "proj2")
	offered := stubSelector(t, []string{"proj1", "proj3"}, nil)

	client := &fakeClient{repos: []github.Repository{
		{Name: "proj1", SSHURL: "git@github.com:me/proj1.git"},
		{Name: "proj3", SSHURL: "git@github.com:me/proj3.git"},
		{Name: "old", SSHURL: "git@github.com:me/old.git", Archived: true},
	}}
	ts := newTestSession(t, root, "\n").withClient(client)
	ts.markConfigured(t)

	err := runRootCommand(context.Background(), ts.session)
	require.NoError(t, err)

	// proj1 exists locally, so the remote entry is hidden and it is pulled.
	names := make([]string, 0, len(*offered))
	for _, c := range *offered {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"proj1", "proj2", "proj3"}, names)
	assert.Equal(t, []string{"pull proj1", "clone git@github.com:me/proj3.git proj3"}, ts.fakeGit.Calls())
	assert.Contains(t, ts.stdout.String(), "2/2 succeeded")
}

func TestRootFlow_RemoteFailureFallsBackToLocal(t *testing.T) {
	root := t.TempDir()
	mustMkRepo(t, root, "proj1")
	offered := stubSelector(t, nil, ui.ErrCancelled)

	ts := newTestSession(t, root, "").withClient(&fakeClient{err: assert.AnError})
	ts.markConfigured(t)

	err := runRootCommand(context.Background(), ts.session)
	require.NoError(t, err)

	require.Len(t, *offered, 1)
	assert.Equal(t, "proj1", (*offered)[0].Name)
	assert.Contains(t, ts.stderr.String(), "showing local ones only")
	assert.Empty(t, ts.fakeGit.Calls())
}

func TestRootFlow_OrgScopeIsPassedToLister(t *testing.T) {
	root := t.TempDir()
	stubSelector(t, nil, ui.ErrCancelled)

	client := &fakeClient{repos: []github.Repository{{Name: "svc", SSHURL: "git@github.com:acme/svc.git"}}}
	ts := newTestSession(t, root, "").withClient(client)
	ts.markConfigured(t)
	ts.cfg.GitHub.Org = "acme"

	require.NoError(t, runRootCommand(context.Background(), ts.session))

	require.Len(t, client.seen, 1)
	assert.Equal(t, "acme", client.seen[0].Org)
}

func TestRootFlow_FzfMissingPrintsListing(t *testing.T) {
	root := t.TempDir()
	mustMkRepo(t, root, "proj1")
	stubSelector(t, nil, ui.ErrFzfNotFound)

	ts := newTestSession(t, root, "")
	ts.markConfigured(t)

	require.NoError(t, runRootCommand(context.Background(), ts.session))
	assert.Contains(t, ts.stdout.String(), "Local repositories (1):")
	assert.Contains(t, ts.stdout.String(), "Install fzf")
}

func TestRootFlow_EmptyFolder(t *testing.T) {
	stubSelector(t, []string{"never"}, nil)

	ts := newTestSession(t, t.TempDir(), "")
	ts.markConfigured(t)

	require.NoError(t, runRootCommand(context.Background(), ts.session))
	assert.Contains(t, ts.stdout.String(), "No repositories found")
}

func TestSetupWizard_LocalOnly(t *testing.T) {
	root := t.TempDir()
	stubSelector(t, nil, ui.ErrCancelled)

	ts := newTestSession(t, root, "n\n")

	require.NoError(t, runRootCommand(context.Background(), ts.session))

	reopened, err := config.OpenStore(ts.global.Path())
	require.NoError(t, err)
	assert.True(t, reopened.GetBool(config.KeySetupComplete))
	assert.False(t, reopened.GetBool(config.KeyManageRemote))

	folder, err := config.OpenStore(config.DirectoryStorePath(root))
	require.NoError(t, err)
	assert.Equal(t, config.ScopePersonal, folder.Scope())
}

func TestSetupWizard_SavesToken(t *testing.T) {
	ts := newTestSession(t, t.TempDir(), "y\nghp_fromprompt\n")

	require.NoError(t, runSetupWizard(context.Background(), ts.session))

	token, err := ts.tokens.Get()
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "ghp_fromprompt", token.AccessToken)
	assert.True(t, ts.cfg.GitHub.ManageRemote)
}

func TestFolderSetup_ChoosesOrganization(t *testing.T) {
	root := t.TempDir()
	ts := newTestSession(t, root, "2\n").withClient(&fakeClient{orgs: []string{"acme", "tools"}})

	require.NoError(t, runFolderSetup(context.Background(), ts.session))

	assert.Equal(t, "acme", ts.cfg.GitHub.Org)
	folder, err := config.OpenStore(config.DirectoryStorePath(root))
	require.NoError(t, err)
	assert.Equal(t, config.ScopeOrg, folder.Scope())
	assert.Equal(t, "acme", folder.Org())
}

func TestFolderSetup_NoOrganizationsIsPersonal(t *testing.T) {
	ts := newTestSession(t, t.TempDir(), "").withClient(&fakeClient{})

	require.NoError(t, runFolderSetup(context.Background(), ts.session))
	assert.Equal(t, config.ScopePersonal, ts.folder.Scope())
	assert.Contains(t, ts.stdout.String(), "your own repositories")
}

func TestRootFlow_SetAndClearToken(t *testing.T) {
	ts := newTestSession(t, t.TempDir(), "")

	setToken = "ghp_flag"
	t.Cleanup(func() { setToken = "" })
	require.NoError(t, runRootCommand(context.Background(), ts.session))

	token, err := ts.tokens.Get()
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "ghp_flag", token.AccessToken)

	setToken = ""
	clearToken = true
	t.Cleanup(func() { clearToken = false })
	require.NoError(t, runRootCommand(context.Background(), ts.session))

	token, err = ts.tokens.Get()
	require.NoError(t, err)
	assert.Nil(t, token)
	assert.False(t, ts.global.Exists(), "token flags must not run setup")
}

func TestGitHubClient_NoCredentialIsSilent(t *testing.T) {
	ts := newTestSession(t, t.TempDir(), "")
	ts.cfg.GitHub.ManageRemote = true

	orig := newGitHubClient
	newGitHubClient = func(*config.GitHubConfig, github.TokenCache, bool) (github.Client, error) {
		return github.NewClient(&config.GitHubConfig{AuthMethod: "token"}, nil, false)
	}
	t.Cleanup(func() { newGitHubClient = orig })

	assert.Nil(t, ts.githubClient())
	assert.Empty(t, ts.stderr.String())
}

func TestExecute_InterruptBeforeExecutionRunsNothing(t *testing.T) {
	tests := []struct {
		name      string
		assumeYes bool
	}{
		{"at confirmation", false},
		{"without confirmation", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			mustMkRepo(t, root, "proj1")
			ts := newTestSession(t, root, "\n")

			ctx, cancel := context.WithCancel(context.Background())
			inv, skips, err := discover(ctx, ts.session, false)
			require.NoError(t, err)
			cancel()

			err = execute(ctx, ts.session, inv, []string{"proj1"}, skips, tt.assumeYes)
			require.ErrorIs(t, err, context.Canceled)
			assert.Empty(t, ts.fakeGit.Calls())
			assert.NotContains(t, ts.stdout.String(), "succeeded")
		})
	}
}

func TestExecute_OnlyUnknownNamesStillReports(t *testing.T) {
	root := t.TempDir()
	mustMkRepo(t, root, "proj1")

	t.Run("text", func(t *testing.T) {
		ts := newTestSession(t, root, "")
		inv, skips, err := discover(context.Background(), ts.session, false)
		require.NoError(t, err)

		require.NoError(t, execute(context.Background(), ts.session, inv, []string{"ghost"}, skips, false))
		assert.NotContains(t, ts.stdout.String(), "Nothing to do.")
		assert.Contains(t, ts.stdout.String(), "0/0 succeeded, 1 skipped")
		assert.Contains(t, ts.stdout.String(), "ghost: "+unknownRepositoryReason)
		assert.Empty(t, ts.fakeGit.Calls())
	})

	t.Run("json", func(t *testing.T) {
		ts := newTestSession(t, root, "")
		ts.format = ui.FormatJSON
		inv, skips, err := discover(context.Background(), ts.session, false)
		require.NoError(t, err)

		require.NoError(t, execute(context.Background(), ts.session, inv, []string{"ghost"}, skips, true))

		var report struct {
			Skipped []struct {
				Name   string `json:"name"`
				Reason string `json:"reason"`
			} `json:"skipped"`
		}
		require.NoError(t, json.Unmarshal(ts.stdout.Bytes(), &report))
		require.Len(t, report.Skipped, 1)
		assert.Equal(t, "ghost", report.Skipped[0].Name)
		assert.Equal(t, unknownRepositoryReason, report.Skipped[0].Reason)
	})
}

func TestExecute_NothingSelectedNothingSkipped(t *testing.T) {
	root := t.TempDir()
	ts := newTestSession(t, root, "")
	inv, skips, err := discover(context.Background(), ts.session, false)
	require.NoError(t, err)

	require.NoError(t, execute(context.Background(), ts.session, inv, nil, skips, false))
	assert.Equal(t, "Nothing to do.\n", ts.stdout.String())
}
