package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"thoreinstein.com/gitman/pkg/config"
	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
	"thoreinstein.com/gitman/pkg/git"
	"thoreinstein.com/gitman/pkg/github"
	"thoreinstein.com/gitman/pkg/repo"
	"thoreinstein.com/gitman/pkg/ui"
)

// Collaborators replaced in tests.
var (
	selectRepositories = ui.SelectRepositories
	newGitHubClient    = github.NewClient
	newTokenCache      = func(cfg *config.Config) github.TokenCache {
		return github.NewTokenCache(cfg.GitHub.TokenCachePath, cfg.GitHub.BaseURL)
	}
	newGitManager = func(cfg *config.Config) *git.Manager {
		return git.NewManager(verbose, git.Options{PullFastForwardOnly: cfg.Git.PullFastForwardOnly})
	}
)

// session bundles what one invocation works with: the loaded config, the
// working root, both stores and the terminal.
type session struct {
	cfg    *config.Config
	root   string
	global *config.Store
	folder *config.Store
	tokens github.TokenCache
	git    *git.Manager
	prompt *ui.Prompter
	out    io.Writer
	errOut io.Writer
	format ui.OutputFormat
	logger *slog.Logger

	client      github.Client
	clientReady bool
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	root, err := workingRoot(rootDir)
	if err != nil {
		return nil, err
	}

	globalPath := cfgFile
	if globalPath == "" {
		if globalPath, err = config.GlobalStorePath(); err != nil {
			return nil, err
		}
	}
	global, err := config.OpenStore(globalPath)
	if err != nil {
		return nil, err
	}
	folder, err := config.OpenStore(config.DirectoryStorePath(root))
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	return &session{
		cfg:    cfg,
		root:   root,
		global: global,
		folder: folder,
		tokens: newTokenCache(cfg),
		git:    newGitManager(cfg).WithLogger(logger),
		prompt: ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		format: outputFmt,
		logger: logger,
	}, nil
}

// githubClient returns the API client, or nil when remote management is off
// or no credential is available. The outcome is computed once per session.
func (s *session) githubClient() github.Client {
	if s.clientReady {
		return s.client
	}
	s.clientReady = true

	if !s.cfg.GitHub.ManageRemote {
		s.logger.Debug("remote management disabled")
		return nil
	}

	client, err := newGitHubClient(&s.cfg.GitHub, s.tokens, verbose)
	switch {
	case err == nil:
		s.client = client
	case errors.Is(err, gitmanerrors.ErrNoCredential):
		s.logger.Debug("no GitHub credential, listing local repositories only")
	default:
		s.warnf("GitHub is unavailable: %v", err)
	}
	return s.client
}

func (s *session) lister() *github.Lister {
	return &github.Lister{
		Client:          s.githubClient(),
		Org:             s.cfg.GitHub.Org,
		Protocol:        github.CloneProtocol(s.cfg.GitHub.CloneProtocol),
		IncludeArchived: s.cfg.GitHub.IncludeArchived,
		Retry:           gitmanerrors.DefaultRetryConfig(),
		Logger:          s.logger,
	}
}

// pull and clone adapt the git manager to batch.ActionFunc.
func (s *session) pull(_ context.Context, root string, rec repo.Record) error {
	return s.git.Pull(filepath.Join(root, rec.Name))
}

func (s *session) clone(_ context.Context, root string, rec repo.Record) error {
	_, err := s.git.Clone(root, rec.CloneAddress, rec.Name)
	return err
}

func (s *session) warnf(format string, args ...any) {
	fmt.Fprintf(s.errOut, "Warning: "+format+"\n", args...)
}
