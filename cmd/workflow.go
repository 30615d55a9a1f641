package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"thoreinstein.com/gitman/pkg/batch"
	"thoreinstein.com/gitman/pkg/config"
	"thoreinstein.com/gitman/pkg/discovery"
	"thoreinstein.com/gitman/pkg/github"
	"thoreinstein.com/gitman/pkg/repo"
	"thoreinstein.com/gitman/pkg/ui"
)

const unknownRepositoryReason = "no local or remote repository with this name"

// discover scans the working root and, when withRemote is set, lists the
// GitHub repositories at the same time. Only an unreadable root is fatal.
// Local candidates whose status could not be read come back as skips.
func discover(ctx context.Context, s *session, withRemote bool) (*repo.Inventory, []batch.Skip, error) {
	scanner := discovery.NewScanner(s.root, s.git)
	scanner.Exclude = s.cfg.Discovery.Exclude
	scanner.Concurrency = s.cfg.Discovery.Concurrency
	scanner.Logger = s.logger

	var (
		scanned *discovery.Result
		listing github.Listing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scanned, err = scanner.Scan(gctx)
		return err
	})
	if withRemote {
		lister := s.lister()
		g.Go(func() error {
			listing = lister.List(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if listing.Unavailable != nil {
		s.warnf("could not list GitHub repositories, showing local ones only: %v", listing.Unavailable)
	}

	skips := make([]batch.Skip, 0, len(scanned.Failures))
	for _, f := range scanned.Failures {
		s.warnf("skipping %s: %v", f.Name, f.Err)
		skips = append(skips, batch.Skip{Name: f.Name, Reason: "status unavailable: " + f.Err.Error()})
	}

	s.logger.Debug("discovery finished",
		"root", s.root,
		"local", len(scanned.Records),
		"remote", len(listing.Records),
		"scanned", scanned.Scanned,
		"duration", scanned.Duration)

	return repo.NewInventory(scanned.Records, listing.Records), skips, nil
}

// execute resolves names against inv, shows the plan, asks for confirmation
// unless assumeYes is set, runs the plan and prints the report. A plan with
// no items still reports its skips.
func execute(ctx context.Context, s *session, inv *repo.Inventory, names []string, skips []batch.Skip, assumeYes bool) error {
	resolution := repo.Resolve(names, inv)
	for _, name := range resolution.Unknown {
		s.warnf("%s: %s", name, unknownRepositoryReason)
		skips = append(skips, batch.Skip{Name: name, Reason: unknownRepositoryReason})
	}

	plan := repo.NewPlan(resolution.Records)
	if plan.Empty() && len(skips) == 0 {
		fmt.Fprintln(s.out, "Nothing to do.")
		return nil
	}

	if !plan.Empty() {
		ui.PlanSummary(s.out, plan)
		if !assumeYes {
			ok, err := s.prompt.ConfirmContext(ctx, fmt.Sprintf("Proceed with %d repositories?", plan.Len()), true)
			if ctx.Err() != nil {
				fmt.Fprintln(s.out, "\nAborted.")
				return errors.Wrap(ctx.Err(), "interrupted before confirmation")
			}
			if err != nil {
				return errors.Wrap(err, "failed to read confirmation")
			}
			if !ok {
				fmt.Fprintln(s.out, "Aborted.")
				return nil
			}
		}
	}

	// Structured reports own stdout; progress moves to stderr.
	var progress io.Writer = s.out
	if s.format != ui.FormatText {
		progress = s.errOut
	}

	executor := &batch.Executor{
		Root:     s.root,
		Pull:     s.pull,
		Clone:    s.clone,
		Observer: &ui.ProgressPrinter{Out: progress},
		Logger:   s.logger,
	}
	report, err := executor.Run(ctx, plan, skips)
	if err != nil {
		return err
	}

	if err := ui.WriteReport(s.out, report, s.format); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	if report.ExitCode() != 0 {
		return errBatchFailed
	}
	return nil
}

// runSetupWizard asks the first-run questions and records them in the
// global store.
func runSetupWizard(ctx context.Context, s *session) error {
	fmt.Fprintln(s.out, "Welcome to gitman. A few questions before the first run.")

	manage, err := s.prompt.ConfirmContext(ctx, "Manage your GitHub repositories as well?", true)
	if err != nil {
		return errors.Wrap(err, "setup cancelled")
	}

	if manage && github.ResolveToken(&s.cfg.GitHub, s.tokens) == "" {
		switch github.AuthMethod(s.cfg.GitHub.AuthMethod) {
		case github.AuthOAuth:
			if _, err := github.Login(ctx, &s.cfg.GitHub, s.tokens, s.out, verbose); err != nil {
				return err
			}
		default:
			fmt.Fprintln(s.out, "Create a token with the 'repo' and 'read:org' scopes at https://github.com/settings/tokens")
			token, err := s.prompt.Secret("GitHub token (leave empty to skip):")
			if err != nil {
				return errors.Wrap(err, "setup cancelled")
			}
			if token != "" {
				if err := saveToken(s, token); err != nil {
					return err
				}
			}
		}
	}

	s.global.Set(config.KeyManageRemote, manage)
	s.global.Set(config.KeySetupComplete, true)
	if err := s.global.Save(); err != nil {
		return err
	}
	s.cfg.GitHub.ManageRemote = manage
	s.clientReady = false

	fmt.Fprintf(s.out, "Setup saved to %s\n", s.global.Path())
	return nil
}

// runFolderSetup asks whose repositories the working root tracks and saves
// the answer in the folder store.
func runFolderSetup(ctx context.Context, s *session) error {
	org := ""

	if client := s.githubClient(); client != nil {
		orgs, err := client.ListOrgMemberships(ctx)
		if err != nil {
			s.warnf("could not list your organizations: %v", err)
		}
		if len(orgs) > 0 {
			options := append([]string{"personal (your own repositories)"}, orgs...)
			idx, err := s.prompt.Choose(fmt.Sprintf("Which repositories should %s track?", s.root), options)
			if err != nil {
				return errors.Wrap(err, "folder setup cancelled")
			}
			if idx > 0 {
				org = orgs[idx-1]
			}
		}
	}

	s.folder.SetOrg(org)
	if err := s.folder.Save(); err != nil {
		return err
	}
	s.cfg.GitHub.Org = org

	scope := "your own repositories"
	if org != "" {
		scope = "repositories of " + org
	}
	fmt.Fprintf(s.out, "This folder tracks %s.\n", scope)
	return nil
}

func saveToken(s *session, raw string) error {
	token, err := github.PersonalAccessToken(raw)
	if err != nil {
		return err
	}
	if err := s.tokens.Set(token); err != nil {
		return errors.Wrap(err, "failed to save token")
	}
	s.clientReady = false
	fmt.Fprintf(s.out, "Token saved to %s\n", s.tokens.Location())
	return nil
}

