package cmd

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"thoreinstein.com/gitman/pkg/config"
	"thoreinstein.com/gitman/pkg/ui"
)

// runRootCommand is the default flow: first-run setup, folder setup, then
// pick any local or remote repositories to pull or clone.
func runRootCommand(ctx context.Context, s *session) error {
	switch {
	case setToken != "":
		return saveToken(s, setToken)
	case clearToken:
		if err := s.tokens.Clear(); err != nil {
			return errors.Wrap(err, "failed to clear token")
		}
		fmt.Fprintf(s.out, "Token removed from %s\n", s.tokens.Location())
		return nil
	}

	if !s.global.GetBool(config.KeySetupComplete) {
		if err := runSetupWizard(ctx, s); err != nil {
			return err
		}
	}
	if s.folder.Scope() == "" {
		if err := runFolderSetup(ctx, s); err != nil {
			return err
		}
	}

	return runInteractive(ctx, s)
}

func runInteractive(ctx context.Context, s *session) error {
	inv, skips, err := discover(ctx, s, true)
	if err != nil {
		return err
	}
	if inv.Len() == 0 {
		fmt.Fprintf(s.out, "No repositories found in %s.\n", s.root)
		return nil
	}

	names, err := selectRepositories("Select repositories to pull or clone", ui.Choices(inv.Local(), inv.Remote()))
	switch {
	case errors.Is(err, ui.ErrCancelled):
		return nil
	case errors.Is(err, ui.ErrFzfNotFound):
		ui.Listing(s.out, inv.Local(), inv.Remote())
		fmt.Fprintln(s.out, "\nInstall fzf to pick repositories interactively.")
		return nil
	case err != nil:
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(s.out, "Nothing selected.")
		return nil
	}

	return execute(ctx, s, inv, names, skips, false)
}
