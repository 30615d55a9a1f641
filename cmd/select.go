package cmd

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"thoreinstein.com/gitman/pkg/repo"
	"thoreinstein.com/gitman/pkg/ui"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Choose the repositories 'gitman update' pulls",
	Long: `Choose which local repositories of the folder 'gitman update' keeps up to date.

The choice is saved in the folder's .gitman.toml and replaces any earlier one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		_, err = runSelectCommand(cmd.Context(), s)
		return err
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
}

// runSelectCommand saves the chosen local repositories as the folder's
// selection. It returns the saved names, or nil when nothing was saved.
func runSelectCommand(ctx context.Context, s *session) ([]string, error) {
	inv, _, err := discover(ctx, s, false)
	if err != nil {
		return nil, err
	}
	if len(inv.Local()) == 0 {
		fmt.Fprintf(s.out, "No repositories found in %s.\n", s.root)
		return nil, nil
	}

	names, err := selectRepositories("Select repositories to keep updated", ui.Choices(inv.Local(), nil))
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			fmt.Fprintln(s.out, "Selection unchanged.")
			return nil, nil
		}
		return nil, err
	}

	names = repo.Names(repo.Resolve(names, inv).Records)
	s.folder.SetSelectedRepos(names)
	if err := s.folder.Save(); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "Saved %d repositories to %s\n", len(names), s.folder.Path())
	return names, nil
}
