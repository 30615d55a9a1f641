package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"thoreinstein.com/gitman/pkg/config"
	"thoreinstein.com/gitman/pkg/repo"
)

var (
	updateAll    bool
	updateYes    bool
	updateSelect bool
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Pull the saved selection of repositories",
	Long: `Pull every repository saved with 'gitman select', or every repository
of the folder with --all. With --select the saved selection is chosen again
and nothing is pulled.

A failing repository does not stop the others. The command exits with status 1
when any repository failed.

Examples:
  gitman update
  gitman update --select
  gitman update --all --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		return runUpdateCommand(cmd.Context(), s, updateOptions{
			All:    updateAll,
			Yes:    updateYes,
			Select: updateSelect,
		})
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVarP(&updateAll, "all", "a", false, "pull every repository in the folder")
	updateCmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "do not ask for confirmation")
	updateCmd.Flags().BoolVarP(&updateSelect, "select", "s", false, "choose and save the repositories to keep updated, without pulling")
	updateCmd.MarkFlagsMutuallyExclusive("all", "select")
}

type updateOptions struct {
	All    bool
	Yes    bool
	Select bool
}

func runUpdateCommand(ctx context.Context, s *session, opts updateOptions) error {
	if opts.Select {
		_, err := runSelectCommand(ctx, s)
		return err
	}

	var names []string
	if !opts.All {
		names = s.folder.SelectedRepos()
		if len(names) == 0 {
			if s.folder.Has(config.KeySelectedRepos) {
				fmt.Fprintln(s.out, "The saved selection of this folder is empty.")
			} else {
				fmt.Fprintln(s.out, "No repositories are selected for update in this folder.")
			}
			fmt.Fprintln(s.out, "Run 'gitman select' to choose some, or 'gitman update --all' to pull every repository.")
			return nil
		}
	}

	inv, skips, err := discover(ctx, s, false)
	if err != nil {
		return err
	}
	if opts.All {
		names = repo.Names(inv.Local())
	}

	return execute(ctx, s, inv, names, skips, opts.Yes)
}
