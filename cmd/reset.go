package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"thoreinstein.com/gitman/pkg/config"
)

var resetGlobal bool

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved settings of this folder",
	Long: `Remove the folder's .gitman.toml, which holds its scope and saved selection.

With --global the global settings and the saved GitHub token are removed too,
so the next run starts the setup again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		return runResetCommand(s, resetGlobal)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&resetGlobal, "global", "g", false, "also remove global settings and the saved token")
}

func runResetCommand(s *session, global bool) error {
	if err := clearStore(s, s.folder); err != nil {
		return err
	}
	if !global {
		return nil
	}
	if err := clearStore(s, s.global); err != nil {
		return err
	}

	if err := s.tokens.Clear(); err != nil {
		return errors.Wrap(err, "failed to clear token")
	}
	fmt.Fprintf(s.out, "Token removed from %s\n", s.tokens.Location())
	return nil
}

func clearStore(s *session, store *config.Store) error {
	existed := store.Exists()
	if err := store.Clear(); err != nil {
		return err
	}
	if existed {
		fmt.Fprintf(s.out, "Removed %s\n", store.Path())
	} else {
		fmt.Fprintf(s.out, "Nothing saved at %s\n", store.Path())
	}
	return nil
}
