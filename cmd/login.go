package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"thoreinstein.com/gitman/pkg/github"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize gitman with GitHub in the browser",
	Long: `Run the GitHub OAuth device flow and save the resulting token.

Requires github.client_id in the config file. Use 'gitman --set-token <token>'
to save a personal access token instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		return runLoginCommand(cmd.Context(), s)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLoginCommand(ctx context.Context, s *session) error {
	if _, err := github.Login(ctx, &s.cfg.GitHub, s.tokens, s.out, verbose); err != nil {
		return err
	}
	s.clientReady = false
	fmt.Fprintf(s.out, "Logged in. Token saved to %s\n", s.tokens.Location())
	return nil
}
