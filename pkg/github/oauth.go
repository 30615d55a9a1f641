package github

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cli/oauth"
	"github.com/cli/oauth/api"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

// LoginScopes are the scopes gitman needs: private repositories and the
// organization memberships offered during folder setup.
var LoginScopes = []string{"repo", "read:org"}

// OAuthConfig holds OAuth configuration for device flow authentication.
type OAuthConfig struct {
	ClientID string   // OAuth app client ID (required for device flow)
	Scopes   []string // defaults to LoginScopes
	BaseURL  string   // API base URL from github.base_url; empty means github.com
	Stdin    io.Reader
}

// DeviceAuth performs OAuth device flow authentication.
// It displays a code for the user to enter at GitHub's verification URL,
// then polls until authorization completes.
func DeviceAuth(ctx context.Context, cfg OAuthConfig, stdout io.Writer) (*api.AccessToken, error) {
	if cfg.ClientID == "" {
		return nil, gitmanerrors.NewGitHubError("DeviceAuth", "client_id is required for OAuth device flow")
	}
	if stdout == nil {
		stdout = io.Discard
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = LoginScopes
	}
	stdin := cfg.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	host, err := oauth.NewGitHubHost("https://" + TokenHost(cfg.BaseURL))
	if err != nil {
		return nil, gitmanerrors.NewGitHubErrorWithCause("DeviceAuth", "invalid GitHub host", err)
	}

	flow := &oauth.Flow{
		Host:     host,
		ClientID: cfg.ClientID,
		Scopes:   scopes,
		Stdout:   stdout,
		Stdin:    stdin,
		DisplayCode: func(code, verificationURL string) error {
			fmt.Fprintf(stdout, "\nTo authorize gitman, enter the code %s\n", code)
			fmt.Fprintf(stdout, "at %s (press Enter to open it in your browser)\n", verificationURL)
			return nil
		},
	}

	// cli/oauth polls until the user approves or the code expires; it does
	// not take a context, so cancellation is only checked before starting.
	if err := ctx.Err(); err != nil {
		return nil, gitmanerrors.NewGitHubErrorWithCause("DeviceAuth", "login cancelled", err)
	}
	token, err := flow.DeviceFlow()
	if err != nil {
		return nil, gitmanerrors.NewGitHubErrorWithCause("DeviceAuth", "device flow failed", err)
	}
	return token, nil
}
