package github

import (
	"context"
	"io"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"thoreinstein.com/gitman/pkg/config"
	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

// Client defines the GitHub operations gitman needs.
type Client interface {
	// ListRepositories lists the repositories owned by the authenticated
	// user, or those of opts.Org when set.
	ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error)

	// ListOrgMemberships returns the logins of organizations the
	// authenticated user is an active member of.
	ListOrgMemberships(ctx context.Context) ([]string, error)
}

// ResolveToken finds a token without any user interaction.
//
// Token resolution order:
//  1. GITHUB_TOKEN environment variable
//  2. GITMAN_GITHUB_TOKEN environment variable
//  3. Token from config file (github.token)
//  4. Cached token (keychain or file)
func ResolveToken(cfg *config.GitHubConfig, cache TokenCache) string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	if token := os.Getenv("GITMAN_GITHUB_TOKEN"); token != "" {
		return token
	}
	if cfg != nil && cfg.Token != "" {
		return cfg.Token
	}
	if cache == nil {
		return ""
	}

	cached, err := cache.Get()
	if err != nil {
		slog.Debug("failed to read cached token", "error", err)
		return ""
	}
	if cached != nil && cached.Valid() {
		return cached.AccessToken
	}
	return ""
}

// NewClient creates a GitHub client based on the provided configuration.
// When no token can be resolved it runs the OAuth device flow if
// github.auth_method is "oauth", and otherwise returns ErrNoCredential.
func NewClient(cfg *config.GitHubConfig, cache TokenCache, verbose bool) (Client, error) {
	if cfg == nil {
		return nil, gitmanerrors.NewGitHubError("NewClient", "github config is required")
	}

	opts := []APIClientOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}

	if token := ResolveToken(cfg, cache); token != "" {
		return NewAPIClient(token, verbose, opts...)
	}

	switch AuthMethod(cfg.AuthMethod) {
	case AuthOAuth:
		token, err := Login(context.Background(), cfg, cache, os.Stdout, verbose)
		if err != nil {
			return nil, err
		}
		return NewAPIClient(token.AccessToken, verbose, opts...)

	case AuthToken, "":
		return nil, gitmanerrors.ErrNoCredential

	default:
		return nil, gitmanerrors.NewGitHubError("NewClient", "unknown auth method: "+cfg.AuthMethod)
	}
}

// Login runs the OAuth device flow and caches the resulting token.
func Login(ctx context.Context, cfg *config.GitHubConfig, cache TokenCache, stdout io.Writer, verbose bool) (*oauth2.Token, error) {
	if cfg.ClientID == "" {
		return nil, gitmanerrors.NewGitHubError("Login",
			"oauth auth requires github.client_id in config; alternatively run 'gitman --set-token <token>'")
	}

	apiToken, err := DeviceAuth(ctx, OAuthConfig{
		ClientID: cfg.ClientID,
		BaseURL:  cfg.BaseURL,
	}, stdout)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken: apiToken.Token,
		TokenType:   apiToken.Type,
	}

	if cache != nil {
		if cacheErr := cache.Set(token); cacheErr != nil {
			// auth succeeded, the token is just not remembered
			if verbose {
				slog.Debug("failed to cache token", "error", cacheErr)
			}
		} else if verbose {
			slog.Debug("cached OAuth token for future use")
		}
	}

	return token, nil
}
