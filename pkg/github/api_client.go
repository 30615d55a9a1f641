package github

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

const perPage = 100

// APIClient implements Client using GitHub REST API.
type APIClient struct {
	client  *gh.Client
	verbose bool
	logger  *slog.Logger
	baseErr error
}

// Compile-time check that APIClient implements Client.
var _ Client = (*APIClient)(nil)

// APIClientOption is a functional option for configuring APIClient.
type APIClientOption func(*APIClient)

// WithAPILogger sets a custom logger for the API client.
func WithAPILogger(logger *slog.Logger) APIClientOption {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server (https://ghe.example.com/api/v3/).
func WithBaseURL(raw string) APIClientOption {
	return func(c *APIClient) {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			c.baseErr = gitmanerrors.NewConfigErrorWithCause("github.base_url", "invalid URL", err)
			return
		}
		c.client.BaseURL = u
	}
}

// NewAPIClient creates a GitHub API client with the given token.
func NewAPIClient(token string, verbose bool, opts ...APIClientOption) (*APIClient, error) {
	if token == "" {
		return nil, gitmanerrors.NewGitHubError("NewAPIClient", "token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	client := &APIClient{
		client:  gh.NewClient(tc),
		verbose: verbose,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}
	if client.baseErr != nil {
		return nil, client.baseErr
	}

	return client, nil
}

// ListRepositories lists every page of the user's or organization's repositories.
func (c *APIClient) ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error) {
	if opts.Org != "" {
		return c.listOrgRepositories(ctx, opts.Org)
	}
	return c.listUserRepositories(ctx)
}

func (c *APIClient) listUserRepositories(ctx context.Context) ([]Repository, error) {
	listOpts := &gh.RepositoryListByAuthenticatedUserOptions{
		Affiliation: "owner",
		Sort:        "full_name",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var all []Repository
	for {
		c.logDebug("listing user repositories", "page", listOpts.Page)

		repos, resp, err := c.client.Repositories.ListByAuthenticatedUser(ctx, listOpts)
		if err != nil {
			return nil, toGitHubError("ListRepositories", resp, err)
		}
		all = append(all, repositoriesFromGitHub(repos)...)

		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	return all, nil
}

func (c *APIClient) listOrgRepositories(ctx context.Context, org string) ([]Repository, error) {
	listOpts := &gh.RepositoryListByOrgOptions{
		Sort:        "full_name",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var all []Repository
	for {
		c.logDebug("listing organization repositories", "org", org, "page", listOpts.Page)

		repos, resp, err := c.client.Repositories.ListByOrg(ctx, org, listOpts)
		if err != nil {
			return nil, toGitHubError("ListRepositories", resp, err)
		}
		all = append(all, repositoriesFromGitHub(repos)...)

		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	return all, nil
}

// ListOrgMemberships returns the organizations the user actively belongs to.
func (c *APIClient) ListOrgMemberships(ctx context.Context) ([]string, error) {
	listOpts := &gh.ListOrgMembershipsOptions{
		State:       "active",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var orgs []string
	for {
		memberships, resp, err := c.client.Organizations.ListOrgMemberships(ctx, listOpts)
		if err != nil {
			return nil, toGitHubError("ListOrgMemberships", resp, err)
		}
		for _, m := range memberships {
			if login := m.GetOrganization().GetLogin(); login != "" {
				orgs = append(orgs, login)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	return orgs, nil
}

// logDebug logs a debug message if verbose logging is enabled.
func (c *APIClient) logDebug(msg string, args ...any) {
	if c.verbose && c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func repositoriesFromGitHub(repos []*gh.Repository) []Repository {
	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, Repository{
			Name:     r.GetName(),
			FullName: r.GetFullName(),
			SSHURL:   r.GetSSHURL(),
			CloneURL: r.GetCloneURL(),
			Archived: r.GetArchived(),
		})
	}
	return out
}

func toGitHubError(operation string, resp *gh.Response, err error) error {
	if resp != nil && resp.StatusCode > 0 {
		return gitmanerrors.NewGitHubErrorWithStatus(operation, resp.StatusCode, err.Error())
	}
	return gitmanerrors.NewGitHubErrorWithCause(operation, "API request failed", err)
}
