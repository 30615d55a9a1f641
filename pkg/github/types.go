// Package github lists the GitHub repositories gitman can clone.
//
// The Client interface is implemented by APIClient on top of the GitHub
// REST API. Lister adapts a Client into repository records and absorbs
// remote failures so local-only workflows keep working.
package github

// AuthMethod represents the authentication method for GitHub.
type AuthMethod string

const (
	// AuthToken uses a personal access token for authentication.
	AuthToken AuthMethod = "token"
	// AuthOAuth uses the OAuth device flow, caching the resulting token.
	AuthOAuth AuthMethod = "oauth"
)

// CloneProtocol selects which clone address is used for remote repositories.
type CloneProtocol string

const (
	ProtocolSSH   CloneProtocol = "ssh"
	ProtocolHTTPS CloneProtocol = "https"
)

// Repository is a repository as listed by the API.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	SSHURL   string `json:"ssh_url"`
	CloneURL string `json:"clone_url"`
	Archived bool   `json:"archived"`
}

// CloneAddress returns the address for protocol, defaulting to SSH.
func (r Repository) CloneAddress(protocol CloneProtocol) string {
	if protocol == ProtocolHTTPS {
		return r.CloneURL
	}
	return r.SSHURL
}

// ListOptions scopes a repository listing.
type ListOptions struct {
	// Org lists the organization's repositories; empty lists the
	// repositories owned by the authenticated user.
	Org string
}
