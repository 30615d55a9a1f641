package github

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

// KeyringService is the keychain service gitman stores tokens under. The
// account is the GitHub host, so github.com and an Enterprise server keep
// separate tokens.
const KeyringService = "gitman-github"

// TokenCache persists the GitHub token between runs. It holds either a
// personal access token saved with --set-token or an OAuth token from
// the device flow.
type TokenCache interface {
	Get() (*oauth2.Token, error)
	Set(token *oauth2.Token) error
	Clear() error
	// Location describes where the token is kept, for user messages.
	Location() string
}

// storedToken is the serialized form shared by both caches.
type storedToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

func (s storedToken) token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
	}
}

func storedFrom(t *oauth2.Token) storedToken {
	return storedToken{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}

// PersonalAccessToken wraps a raw token string for storage in a TokenCache.
func PersonalAccessToken(token string) (*oauth2.Token, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, gitmanerrors.NewGitHubError("SetToken", "token is empty")
	}
	return &oauth2.Token{AccessToken: token, TokenType: "token"}, nil
}

// TokenHost returns the host a token belongs to: "github.com" for an empty
// base URL, otherwise the host of the Enterprise API URL.
func TokenHost(baseURL string) string {
	if baseURL == "" {
		return "github.com"
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "github.com"
	}
	return u.Host
}

// NewTokenCache returns the keychain cache when a keyring is reachable and
// the file cache at fallbackPath otherwise.
func NewTokenCache(fallbackPath, baseURL string) TokenCache {
	host := TokenHost(baseURL)
	if keyringAvailable() {
		return &KeychainTokenCache{service: KeyringService, host: host}
	}
	if fallbackPath == "" {
		fallbackPath = tokenCachePath()
	}
	return NewFileTokenCache(fallbackPath, baseURL)
}

// keyringAvailable probes with a throwaway entry; headless Linux often has
// no secret service.
func keyringAvailable() bool {
	probe := KeyringService + "-probe"
	if err := keyring.Set(probe, "probe", "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(probe, "probe")
	return true
}

// KeychainTokenCache uses macOS keychain / Linux secret service / Windows credential manager.
type KeychainTokenCache struct {
	service string
	host    string
}

func (k *KeychainTokenCache) Get() (*oauth2.Token, error) {
	data, err := keyring.Get(k.service, k.host)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, gitmanerrors.NewGitHubErrorWithCause("TokenCache.Get", "failed to read from keychain", err)
	}

	var stored storedToken
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, gitmanerrors.NewGitHubErrorWithCause("TokenCache.Get", "failed to parse cached token", err)
	}
	return stored.token(), nil
}

func (k *KeychainTokenCache) Set(token *oauth2.Token) error {
	data, err := json.Marshal(storedFrom(token))
	if err != nil {
		return gitmanerrors.NewGitHubErrorWithCause("TokenCache.Set", "failed to serialize token", err)
	}
	if err := keyring.Set(k.service, k.host, string(data)); err != nil {
		return gitmanerrors.NewGitHubErrorWithCause("TokenCache.Set", "failed to save to keychain", err)
	}
	return nil
}

func (k *KeychainTokenCache) Clear() error {
	err := keyring.Delete(k.service, k.host)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return gitmanerrors.NewGitHubErrorWithCause("TokenCache.Clear", "failed to clear keychain", err)
	}
	return nil
}

func (k *KeychainTokenCache) Location() string {
	return "system keychain (" + k.service + ", " + k.host + ")"
}

// FileTokenCache keeps tokens in one 0600 JSON file keyed by host. It is
// the fallback for systems without a keyring.
type FileTokenCache struct {
	path string
	host string
}

// NewFileTokenCache creates a file-backed cache at path for the host of baseURL.
func NewFileTokenCache(path, baseURL string) *FileTokenCache {
	return &FileTokenCache{path: path, host: TokenHost(baseURL)}
}

func (f *FileTokenCache) Get() (*oauth2.Token, error) {
	tokens, err := f.load()
	if err != nil {
		return nil, gitmanerrors.NewGitHubErrorWithCause("TokenCache.Get", "failed to read token file", err)
	}
	stored, ok := tokens[f.host]
	if !ok {
		return nil, nil
	}
	return stored.token(), nil
}

func (f *FileTokenCache) Set(token *oauth2.Token) error {
	tokens, err := f.load()
	if err != nil {
		// an unreadable file is replaced rather than blocking a new token
		tokens = map[string]storedToken{}
	}
	tokens[f.host] = storedFrom(token)

	if err := f.save(tokens); err != nil {
		return gitmanerrors.NewGitHubErrorWithCause("TokenCache.Set", "failed to write token file", err)
	}
	return nil
}

// Clear removes the token of this host, and the file once it holds no token.
func (f *FileTokenCache) Clear() error {
	tokens, err := f.load()
	if err == nil {
		delete(tokens, f.host)
		if len(tokens) > 0 {
			if err := f.save(tokens); err != nil {
				return gitmanerrors.NewGitHubErrorWithCause("TokenCache.Clear", "failed to write token file", err)
			}
			return nil
		}
	}

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return gitmanerrors.NewGitHubErrorWithCause("TokenCache.Clear", "failed to remove token file", err)
	}
	return nil
}

func (f *FileTokenCache) Location() string {
	return f.path
}

// load returns the stored tokens; a missing file is an empty set.
func (f *FileTokenCache) load() (map[string]storedToken, error) {
	tokens := map[string]storedToken{}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return tokens, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, errors.Wrap(err, "failed to parse token file")
	}
	return tokens, nil
}

func (f *FileTokenCache) save(tokens map[string]storedToken) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	// owner read/write only
	return os.WriteFile(f.path, data, 0o600)
}

func tokenCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "gitman", "github-token.json")
	}
	return filepath.Join(home, ".config", "gitman", "github-token.json")
}
