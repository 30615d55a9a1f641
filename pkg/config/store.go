package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

const (
	// DirectoryStoreFile is the per-folder store kept in the working root.
	DirectoryStoreFile = ".gitman.toml"

	// Keys persisted by the stores.
	KeySelectedRepos = "selected_repos"
	KeyScope         = "type"
	KeyOrg           = "github.org"
	KeySetupComplete = "setup_complete"
	KeyManageRemote  = "github.manage_remote"
)

// Scope selects whose repositories a folder manages.
type Scope string

const (
	ScopePersonal Scope = "personal"
	ScopeOrg      Scope = "org"
)

// Store is a key/value store persisted as a single TOML file. gitman keeps
// one global store and one per working folder.
type Store struct {
	path string
	v    *viper.Viper
}

// GlobalStorePath returns ~/.config/gitman/config.toml.
func GlobalStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".config", "gitman", "config.toml"), nil
}

// DirectoryStorePath returns the folder store path for root.
func DirectoryStorePath(root string) string {
	return filepath.Join(root, DirectoryStoreFile)
}

// OpenStore loads the store at path. A missing file yields an empty store.
func OpenStore(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, gitmanerrors.NewConfigErrorWithCause(path, "cannot parse stored settings", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, gitmanerrors.NewConfigErrorWithCause(path, "cannot read stored settings", err)
	}

	return &Store{path: path, v: v}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the backing file exists.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Get returns the raw value stored under key.
func (s *Store) Get(key string) any {
	return s.v.Get(key)
}

// GetString returns the value under key as a string.
func (s *Store) GetString(key string) string {
	return s.v.GetString(key)
}

// GetBool returns the value under key as a bool.
func (s *Store) GetBool(key string) bool {
	return s.v.GetBool(key)
}

// Has reports whether key holds a value.
func (s *Store) Has(key string) bool {
	return s.v.IsSet(key)
}

// Set stores value under key. Call Save to persist it.
func (s *Store) Set(key string, value any) {
	s.v.Set(key, value)
}

// Save writes every stored value to the backing file.
func (s *Store) Save() error {
	data, err := toml.Marshal(s.v.AllSettings())
	if err != nil {
		return gitmanerrors.NewConfigErrorWithCause(s.path, "cannot encode settings", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return gitmanerrors.NewConfigErrorWithCause(s.path, "cannot create config directory", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return gitmanerrors.NewConfigErrorWithCause(s.path, "cannot write settings", err)
	}
	return nil
}

// Clear removes every value and deletes the backing file.
func (s *Store) Clear() error {
	s.v = viper.New()
	s.v.SetConfigFile(s.path)
	s.v.SetConfigType("toml")

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return gitmanerrors.NewConfigErrorWithCause(s.path, "cannot remove settings", err)
	}
	return nil
}

// SelectedRepos returns the saved selection, split from its comma-separated form.
func (s *Store) SelectedRepos() []string {
	raw := s.v.GetString(KeySelectedRepos)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// SetSelectedRepos saves names as a comma-separated list.
func (s *Store) SetSelectedRepos(names []string) {
	s.v.Set(KeySelectedRepos, strings.Join(names, ","))
}

// Org returns the organization scope, or "" for personal scope.
func (s *Store) Org() string {
	return s.v.GetString(KeyOrg)
}

// SetOrg sets the organization scope; an empty org selects personal scope.
func (s *Store) SetOrg(org string) {
	if org == "" {
		s.v.Set(KeyScope, string(ScopePersonal))
		s.v.Set(KeyOrg, "")
		return
	}
	s.v.Set(KeyScope, string(ScopeOrg))
	s.v.Set(KeyOrg, org)
}

// Scope returns the configured scope, or "" when the folder was never set up.
func (s *Store) Scope() Scope {
	return Scope(s.v.GetString(KeyScope))
}
