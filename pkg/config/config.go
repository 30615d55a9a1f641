package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	GitHub    GitHubConfig    `mapstructure:"github"`
	Git       GitConfig       `mapstructure:"git"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
}

// GitHubConfig holds GitHub integration configuration
type GitHubConfig struct {
	AuthMethod      string `mapstructure:"auth_method"`      // "token" or "oauth"
	ClientID        string `mapstructure:"client_id"`        // OAuth app client ID (for device flow)
	Token           string `mapstructure:"token"`            // GITMAN_GITHUB_TOKEN env var takes precedence
	TokenCachePath  string `mapstructure:"token_cache_path"` // File fallback when no keychain is available
	CloneProtocol   string `mapstructure:"clone_protocol"`   // "ssh" or "https"
	IncludeArchived bool   `mapstructure:"include_archived"`
	BaseURL         string `mapstructure:"base_url"` // API base for GitHub Enterprise; empty means github.com
	Org             string `mapstructure:"org"`      // Organization scope, usually set per folder
	ManageRemote    bool   `mapstructure:"manage_remote"`
}

// GitConfig holds git behaviour settings
type GitConfig struct {
	PullFastForwardOnly bool `mapstructure:"pull_ff_only"`
}

// DiscoveryConfig holds local repository discovery settings
type DiscoveryConfig struct {
	Exclude     []string `mapstructure:"exclude"`     // doublestar patterns matched against directory names
	Concurrency int      `mapstructure:"concurrency"` // Concurrent status queries
}

// SecurityWarning represents a configuration security issue
type SecurityWarning struct {
	Field   string
	Message string
}

// Supported values for enumerated settings.
var (
	ValidAuthMethods    = []string{"token", "oauth"}
	ValidCloneProtocols = []string{"ssh", "https"}
)

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	config := &Config{}

	setDefaults()

	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := expandPaths(config); err != nil {
		return nil, errors.Wrap(err, "failed to expand paths")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return config, nil
}

// CheckSecurityWarnings returns warnings for insecure configuration practices.
func CheckSecurityWarnings(config *Config) []SecurityWarning {
	var warnings []SecurityWarning

	if config.GitHub.Token != "" && os.Getenv("GITMAN_GITHUB_TOKEN") == "" && os.Getenv("GITHUB_TOKEN") == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "github.token",
			Message: "GitHub token is set in config file. For security, use 'gitman --set-token' or the GITHUB_TOKEN environment variable instead.",
		})
	}

	return warnings
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	if !slices.Contains(ValidAuthMethods, c.GitHub.AuthMethod) {
		return gitmanerrors.NewConfigError("github.auth_method", "must be one of: token, oauth")
	}
	if !slices.Contains(ValidCloneProtocols, c.GitHub.CloneProtocol) {
		return gitmanerrors.NewConfigError("github.clone_protocol", "must be one of: ssh, https")
	}
	if c.Discovery.Concurrency < 1 {
		return gitmanerrors.NewConfigError("discovery.concurrency", "must be at least 1")
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// GitHub defaults
	viper.SetDefault("github.auth_method", "token")
	viper.SetDefault("github.client_id", "")
	viper.SetDefault("github.token", "")
	viper.SetDefault("github.token_cache_path", filepath.Join("~", ".config", "gitman", "github-token.json"))
	viper.SetDefault("github.clone_protocol", "ssh")
	viper.SetDefault("github.include_archived", false)
	viper.SetDefault("github.base_url", "")
	viper.SetDefault("github.org", "")
	viper.SetDefault("github.manage_remote", true)

	// Git defaults: plain pull lets git apply the user's own pull.rebase setting
	viper.SetDefault("git.pull_ff_only", false)

	// Discovery defaults
	viper.SetDefault("discovery.exclude", []string{})
	viper.SetDefault("discovery.concurrency", 8)
}

// expandPaths expands ~ in paths
func expandPaths(config *Config) error {
	var err error

	config.GitHub.TokenCachePath, err = expandPath(config.GitHub.TokenCachePath)
	if err != nil {
		return err
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, path[1:]), nil
}
