package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	if Is(err, ErrNoCredential) {
		return formatNoCredential()
	}

	var configErr *ConfigError
	if As(err, &configErr) {
		return formatConfigError(configErr)
	}

	var ghErr *GitHubError
	if As(err, &ghErr) {
		return formatGitHubError(ghErr)
	}

	var gitErr *GitError
	if As(err, &gitErr) {
		return formatGitError(gitErr)
	}

	var discErr *DiscoveryError
	if As(err, &discErr) {
		return formatDiscoveryError(discErr)
	}

	// Default: return the error message as-is
	return err.Error()
}

func formatNoCredential() string {
	var b strings.Builder
	b.WriteString("No GitHub credential is configured.\n")
	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Create a token at https://github.com/settings/tokens\n")
	b.WriteString("  • Run 'gitman --set-token <token>' to save it\n")
	b.WriteString("  • Or set the GITMAN_GITHUB_TOKEN environment variable\n")
	return b.String()
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your config file: ~/.config/gitman/config.toml\n")
	b.WriteString("  • Check the folder config: .gitman.toml\n")
	b.WriteString("  • Run 'gitman reset' to start over in this folder\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatGitHubError formats a GitHubError with actionable guidance based on status code.
func formatGitHubError(err *GitHubError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "GitHub error during %s: %s\n", err.Operation, err.Message)

	switch err.StatusCode {
	case 401:
		b.WriteString("\nAuthentication failed. To fix this:\n")
		b.WriteString("  • Create a new token at https://github.com/settings/tokens\n")
		b.WriteString("  • Run 'gitman --set-token <token>' to save it\n")
		b.WriteString("  • To clear the current token, run 'gitman --clear-token'\n")

	case 403:
		b.WriteString("\nPermission denied. To fix this:\n")
		b.WriteString("  • Check that your token has the 'repo' and 'read:org' scopes\n")
		b.WriteString("  • If using SSO, ensure the token is authorized for your organization\n")

	case 404:
		b.WriteString("\nResource not found. To fix this:\n")
		b.WriteString("  • Verify the organization name stored in .gitman.toml\n")
		b.WriteString("  • Check that you are still a member of the organization\n")

	case 429:
		b.WriteString("\nRate limit exceeded. To fix this:\n")
		b.WriteString("  • Wait a few minutes before retrying\n")

	case 500, 502, 503, 504:
		b.WriteString("\nGitHub server error. To fix this:\n")
		b.WriteString("  • Wait a few moments and try again\n")
		b.WriteString("  • Check GitHub Status: https://www.githubstatus.com\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatGitError formats a GitError.
func formatGitError(err *GitError) string {
	var b strings.Builder

	if err.Repo != "" {
		fmt.Fprintf(&b, "git %s failed for %s: %s\n", err.Operation, err.Repo, err.Message)
	} else {
		fmt.Fprintf(&b, "git %s failed: %s\n", err.Operation, err.Message)
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatDiscoveryError formats a DiscoveryError with actionable guidance.
func formatDiscoveryError(err *DiscoveryError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Could not scan %s: %s\n", err.Path, err.Message)
	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check that the folder exists and is readable\n")
	b.WriteString("  • Pass a different folder with --dir\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}
