// Package errors provides typed errors for gitman.
//
// This package defines domain-specific error types that carry structured
// information for each subsystem (config, GitHub, git, discovery).
// All error types implement the standard error interface and support
// errors.Is() and errors.As() from the standard library and cockroachdb/errors.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNoCredential is returned when no GitHub token could be resolved.
// Remote listing treats it as "remote management disabled", not as a failure.
var ErrNoCredential = errors.New("no GitHub credential configured")

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string // Which config field has the issue
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// GitHubError represents GitHub API errors.
type GitHubError struct {
	Operation  string // e.g., "ListRepositories", "ListOrgMemberships"
	StatusCode int    // HTTP status code if applicable
	Message    string
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *GitHubError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("github %s failed (HTTP %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *GitHubError) Unwrap() error {
	return e.Cause
}

// NewGitHubError creates a new GitHubError.
func NewGitHubError(operation, message string) *GitHubError {
	return &GitHubError{Operation: operation, Message: message}
}

// NewGitHubErrorWithStatus creates a new GitHubError with HTTP status code.
func NewGitHubErrorWithStatus(operation string, statusCode int, message string) *GitHubError {
	return &GitHubError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  isRetryableHTTPStatus(statusCode),
	}
}

// NewGitHubErrorWithCause creates a new GitHubError with an underlying cause.
func NewGitHubErrorWithCause(operation, message string, cause error) *GitHubError {
	return &GitHubError{
		Operation: operation,
		Message:   message,
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// GitError represents a failed git invocation against one repository.
type GitError struct {
	Operation string // e.g., "pull", "clone", "status"
	Repo      string // Repository name or path
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *GitError) Error() string {
	if e.Repo != "" {
		return fmt.Sprintf("git %s for %s failed: %s", e.Operation, e.Repo, e.Message)
	}
	return fmt.Sprintf("git %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *GitError) Unwrap() error {
	return e.Cause
}

// NewGitError creates a new GitError.
func NewGitError(operation, repo, message string) *GitError {
	return &GitError{Operation: operation, Repo: repo, Message: message}
}

// NewGitErrorWithCause creates a new GitError with an underlying cause.
func NewGitErrorWithCause(operation, repo, message string, cause error) *GitError {
	return &GitError{Operation: operation, Repo: repo, Message: message, Cause: cause}
}

// DiscoveryError represents a failure to read the working root or a candidate.
type DiscoveryError struct {
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("discovery of %s failed: %s", e.Path, e.Message)
	}
	return "discovery failed: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

// NewDiscoveryErrorWithCause creates a new DiscoveryError with an underlying cause.
func NewDiscoveryErrorWithCause(path, message string, cause error) *DiscoveryError {
	return &DiscoveryError{Path: path, Message: message, Cause: cause}
}

// IsRetryable checks if an error or any error in its chain is retryable.
// Only GitHub errors carry retry information; git and discovery failures
// are never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		return ghErr.Retryable
	}

	return false
}

// IsGitError checks if an error or any error in its chain is a GitError.
func IsGitError(err error) bool {
	var gitErr *GitError
	return errors.As(err, &gitErr)
}

// IsDiscoveryError checks if an error or any error in its chain is a DiscoveryError.
func IsDiscoveryError(err error) bool {
	var discErr *DiscoveryError
	return errors.As(err, &discErr)
}

// isRetryableHTTPStatus returns true for HTTP status codes that are typically retryable.
func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}

// Re-export commonly used functions from cockroachdb/errors for convenience.
// This allows consumers to use gmerrors.Wrap() instead of importing two packages.
var (
	// New creates a new error with the given message.
	New = errors.New

	// Newf creates a new error with formatted message.
	Newf = errors.Newf

	// Wrap wraps an error with additional context.
	Wrap = errors.Wrap

	// Wrapf wraps an error with formatted additional context.
	Wrapf = errors.Wrapf

	// Is reports whether any error in err's chain matches target.
	Is = errors.Is

	// As finds the first error in err's chain that matches target.
	As = errors.As

	// Cause returns the root cause of an error.
	Cause = errors.Cause
)
