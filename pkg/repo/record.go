// Package repo holds the repository data model and the pure planning core:
// reconciling local and remote repositories, resolving user selections and
// partitioning them into pull and clone actions. Nothing here performs I/O.
package repo

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Origin tells where a repository record came from.
type Origin int

const (
	// OriginLocal is a working tree found under the working root.
	OriginLocal Origin = iota
	// OriginRemote is a repository listed by the hosting API and not cloned yet.
	OriginRemote
)

// String implements fmt.Stringer.
func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// MarshalText renders the origin as "local" or "remote" in JSON and YAML output.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Record is a normalized repository, local or remote.
//
// Branch and HasUncommittedChanges are only set for local records and
// CloneAddress only for remote ones. Use NewLocal and NewRemote to build
// records so that invariant holds.
type Record struct {
	Name                  string `json:"name" yaml:"name"`
	Origin                Origin `json:"origin" yaml:"origin"`
	Branch                string `json:"branch,omitempty" yaml:"branch,omitempty"`
	HasUncommittedChanges bool   `json:"has_uncommitted_changes,omitempty" yaml:"has_uncommitted_changes,omitempty"`
	CloneAddress          string `json:"clone_address,omitempty" yaml:"clone_address,omitempty"`
}

// NewLocal creates a record for a working tree under the working root.
func NewLocal(name, branch string, dirty bool) Record {
	return Record{
		Name:                  name,
		Origin:                OriginLocal,
		Branch:                branch,
		HasUncommittedChanges: dirty,
	}
}

// NewRemote creates a record for a repository that can be cloned from cloneAddress.
func NewRemote(name, cloneAddress string) Record {
	return Record{
		Name:         name,
		Origin:       OriginRemote,
		CloneAddress: cloneAddress,
	}
}

// IsLocal reports whether the record describes a local working tree.
func (r Record) IsLocal() bool {
	return r.Origin == OriginLocal
}

// IsRemote reports whether the record describes a remote-only repository.
func (r Record) IsRemote() bool {
	return r.Origin == OriginRemote
}

// Validate checks that the populated fields match the record's origin.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("repository name is empty")
	}
	switch r.Origin {
	case OriginLocal:
		if r.CloneAddress != "" {
			return errors.Newf("local repository %q must not carry a clone address", r.Name)
		}
	case OriginRemote:
		if r.Branch != "" || r.HasUncommittedChanges {
			return errors.Newf("remote repository %q must not carry working tree state", r.Name)
		}
		if r.CloneAddress == "" {
			return errors.Newf("remote repository %q has no clone address", r.Name)
		}
	default:
		return errors.Newf("repository %q has unknown origin %d", r.Name, int(r.Origin))
	}
	return nil
}

// Label is the plain display label, derived from the current fields on
// every call: the name, the branch in parentheses and a warning marker
// for uncommitted changes.
func (r Record) Label() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.Branch != "" {
		fmt.Fprintf(&b, " (%s)", r.Branch)
	}
	if r.HasUncommittedChanges {
		b.WriteString(" ! uncommitted changes")
	}
	return b.String()
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return r.Label()
}
