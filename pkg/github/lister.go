package github

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
	"thoreinstein.com/gitman/pkg/repo"
)

// Listing is the outcome of one remote listing.
type Listing struct {
	Records []repo.Record
	// Unavailable is set when the API could not be reached; Records is then empty.
	Unavailable error
}

// Lister turns the API listing into remote repository records.
type Lister struct {
	// Client is nil when no credential is configured.
	Client          Client
	Org             string
	Protocol        CloneProtocol
	IncludeArchived bool
	Retry           gitmanerrors.RetryConfig
	Logger          *slog.Logger
}

// List never fails: without a client it returns an empty listing, and a
// failed call is retried while retryable before degrading to an empty
// listing with Unavailable set. Repositories without a name or a clone
// address for the protocol are left out.
func (l *Lister) List(ctx context.Context) Listing {
	if l.Client == nil {
		return Listing{Records: []repo.Record{}}
	}

	retry := l.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = func(attempt int, delay time.Duration, err error) {
			l.logDebug("retrying repository listing", "attempt", attempt, "delay", delay, "error", err)
		}
	}

	repos, err := gitmanerrors.RetryWithResult(ctx, retry, func() ([]Repository, error) {
		return l.Client.ListRepositories(ctx, ListOptions{Org: l.Org})
	})
	if err != nil {
		l.logDebug("remote listing unavailable", "error", err)
		return Listing{Records: []repo.Record{}, Unavailable: err}
	}

	kept := lo.Filter(repos, func(r Repository, _ int) bool {
		return l.IncludeArchived || !r.Archived
	})
	records := lo.FilterMap(kept, func(r Repository, _ int) (repo.Record, bool) {
		rec := repo.NewRemote(r.Name, r.CloneAddress(l.Protocol))
		if err := rec.Validate(); err != nil {
			l.logDebug("dropping unusable repository", "full_name", r.FullName, "error", err)
			return rec, false
		}
		return rec, true
	})

	return Listing{Records: records}
}

func (l *Lister) logDebug(msg string, args ...any) {
	if l.Logger != nil {
		l.Logger.Debug(msg, args...)
	}
}
