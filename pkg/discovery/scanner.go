// Package discovery finds the git working trees directly under a root
// directory and reads their status.
package discovery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
	"thoreinstein.com/gitman/pkg/git"
	"thoreinstein.com/gitman/pkg/repo"
)

// Scanner scans the immediate subdirectories of Root for git working trees.
type Scanner struct {
	Root        string
	Exclude     []string // doublestar patterns matched against entry names
	Concurrency int
	Status      StatusQuerier
	Logger      *slog.Logger
}

// NewScanner creates a scanner with the default concurrency.
func NewScanner(root string, status StatusQuerier) *Scanner {
	return &Scanner{
		Root:        root,
		Concurrency: DefaultConcurrency,
		Status:      status,
	}
}

type candidate struct {
	name string
	path string
}

// Scan lists Root one level deep and queries the status of every working
// tree concurrently. Only an unreadable root is fatal; a failing status
// query drops that candidate and is recorded in Result.Failures.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()

	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, gitmanerrors.NewDiscoveryErrorWithCause(s.Root, "cannot read directory", err)
	}

	var candidates []candidate
	for _, entry := range entries {
		if s.excluded(entry.Name()) {
			s.logDebug("excluded", "name", entry.Name())
			continue
		}
		path := filepath.Join(s.Root, entry.Name())
		if !isDir(entry, path) {
			continue
		}
		if !git.IsWorkingTree(path) {
			continue
		}
		candidates = append(candidates, candidate{name: entry.Name(), path: path})
	}

	records := make([]*repo.Record, len(candidates))
	failures := make([]*Failure, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			status, err := s.Status.Status(c.path)
			if err != nil {
				s.logDebug("status query failed", "name", c.name, "error", err)
				failures[i] = &Failure{Name: c.name, Path: c.path, Err: err}
				return nil
			}
			rec := repo.NewLocal(c.name, status.Branch, status.Dirty())
			records[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Records:  make([]repo.Record, 0, len(candidates)),
		Scanned:  len(entries),
		Duration: time.Since(start),
	}
	for i := range candidates {
		if records[i] != nil {
			result.Records = append(result.Records, *records[i])
		}
		if failures[i] != nil {
			result.Failures = append(result.Failures, *failures[i])
		}
	}
	sort.SliceStable(result.Records, func(a, b int) bool {
		return result.Records[a].Name < result.Records[b].Name
	})

	s.logDebug("scan complete",
		"root", s.Root,
		"repositories", len(result.Records),
		"failures", len(result.Failures),
		"duration", result.Duration)

	return result, nil
}

func (s *Scanner) excluded(name string) bool {
	for _, pattern := range s.Exclude {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *Scanner) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return DefaultConcurrency
}

// isDir follows symlinks so a linked checkout is treated like a directory.
func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (s *Scanner) logDebug(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Debug(msg, args...)
	}
}
