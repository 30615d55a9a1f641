package discovery

import (
	"time"

	"thoreinstein.com/gitman/pkg/git"
	"thoreinstein.com/gitman/pkg/repo"
)

// DefaultConcurrency bounds the number of concurrent status queries.
const DefaultConcurrency = 8

// StatusQuerier reads the working tree status of one repository.
type StatusQuerier interface {
	Status(path string) (git.Status, error)
}

// Failure records a candidate that was excluded because its status could not be read.
type Failure struct {
	Name string
	Path string
	Err  error
}

// Result represents the result of a discovery scan
type Result struct {
	Records  []repo.Record // Local repositories, sorted by name
	Failures []Failure     // Candidates whose status query failed
	Scanned  int           // Number of entries examined
	Duration time.Duration // Time taken to scan
}
