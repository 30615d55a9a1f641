package repo

import (
	"fmt"
)

// Plan is the batch of actions derived from a selection: local records are
// pulled and remote records are cloned.
type Plan struct {
	Pulls  []Record `json:"pulls" yaml:"pulls"`
	Clones []Record `json:"clones" yaml:"clones"`
}

// NewPlan partitions records by origin, keeping the relative input order
// within each group. Every record lands in exactly one group.
func NewPlan(records []Record) Plan {
	plan := Plan{
		Pulls:  make([]Record, 0, len(records)),
		Clones: make([]Record, 0, len(records)),
	}

	for _, rec := range records {
		switch rec.Origin {
		case OriginLocal:
			plan.Pulls = append(plan.Pulls, rec)
		case OriginRemote:
			plan.Clones = append(plan.Clones, rec)
		default:
			panic(fmt.Sprintf("repo: record %q has unknown origin %d", rec.Name, int(rec.Origin)))
		}
	}

	return plan
}

// Len returns the number of planned actions.
func (p Plan) Len() int {
	return len(p.Pulls) + len(p.Clones)
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return p.Len() == 0
}
