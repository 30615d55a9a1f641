package repo

import (
	"github.com/samber/lo"
)

// Reconcile drops every remote record whose name exactly matches a local
// record's name, so an already cloned repository is not offered again.
// The relative order of the remaining remote records is preserved.
func Reconcile(local, remote []Record) []Record {
	cloned := lo.SliceToMap(local, func(rec Record) (string, struct{}) {
		return rec.Name, struct{}{}
	})

	return lo.Filter(remote, func(rec Record, _ int) bool {
		_, exists := cloned[rec.Name]
		return !exists
	})
}
