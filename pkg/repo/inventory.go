package repo

import (
	"github.com/samber/lo"
)

// Inventory is the per-run discovery state: the local and remote listings
// plus the two name indices used to resolve selections.
//
// An Inventory is built once from complete listings and never mutated
// afterwards, so it can be read from any goroutine without locking.
type Inventory struct {
	local  []Record
	remote []Record

	localByName  map[string]Record
	remoteByName map[string]Record
}

// NewInventory indexes the given listings. The remote index covers the full
// remote listing, while Remote() only returns the reconciled subset.
func NewInventory(local, remote []Record) *Inventory {
	return &Inventory{
		local:        local,
		remote:       Reconcile(local, remote),
		localByName:  indexByName(local),
		remoteByName: indexByName(remote),
	}
}

// Local returns the local records in discovery order.
func (inv *Inventory) Local() []Record {
	return inv.local
}

// Remote returns the remote records that are not cloned locally yet.
func (inv *Inventory) Remote() []Record {
	return inv.remote
}

// LocalByName returns the local record registered under name.
func (inv *Inventory) LocalByName(name string) (Record, bool) {
	rec, ok := inv.localByName[name]
	return rec, ok
}

// RemoteByName returns the remote record registered under name, including
// remote records that reconciliation hid because a local clone exists.
func (inv *Inventory) RemoteByName(name string) (Record, bool) {
	rec, ok := inv.remoteByName[name]
	return rec, ok
}

// Lookup resolves name against the local index first, then the remote one.
func (inv *Inventory) Lookup(name string) (Record, bool) {
	if rec, ok := inv.LocalByName(name); ok {
		return rec, true
	}
	return inv.RemoteByName(name)
}

// Len returns the number of selectable records.
func (inv *Inventory) Len() int {
	return len(inv.local) + len(inv.remote)
}

// indexByName keeps the first record for a duplicated name.
func indexByName(records []Record) map[string]Record {
	index := make(map[string]Record, len(records))
	for _, rec := range records {
		if _, exists := index[rec.Name]; !exists {
			index[rec.Name] = rec
		}
	}
	return index
}

// Names returns the record names in order.
func Names(records []Record) []string {
	return lo.Map(records, func(rec Record, _ int) string {
		return rec.Name
	})
}
