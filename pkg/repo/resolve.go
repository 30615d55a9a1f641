package repo

import (
	"strings"
)

// Resolution is the outcome of resolving selected names against an Inventory.
type Resolution struct {
	// Records holds the resolved records in selection order.
	Records []Record
	// Unknown holds selected names that matched neither index.
	Unknown []string
}

// Resolve maps each selected name to its record, preferring the local index
// over the remote one. Names found in neither index are collected in Unknown
// and resolution carries on with the remaining names. Blank names are
// ignored and a name selected twice resolves once.
func Resolve(names []string, inv *Inventory) Resolution {
	res := Resolution{
		Records: make([]Record, 0, len(names)),
	}
	seen := make(map[string]struct{}, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		rec, ok := inv.Lookup(name)
		if !ok {
			res.Unknown = append(res.Unknown, name)
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res
}
