package statediff

import (
	"sort"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
	"github.com/EnterStudios/fabricstated/pkg/rib"
)

// RouteDelta reports which prefixes were added, removed, or changed between
// two Rib generations for one family within one VRF.
type RouteDelta[F addr.Family] struct {
	Added   []addr.Prefix[F]
	Removed []addr.Prefix[F]
	Changed []addr.Prefix[F]
}

// Empty reports whether the delta carries no differences at all.
func (d RouteDelta[F]) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffRib compares old and next route-by-route using route.Route.Equal,
// which (spec §4.6 "Determinism and de-duplication") ignores Generation —
// so a route that update_done rewrote without changing anything observable
// doesn't show up as Changed.
func DiffRib[F addr.Family](old, next *rib.Rib[F]) RouteDelta[F] {
	var d RouteDelta[F]
	remaining := make(map[addr.Prefix[F]]route.Route[F], old.Size())
	for _, rt := range old.All() {
		remaining[rt.Prefix()] = rt
	}

	for _, rt := range next.All() {
		ort, existed := remaining[rt.Prefix()]
		if !existed {
			d.Added = append(d.Added, rt.Prefix())
			continue
		}
		if !rt.Equal(ort) {
			d.Changed = append(d.Changed, rt.Prefix())
		}
		delete(remaining, rt.Prefix())
	}
	for p := range remaining {
		d.Removed = append(d.Removed, p)
	}

	sortPrefixes(d.Added)
	sortPrefixes(d.Removed)
	sortPrefixes(d.Changed)
	return d
}

func sortPrefixes[F addr.Family](ps []addr.Prefix[F]) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Compare(ps[j]) < 0 })
}
