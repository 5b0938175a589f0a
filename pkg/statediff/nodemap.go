// Package statediff computes the Added/Removed/Changed delta between two
// generations of fabricstate's copy-on-write collections (spec §4.7 "State
// delta"), grounded on the teacher's pkg/bgpv1/manager diff-store pattern
// (Diff() returning upserted/deleted slices) — generalized here to also
// report Changed, and to lean on NodeMap's pointer-per-entry structural
// sharing for an O(unchanged) unchanged check instead of a deep-equal scan.
package statediff

import (
	"cmp"
	"slices"

	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
)

// Delta reports which keys were added, removed, or changed between two
// NodeMap generations.
type Delta[K cmp.Ordered] struct {
	Added   []K
	Removed []K
	Changed []K
}

// Empty reports whether the delta carries no differences at all.
func (d Delta[K]) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffNodeMap compares old and next, detecting unchanged entries by pointer
// identity: an entry NodeMap.Set never touched keeps the exact *V it had in
// old, so "unchanged" is a pointer comparison rather than a deep equality
// check (spec §3 "Ownership": "lets statediff detect unchanged in O(1)").
func DiffNodeMap[K cmp.Ordered, V any](old, next fabricstate.NodeMap[K, V]) Delta[K] {
	var d Delta[K]
	remaining := make(map[K]*V, old.Len())
	old.ForEach(func(k K, v *V) { remaining[k] = v })

	next.ForEach(func(k K, nv *V) {
		ov, existed := remaining[k]
		if !existed {
			d.Added = append(d.Added, k)
			return
		}
		if ov != nv {
			d.Changed = append(d.Changed, k)
		}
		delete(remaining, k)
	})
	for k := range remaining {
		d.Removed = append(d.Removed, k)
	}

	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.Sort(d.Changed)
	return d
}
