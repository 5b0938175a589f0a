// Package rib implements the longest-prefix-match routing information base
// described in spec §4.4: an ordered container of Route[F] keyed by
// Prefix[F], supporting exact match, longest match, insert/erase and
// ordered iteration for diffing.
//
// It is built directly on the same copy-on-write primitive the teacher uses
// for its own versioned object store (github.com/hashicorp/go-immutable-radix/v2,
// see pkg/statedb/txn.go in the teacher repo): every mutation commits
// against the current tree and produces a fresh root, leaving any reader
// holding the old root completely unaffected.
package rib

import (
	"net/netip"

	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
)

func addrBytes(a netip.Addr) []byte {
	if a.Is4() {
		b := a.As4()
		return b[:]
	}
	b := a.As16()
	return b[:]
}

// Rib is an immutable, generationed longest-prefix-match table for a single
// address family within a single VRF.
type Rib[F addr.Family] struct {
	tree       *iradix.Tree[route.Route[F]]
	generation uint64
}

// New returns an empty RIB.
func New[F addr.Family]() *Rib[F] {
	return &Rib[F]{tree: iradix.New[route.Route[F]](), generation: 1}
}

// Generation reports the RIB's current generation (spec §3, §8 invariant 5).
func (r *Rib[F]) Generation() uint64 { return r.generation }

// Size reports the number of routes.
func (r *Rib[F]) Size() int { return r.tree.Len() }

// ExactMatch returns the route registered for exactly this prefix.
func (r *Rib[F]) ExactMatch(p addr.Prefix[F]) (route.Route[F], bool) {
	return r.tree.Get(prefixKey[F](p))
}

// LongestMatch returns the route whose prefix contains addr with the
// largest mask length. Tie-breaking is unambiguous: two prefixes of equal
// mask length cannot both contain the same address (spec §4.4).
func (r *Rib[F]) LongestMatch(a netip.Addr) (route.Route[F], bool) {
	key := addrKey[F](familyBits[F](), addrBytes(a))
	_, v, ok := r.tree.Root().LongestPrefix(key)
	return v, ok
}

func familyBits[F addr.Family]() int {
	var f F
	return f.Bits()
}

// Insert returns a new RIB with rt registered under its prefix, replacing
// any existing entry. The receiver is unmodified (copy-on-write).
func (r *Rib[F]) Insert(rt route.Route[F]) *Rib[F] {
	newTree, _, _ := r.tree.Insert(prefixKey[F](rt.Prefix()), rt)
	return &Rib[F]{tree: newTree, generation: r.generation + 1}
}

// Erase returns a new RIB with the route at prefix removed. If absent, it
// returns the receiver itself and false.
func (r *Rib[F]) Erase(p addr.Prefix[F]) (*Rib[F], bool) {
	newTree, _, ok := r.tree.Delete(prefixKey[F](p))
	if !ok {
		return r, false
	}
	return &Rib[F]{tree: newTree, generation: r.generation + 1}, true
}

// Iterate calls fn for every route in prefix-key order (shortest/lowest key
// bytes first), stopping early if fn returns false. The order is stable and
// deterministic but is not required by spec §4.4 to be any particular total
// order over (family, mask_len, network) — only that iteration is ordered
// and repeatable, which a radix-tree walk is.
func (r *Rib[F]) Iterate(fn func(route.Route[F]) bool) {
	iter := r.tree.Root().Iterator()
	for {
		_, v, ok := iter.Next()
		if !ok {
			return
		}
		if !fn(v) {
			return
		}
	}
}

// All returns every route as a slice, for tests and diffing.
func (r *Rib[F]) All() []route.Route[F] {
	out := make([]route.Route[F], 0, r.Size())
	r.Iterate(func(rt route.Route[F]) bool {
		out = append(out, rt)
		return true
	})
	return out
}

// Equal reports whether r and o contain the same routes under Route.Equal
// (generation excluded). update_done uses this to decide whether a working
// copy actually changed anything observable, so it can keep publishing the
// base Rib pointer (and its generation) when a pass was a no-op (spec §8
// invariants 2 and 5).
func (r *Rib[F]) Equal(o *Rib[F]) bool {
	if r.Size() != o.Size() {
		return false
	}
	equal := true
	r.Iterate(func(rt route.Route[F]) bool {
		ort, ok := o.ExactMatch(rt.Prefix())
		if !ok || !rt.Equal(ort) {
			equal = false
			return false
		}
		return true
	})
	return equal
}
