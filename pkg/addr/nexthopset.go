package addr

import (
	"fmt"
	"sort"
)

// NextHopSet is a set of NextHop, compared by membership rather than by
// insertion order.
type NextHopSet struct {
	members map[nhKey]NextHop
}

type nhKey struct {
	addr   [16]byte
	zone   string
	ifID   InterfaceID
	scoped bool
}

func keyOf(n NextHop) nhKey {
	return nhKey{addr: n.Address.As16(), zone: n.Address.Zone(), ifID: n.InterfaceID, scoped: n.scoped}
}

// NewNextHopSet builds a set from the given next-hops, deduplicating.
func NewNextHopSet(hops ...NextHop) NextHopSet {
	s := NextHopSet{members: make(map[nhKey]NextHop, len(hops))}
	for _, h := range hops {
		s.members[keyOf(h)] = h
	}
	return s
}

// Len reports the number of distinct next-hops.
func (s NextHopSet) Len() int { return len(s.members) }

// Empty reports whether the set has no members.
func (s NextHopSet) Empty() bool { return len(s.members) == 0 }

// Add inserts a next-hop into the set, returning a new set (sets are treated
// as immutable value types by convention, matching Route's copy-on-write
// discipline).
func (s NextHopSet) Add(n NextHop) NextHopSet {
	out := s.clone()
	out.members[keyOf(n)] = n
	return out
}

func (s NextHopSet) clone() NextHopSet {
	out := NextHopSet{members: make(map[nhKey]NextHop, len(s.members))}
	for k, v := range s.members {
		out.members[k] = v
	}
	return out
}

// Contains reports membership.
func (s NextHopSet) Contains(n NextHop) bool {
	_, ok := s.members[keyOf(n)]
	return ok
}

// Equal is order-insensitive set equality.
func (s NextHopSet) Equal(o NextHopSet) bool {
	if len(s.members) != len(o.members) {
		return false
	}
	for k, v := range s.members {
		ov, ok := o.members[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Slice returns the members in a deterministic order (sorted by string
// form), used for iteration, wire encoding and diagnostics.
func (s NextHopSet) Slice() []NextHop {
	out := make([]NextHop, 0, len(s.members))
	for _, v := range s.members {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Union returns the set containing members of both s and o.
func (s NextHopSet) Union(o NextHopSet) NextHopSet {
	out := s.clone()
	for k, v := range o.members {
		out.members[k] = v
	}
	return out
}

// ToWire renders the set as a JSON-friendly slice.
func (s NextHopSet) ToWire() any {
	hops := s.Slice()
	wire := make([]any, 0, len(hops))
	for _, h := range hops {
		wire = append(wire, h.ToWire())
	}
	return wire
}

// NextHopSetFromWire parses the representation produced by ToWire.
func NextHopSetFromWire(v any) (NextHopSet, error) {
	raw, ok := v.([]any)
	if !ok {
		return NextHopSet{}, fmt.Errorf("%w: malformed next-hop set", ErrInvalidInput)
	}
	out := NewNextHopSet()
	for _, item := range raw {
		nh, err := NextHopFromWire(item)
		if err != nil {
			return NextHopSet{}, err
		}
		out = out.Add(nh)
	}
	return out, nil
}
