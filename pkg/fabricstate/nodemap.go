package fabricstate

import (
	"cmp"
	"slices"
)

// NodeMap is the copy-on-write map primitive every sub-map in SwitchState
// (PortMap, VlanMap, InterfaceMap, AclMap, RouteTableMap) is built from.
//
// Per spec §3 ("Lifecycles"): a published NodeMap is never mutated in
// place. Every mutating method returns a new NodeMap; entries that were not
// touched keep their existing pointer identity, so statediff can detect
// "unchanged" in O(1) by comparing pointers rather than deep-equal (spec §3
// "Ownership", §4.7, §8 invariant 2).
type NodeMap[K cmp.Ordered, V any] struct {
	entries    map[K]*V
	generation uint64
}

// NewNodeMap returns an empty, generation-1 map.
func NewNodeMap[K cmp.Ordered, V any]() NodeMap[K, V] {
	return NodeMap[K, V]{entries: map[K]*V{}, generation: 1}
}

// Generation reports the map's generation counter (spec §3, §8 invariant 5).
func (m NodeMap[K, V]) Generation() uint64 { return m.generation }

// Len reports the number of entries.
func (m NodeMap[K, V]) Len() int { return len(m.entries) }

// Get returns the entry's pointer and whether it exists. The pointer is
// shared with whatever NodeMap this one derived from, if unchanged.
func (m NodeMap[K, V]) Get(k K) (*V, bool) {
	v, ok := m.entries[k]
	return v, ok
}

// Set returns a new NodeMap with k bound to v (v's address becomes the new
// child pointer). All other entries keep their existing pointers.
func (m NodeMap[K, V]) Set(k K, v V) NodeMap[K, V] {
	out := m.clone()
	out.entries[k] = &v
	return out
}

// Delete returns a new NodeMap without k. ok reports whether k was present.
func (m NodeMap[K, V]) Delete(k K) (NodeMap[K, V], bool) {
	if _, ok := m.entries[k]; !ok {
		return m, false
	}
	out := m.clone()
	delete(out.entries, k)
	return out, true
}

func (m NodeMap[K, V]) clone() NodeMap[K, V] {
	out := make(map[K]*V, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return NodeMap[K, V]{entries: out, generation: m.generation + 1}
}

// ForEach iterates in ascending key order.
func (m NodeMap[K, V]) ForEach(fn func(K, *V)) {
	for _, k := range m.Keys() {
		fn(k, m.entries[k])
	}
}

// Keys returns the map's keys in ascending order.
func (m NodeMap[K, V]) Keys() []K {
	out := make([]K, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
