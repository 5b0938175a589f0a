package fabricstate

import (
	"fmt"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
)

// RouteTableMap hosts one RouteTable per VRF (spec §3, §4.5).
//
// When AlpmEnabled is true, EnsureDefaults guarantees 0.0.0.0/0 and ::/0
// with action Drop exist in the default VRF — callers (the resolver, after
// every update_done) call EnsureDefaults so that deleting the synthetic
// default route is always observably reverted, matching spec §4.5's
// "if user code deletes it, the map re-inserts the synthetic default".
type RouteTableMap struct {
	tables      NodeMap[RouterID, RouteTable]
	AlpmEnabled bool
}

// NewRouteTableMap returns an empty map with the given ALPM policy.
func NewRouteTableMap(alpmEnabled bool) RouteTableMap {
	return RouteTableMap{tables: NewNodeMap[RouterID, RouteTable](), AlpmEnabled: alpmEnabled}
}

// Generation reports the map's generation counter.
func (m RouteTableMap) Generation() uint64 { return m.tables.Generation() }

// Get returns the route table for vrf, if present.
func (m RouteTableMap) Get(vrf RouterID) (*RouteTable, bool) {
	return m.tables.Get(vrf)
}

// Set returns a new map with vrf's table replaced.
func (m RouteTableMap) Set(vrf RouterID, t RouteTable) RouteTableMap {
	m.tables = m.tables.Set(vrf, t)
	return m
}

// Delete returns a new map without vrf.
func (m RouteTableMap) Delete(vrf RouterID) (RouteTableMap, bool) {
	tables, ok := m.tables.Delete(vrf)
	m.tables = tables
	return m, ok
}

// VRFs returns the known VRF ids in deterministic order.
func (m RouteTableMap) VRFs() []RouterID {
	return m.tables.Keys()
}

// Equal reports whether m and o carry the same routes in every VRF, under
// Rib.Equal (which ignores Generation). Used by the resolver and coordinator
// to decide whether a transaction actually changed anything observable
// (spec §4.6 "Determinism and de-duplication", §8 invariant 3).
func (m RouteTableMap) Equal(o RouteTableMap) bool {
	seen := map[RouterID]struct{}{}
	for _, vrf := range m.VRFs() {
		seen[vrf] = struct{}{}
	}
	for _, vrf := range o.VRFs() {
		seen[vrf] = struct{}{}
	}
	for vrf := range seen {
		mt, mok := m.Get(vrf)
		ot, ook := o.Get(vrf)
		if mok != ook {
			return false
		}
		if !mok {
			continue
		}
		if !mt.RibV4.Equal(ot.RibV4) || !mt.RibV6.Equal(ot.RibV6) {
			return false
		}
	}
	return true
}

// Tables exposes the underlying NodeMap for statediff's pointer-identity
// comparison; RouteTableMap otherwise keeps it private so every mutation
// goes through Set/Delete/EnsureDefaults.
func (m RouteTableMap) Tables() NodeMap[RouterID, RouteTable] {
	return m.tables
}

// EnsureDefaults re-synthesizes the ALPM default routes in the default VRF
// if AlpmEnabled and they are missing, creating the default VRF itself if
// necessary (spec §4.5, §8 invariant 7).
func (m RouteTableMap) EnsureDefaults() RouteTableMap {
	if !m.AlpmEnabled {
		return m
	}
	t, ok := m.Get(DefaultRouterID)
	table := NewRouteTable(DefaultRouterID)
	if ok {
		table = *t
	}
	changed := false
	if _, found := table.RibV4.ExactMatch(V4DefaultPrefix); !found {
		r := route.NewRoute[addr.V4](V4DefaultPrefix)
		r = r.ResolveTo(route.DropForwardInfo(), false)
		table.RibV4 = table.RibV4.Insert(r)
		changed = true
	}
	if _, found := table.RibV6.ExactMatch(V6DefaultPrefix); !found {
		r := route.NewRoute[addr.V6](V6DefaultPrefix)
		r = r.ResolveTo(route.DropForwardInfo(), false)
		table.RibV6 = table.RibV6.Insert(r)
		changed = true
	}
	if !changed {
		// Nothing to synthesize: return m unchanged so its generation and
		// node identity are preserved (spec §3 "Ownership", §8 invariant 2)
		// instead of bumping on every call regardless of effect.
		return m
	}
	return m.Set(DefaultRouterID, table)
}

// ToWire renders every VRF's route table under the "routeTables" key (spec
// §6).
func (m RouteTableMap) ToWire() any {
	out := make(map[string]any, m.tables.Len())
	m.tables.ForEach(func(k RouterID, v *RouteTable) {
		out[fmt.Sprintf("%d", k)] = v.ToWire()
	})
	return out
}

// RouteTableMapFromWire parses the representation produced by ToWire,
// re-synthesizing the ALPM default routes per alpmEnabled (spec §4.5, §8
// invariant 7 — warm-boot restore must not skip that guarantee).
func RouteTableMapFromWire(v any, alpmEnabled bool) (RouteTableMap, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return RouteTableMap{}, fmt.Errorf("%w: malformed route table map", addr.ErrInvalidInput)
	}
	m := NewRouteTableMap(alpmEnabled)
	for k, val := range raw {
		var vrf uint32
		if _, err := fmt.Sscanf(k, "%d", &vrf); err != nil {
			return RouteTableMap{}, fmt.Errorf("%w: malformed vrf id %q", addr.ErrInvalidInput, k)
		}
		table, err := RouteTableFromWire(val)
		if err != nil {
			return RouteTableMap{}, err
		}
		m = m.Set(RouterID(vrf), table)
	}
	return m.EnsureDefaults(), nil
}
