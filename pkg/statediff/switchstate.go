package statediff

import (
	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/rib"
)

// SwitchStateDelta is the full set of changes between two published
// SwitchState generations, broken down by sub-map plus a per-VRF route
// delta for each address family (spec §4.7).
type SwitchStateDelta struct {
	Ports          Delta[fabricstate.PortID]
	AggregatePorts Delta[fabricstate.AggregatePortID]
	Vlans          Delta[fabricstate.VlanID]
	Interfaces     Delta[fabricstate.InterfaceID]
	Acls           Delta[fabricstate.AclID]
	VRFs           Delta[fabricstate.RouterID]
	RoutesV4       map[fabricstate.RouterID]RouteDelta[addr.V4]
	RoutesV6       map[fabricstate.RouterID]RouteDelta[addr.V6]
}

// Empty reports whether old and next were identical in every tracked
// respect.
func (d SwitchStateDelta) Empty() bool {
	if !d.Ports.Empty() || !d.AggregatePorts.Empty() || !d.Vlans.Empty() ||
		!d.Interfaces.Empty() || !d.Acls.Empty() || !d.VRFs.Empty() {
		return false
	}
	for _, rd := range d.RoutesV4 {
		if !rd.Empty() {
			return false
		}
	}
	for _, rd := range d.RoutesV6 {
		if !rd.Empty() {
			return false
		}
	}
	return true
}

// DiffSwitchState computes the full delta between two SwitchState
// generations. VRFs present in only one side still get a route delta
// entry (every route showing as Added or Removed), so a caller never has
// to special-case "whole VRF appeared/disappeared".
func DiffSwitchState(old, next fabricstate.SwitchState) SwitchStateDelta {
	d := SwitchStateDelta{
		Ports:          DiffNodeMap(old.Ports, next.Ports),
		AggregatePorts: DiffNodeMap(old.AggregatePorts, next.AggregatePorts),
		Vlans:          DiffNodeMap(old.Vlans, next.Vlans),
		Interfaces:     DiffNodeMap(old.Interfaces, next.Interfaces),
		Acls:           DiffNodeMap(old.Acls, next.Acls),
		VRFs:           DiffNodeMap(old.RouteTables.Tables(), next.RouteTables.Tables()),
		RoutesV4:       map[fabricstate.RouterID]RouteDelta[addr.V4]{},
		RoutesV6:       map[fabricstate.RouterID]RouteDelta[addr.V6]{},
	}

	vrfs := map[fabricstate.RouterID]struct{}{}
	for _, v := range old.RouteTables.VRFs() {
		vrfs[v] = struct{}{}
	}
	for _, v := range next.RouteTables.VRFs() {
		vrfs[v] = struct{}{}
	}
	for vrf := range vrfs {
		oldV4, oldV6 := rib.New[addr.V4](), rib.New[addr.V6]()
		if t, ok := old.RouteTables.Get(vrf); ok {
			oldV4, oldV6 = t.RibV4, t.RibV6
		}
		nextV4, nextV6 := rib.New[addr.V4](), rib.New[addr.V6]()
		if t, ok := next.RouteTables.Get(vrf); ok {
			nextV4, nextV6 = t.RibV4, t.RibV6
		}
		d.RoutesV4[vrf] = DiffRib(oldV4, nextV4)
		d.RoutesV6[vrf] = DiffRib(oldV6, nextV6)
	}
	return d
}
