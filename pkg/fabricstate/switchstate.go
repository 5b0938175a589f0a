// Package fabricstate implements the copy-on-write switch-state tree
// described in spec §3-§5: PortMap, VlanMap, InterfaceMap, AclMap and
// RouteTableMap composed into one immutable SwitchState snapshot, with a
// coordinator publishing successive generations.
package fabricstate

import "time"

// SwitchState is one immutable, published (or about-to-be-published)
// snapshot of all switch configuration and forwarding state (spec §3).
//
// Every field is either itself copy-on-write (the *Map types) or a plain
// value; SwitchState as a whole is replaced wholesale by With* methods,
// which is the "clone the ancestor chain" part of the COW discipline — the
// sub-maps underneath are only cloned when they themselves changed.
type SwitchState struct {
	Ports           PortMap
	AggregatePorts  AggregatePortMap
	Vlans           VlanMap
	Interfaces      InterfaceMap
	Acls            AclMap
	RouteTables     RouteTableMap
	DefaultVlan     VlanID
	ArpTimeout      time.Duration
	NdpTimeout      time.Duration
	AgerInterval    time.Duration
	MaxNeighborProbes int
	StaleEntryInterval time.Duration
	Generation      uint64
}

// New returns an empty initial SwitchState (generation 1), with ALPM policy
// as given (spec §4.5).
func New(alpmEnabled bool) SwitchState {
	return SwitchState{
		Ports:              NewNodeMap[PortID, Port](),
		AggregatePorts:     NewNodeMap[AggregatePortID, AggregatePort](),
		Vlans:              NewNodeMap[VlanID, Vlan](),
		Interfaces:         NewNodeMap[InterfaceID, Interface](),
		Acls:               NewNodeMap[AclID, Acl](),
		RouteTables:        NewRouteTableMap(alpmEnabled).EnsureDefaults(),
		ArpTimeout:         3 * time.Minute,
		NdpTimeout:         3 * time.Minute,
		AgerInterval:       5 * time.Second,
		MaxNeighborProbes:  3,
		StaleEntryInterval: time.Minute,
		Generation:         1,
	}
}

// bump returns s with Generation incremented; used by every With* method so
// a successor snapshot's root generation always strictly exceeds its
// predecessor's whenever anything below it changed (spec §8 invariant 5).
func (s SwitchState) bump() SwitchState {
	s.Generation++
	return s
}

func (s SwitchState) WithPorts(m PortMap) SwitchState                 { s.Ports = m; return s.bump() }
func (s SwitchState) WithAggregatePorts(m AggregatePortMap) SwitchState { s.AggregatePorts = m; return s.bump() }
func (s SwitchState) WithVlans(m VlanMap) SwitchState                  { s.Vlans = m; return s.bump() }
func (s SwitchState) WithInterfaces(m InterfaceMap) SwitchState        { s.Interfaces = m; return s.bump() }
func (s SwitchState) WithAcls(m AclMap) SwitchState                    { s.Acls = m; return s.bump() }
func (s SwitchState) WithRouteTables(m RouteTableMap) SwitchState      { s.RouteTables = m; return s.bump() }
