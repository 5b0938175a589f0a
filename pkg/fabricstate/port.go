package fabricstate

import (
	"net/netip"

	"github.com/EnterStudios/fabricstated/pkg/addr"
)

// PortID identifies a physical switch port.
type PortID uint32

// Port is a minimal physical-port node. The hardware programming backend
// (out of scope, spec §1) owns everything below "is this port up and in
// which VLAN"; the core only needs enough of a Port to support interface
// attachment and state-delta coverage.
type Port struct {
	ID      PortID
	Name    string
	Enabled bool
	VlanID  VlanID
}

// PortMap is the copy-on-write collection of all physical ports.
type PortMap = NodeMap[PortID, Port]

// AggregatePortID identifies a LAG.
type AggregatePortID uint32

// AggregatePort groups member ports under one logical interface.
type AggregatePort struct {
	ID      AggregatePortID
	Name    string
	Members []PortID
}

// AggregatePortMap is the copy-on-write collection of all LAGs.
type AggregatePortMap = NodeMap[AggregatePortID, AggregatePort]

// VlanID identifies a VLAN.
type VlanID uint16

// Vlan is a broadcast domain with a set of member ports.
type Vlan struct {
	ID      VlanID
	Name    string
	Members []PortID
}

// VlanMap is the copy-on-write collection of all VLANs.
type VlanMap = NodeMap[VlanID, Vlan]

// AclID identifies an access control list.
type AclID uint32

// Acl is a named, ordered list of match/action rules. Rule evaluation
// itself belongs to the hardware programming backend (out of scope,
// spec §1); the core only needs to carry ACL configuration through
// snapshots and diffs.
type Acl struct {
	ID    AclID
	Name  string
	Rules []AclRule
}

// AclRule is one match/action pair within an Acl.
type AclRule struct {
	Priority int
	Match    string
	Action   string
}

// AclMap is the copy-on-write collection of all ACLs.
type AclMap = NodeMap[AclID, Acl]

// InterfaceID identifies a layer-3 interface (re-exported as an alias of
// addr.InterfaceID so route next-hops and interface definitions share one
// identifier space).
type InterfaceID = addr.InterfaceID

// RouterID identifies a VRF (spec GLOSSARY: "VRF / Router ID").
type RouterID uint32

// InterfaceAddress is one address assigned to an Interface.
type InterfaceAddress struct {
	Prefix netip.Prefix
}

// Interface is a layer-3 interface: the routable identity of a VLAN or port
// within a VRF. Spec §6's getInterfaceDetail exposes exactly these fields.
type Interface struct {
	ID        InterfaceID
	Name      string
	VlanID    VlanID
	RouterID  RouterID
	MAC       string
	Addresses []InterfaceAddress
}

// InterfaceMap is the copy-on-write collection of all interfaces.
type InterfaceMap = NodeMap[InterfaceID, Interface]
