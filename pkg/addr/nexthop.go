package addr

import (
	"fmt"
	"net/netip"
)

// InterfaceID identifies a switch interface (port, VLAN interface, LAG).
type InterfaceID uint32

// NextHop is a single next-hop candidate: an address, optionally scoped to
// the interface it must be reached through.
//
// Invariant: InterfaceID is only meaningful (and only permitted) when
// Address is link-local (169.254.0.0/16 for IPv4, fe80::/10 for IPv6) —
// link-local addresses are not globally routable, so resolving one requires
// knowing which interface's link it lives on.
type NextHop struct {
	Address     netip.Addr
	InterfaceID InterfaceID
	scoped      bool
}

// NewNextHop constructs an unscoped NextHop, checking only that the address
// is valid. NewScopedNextHop constructs an interface-scoped one.
func NewNextHop(a netip.Addr) (NextHop, error) {
	if !a.IsValid() {
		return NextHop{}, fmt.Errorf("%w: invalid next-hop address", ErrInvalidInput)
	}
	return NextHop{Address: a}, nil
}

// NewScopedNextHop constructs a next-hop scoped to an egress interface. It
// fails unless a is link-local, per the data-model invariant in spec §3.
func NewScopedNextHop(a netip.Addr, ifID InterfaceID) (NextHop, error) {
	if !a.IsValid() {
		return NextHop{}, fmt.Errorf("%w: invalid next-hop address", ErrInvalidInput)
	}
	if !a.IsLinkLocalUnicast() {
		return NextHop{}, fmt.Errorf("%w: interface scoping is only permitted for link-local next-hops, got %s", ErrInvalidInput, a)
	}
	return NextHop{Address: a, InterfaceID: ifID, scoped: true}, nil
}

// HasInterface reports whether this next-hop carries interface scoping.
func (n NextHop) HasInterface() bool { return n.scoped }

// Equal compares address and, when present, interface scoping.
func (n NextHop) Equal(o NextHop) bool {
	return n.Address == o.Address && n.scoped == o.scoped && (!n.scoped || n.InterfaceID == o.InterfaceID)
}

func (n NextHop) String() string {
	if n.scoped {
		return fmt.Sprintf("%s@if%d", n.Address, n.InterfaceID)
	}
	return n.Address.String()
}

// ToWire renders the next-hop for warm-boot serialization, in the same
// map[string]any shape every other ToWire in the package uses (spec §6).
func (n NextHop) ToWire() any {
	w := map[string]any{"address": n.Address.String()}
	if n.scoped {
		w["interfaceId"] = uint32(n.InterfaceID)
	}
	return w
}

// NextHopFromWire parses the wire representation produced by ToWire,
// re-validating the interface-scoping invariant (spec §3: "violating this on
// deserialization is an error").
func NextHopFromWire(v any) (NextHop, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return NextHop{}, fmt.Errorf("%w: malformed next-hop", ErrInvalidInput)
	}
	addrStr, _ := m["address"].(string)
	a, err := netip.ParseAddr(addrStr)
	if err != nil {
		return NextHop{}, fmt.Errorf("%w: next-hop address %q: %v", ErrInvalidInput, addrStr, err)
	}
	if raw, ok := m["interfaceId"]; ok && raw != nil {
		idFloat, ok := raw.(float64)
		if !ok {
			return NextHop{}, fmt.Errorf("%w: malformed interfaceId", ErrInvalidInput)
		}
		return NewScopedNextHop(a, InterfaceID(idFloat))
	}
	return NewNextHop(a)
}
