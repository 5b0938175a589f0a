package config

import (
	"fmt"
	"net/netip"
)

// Validate checks the configuration for internal consistency: no duplicate
// VLAN, interface or ACL ids, every VLAN an interface references exists,
// and no two interfaces in the same VRF claim the same address (a
// StateConflict). VRF ids themselves are not checked.
func (c Config) Validate() error {
	vlanIDs := map[uint16]struct{}{}
	for _, v := range c.Vlans {
		if _, dup := vlanIDs[v.ID]; dup {
			return fmt.Errorf("%w: duplicate vlan id %d", ErrStateConflict, v.ID)
		}
		vlanIDs[v.ID] = struct{}{}
	}

	ifaceIDs := map[uint32]struct{}{}
	type vrfAddr struct {
		vrf  uint32
		addr netip.Addr
	}
	seenAddrs := map[vrfAddr]uint32{}
	for _, ifc := range c.Interfaces {
		if _, dup := ifaceIDs[ifc.ID]; dup {
			return fmt.Errorf("%w: duplicate interface id %d", ErrStateConflict, ifc.ID)
		}
		ifaceIDs[ifc.ID] = struct{}{}

		if ifc.VlanID != 0 {
			if _, ok := vlanIDs[ifc.VlanID]; !ok {
				return fmt.Errorf("%w: interface %d references unknown vlan %d", ErrInvalidInput, ifc.ID, ifc.VlanID)
			}
		}

		for _, raw := range ifc.Addresses {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return fmt.Errorf("%w: interface %d address %q: %v", ErrInvalidInput, ifc.ID, raw, err)
			}
			// Scoped per VRF (spec §4.8: "two interfaces in the same VRF
			// claim the same address prefix") — the same address may
			// legitimately be reused across independent VRFs.
			key := vrfAddr{vrf: ifc.RouterID, addr: p.Addr()}
			if owner, dup := seenAddrs[key]; dup {
				return fmt.Errorf("%w: address %s assigned to both interface %d and interface %d in vrf %d", ErrStateConflict, p.Addr(), owner, ifc.ID, ifc.RouterID)
			}
			seenAddrs[key] = ifc.ID
		}
	}

	aclIDs := map[uint32]struct{}{}
	for _, a := range c.Acls {
		if _, dup := aclIDs[a.ID]; dup {
			return fmt.Errorf("%w: duplicate acl id %d", ErrStateConflict, a.ID)
		}
		aclIDs[a.ID] = struct{}{}
	}

	return nil
}
