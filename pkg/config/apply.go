package config

import (
	"fmt"
	"net/netip"

	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/resolver"
)

// Apply validates cfg and compiles it into the successor of base: the
// object maps (PortMap/VlanMap/InterfaceMap/AclMap) are rebuilt wholesale
// from cfg, and the connected + link-local routes every interface implies
// are applied through a resolver.Updater so RouteTables comes out fully
// resolved (spec §4.8).
func Apply(base fabricstate.SwitchState, cfg Config) (fabricstate.SwitchState, error) {
	if err := cfg.Validate(); err != nil {
		return fabricstate.SwitchState{}, err
	}

	ports := fabricstate.NewNodeMap[fabricstate.PortID, fabricstate.Port]()
	for _, p := range cfg.Ports {
		ports = ports.Set(fabricstate.PortID(p.ID), fabricstate.Port{
			ID:      fabricstate.PortID(p.ID),
			Name:    p.Name,
			Enabled: p.Enabled,
			VlanID:  fabricstate.VlanID(p.VlanID),
		})
	}

	vlans := fabricstate.NewNodeMap[fabricstate.VlanID, fabricstate.Vlan]()
	for _, v := range cfg.Vlans {
		members := make([]fabricstate.PortID, 0, len(v.Members))
		for _, m := range v.Members {
			members = append(members, fabricstate.PortID(m))
		}
		vlans = vlans.Set(fabricstate.VlanID(v.ID), fabricstate.Vlan{
			ID:      fabricstate.VlanID(v.ID),
			Name:    v.Name,
			Members: members,
		})
	}

	acls := fabricstate.NewNodeMap[fabricstate.AclID, fabricstate.Acl]()
	for _, a := range cfg.Acls {
		rules := make([]fabricstate.AclRule, 0, len(a.Rules))
		for _, r := range a.Rules {
			rules = append(rules, fabricstate.AclRule{Priority: r.Priority, Match: r.Match, Action: r.Action})
		}
		acls = acls.Set(fabricstate.AclID(a.ID), fabricstate.Acl{ID: fabricstate.AclID(a.ID), Name: a.Name, Rules: rules})
	}

	interfaces := fabricstate.NewNodeMap[fabricstate.InterfaceID, fabricstate.Interface]()
	routeTables := fabricstate.NewRouteTableMap(cfg.AlpmEnabled)
	u := resolver.NewUpdater(routeTables)

	for _, ifc := range cfg.Interfaces {
		addrs := make([]fabricstate.InterfaceAddress, 0, len(ifc.Addresses))
		for _, raw := range ifc.Addresses {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return fabricstate.SwitchState{}, fmt.Errorf("%w: interface %d address %q: %v", ErrInvalidInput, ifc.ID, raw, err)
			}
			addrs = append(addrs, fabricstate.InterfaceAddress{Prefix: p})
		}
		iface := fabricstate.Interface{
			ID:        fabricstate.InterfaceID(ifc.ID),
			Name:      ifc.Name,
			VlanID:    fabricstate.VlanID(ifc.VlanID),
			RouterID:  fabricstate.RouterID(ifc.RouterID),
			MAC:       ifc.MAC,
			Addresses: addrs,
		}
		interfaces = interfaces.Set(iface.ID, iface)

		if err := u.AddInterfaceAndLinkLocalRoutes(iface.RouterID, iface); err != nil {
			return fabricstate.SwitchState{}, fmt.Errorf("interface %d: %w", ifc.ID, err)
		}
	}

	newTables, err := u.UpdateDone()
	if err != nil {
		return fabricstate.SwitchState{}, fmt.Errorf("%w: resolving connected routes: %v", ErrInvalidInput, err)
	}

	out := base.
		WithPorts(ports).
		WithVlans(vlans).
		WithInterfaces(interfaces).
		WithAcls(acls).
		WithRouteTables(newTables)
	return out, nil
}
