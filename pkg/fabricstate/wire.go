package fabricstate

import (
	"cmp"
	"fmt"
	"net/netip"
	"time"

	"github.com/EnterStudios/fabricstated/pkg/addr"
)

func netipParsePrefix(s string) (netip.Prefix, error) { return netip.ParsePrefix(s) }

func secondsToDuration(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

// ToWire renders a Port for warm-boot serialization.
func (p Port) ToWire() any {
	return map[string]any{
		"id":      uint32(p.ID),
		"name":    p.Name,
		"enabled": p.Enabled,
		"vlanId":  uint16(p.VlanID),
	}
}

// PortFromWire parses the representation produced by Port.ToWire.
func PortFromWire(v any) (Port, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Port{}, fmt.Errorf("%w: malformed port", addr.ErrInvalidInput)
	}
	idF, _ := m["id"].(float64)
	name, _ := m["name"].(string)
	enabled, _ := m["enabled"].(bool)
	vlanF, _ := m["vlanId"].(float64)
	return Port{ID: PortID(idF), Name: name, Enabled: enabled, VlanID: VlanID(vlanF)}, nil
}

// ToWire renders an AggregatePort for warm-boot serialization.
func (a AggregatePort) ToWire() any {
	members := make([]any, 0, len(a.Members))
	for _, m := range a.Members {
		members = append(members, uint32(m))
	}
	return map[string]any{
		"id":      uint32(a.ID),
		"name":    a.Name,
		"members": members,
	}
}

// AggregatePortFromWire parses the representation produced by
// AggregatePort.ToWire.
func AggregatePortFromWire(v any) (AggregatePort, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return AggregatePort{}, fmt.Errorf("%w: malformed aggregate port", addr.ErrInvalidInput)
	}
	idF, _ := m["id"].(float64)
	name, _ := m["name"].(string)
	rawMembers, _ := m["members"].([]any)
	members := make([]PortID, 0, len(rawMembers))
	for _, rm := range rawMembers {
		mf, _ := rm.(float64)
		members = append(members, PortID(mf))
	}
	return AggregatePort{ID: AggregatePortID(idF), Name: name, Members: members}, nil
}

// ToWire renders a Vlan for warm-boot serialization.
func (vl Vlan) ToWire() any {
	members := make([]any, 0, len(vl.Members))
	for _, m := range vl.Members {
		members = append(members, uint32(m))
	}
	return map[string]any{
		"id":      uint16(vl.ID),
		"name":    vl.Name,
		"members": members,
	}
}

// VlanFromWire parses the representation produced by Vlan.ToWire.
func VlanFromWire(v any) (Vlan, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Vlan{}, fmt.Errorf("%w: malformed vlan", addr.ErrInvalidInput)
	}
	idF, _ := m["id"].(float64)
	name, _ := m["name"].(string)
	rawMembers, _ := m["members"].([]any)
	members := make([]PortID, 0, len(rawMembers))
	for _, rm := range rawMembers {
		mf, _ := rm.(float64)
		members = append(members, PortID(mf))
	}
	return Vlan{ID: VlanID(idF), Name: name, Members: members}, nil
}

// ToWire renders an Acl for warm-boot serialization.
func (a Acl) ToWire() any {
	rules := make([]any, 0, len(a.Rules))
	for _, r := range a.Rules {
		rules = append(rules, map[string]any{
			"priority": r.Priority,
			"match":    r.Match,
			"action":   r.Action,
		})
	}
	return map[string]any{
		"id":    uint32(a.ID),
		"name":  a.Name,
		"rules": rules,
	}
}

// AclFromWire parses the representation produced by Acl.ToWire.
func AclFromWire(v any) (Acl, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Acl{}, fmt.Errorf("%w: malformed acl", addr.ErrInvalidInput)
	}
	idF, _ := m["id"].(float64)
	name, _ := m["name"].(string)
	rawRules, _ := m["rules"].([]any)
	rules := make([]AclRule, 0, len(rawRules))
	for _, rr := range rawRules {
		rm, ok := rr.(map[string]any)
		if !ok {
			return Acl{}, fmt.Errorf("%w: malformed acl rule", addr.ErrInvalidInput)
		}
		prioF, _ := rm["priority"].(float64)
		match, _ := rm["match"].(string)
		action, _ := rm["action"].(string)
		rules = append(rules, AclRule{Priority: int(prioF), Match: match, Action: action})
	}
	return Acl{ID: AclID(idF), Name: name, Rules: rules}, nil
}

// ToWire renders an Interface for warm-boot serialization; spec §6's
// getInterfaceDetail exposes the same fields.
func (i Interface) ToWire() any {
	addrs := make([]any, 0, len(i.Addresses))
	for _, a := range i.Addresses {
		addrs = append(addrs, a.Prefix.String())
	}
	return map[string]any{
		"id":        uint32(i.ID),
		"name":      i.Name,
		"vlanId":    uint16(i.VlanID),
		"routerId":  uint32(i.RouterID),
		"mac":       i.MAC,
		"addresses": addrs,
	}
}

// InterfaceFromWire parses the representation produced by Interface.ToWire.
func InterfaceFromWire(v any) (Interface, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Interface{}, fmt.Errorf("%w: malformed interface", addr.ErrInvalidInput)
	}
	idF, _ := m["id"].(float64)
	name, _ := m["name"].(string)
	vlanF, _ := m["vlanId"].(float64)
	routerF, _ := m["routerId"].(float64)
	mac, _ := m["mac"].(string)
	rawAddrs, _ := m["addresses"].([]any)
	addrs := make([]InterfaceAddress, 0, len(rawAddrs))
	for _, ra := range rawAddrs {
		s, ok := ra.(string)
		if !ok {
			return Interface{}, fmt.Errorf("%w: malformed interface address", addr.ErrInvalidInput)
		}
		p, err := netipParsePrefix(s)
		if err != nil {
			return Interface{}, fmt.Errorf("%w: interface address %q: %v", addr.ErrInvalidInput, s, err)
		}
		addrs = append(addrs, InterfaceAddress{Prefix: p})
	}
	return Interface{
		ID:        InterfaceID(idF),
		Name:      name,
		VlanID:    VlanID(vlanF),
		RouterID:  RouterID(routerF),
		MAC:       mac,
		Addresses: addrs,
	}, nil
}

// ToWire renders the complete SwitchState snapshot using the keys named in
// spec §6 ("interfaces", "ports", "vlans", "routeTables", "acls",
// "defaultVlan"), plus the remaining ambient fields needed for a faithful
// round trip (spec §8's serialize ∘ deserialize = identity law).
func (s SwitchState) ToWire() any {
	ports := make(map[string]any, s.Ports.Len())
	s.Ports.ForEach(func(k PortID, v *Port) { ports[fmt.Sprintf("%d", k)] = v.ToWire() })

	aggPorts := make(map[string]any, s.AggregatePorts.Len())
	s.AggregatePorts.ForEach(func(k AggregatePortID, v *AggregatePort) { aggPorts[fmt.Sprintf("%d", k)] = v.ToWire() })

	vlans := make(map[string]any, s.Vlans.Len())
	s.Vlans.ForEach(func(k VlanID, v *Vlan) { vlans[fmt.Sprintf("%d", k)] = v.ToWire() })

	interfaces := make(map[string]any, s.Interfaces.Len())
	s.Interfaces.ForEach(func(k InterfaceID, v *Interface) { interfaces[fmt.Sprintf("%d", k)] = v.ToWire() })

	acls := make(map[string]any, s.Acls.Len())
	s.Acls.ForEach(func(k AclID, v *Acl) { acls[fmt.Sprintf("%d", k)] = v.ToWire() })

	return map[string]any{
		"ports":              ports,
		"aggregatePorts":     aggPorts,
		"vlans":              vlans,
		"interfaces":         interfaces,
		"acls":               acls,
		"routeTables":        s.RouteTables.ToWire(),
		"defaultVlan":        uint16(s.DefaultVlan),
		"alpmEnabled":        s.RouteTables.AlpmEnabled,
		"arpTimeoutSeconds":  s.ArpTimeout.Seconds(),
		"ndpTimeoutSeconds":  s.NdpTimeout.Seconds(),
		"agerIntervalSeconds": s.AgerInterval.Seconds(),
		"maxNeighborProbes":  s.MaxNeighborProbes,
		"staleEntryIntervalSeconds": s.StaleEntryInterval.Seconds(),
		"generation":         s.Generation,
	}
}

// SwitchStateFromWire parses the representation produced by
// SwitchState.ToWire — the warm-boot restore path (spec §6, §9 "warm-boot
// snapshot round trip").
func SwitchStateFromWire(v any) (SwitchState, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return SwitchState{}, fmt.Errorf("%w: malformed switch state", addr.ErrInvalidInput)
	}

	ports, err := decodeNodeMap(m["ports"], PortFromWire, func(p Port) PortID { return p.ID })
	if err != nil {
		return SwitchState{}, err
	}
	aggPorts, err := decodeNodeMap(m["aggregatePorts"], AggregatePortFromWire, func(p AggregatePort) AggregatePortID { return p.ID })
	if err != nil {
		return SwitchState{}, err
	}
	vlans, err := decodeNodeMap(m["vlans"], VlanFromWire, func(v Vlan) VlanID { return v.ID })
	if err != nil {
		return SwitchState{}, err
	}
	interfaces, err := decodeNodeMap(m["interfaces"], InterfaceFromWire, func(i Interface) InterfaceID { return i.ID })
	if err != nil {
		return SwitchState{}, err
	}
	acls, err := decodeNodeMap(m["acls"], AclFromWire, func(a Acl) AclID { return a.ID })
	if err != nil {
		return SwitchState{}, err
	}

	alpmEnabled, _ := m["alpmEnabled"].(bool)
	routeTables, err := RouteTableMapFromWire(m["routeTables"], alpmEnabled)
	if err != nil {
		return SwitchState{}, err
	}

	defaultVlanF, _ := m["defaultVlan"].(float64)
	arpF, _ := m["arpTimeoutSeconds"].(float64)
	ndpF, _ := m["ndpTimeoutSeconds"].(float64)
	agerF, _ := m["agerIntervalSeconds"].(float64)
	probesF, _ := m["maxNeighborProbes"].(float64)
	staleF, _ := m["staleEntryIntervalSeconds"].(float64)
	genF, _ := m["generation"].(float64)

	return SwitchState{
		Ports:              ports,
		AggregatePorts:     aggPorts,
		Vlans:              vlans,
		Interfaces:         interfaces,
		Acls:               acls,
		RouteTables:        routeTables,
		DefaultVlan:        VlanID(defaultVlanF),
		ArpTimeout:         secondsToDuration(arpF),
		NdpTimeout:         secondsToDuration(ndpF),
		AgerInterval:       secondsToDuration(agerF),
		MaxNeighborProbes:  int(probesF),
		StaleEntryInterval: secondsToDuration(staleF),
		Generation:         uint64(genF),
	}, nil
}

// decodeNodeMap is the shared unmarshal path for every object sub-map in a
// SwitchState wire document: a {"id-as-string": <node>} object.
func decodeNodeMap[K cmp.Ordered, V any](raw any, decode func(any) (V, error), keyOf func(V) K) (NodeMap[K, V], error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return NodeMap[K, V]{}, fmt.Errorf("%w: malformed node map", addr.ErrInvalidInput)
	}
	out := NewNodeMap[K, V]()
	for _, val := range m {
		v, err := decode(val)
		if err != nil {
			return NodeMap[K, V]{}, err
		}
		out = out.Set(keyOf(v), v)
	}
	return out, nil
}
