package route

import (
	"fmt"
	"net/netip"
	"sort"

	"github.com/EnterStudios/fabricstated/pkg/addr"
)

// Action discriminates the three terminal shapes ForwardInfo can take.
type Action uint8

const (
	// ActionNone means resolution hasn't produced a decision yet.
	ActionNone Action = iota
	ActionDrop
	ActionToCPU
	ActionNexthops
)

// wire strings from spec §6.
const (
	wireNexthops = "nexthops"
	wireDrop     = "drop"
	wireToCPU    = "to_cpu"
)

func (a Action) String() string {
	switch a {
	case ActionDrop:
		return wireDrop
	case ActionToCPU:
		return wireToCPU
	case ActionNexthops:
		return wireNexthops
	default:
		return "none"
	}
}

// ResolvedNextHop is a next-hop after recursive resolution: every address is
// directly reachable via InterfaceID (spec §3: ForwardInfo.Nexthops).
type ResolvedNextHop struct {
	InterfaceID addr.InterfaceID
	Address     netip.Addr
}

func (r ResolvedNextHop) String() string {
	return fmt.Sprintf("if%d/%s", r.InterfaceID, r.Address)
}

// ForwardInfo is the compiled forwarding decision for a route: Drop, ToCpu,
// or a resolved next-hop set. Only one of the three is meaningful at a time,
// selected by Action.
type ForwardInfo struct {
	action   Action
	nexthops map[ResolvedNextHop]struct{}
}

// DropForwardInfo returns the Drop decision.
func DropForwardInfo() ForwardInfo { return ForwardInfo{action: ActionDrop} }

// ToCPUForwardInfo returns the ToCpu decision.
func ToCPUForwardInfo() ForwardInfo { return ForwardInfo{action: ActionToCPU} }

// NexthopsForwardInfo returns a resolved next-hop set decision.
func NexthopsForwardInfo(hops ...ResolvedNextHop) ForwardInfo {
	m := make(map[ResolvedNextHop]struct{}, len(hops))
	for _, h := range hops {
		m[h] = struct{}{}
	}
	return ForwardInfo{action: ActionNexthops, nexthops: m}
}

// Action reports which decision this ForwardInfo holds.
func (f ForwardInfo) Action() Action { return f.action }

// Nexthops returns the resolved next-hop set in deterministic order. Empty
// unless Action() == ActionNexthops.
func (f ForwardInfo) Nexthops() []ResolvedNextHop {
	out := make([]ResolvedNextHop, 0, len(f.nexthops))
	for h := range f.nexthops {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Union merges the resolved next-hop sets of two Nexthops ForwardInfos,
// used when flattening a recursively-resolved Nexthops route (spec §4.6
// step 2: "adopt its resolved set (flatten)").
func (f ForwardInfo) Union(o ForwardInfo) ForwardInfo {
	out := make(map[ResolvedNextHop]struct{}, len(f.nexthops)+len(o.nexthops))
	for h := range f.nexthops {
		out[h] = struct{}{}
	}
	for h := range o.nexthops {
		out[h] = struct{}{}
	}
	return ForwardInfo{action: ActionNexthops, nexthops: out}
}

// WithNexthop returns a copy with an additional resolved next-hop.
func (f ForwardInfo) WithNexthop(h ResolvedNextHop) ForwardInfo {
	out := make(map[ResolvedNextHop]struct{}, len(f.nexthops)+1)
	for k := range f.nexthops {
		out[k] = struct{}{}
	}
	out[h] = struct{}{}
	return ForwardInfo{action: ActionNexthops, nexthops: out}
}

// Equal is a structural comparison, used by update_done's dedup check
// (spec §4.6, "Determinism and de-duplication").
func (f ForwardInfo) Equal(o ForwardInfo) bool {
	if f.action != o.action {
		return false
	}
	if f.action != ActionNexthops {
		return true
	}
	if len(f.nexthops) != len(o.nexthops) {
		return false
	}
	for h := range f.nexthops {
		if _, ok := o.nexthops[h]; !ok {
			return false
		}
	}
	return true
}

// ToWire renders the decision using the §6 wire encoding: "action", plus,
// for ActionNexthops only, "egressId" holding the single next-hop or
// "ecmpEgressId" holding the list when there is not exactly one.
func (f ForwardInfo) ToWire() any {
	out := map[string]any{"action": f.action.String()}
	if f.action == ActionNexthops {
		hops := f.Nexthops()
		wireHops := make([]any, 0, len(hops))
		for _, h := range hops {
			wireHops = append(wireHops, map[string]any{
				"interfaceId": h.InterfaceID,
				"address":     h.Address.String(),
			})
		}
		if len(wireHops) == 1 {
			out["egressId"] = wireHops[0]
		} else {
			out["ecmpEgressId"] = wireHops
		}
	}
	return out
}

// ForwardInfoFromWire parses the representation produced by ToWire.
func ForwardInfoFromWire(v any) (ForwardInfo, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return ForwardInfo{}, fmt.Errorf("%w: malformed forward info", addr.ErrInvalidInput)
	}
	action, _ := m["action"].(string)
	switch action {
	case "none":
		return ForwardInfo{}, nil
	case wireDrop:
		return DropForwardInfo(), nil
	case wireToCPU:
		return ToCPUForwardInfo(), nil
	case wireNexthops:
		var raw []any
		if single, ok := m["egressId"]; ok {
			raw = []any{single}
		} else if many, ok := m["ecmpEgressId"].([]any); ok {
			raw = many
		}
		hops := make([]ResolvedNextHop, 0, len(raw))
		for _, item := range raw {
			hm, ok := item.(map[string]any)
			if !ok {
				return ForwardInfo{}, fmt.Errorf("%w: malformed resolved next-hop", addr.ErrInvalidInput)
			}
			ifFloat, _ := hm["interfaceId"].(float64)
			addrStr, _ := hm["address"].(string)
			a, err := netip.ParseAddr(addrStr)
			if err != nil {
				return ForwardInfo{}, fmt.Errorf("%w: resolved next-hop address %q: %v", addr.ErrInvalidInput, addrStr, err)
			}
			hops = append(hops, ResolvedNextHop{InterfaceID: addr.InterfaceID(ifFloat), Address: a})
		}
		return NexthopsForwardInfo(hops...), nil
	default:
		return ForwardInfo{}, fmt.Errorf("%w: unknown action %q", addr.ErrInvalidInput, action)
	}
}
