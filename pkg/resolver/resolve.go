package resolver

import (
	"fmt"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
	"github.com/EnterStudios/fabricstated/pkg/rib"
)

// resolveAll runs a full resolution pass over every working RIB touched by
// this update (spec §4.6). It is intentionally whole-pass rather than
// dirty-set-only: flattening copies a dependency's resolved next-hops at
// resolve time rather than linking to it, so a change to one route doesn't
// automatically invalidate routes recursively depending on it. Re-marking
// every client-contributed route NeedsResolve before each pass keeps that
// correct at the cost of re-walking routes that didn't actually change;
// given the RIB sizes this module targets, that's the right trade.
func (fu *famUpdater[F]) resolveAll() error {
	for vrf, r := range fu.ribs {
		fu.ribs[vrf] = markNeedsResolve(r)
	}
	for vrf, r := range fu.ribs {
		for _, rt := range r.All() {
			if !rt.Flags().Has(route.FlagNeedsResolve) {
				continue
			}
			if _, err := fu.resolveRoute(vrf, rt.Prefix(), 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// markNeedsResolve flags every client-contributed (non-connected) route
// NeedsResolve, ready for a fresh pass. Connected routes and client-less
// terminal routes (added via add_route_action) never depend on a lookup, so
// they're left alone.
func markNeedsResolve[F addr.Family](r *rib.Rib[F]) *rib.Rib[F] {
	out := r
	for _, rt := range r.All() {
		if rt.Flags().Has(route.FlagConnected) {
			continue
		}
		if rt.Multi().Empty() {
			continue
		}
		out = out.Insert(rt.WithMulti(rt.Multi()))
	}
	return out
}

// resolveRoute resolves the route at prefix in vrf's working RIB, recursing
// into whatever it depends on, and writes the resolved route back. depth
// guards against a pathological chain rather than a routing loop — loops
// are instead caught via the Processing flag below.
func (fu *famUpdater[F]) resolveRoute(vrf fabricstate.RouterID, prefix addr.Prefix[F], depth int) (route.Route[F], error) {
	if depth > maxResolveDepth {
		return route.Route[F]{}, fmt.Errorf("vrf=%d prefix=%s: %w: resolution depth exceeded", vrf, prefix, ErrInternal)
	}
	r := fu.workingRib(vrf)
	rt, ok := r.ExactMatch(prefix)
	if !ok {
		return route.Route[F]{}, fmt.Errorf("vrf=%d prefix=%s: %w", vrf, prefix, ErrNotFound)
	}
	if !rt.Flags().Has(route.FlagNeedsResolve) {
		return rt, nil
	}
	if rt.Flags().Has(route.FlagProcessing) {
		// Cycle: this route is already being resolved further up the call
		// stack. Report back as "resolved to nothing" rather than erroring;
		// the cycle cascades into Unresolvable for every route that
		// transitively depends on it, with no special-cased error type
		// (spec §4.6, §9 scenario 2).
		return rt, nil
	}

	rt = rt.MarkProcessing()
	fu.setWorkingRib(vrf, fu.workingRib(vrf).Insert(rt))

	multi := rt.Multi()
	if multi.Empty() {
		result := rt.StripProcessing().MarkUnresolvable()
		fu.setWorkingRib(vrf, fu.workingRib(vrf).Insert(result))
		return result, nil
	}
	hops, err := multi.BestNextHopList()
	if err != nil {
		return route.Route[F]{}, fmt.Errorf("vrf=%d prefix=%s: %w: %v", vrf, prefix, ErrInternal, err)
	}

	var resolvedHops []route.ResolvedNextHop
	var terminal *route.ForwardInfo
	for _, nh := range hops.Slice() {
		fi, ok, err := fu.resolveNextHop(vrf, nh, depth+1)
		if err != nil {
			return route.Route[F]{}, err
		}
		if !ok {
			// Unresolvable next-hop within an otherwise-resolvable set:
			// silently dropped from the compiled forwarding decision, per
			// the behavior this spec's resolver inherits (spec §9 open
			// question, resolved in DESIGN.md) — the route as a whole still
			// resolves as long as at least one next-hop did.
			continue
		}
		if fi.Action() == route.ActionDrop || fi.Action() == route.ActionToCPU {
			terminal = &fi
			break
		}
		resolvedHops = append(resolvedHops, fi.Nexthops()...)
	}

	var result route.Route[F]
	switch {
	case terminal != nil:
		result = rt.StripProcessing().ResolveTo(*terminal, false)
	case len(resolvedHops) > 0:
		result = rt.StripProcessing().ResolveTo(route.NexthopsForwardInfo(resolvedHops...), false)
	default:
		result = rt.StripProcessing().MarkUnresolvable()
	}
	fu.setWorkingRib(vrf, fu.workingRib(vrf).Insert(result))
	return result, nil
}

// resolveNextHop resolves a single next-hop address to its compiled
// forwarding contribution: either a terminal Drop/ToCpu (which dominates
// the whole route) or a set of directly-reachable (interface, address)
// pairs. ok is false when the next-hop can't be resolved at all — no
// matching route, a cyclic dependency, or a dependency that itself came
// back Unresolvable.
func (fu *famUpdater[F]) resolveNextHop(vrf fabricstate.RouterID, nh addr.NextHop, depth int) (route.ForwardInfo, bool, error) {
	if nh.HasInterface() {
		// A next-hop that already names its egress interface (spec §4.2:
		// typically a link-local address) is resolved by construction.
		return route.NexthopsForwardInfo(route.ResolvedNextHop{InterfaceID: nh.InterfaceID, Address: nh.Address}), true, nil
	}
	if depth > maxResolveDepth {
		return route.ForwardInfo{}, false, fmt.Errorf("vrf=%d next-hop=%s: %w: resolution depth exceeded", vrf, nh, ErrInternal)
	}

	matched, ok := fu.workingRib(vrf).LongestMatch(nh.Address)
	if !ok {
		return route.ForwardInfo{}, false, nil
	}
	if matched.Flags().Has(route.FlagProcessing) {
		return route.ForwardInfo{}, false, nil
	}
	if matched.Flags().Has(route.FlagNeedsResolve) {
		resolved, err := fu.resolveRoute(vrf, matched.Prefix(), depth+1)
		if err != nil {
			return route.ForwardInfo{}, false, err
		}
		matched = resolved
	}
	if matched.Flags().Has(route.FlagUnresolvable) {
		return route.ForwardInfo{}, false, nil
	}

	switch matched.Forward().Action() {
	case route.ActionDrop, route.ActionToCPU:
		return matched.Forward(), true, nil
	case route.ActionNexthops:
		if matched.Flags().Has(route.FlagConnected) {
			// The matched route is the directly-attached subnet: nh.Address
			// itself is on-link via that route's interface (spec §4.6 step
			// 2), not via whatever address the connected route recorded.
			ifID := matched.Forward().Nexthops()[0].InterfaceID
			return route.NexthopsForwardInfo(route.ResolvedNextHop{InterfaceID: ifID, Address: nh.Address}), true, nil
		}
		return matched.Forward(), true, nil
	default:
		return route.ForwardInfo{}, false, nil
	}
}
