package resolver

import (
	"fmt"
	"net/netip"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
	"github.com/EnterStudios/fabricstated/pkg/rib"
	"github.com/EnterStudios/fabricstated/pkg/revert"
)

// maxResolveDepth bounds the recursive resolver's call depth (spec §9,
// "Recursive resolver": "reimplementers should use an explicit work stack
// or depth bound if the host has a small default stack"). Go's goroutine
// stacks grow dynamically, so this exists purely to turn a pathological
// next-hop chain into a reported internal error instead of an unbounded
// recursion, not to work around a fixed stack size.
const maxResolveDepth = 4096

type dirtyKey[F addr.Family] struct {
	vrf    fabricstate.RouterID
	prefix addr.Prefix[F]
}

// famUpdater is the per-family half of Updater. It's generic so that the
// v4 and v6 engines are monomorphized (spec §9: "avoid a dynamic base
// class"), while Updater itself (non-generic) dispatches each public
// operation to the right half based on the runtime address family of its
// arguments.
type famUpdater[F addr.Family] struct {
	baseRib func(fabricstate.RouterID) *rib.Rib[F]
	ribs    map[fabricstate.RouterID]*rib.Rib[F]
	dirty   map[dirtyKey[F]]struct{}
	reverts map[dirtyKey[F]]*revert.Stack
}

func newFamUpdater[F addr.Family](baseRib func(fabricstate.RouterID) *rib.Rib[F]) *famUpdater[F] {
	return &famUpdater[F]{
		baseRib: baseRib,
		ribs:    map[fabricstate.RouterID]*rib.Rib[F]{},
		dirty:   map[dirtyKey[F]]struct{}{},
		reverts: map[dirtyKey[F]]*revert.Stack{},
	}
}

// pushRevert records prefix's current value (or absence) in vrf's working
// RIB so a later revertPrefix call can restore it, regardless of how many
// times prefix is mutated in between (pkg/revert.Stack unwinds in reverse
// order, so the oldest recorded state always wins).
func (fu *famUpdater[F]) pushRevert(vrf fabricstate.RouterID, prefix addr.Prefix[F]) {
	oldRt, existed := fu.workingRib(vrf).ExactMatch(prefix)
	key := dirtyKey[F]{vrf, prefix}
	stack, ok := fu.reverts[key]
	if !ok {
		stack = &revert.Stack{}
		fu.reverts[key] = stack
	}
	stack.Push(func() error {
		cur := fu.workingRib(vrf)
		if existed {
			fu.setWorkingRib(vrf, cur.Insert(oldRt))
		} else if newR, ok := cur.Erase(prefix); ok {
			fu.setWorkingRib(vrf, newR)
		}
		return nil
	})
}

// revertPrefix undoes every recorded mutation to prefix within vrf, in
// reverse order, restoring it to whatever it was before this transaction
// first touched it.
func (fu *famUpdater[F]) revertPrefix(vrf fabricstate.RouterID, prefix addr.Prefix[F]) error {
	key := dirtyKey[F]{vrf, prefix}
	stack, ok := fu.reverts[key]
	if !ok {
		return nil
	}
	delete(fu.reverts, key)
	delete(fu.dirty, key)
	return stack.Revert()
}

func (fu *famUpdater[F]) workingRib(vrf fabricstate.RouterID) *rib.Rib[F] {
	if r, ok := fu.ribs[vrf]; ok {
		return r
	}
	r := fu.baseRib(vrf)
	if r == nil {
		r = rib.New[F]()
	}
	fu.ribs[vrf] = r
	return r
}

func (fu *famUpdater[F]) setWorkingRib(vrf fabricstate.RouterID, r *rib.Rib[F]) {
	fu.ribs[vrf] = r
}

func (fu *famUpdater[F]) markDirty(vrf fabricstate.RouterID, prefix addr.Prefix[F]) {
	fu.dirty[dirtyKey[F]{vrf, prefix}] = struct{}{}
}

// addRouteClient implements add_route(vrf, prefix, client, next_hops).
func (fu *famUpdater[F]) addRouteClient(vrf fabricstate.RouterID, prefix addr.Prefix[F], client route.ClientID, hops addr.NextHopSet) error {
	if hops.Empty() {
		return fmt.Errorf("vrf=%d prefix=%s client=%d: %w: next-hop set must not be empty", vrf, prefix, client, ErrInvalidInput)
	}
	r := fu.workingRib(vrf)
	rt, ok := r.ExactMatch(prefix)
	if !ok {
		rt = route.NewRoute[F](prefix)
	}
	if rt.Multi().IsSame(client, hops) {
		// spec §8 invariant 3: re-registering the identical contribution is
		// a no-op, not even a dirty mark, so update_done can dedup cleanly.
		return nil
	}
	multi, err := rt.Multi().Update(client, hops)
	if err != nil {
		return fmt.Errorf("vrf=%d prefix=%s client=%d: %w", vrf, prefix, client, err)
	}
	fu.pushRevert(vrf, prefix)
	rt = rt.WithMulti(multi)
	fu.setWorkingRib(vrf, r.Insert(rt))
	fu.markDirty(vrf, prefix)
	return nil
}

// addRouteAction implements add_route(vrf, prefix, action) for terminal
// client-less routes (Drop/ToCpu).
func (fu *famUpdater[F]) addRouteAction(vrf fabricstate.RouterID, prefix addr.Prefix[F], action route.Action) error {
	if action != route.ActionDrop && action != route.ActionToCPU {
		return fmt.Errorf("vrf=%d prefix=%s: %w: terminal action must be Drop or ToCpu", vrf, prefix, ErrInvalidInput)
	}
	r := fu.workingRib(vrf)
	rt, ok := r.ExactMatch(prefix)
	if !ok {
		rt = route.NewRoute[F](prefix)
	}
	var fi route.ForwardInfo
	if action == route.ActionDrop {
		fi = route.DropForwardInfo()
	} else {
		fi = route.ToCPUForwardInfo()
	}
	if rt.Flags().Has(route.FlagResolved) && rt.Forward().Equal(fi) && rt.Multi().Empty() {
		return nil
	}
	fu.pushRevert(vrf, prefix)
	rt = rt.ResolveTo(fi, false)
	fu.setWorkingRib(vrf, r.Insert(rt))
	return nil
}

// addConnected implements add_route(vrf, interface_id, address, mask_len):
// the subnet route implied by an interface address. Always Resolved,
// always Connected, action Nexthops with a single (interface, address)
// pair whose address is the interface address passed in — that pair is what
// downstream recursive resolution reattaches real next-hop addresses to
// (spec §4.6 step 2: "If the matched route is Connected, the resolved pair
// is (its interface_id, addr)" where addr is the *next-hop being resolved*,
// not this stored address; we only need the interface id out of it).
func (fu *famUpdater[F]) addConnected(vrf fabricstate.RouterID, ifID addr.InterfaceID, address netip.Addr, maskLen int) error {
	prefix, err := addr.FromNetipPrefix[F](netip.PrefixFrom(address, maskLen))
	if err != nil {
		return err
	}
	fu.pushRevert(vrf, prefix)
	r := fu.workingRib(vrf)
	rt := route.NewRoute[F](prefix)
	fi := route.NexthopsForwardInfo(route.ResolvedNextHop{InterfaceID: ifID, Address: address})
	rt = rt.ResolveTo(fi, true)
	fu.setWorkingRib(vrf, r.Insert(rt))
	return nil
}

// delNexthopsForClient implements del_nexthops_for_client: remove that
// client's contribution, erasing the route entirely if the multi becomes
// empty.
func (fu *famUpdater[F]) delNexthopsForClient(vrf fabricstate.RouterID, prefix addr.Prefix[F], client route.ClientID) error {
	r := fu.workingRib(vrf)
	rt, ok := r.ExactMatch(prefix)
	if !ok {
		return fmt.Errorf("vrf=%d prefix=%s client=%d: %w", vrf, prefix, client, ErrNotFound)
	}
	if _, ok := rt.Multi().Get(client); !ok {
		return nil
	}
	multi := rt.Multi().Delete(client)
	fu.pushRevert(vrf, prefix)
	if multi.Empty() {
		newR, _ := r.Erase(prefix)
		fu.setWorkingRib(vrf, newR)
		delete(fu.dirty, dirtyKey[F]{vrf, prefix})
		return nil
	}
	rt = rt.WithMulti(multi)
	fu.setWorkingRib(vrf, r.Insert(rt))
	fu.markDirty(vrf, prefix)
	return nil
}

// delRouteWithNoNexthops implements del_route_with_no_nexthops: erase a
// terminal (Drop/ToCpu) route. Fails if the route has client contributions.
func (fu *famUpdater[F]) delRouteWithNoNexthops(vrf fabricstate.RouterID, prefix addr.Prefix[F]) error {
	r := fu.workingRib(vrf)
	rt, ok := r.ExactMatch(prefix)
	if !ok {
		return fmt.Errorf("vrf=%d prefix=%s: %w", vrf, prefix, ErrNotFound)
	}
	if !rt.Multi().Empty() {
		return fmt.Errorf("vrf=%d prefix=%s: %w: route has client contributions", vrf, prefix, ErrStateConflict)
	}
	fu.pushRevert(vrf, prefix)
	newR, _ := r.Erase(prefix)
	fu.setWorkingRib(vrf, newR)
	delete(fu.dirty, dirtyKey[F]{vrf, prefix})
	return nil
}

// delLinkLocal implements del_link_local_routes for this family.
func (fu *famUpdater[F]) delLinkLocal(vrf fabricstate.RouterID, linkLocal addr.Prefix[F]) error {
	r := fu.workingRib(vrf)
	if _, ok := r.ExactMatch(linkLocal); !ok {
		return nil
	}
	fu.pushRevert(vrf, linkLocal)
	newR, _ := r.Erase(linkLocal)
	fu.setWorkingRib(vrf, newR)
	delete(fu.dirty, dirtyKey[F]{vrf, linkLocal})
	return nil
}
