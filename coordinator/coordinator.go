// Package coordinator implements the single serializing writer described
// in spec §5: every mutation goes through one Coordinator, which builds a
// resolver.Updater against the currently published SwitchState, applies
// the requested operation, runs UpdateDone, and atomically swaps the
// published pointer — grounded on the teacher's pkg/statedb write-txn
// discipline (one writer at a time, lock-free readers via an atomic root
// pointer) and its grpc.go RPC surface, generalized from table reads to
// the fabric's own add/delete/sync operations (spec §6).
package coordinator

import (
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
	"github.com/EnterStudios/fabricstated/pkg/logging"
	"github.com/EnterStudios/fabricstated/pkg/metrics"
	"github.com/EnterStudios/fabricstated/pkg/resolver"
	"github.com/EnterStudios/fabricstated/pkg/statediff"
	"github.com/EnterStudios/fabricstated/pkg/statelock"
)

// Coordinator owns the single published SwitchState and serializes every
// mutation against it.
type Coordinator struct {
	publishLock statelock.Mutex
	current     atomic.Pointer[fabricstate.SwitchState]
	metrics     *metrics.Registry
}

// New returns a Coordinator publishing initial as its first snapshot.
func New(initial fabricstate.SwitchState, reg *metrics.Registry) *Coordinator {
	c := &Coordinator{metrics: reg}
	c.current.Store(&initial)
	if reg != nil {
		reg.PublishedGeneration.Set(float64(initial.Generation))
	}
	return c
}

// Snapshot returns the currently published state. Safe for concurrent use
// with any number of other readers and with a concurrent mutation — reads
// never block on the publish lock.
func (c *Coordinator) Snapshot() fabricstate.SwitchState {
	return *c.current.Load()
}

// mutate serializes fn against the current published state's RouteTables
// and publishes whatever it returns, provided fn succeeds.
func (c *Coordinator) mutate(fn func(u *resolver.Updater) error) error {
	c.publishLock.Lock()
	defer c.publishLock.Unlock()

	cur := c.Snapshot()
	u := resolver.NewUpdater(cur.RouteTables)
	if err := fn(u); err != nil {
		if c.metrics != nil {
			c.metrics.UpdatesRejected.WithLabelValues(rejectReason(err)).Inc()
		}
		return toStatus(err)
	}

	start := time.Now()
	newTables, err := u.UpdateDone()
	if c.metrics != nil {
		c.metrics.ResolvePassSeconds.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.UpdatesRejected.WithLabelValues(rejectReason(err)).Inc()
		}
		return toStatus(err)
	}

	if newTables.Equal(cur.RouteTables) {
		// Nothing observable changed (spec §4.6 "update_done returns null",
		// §8 invariant 3): leave the published snapshot exactly as it was,
		// generation included, rather than publishing a content-identical
		// successor.
		return nil
	}

	next := cur.WithRouteTables(newTables)
	delta := statediff.DiffSwitchState(cur, next)
	c.current.Store(&next)

	if c.metrics != nil {
		c.metrics.UpdatesAccepted.Inc()
		c.metrics.PublishedGeneration.Set(float64(next.Generation))
	}
	if !delta.Empty() {
		logging.With("generation", next.Generation).Debug("published new switch state")
	}
	return nil
}

// AddUnicastRoute implements the addUnicastRoute RPC (spec §6): register
// client's next-hop set for prefix within vrf.
func (c *Coordinator) AddUnicastRoute(vrf fabricstate.RouterID, prefix netip.Prefix, client route.ClientID, hops addr.NextHopSet) error {
	return c.mutate(func(u *resolver.Updater) error {
		return u.AddRouteClient(vrf, prefix, client, hops)
	})
}

// AddActionRoute implements the client-less add_route(vrf, prefix, action)
// overload (spec §4.2) — used for static Drop/ToCpu entries.
func (c *Coordinator) AddActionRoute(vrf fabricstate.RouterID, prefix netip.Prefix, action route.Action) error {
	return c.mutate(func(u *resolver.Updater) error {
		return u.AddRouteAction(vrf, prefix, action)
	})
}

// DeleteUnicastRoute implements the deleteUnicastRoute RPC (spec §6):
// withdraw client's contribution to prefix.
func (c *Coordinator) DeleteUnicastRoute(vrf fabricstate.RouterID, prefix netip.Prefix, client route.ClientID) error {
	return c.mutate(func(u *resolver.Updater) error {
		return u.DelNexthopsForClient(vrf, prefix, client)
	})
}

// DeleteActionRoute withdraws a client-less terminal route.
func (c *Coordinator) DeleteActionRoute(vrf fabricstate.RouterID, prefix netip.Prefix) error {
	return c.mutate(func(u *resolver.Updater) error {
		return u.DelRouteWithNoNexthops(vrf, prefix)
	})
}

// SyncFib implements the syncFib RPC (spec §6): routes becomes the complete
// set of client-contributed routes in vrf across both address families,
// with every prefix client previously advertised but absent from routes
// withdrawn. Other clients' contributions, and connected/static/link-local
// routes, are untouched (spec §8 scenario 6).
func (c *Coordinator) SyncFib(vrf fabricstate.RouterID, client route.ClientID, routes map[netip.Prefix]addr.NextHopSet) error {
	return c.mutate(func(u *resolver.Updater) error {
		return u.SyncFib(vrf, client, routes)
	})
}

// DeleteVRFLinkLocalRoute implements del_link_local_routes(vrf) (spec §4.3,
// §4.6): removes the shared fe80::/64 ToCpu route from vrf, for use when a
// VRF is torn down entirely.
func (c *Coordinator) DeleteVRFLinkLocalRoute(vrf fabricstate.RouterID) error {
	return c.mutate(func(u *resolver.Updater) error {
		return u.DelVRFLinkLocalRoute(vrf)
	})
}

// RevertNewRouteEntry implements the RPC-adjacent revert surface backing
// spec §4.7's client-driven rollback of its own just-submitted change. It
// is intentionally not funneled through mutate: the revert stacks it pops
// live inside the per-family engines instantiated by the transaction being
// reverted, not the coordinator's published state, so this is a thin
// passthrough kept for API symmetry with the other RPCs — callers needing
// genuine revert-after-accept semantics should instead accumulate several
// operations behind one resolver.Updater and call RevertNewRouteEntry on it
// before ever calling UpdateDone.
func (c *Coordinator) RevertNewRouteEntry(u *resolver.Updater, vrf fabricstate.RouterID, prefix netip.Prefix) error {
	return toStatus(u.RevertNewRouteEntry(vrf, prefix))
}

// GetInterfaceDetail implements the getInterfaceDetail RPC (spec §6):
// return the currently published configuration for ifID.
func (c *Coordinator) GetInterfaceDetail(ifID fabricstate.InterfaceID) (fabricstate.Interface, error) {
	cur := c.Snapshot()
	iface, ok := cur.Interfaces.Get(ifID)
	if !ok {
		return fabricstate.Interface{}, toStatus(errInterfaceNotFound(ifID))
	}
	return *iface, nil
}
