package resolver

import (
	"net/netip"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
)

// syncFibFamily implements spec §6's syncFib for one address family:
// client's contribution across vrf's working RIB is made to equal want
// exactly — prefixes client no longer advertises are withdrawn (erasing the
// route entirely if that was its last contributor), and every prefix in
// want is added or updated. Routes with no entry for client — other
// clients' contributions, connected routes, static terminal routes, and the
// synthetic link-local route — are never touched, matching spec §8
// scenario 6 ("Interface and link-local routes are preserved").
func syncFibFamily[F addr.Family](fu *famUpdater[F], vrf fabricstate.RouterID, client route.ClientID, want map[addr.Prefix[F]]addr.NextHopSet) error {
	for _, rt := range fu.workingRib(vrf).All() {
		if _, ok := rt.Multi().Get(client); !ok {
			continue
		}
		if _, stillWanted := want[rt.Prefix()]; stillWanted {
			continue
		}
		if err := fu.delNexthopsForClient(vrf, rt.Prefix(), client); err != nil {
			return err
		}
	}
	for prefix, hops := range want {
		if err := fu.addRouteClient(vrf, prefix, client, hops); err != nil {
			return err
		}
	}
	return nil
}

// SyncFib implements the syncFib RPC (spec §6): atomically replaces the
// complete set of routes client contributes in vrf with routes, across both
// address families. Every other client's contribution, and every
// connected/static/link-local route, is left exactly as it was.
func (u *Updater) SyncFib(vrf fabricstate.RouterID, client route.ClientID, routes map[netip.Prefix]addr.NextHopSet) error {
	v4Want := map[addr.Prefix[addr.V4]]addr.NextHopSet{}
	v6Want := map[addr.Prefix[addr.V6]]addr.NextHopSet{}
	for p, hops := range routes {
		if p.Addr().Is4() {
			pp, err := addr.FromNetipPrefix[addr.V4](p)
			if err != nil {
				return err
			}
			v4Want[pp] = hops
			continue
		}
		pp, err := addr.FromNetipPrefix[addr.V6](p)
		if err != nil {
			return err
		}
		v6Want[pp] = hops
	}
	if err := syncFibFamily(u.v4, vrf, client, v4Want); err != nil {
		return err
	}
	return syncFibFamily(u.v6, vrf, client, v6Want)
}
