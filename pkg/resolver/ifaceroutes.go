package resolver

import (
	"net/netip"

	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
)

// v6LinkLocalPrefix is the shared fe80::/64 route every IPv6-capable
// interface in a VRF participates in. It is registered once per VRF with
// action ToCpu (spec §4.6, §4.8, testable invariant 8) rather than as a
// connected route: link-local traffic is resolved to an egress interface
// via the scoped NextHop itself (addr.NextHop.HasInterface), not via a RIB
// lookup, so this entry exists only to keep an *unscoped* lookup landing in
// fe80::/64 from falling through to Unresolvable — punting it to the CPU.
var v6LinkLocalPrefix = netip.MustParsePrefix("fe80::/64")

// AddInterfaceAndLinkLocalRoutes registers the connected subnet route for
// every address on iface, and — the first time any interface in vrf gets an
// IPv6 address — the shared fe80::/64 ToCpu route (spec §4.3).
func (u *Updater) AddInterfaceAndLinkLocalRoutes(vrf fabricstate.RouterID, iface fabricstate.Interface) error {
	addedV6 := false
	for _, a := range iface.Addresses {
		if err := u.AddConnectedRoute(vrf, iface.ID, a.Prefix.Addr(), a.Prefix.Bits()); err != nil {
			return err
		}
		if a.Prefix.Addr().Is6() {
			addedV6 = true
		}
	}
	if addedV6 {
		if _, ok := u.v6.workingRib(vrf).ExactMatch(mustV6Prefix(v6LinkLocalPrefix)); !ok {
			if err := u.AddRouteAction(vrf, v6LinkLocalPrefix, route.ActionToCPU); err != nil {
				return err
			}
		}
	}
	return nil
}

// DelVRFLinkLocalRoute implements del_link_local_routes(vrf) (spec §4.3):
// removes the shared fe80::/64 ToCpu route from vrf. Callers invoke this
// when the VRF itself is torn down, not when one interface loses an
// address — DelLinkLocalRoutes below handles that narrower case and leaves
// the shared entry alone.
func (u *Updater) DelVRFLinkLocalRoute(vrf fabricstate.RouterID) error {
	return u.v6.delLinkLocal(vrf, mustV6Prefix(v6LinkLocalPrefix))
}

// DelLinkLocalRoutes withdraws the connected routes for every address on
// iface (spec §4.3's teardown counterpart). The shared fe80::/64 route is
// left in place, matching FBOSS: it's only removed when the VRF itself is
// torn down, not when one interface loses its address.
func (u *Updater) DelLinkLocalRoutes(vrf fabricstate.RouterID, iface fabricstate.Interface) error {
	for _, a := range iface.Addresses {
		if a.Prefix.Addr().Is4() {
			p, err := addr4FromNetip(a.Prefix)
			if err != nil {
				return err
			}
			if err := u.v4.delLinkLocal(vrf, p); err != nil {
				return err
			}
			continue
		}
		p, err := addr6FromNetip(a.Prefix)
		if err != nil {
			return err
		}
		if err := u.v6.delLinkLocal(vrf, p); err != nil {
			return err
		}
	}
	return nil
}
