package resolver

import (
	"net/netip"

	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
)

// RevertNewRouteEntry undoes every mutation this transaction made to
// prefix, in reverse order (spec §4.6 revert_new_route_entry), using the
// per-prefix pkg/revert.Stack each add/del operation pushed to. A
// coordinator that discovers a later operation in the same transaction is
// invalid (e.g. a config apply that fails validation partway through) calls
// this for each prefix it already touched instead of discarding the whole
// working copy.
func (u *Updater) RevertNewRouteEntry(vrf fabricstate.RouterID, prefix netip.Prefix) error {
	if prefix.Addr().Is4() {
		p, err := addr4FromNetip(prefix)
		if err != nil {
			return err
		}
		return u.v4.revertPrefix(vrf, p)
	}
	p, err := addr6FromNetip(prefix)
	if err != nil {
		return err
	}
	return u.v6.revertPrefix(vrf, p)
}
