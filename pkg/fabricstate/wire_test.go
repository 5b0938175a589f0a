package fabricstate

import (
	"encoding/json"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
)

// TestSwitchStateWireRoundTrip exercises spec §8's "serialize ∘ deserialize
// = identity" law for the warm-boot snapshot format: every node kind, plus a
// resolved connected route and a client-owned route, survive a ToWire/
// SwitchStateFromWire round trip with the same observable content.
func TestSwitchStateWireRoundTrip(t *testing.T) {
	s := New(true)

	s = s.WithPorts(s.Ports.Set(1, Port{ID: 1, Name: "et1", Enabled: true, VlanID: 10}))
	s = s.WithAggregatePorts(s.AggregatePorts.Set(1, AggregatePort{ID: 1, Name: "po1", Members: []PortID{1, 2}}))
	s = s.WithVlans(s.Vlans.Set(10, Vlan{ID: 10, Name: "servers", Members: []PortID{1}}))
	s = s.WithAcls(s.Acls.Set(1, Acl{ID: 1, Name: "deny-telnet", Rules: []AclRule{
		{Priority: 1, Match: "tcp dst 23", Action: "deny"},
	}}))
	s = s.WithInterfaces(s.Interfaces.Set(100, Interface{
		ID:        100,
		Name:      "vlan10",
		VlanID:    10,
		RouterID:  DefaultRouterID,
		MAC:       "02:00:00:00:00:01",
		Addresses: []InterfaceAddress{{Prefix: netip.MustParsePrefix("10.0.0.1/24")}},
	}))

	table := NewRouteTable(DefaultRouterID)
	connected := route.NewRoute[addr.V4](addr.MustPrefix[addr.V4]("10.0.0.0/24"))
	connected = connected.ResolveTo(route.NexthopsForwardInfo(route.ResolvedNextHop{InterfaceID: 100, Address: netip.MustParseAddr("10.0.0.0")}), true)
	table.RibV4 = table.RibV4.Insert(connected)

	nh, err := addr.NewNextHop(netip.MustParseAddr("10.0.0.2"))
	require.NoError(t, err)
	client := route.NewRoute[addr.V4](addr.MustPrefix[addr.V4]("192.0.2.0/24"))
	multi, err := client.Multi().Update(route.ClientID(1), addr.NewNextHopSet(nh))
	require.NoError(t, err)
	client = client.WithMulti(multi)
	table.RibV4 = table.RibV4.Insert(client)

	s = s.WithRouteTables(s.RouteTables.Set(DefaultRouterID, table))

	// ToWire emits native Go numerics, not the float64s FromWire expects;
	// that conversion only happens across an actual JSON pass, which is
	// what fabricstated dump --snapshot / load do (cmd/dump.go,
	// cmd/load.go), so the round trip here must go through the same pass.
	blob, err := json.Marshal(s.ToWire())
	require.NoError(t, err)
	var raw any
	require.NoError(t, json.Unmarshal(blob, &raw))

	restored, err := SwitchStateFromWire(raw)
	require.NoError(t, err)

	require.Equal(t, s.Generation, restored.Generation)
	require.Equal(t, s.ArpTimeout, restored.ArpTimeout)
	require.Equal(t, s.NdpTimeout, restored.NdpTimeout)
	require.Equal(t, s.AgerInterval, restored.AgerInterval)
	require.Equal(t, s.MaxNeighborProbes, restored.MaxNeighborProbes)
	require.Equal(t, s.StaleEntryInterval, restored.StaleEntryInterval)

	p, ok := restored.Ports.Get(1)
	require.True(t, ok)
	require.Equal(t, Port{ID: 1, Name: "et1", Enabled: true, VlanID: 10}, *p)

	ap, ok := restored.AggregatePorts.Get(1)
	require.True(t, ok)
	require.Equal(t, []PortID{1, 2}, ap.Members)

	vl, ok := restored.Vlans.Get(10)
	require.True(t, ok)
	require.Equal(t, "servers", vl.Name)

	acl, ok := restored.Acls.Get(1)
	require.True(t, ok)
	require.Equal(t, "deny-telnet", acl.Name)
	require.Len(t, acl.Rules, 1)
	require.Equal(t, "tcp dst 23", acl.Rules[0].Match)

	iface, ok := restored.Interfaces.Get(100)
	require.True(t, ok)
	require.Equal(t, "vlan10", iface.Name)
	require.Len(t, iface.Addresses, 1)
	require.Equal(t, "10.0.0.1/24", iface.Addresses[0].Prefix.String())

	rtable, ok := restored.RouteTables.Get(DefaultRouterID)
	require.True(t, ok)

	rt, ok := rtable.RibV4.ExactMatch(addr.MustPrefix[addr.V4]("10.0.0.0/24"))
	require.True(t, ok)
	require.True(t, rt.Flags().Has(route.FlagConnected))
	require.True(t, rt.Flags().Has(route.FlagResolved))

	crt, ok := rtable.RibV4.ExactMatch(addr.MustPrefix[addr.V4]("192.0.2.0/24"))
	require.True(t, ok)
	hops, ok := crt.Multi().Get(route.ClientID(1))
	require.True(t, ok)
	require.Equal(t, 1, hops.Len())

	// ALPM default routes must still be present after restore (spec §4.5,
	// §8 invariant 7).
	_, ok = rtable.RibV4.ExactMatch(V4DefaultPrefix)
	require.True(t, ok)
	_, ok = rtable.RibV6.ExactMatch(V6DefaultPrefix)
	require.True(t, ok)
}
