package fabricstate

import (
	"fmt"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/rib"
)

// RouteTable bundles a VRF's v4 and v6 RIBs (spec §3).
type RouteTable struct {
	RouterID RouterID
	RibV4    *rib.Rib[addr.V4]
	RibV6    *rib.Rib[addr.V6]
}

// NewRouteTable returns an empty route table for routerID.
func NewRouteTable(routerID RouterID) RouteTable {
	return RouteTable{RouterID: routerID, RibV4: rib.New[addr.V4](), RibV6: rib.New[addr.V6]()}
}

// DefaultRouterID is the default VRF, the one ALPM default-route policy
// (spec §4.5) applies to.
const DefaultRouterID RouterID = 0

// V4DefaultPrefix and V6DefaultPrefix are the synthetic default routes ALPM
// mode requires to always be present in the default VRF.
var (
	V4DefaultPrefix = addr.MustPrefix[addr.V4]("0.0.0.0/0")
	V6DefaultPrefix = addr.MustPrefix[addr.V6]("::/0")
)

// ToWire renders a RouteTable for warm-boot serialization (spec §6).
func (t RouteTable) ToWire() any {
	return map[string]any{
		"routerId": uint32(t.RouterID),
		"ribV4":    t.RibV4.ToWire(),
		"ribV6":    t.RibV6.ToWire(),
	}
}

// RouteTableFromWire parses the representation produced by ToWire.
func RouteTableFromWire(v any) (RouteTable, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return RouteTable{}, fmt.Errorf("%w: malformed route table", addr.ErrInvalidInput)
	}
	routerIDF, _ := m["routerId"].(float64)
	v4, err := rib.FromWire[addr.V4](m["ribV4"])
	if err != nil {
		return RouteTable{}, err
	}
	v6, err := rib.FromWire[addr.V6](m["ribV6"])
	if err != nil {
		return RouteTable{}, err
	}
	return RouteTable{RouterID: RouterID(routerIDF), RibV4: v4, RibV6: v6}, nil
}
