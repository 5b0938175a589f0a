package rib

import (
	"fmt"

	"github.com/EnterStudios/fabricstated/pkg/addr"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate/route"
)

// ToWire renders every route in the table as a slice, in prefix-key order,
// for the warm-boot snapshot format (spec §6).
func (r *Rib[F]) ToWire() any {
	routes := make([]any, 0, r.Size())
	r.Iterate(func(rt route.Route[F]) bool {
		routes = append(routes, rt.ToWire())
		return true
	})
	return routes
}

// FromWire parses the representation produced by ToWire.
func FromWire[F addr.Family](v any) (*Rib[F], error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: malformed rib", addr.ErrInvalidInput)
	}
	r := New[F]()
	for _, item := range raw {
		rt, err := route.RouteFromWire[F](item)
		if err != nil {
			return nil, err
		}
		r = r.Insert(rt)
	}
	return r, nil
}
