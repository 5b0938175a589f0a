package route

import (
	"fmt"

	"github.com/EnterStudios/fabricstated/pkg/addr"
)

// Route is a single RIB entry for family F: a prefix, the merged per-client
// next-hop advertisements, the compiled forwarding decision, resolution
// flags, and a generation counter bumped on every observable change
// (spec §3, §4.3).
//
// Route is treated as an immutable value once stored in a Rib: every
// mutating method returns a new Route, never touching the receiver, which
// is what lets Rib do copy-on-write without aliasing between generations.
type Route[F addr.Family] struct {
	prefix      addr.Prefix[F]
	multi       NextHopsMulti
	forward     ForwardInfo
	flags       Flags
	generation  uint64
}

// NewRoute constructs a brand-new, unresolved route for prefix at
// generation 1 (spec §3: generation increments on every observable change;
// the initial insert is itself a change).
func NewRoute[F addr.Family](prefix addr.Prefix[F]) Route[F] {
	return Route[F]{
		prefix:     prefix,
		multi:      NewNextHopsMulti(),
		flags:      FlagNeedsResolve,
		generation: 1,
	}
}

func (r Route[F]) Prefix() addr.Prefix[F]     { return r.prefix }
func (r Route[F]) Multi() NextHopsMulti       { return r.multi }
func (r Route[F]) Forward() ForwardInfo       { return r.forward }
func (r Route[F]) Flags() Flags               { return r.flags }
func (r Route[F]) Generation() uint64         { return r.generation }

func (r Route[F]) bump() Route[F] {
	r.generation++
	return r
}

// WithMulti returns a copy with an updated NextHopsMulti, marked
// NeedsResolve so the next resolver pass recomputes forward info.
func (r Route[F]) WithMulti(m NextHopsMulti) Route[F] {
	r.multi = m
	r.flags = r.flags.Set(FlagNeedsResolve).Clear(FlagResolved).Clear(FlagUnresolvable)
	return r.bump()
}

// MarkProcessing sets the transient Processing flag used by the resolver to
// detect cycles (spec §4.6). Never observable outside a single resolver
// pass's working copy.
func (r Route[F]) MarkProcessing() Route[F] {
	r.flags = r.flags.Set(FlagProcessing)
	return r
}

// ResolveTo finalizes a resolution pass with the given decision, clearing
// Processing/NeedsResolve and setting Resolved. connected marks the route as
// the interface-attached subnet route (spec §4.3: always Resolved with
// action Nexthops).
func (r Route[F]) ResolveTo(fi ForwardInfo, connected bool) Route[F] {
	r.forward = fi
	r.flags = r.flags.Clear(FlagProcessing).Clear(FlagNeedsResolve).Clear(FlagUnresolvable).Set(FlagResolved)
	switch fi.Action() {
	case ActionDrop:
		r.flags = r.flags.Set(FlagDrop).Clear(FlagToCPU)
	case ActionToCPU:
		r.flags = r.flags.Set(FlagToCPU).Clear(FlagDrop)
	default:
		r.flags = r.flags.Clear(FlagDrop).Clear(FlagToCPU)
	}
	if connected {
		r.flags = r.flags.Set(FlagConnected)
	}
	return r.bump()
}

// MarkUnresolvable finalizes a pass with no viable decision (spec §4.6:
// cycle detected, or no next-hop resolved to anything).
func (r Route[F]) MarkUnresolvable() Route[F] {
	r.forward = ForwardInfo{}
	r.flags = r.flags.Clear(FlagProcessing).Clear(FlagNeedsResolve).Clear(FlagResolved).Set(FlagUnresolvable)
	return r.bump()
}

// StripProcessing clears the transient Processing flag without otherwise
// changing resolution state; used when a resolver pass aborts partway
// (e.g. on error) so Processing never leaks into a published snapshot
// (spec §4.3, §9 "Recursive resolver").
func (r Route[F]) StripProcessing() Route[F] {
	r.flags = r.flags.Clear(FlagProcessing)
	return r
}

// Equal is a structural comparison used by update_done's dedup check: two
// routes are equal iff forward info, multi and flags all match (generation
// is deliberately excluded — it's bookkeeping, not observable state).
func (r Route[F]) Equal(o Route[F]) bool {
	return r.prefix.Equal(o.prefix) && r.multi.Equal(o.multi) && r.forward.Equal(o.forward) && r.flags == o.flags
}

func (r Route[F]) String() string {
	return fmt.Sprintf("Route{%s action=%s flags=%s gen=%d}", r.prefix, r.forward.Action(), r.flags, r.generation)
}

// ToWire renders the route using the keys named in spec §6, plus its flags.
func (r Route[F]) ToWire() any {
	out := map[string]any{
		"network": r.prefix.Network().String(),
		"maskLen": r.prefix.Bits(),
		"flags":   uint8(r.flags),
	}
	for k, v := range r.forward.ToWire().(map[string]any) {
		out[k] = v
	}
	if !r.multi.Empty() {
		out["nextHopsMulti"] = r.multi.ToWire()
	}
	return out
}

// RouteFromWire parses the representation produced by ToWire.
func RouteFromWire[F addr.Family](v any) (Route[F], error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Route[F]{}, fmt.Errorf("%w: malformed route", addr.ErrInvalidInput)
	}
	network, _ := m["network"].(string)
	maskLenF, _ := m["maskLen"].(float64)
	prefix, err := addr.ParsePrefix[F](fmt.Sprintf("%s/%d", network, int(maskLenF)))
	if err != nil {
		return Route[F]{}, err
	}
	r := NewRoute[F](prefix)
	fi, err := ForwardInfoFromWire(m)
	if err != nil {
		return Route[F]{}, err
	}
	if multiRaw, ok := m["nextHopsMulti"]; ok {
		multi, err := NextHopsMultiFromWire(multiRaw)
		if err != nil {
			return Route[F]{}, err
		}
		r.multi = multi
	}
	r = r.ResolveTo(fi, false)
	if flagsF, ok := m["flags"].(float64); ok {
		r.flags = Flags(flagsF)
	}
	return r, nil
}
