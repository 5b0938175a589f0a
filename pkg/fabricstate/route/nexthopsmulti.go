// Package route holds the per-route data model: the per-client next-hop
// merge map (NextHopsMulti), the resolved forwarding decision (ForwardInfo)
// and the Route node itself with its resolution-state flags.
package route

import (
	"errors"
	"fmt"
	"sort"

	"github.com/EnterStudios/fabricstated/pkg/addr"
)

// ClientID identifies an external contributor of route advertisements.
// Lower ids win (spec GLOSSARY: "Client").
type ClientID uint16

// ErrEmptyNextHopSet is returned by Update when the proposed set is empty;
// spec §4.2 disallows registering an empty set via add_route.
var ErrEmptyNextHopSet = errors.New("next-hop set must not be empty")

// NextHopsMulti maps ClientID to that client's proposed NextHopSet for a
// single prefix. It is a value type: every mutating method returns a new
// NextHopsMulti, leaving the receiver untouched, so that Route can be
// copy-on-write without NextHopsMulti aliasing between generations.
type NextHopsMulti struct {
	byClient map[ClientID]addr.NextHopSet
}

// NewNextHopsMulti returns an empty multi-map.
func NewNextHopsMulti() NextHopsMulti {
	return NextHopsMulti{byClient: map[ClientID]addr.NextHopSet{}}
}

func (m NextHopsMulti) clone() NextHopsMulti {
	out := make(map[ClientID]addr.NextHopSet, len(m.byClient))
	for k, v := range m.byClient {
		out[k] = v
	}
	return NextHopsMulti{byClient: out}
}

// Update registers or replaces client's next-hop set. It fails if set is
// empty (spec §4.2).
func (m NextHopsMulti) Update(client ClientID, set addr.NextHopSet) (NextHopsMulti, error) {
	if set.Empty() {
		return m, fmt.Errorf("client %d: %w", client, ErrEmptyNextHopSet)
	}
	out := m.clone()
	out.byClient[client] = set
	return out, nil
}

// Delete removes client's contribution; a no-op if absent.
func (m NextHopsMulti) Delete(client ClientID) NextHopsMulti {
	if _, ok := m.byClient[client]; !ok {
		return m
	}
	out := m.clone()
	delete(out.byClient, client)
	return out
}

// IsSame reports whether client is already registered with exactly set.
func (m NextHopsMulti) IsSame(client ClientID, set addr.NextHopSet) bool {
	existing, ok := m.byClient[client]
	return ok && existing.Equal(set)
}

// Get returns client's current set, if any.
func (m NextHopsMulti) Get(client ClientID) (addr.NextHopSet, bool) {
	s, ok := m.byClient[client]
	return s, ok
}

// Len reports the number of contributing clients.
func (m NextHopsMulti) Len() int { return len(m.byClient) }

// Empty reports whether no client contributes to this prefix.
func (m NextHopsMulti) Empty() bool { return len(m.byClient) == 0 }

// Clients returns the contributing client ids in ascending (priority) order.
func (m NextHopsMulti) Clients() []ClientID {
	out := make([]ClientID, 0, len(m.byClient))
	for c := range m.byClient {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BestClient returns the numerically lowest client id present.
func (m NextHopsMulti) BestClient() (ClientID, bool) {
	if len(m.byClient) == 0 {
		return 0, false
	}
	best := ClientID(0)
	first := true
	for c := range m.byClient {
		if first || c < best {
			best = c
			first = false
		}
	}
	return best, true
}

// BestNextHopList returns the NextHopSet belonging to the lowest client id.
// It fails if the map is empty (spec §4.2).
func (m NextHopsMulti) BestNextHopList() (addr.NextHopSet, error) {
	best, ok := m.BestClient()
	if !ok {
		return addr.NextHopSet{}, errors.New("next-hops multi is empty")
	}
	return m.byClient[best], nil
}

// Equal compares the full mapping, independent of iteration order.
func (m NextHopsMulti) Equal(o NextHopsMulti) bool {
	if len(m.byClient) != len(o.byClient) {
		return false
	}
	for c, set := range m.byClient {
		oset, ok := o.byClient[c]
		if !ok || !set.Equal(oset) {
			return false
		}
	}
	return true
}

// ToWire renders the map as {client_id: [next_hops]} per spec §6.
func (m NextHopsMulti) ToWire() any {
	out := make(map[string]any, len(m.byClient))
	for c, set := range m.byClient {
		out[fmt.Sprintf("%d", c)] = set.ToWire()
	}
	return out
}

// NextHopsMultiFromWire parses the representation produced by ToWire.
func NextHopsMultiFromWire(v any) (NextHopsMulti, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return NextHopsMulti{}, fmt.Errorf("%w: malformed next-hops multi", addr.ErrInvalidInput)
	}
	out := NewNextHopsMulti()
	for k, val := range raw {
		var client ClientID
		if _, err := fmt.Sscanf(k, "%d", &client); err != nil {
			return NextHopsMulti{}, fmt.Errorf("%w: malformed client id %q", addr.ErrInvalidInput, k)
		}
		set, err := addr.NextHopSetFromWire(val)
		if err != nil {
			return NextHopsMulti{}, err
		}
		out.byClient[client] = set
	}
	return out, nil
}
