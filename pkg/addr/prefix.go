package addr

import (
	"fmt"
	"net/netip"
)

// Prefix is a (network, mask length) pair for family F. The invariant that
// network has all bits beyond Bits() cleared is enforced by canonicalizing
// on construction rather than checked lazily.
type Prefix[F Family] struct {
	addr netip.Addr
	bits int
}

// ParsePrefix parses textual CIDR ("10.0.0.0/24", "fe80::/64") into a
// canonicalized Prefix[F]. It fails when the text is malformed, the address
// family doesn't match F, or the mask length exceeds F's width.
func ParsePrefix[F Family](s string) (Prefix[F], error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Prefix[F]{}, fmt.Errorf("%w: %q: %v", ErrInvalidInput, s, err)
	}
	return FromNetipPrefix[F](p)
}

// FromNetipPrefix converts and canonicalizes a netip.Prefix, validating it
// belongs to family F.
func FromNetipPrefix[F Family](p netip.Prefix) (Prefix[F], error) {
	if !p.IsValid() {
		return Prefix[F]{}, fmt.Errorf("%w: invalid prefix", ErrInvalidInput)
	}
	a := p.Addr()
	if err := checkFamily[F](a); err != nil {
		return Prefix[F]{}, err
	}
	if p.Bits() < 0 || p.Bits() > familyOf[F]().Bits() {
		return Prefix[F]{}, invalidFamilyErr[F](p.Bits())
	}
	return Prefix[F]{addr: p.Masked().Addr(), bits: p.Bits()}, nil
}

// MustPrefix is ParsePrefix but panics on error; used for compile-time
// constants such as the synthesized link-local and default routes.
func MustPrefix[F Family](s string) Prefix[F] {
	p, err := ParsePrefix[F](s)
	if err != nil {
		panic(err)
	}
	return p
}

func checkFamily[F Family](a netip.Addr) error {
	switch any(familyOf[F]()).(type) {
	case V4:
		if !a.Is4() {
			return fmt.Errorf("%w: %s is not an IPv4 address", ErrInvalidInput, a)
		}
	case V6:
		if !a.Is6() {
			return fmt.Errorf("%w: %s is not an IPv6 address", ErrInvalidInput, a)
		}
	}
	return nil
}

// Network returns the canonicalized network address.
func (p Prefix[F]) Network() netip.Addr { return p.addr }

// Bits returns the mask length.
func (p Prefix[F]) Bits() int { return p.bits }

// Contains reports whether addr is covered by p.
func (p Prefix[F]) Contains(a netip.Addr) bool {
	return netip.PrefixFrom(p.addr, p.bits).Contains(a)
}

// Equal compares network and mask length.
func (p Prefix[F]) Equal(o Prefix[F]) bool {
	return p.bits == o.bits && p.addr == o.addr
}

// Compare orders prefixes by (mask_len, network); family is fixed by F so it
// never participates in monomorphized comparisons (spec §3's ordering rule
// only differs across families, which never occur within a single Rib[F]).
func (p Prefix[F]) Compare(o Prefix[F]) int {
	if p.bits != o.bits {
		return p.bits - o.bits
	}
	return p.addr.Compare(o.addr)
}

func (p Prefix[F]) String() string {
	return netip.PrefixFrom(p.addr, p.bits).String()
}

// Netip returns the equivalent stdlib representation, used at API/wire
// boundaries.
func (p Prefix[F]) Netip() netip.Prefix {
	return netip.PrefixFrom(p.addr, p.bits)
}
