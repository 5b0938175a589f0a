// Package addr provides the IP address, prefix and next-hop primitives that
// the rest of the forwarding core is built on. Addresses are represented
// with the standard library's net/netip, which is already the tagged V4/V6
// sum type the data model calls for; Family is used only as a zero-sized
// compile-time tag so that Rib and Route can be instantiated once per
// address family without a dynamic base class.
package addr

import "fmt"

// Family tags a family-parameterized type (Rib[F], Route[F], Prefix[F]) with
// its address width. Implementations are zero-sized marker types.
type Family interface {
	Bits() int
	name() string
}

// V4 tags the IPv4 family (32-bit addresses).
type V4 struct{}

func (V4) Bits() int    { return 32 }
func (V4) name() string { return "v4" }

// V6 tags the IPv6 family (128-bit addresses).
type V6 struct{}

func (V6) Bits() int    { return 128 }
func (V6) name() string { return "v6" }

// familyOf returns the zero-value tag for F, used only to read Bits()/name().
func familyOf[F Family]() F {
	var f F
	return f
}

// FamilyName returns "v4" or "v6" for F, used in log fields and error
// messages (spec §7: user-visible failures carry identifying context).
func FamilyName[F Family]() string {
	return familyOf[F]().name()
}

func invalidFamilyErr[F Family](bits int) error {
	return fmt.Errorf("%w: mask length %d exceeds %s width %d", ErrInvalidInput, bits, FamilyName[F](), familyOf[F]().Bits())
}
