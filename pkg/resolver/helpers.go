package resolver

import (
	"net/netip"

	"github.com/EnterStudios/fabricstated/pkg/addr"
)

func mustV6Prefix(p netip.Prefix) addr.Prefix[addr.V6] {
	pr, err := addr.FromNetipPrefix[addr.V6](p)
	if err != nil {
		panic(err)
	}
	return pr
}

func addr4FromNetip(p netip.Prefix) (addr.Prefix[addr.V4], error) {
	return addr.FromNetipPrefix[addr.V4](p)
}

func addr6FromNetip(p netip.Prefix) (addr.Prefix[addr.V6], error) {
	return addr.FromNetipPrefix[addr.V6](p)
}
