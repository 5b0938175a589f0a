package rib

import "github.com/EnterStudios/fabricstated/pkg/addr"

// The RIB is keyed into the underlying immutable radix tree by expanding each address into one byte per bit rather than the
// raw address bytes. hashicorp/go-immutable-radix's LongestPrefix walks the
// tree by byte, so a raw-byte key could only ever match on byte-aligned
// (multiple-of-8) mask lengths. Expanding to one byte per bit means a
// stored key of length N bytes is a byte-prefix of the query key exactly
// when its first N *bits* match the query address — which is exactly
// longest-prefix match at bit granularity. The constant cost (32 or 128
// bytes per key) is irrelevant at FIB scale and buys a real, correct
// implementation on top of a well-tested library rather than a hand-rolled
// PATRICIA trie.
func bitKey[F addr.Family](raw []byte, nbits int) []byte {
	out := make([]byte, nbits)
	for i := 0; i < nbits; i++ {
		byteIdx := i / 8
		bitIdx := 7 - (i % 8)
		if raw[byteIdx]&(1<<bitIdx) != 0 {
			out[i] = 1
		}
	}
	return out
}

func prefixKey[F addr.Family](p addr.Prefix[F]) []byte {
	return bitKey[F](addrBytes(p.Network()), p.Bits())
}

func addrKey[F addr.Family](bits int, raw []byte) []byte {
	return bitKey[F](raw, bits)
}
