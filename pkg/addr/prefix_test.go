package addr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrefixCanonicalizesHostBits(t *testing.T) {
	p, err := ParsePrefix[V4]("10.0.0.5/24")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0/24", p.String())
}

func TestParsePrefixRejectsWrongFamily(t *testing.T) {
	_, err := ParsePrefix[V4]("2001:db8::/32")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParsePrefixRejectsOversizedMask(t *testing.T) {
	_, err := ParsePrefix[V4]("10.0.0.0/33")
	require.Error(t, err)
}

func TestParsePrefixRejectsMalformedText(t *testing.T) {
	_, err := ParsePrefix[V4]("not-a-prefix")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPrefixContains(t *testing.T) {
	p := MustPrefix[V4]("10.0.0.0/24")
	require.True(t, p.Contains(mustAddr("10.0.0.200")))
	require.False(t, p.Contains(mustAddr("10.0.1.1")))
}

func TestPrefixCompareByMaskLenThenNetwork(t *testing.T) {
	narrow := MustPrefix[V4]("10.0.0.0/8")
	wide := MustPrefix[V4]("10.0.0.0/24")
	require.Less(t, narrow.Compare(wide), 0)

	a := MustPrefix[V4]("10.0.0.0/24")
	b := MustPrefix[V4]("10.0.1.0/24")
	require.Less(t, a.Compare(b), 0)
}
