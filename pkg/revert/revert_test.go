package revert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackRevertsInReverseOrder(t *testing.T) {
	var order []string
	var s Stack

	s.Push(func() error { order = append(order, "insert-route"); return nil })
	s.Push(func() error { order = append(order, "update-multi"); return nil })
	s.Push(func() error { order = append(order, "resolve"); return nil })

	require.NoError(t, s.Revert())
	require.Equal(t, []string{"resolve", "update-multi", "insert-route"}, order)
	require.Equal(t, 0, s.Len())
}

func TestStackRevertStopsAtFirstError(t *testing.T) {
	var first, second, third bool
	var s Stack

	s.Push(func() error { first = true; return nil })
	s.Push(func() error { second = true; return errors.New("rollback failed") })
	s.Push(func() error { third = true; return nil })

	err := s.Revert()
	require.Error(t, err)
	require.Contains(t, err.Error(), "skipping 1 revert functions")

	require.True(t, third)
	require.True(t, second)
	require.False(t, first)
}

func TestEmptyStackRevertsCleanly(t *testing.T) {
	var s Stack
	require.NoError(t, s.Revert())
}
