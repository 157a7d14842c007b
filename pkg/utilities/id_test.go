package utilities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIDUnique(t *testing.T) {
	seen := make(map[int64]struct{})
	for i := 0; i < 1000; i++ {
		id, err := NewID()
		require.NoError(t, err)
		require.Greater(t, id, int64(0))
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
}

func TestNewKSUIDUnique(t *testing.T) {
	a := NewKSUID()
	b := NewKSUID()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
