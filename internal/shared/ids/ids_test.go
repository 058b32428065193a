package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProducesValidUniqueIDs(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		id := New()
		require.True(t, Valid(id), id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
	require.NotEqual(t, TransactionCode(), TransactionCode())
}

func TestExtractToleratesGatewaySuffix(t *testing.T) {
	id, ok := Extract("65a1b2c3d4e5f60718293a4b_1700000000123")
	require.True(t, ok)
	require.Equal(t, "65a1b2c3d4e5f60718293a4b", id)

	id, ok = Extract("65A1B2C3D4E5F60718293A4B")
	require.True(t, ok)
	require.Equal(t, "65a1b2c3d4e5f60718293a4b", id)

	_, ok = Extract("short")
	require.False(t, ok)
	_, ok = Extract("zz a1b2c3d4e5f60718293a4b")
	require.False(t, ok)
}
