package partition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrideIsCeilDivision(t *testing.T) {
	require.Equal(t, uint64(3), New(10, 4).Stride)
	require.Equal(t, uint64(5), New(10, 2).Stride)
	require.Equal(t, uint64(10), New(10, 1).Stride)
}

func TestMySizeSumsToN(t *testing.T) {
	for _, tc := range []struct {
		n     uint64
		world int
	}{
		{10, 4}, {17, 3}, {1, 1}, {0, 4}, {100, 7},
	} {
		layout := New(tc.n, tc.world)

		var total uint64
		for r := 0; r < tc.world; r++ {
			total += layout.MySize(r)
		}

		require.Equal(t, tc.n, total, "n=%d world=%d", tc.n, tc.world)
	}
}

func TestLocateRoundTripsWithOffset(t *testing.T) {
	layout := New(23, 5)

	for s := uint64(0); s < 23; s++ {
		r, local := layout.Locate(s)
		require.Equal(t, s, layout.Offset(r)+local)
	}
}

func TestLastRankMayBeShort(t *testing.T) {
	layout := New(10, 3) // stride = 4: ranks own 4,4,2
	require.Equal(t, uint64(4), layout.MySize(0))
	require.Equal(t, uint64(4), layout.MySize(1))
	require.Equal(t, uint64(2), layout.MySize(2))
}

func TestSingleRankOwnsEverything(t *testing.T) {
	layout := New(42, 1)
	require.Equal(t, uint64(42), layout.MySize(0))

	for s := uint64(0); s < 42; s++ {
		r, local := layout.Locate(s)
		require.Equal(t, 0, r)
		require.Equal(t, s, local)
	}
}

func TestWorldEqualsNEachRankOwnsOneSlot(t *testing.T) {
	layout := New(4, 4)
	for r := 0; r < 4; r++ {
		require.Equal(t, uint64(1), layout.MySize(r))
	}
}
