package slot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dreamware/kmerrma/internal/kmer"
	"github.com/dreamware/kmerrma/internal/rma"
	"github.com/dreamware/kmerrma/internal/rma/rmatest"
)

func TestClaimWinnerIsUnique(t *testing.T) {
	world := rmatest.NewWorld([]uint64{4})
	sub := world.Substrate(0)
	s := rma.Slot{Rank: 0, Local: 0, Logical: 0}

	won1, err := Claim(context.Background(), sub, s)
	require.NoError(t, err)
	require.True(t, won1)

	won2, err := Claim(context.Background(), sub, s)
	require.NoError(t, err)
	require.False(t, won2)
}

func TestCommitThenReadRoundTrips(t *testing.T) {
	world := rmatest.NewWorld([]uint64{4})
	sub := world.Substrate(0)
	s := rma.Slot{Rank: 0, Local: 2, Logical: 2}

	won, err := Claim(context.Background(), sub, s)
	require.NoError(t, err)
	require.True(t, won)

	rec, err := kmer.NewRecord("ACGT", 4, 'T', 'F')
	require.NoError(t, err)

	require.NoError(t, Commit(context.Background(), sub, s, rec))

	occupied, err := Occupied(context.Background(), sub, s)
	require.NoError(t, err)
	require.True(t, occupied)

	got, err := Read(context.Background(), sub, s)
	require.NoError(t, err)
	require.Equal(t, rec.Bases, got.Bases)
}

func TestOccupiedFalseBeforeClaim(t *testing.T) {
	world := rmatest.NewWorld([]uint64{4})
	sub := world.Substrate(0)
	s := rma.Slot{Rank: 0, Local: 3, Logical: 3}

	occupied, err := Occupied(context.Background(), sub, s)
	require.NoError(t, err)
	require.False(t, occupied)
}
