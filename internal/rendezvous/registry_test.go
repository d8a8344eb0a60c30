package rendezvous

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dreamware/kmerrma/internal/rank"
)

func TestRegistryPublishesOnceEveryRankArrives(t *testing.T) {
	reg := NewRankRegistry(3)

	_, complete, err := reg.Register(rank.Info{ID: 0, Addr: "http://a"})
	require.NoError(t, err)
	require.False(t, complete)

	_, complete, err = reg.Register(rank.Info{ID: 1, Addr: "http://b"})
	require.NoError(t, err)
	require.False(t, complete)

	dir, complete, err := reg.Register(rank.Info{ID: 2, Addr: "http://c"})
	require.NoError(t, err)
	require.True(t, complete)
	require.Len(t, dir.Ranks, 3)
	require.Equal(t, "http://a", dir.Ranks[0].Addr)
	require.Equal(t, "http://c", dir.Ranks[2].Addr)
}

func TestRegistryRejectsOutOfRangeRankID(t *testing.T) {
	reg := NewRankRegistry(2)

	_, _, err := reg.Register(rank.Info{ID: 5, Addr: "http://a"})
	require.Error(t, err)
}

func TestRegistryRejectsRegistrationAfterComplete(t *testing.T) {
	reg := NewRankRegistry(1)

	_, complete, err := reg.Register(rank.Info{ID: 0, Addr: "http://a"})
	require.NoError(t, err)
	require.True(t, complete)

	_, _, err = reg.Register(rank.Info{ID: 0, Addr: "http://a"})
	require.ErrorIs(t, err, ErrAlreadyComplete)
}

func TestRegisterUpdatesInPlaceBeforeComplete(t *testing.T) {
	reg := NewRankRegistry(2)

	_, complete, err := reg.Register(rank.Info{ID: 0, Addr: "http://stale"})
	require.NoError(t, err)
	require.False(t, complete)
	require.Equal(t, 1, reg.RegisteredCount())

	// A retried registration for the same rank before the directory
	// publishes updates the entry instead of counting it twice.
	_, complete, err = reg.Register(rank.Info{ID: 0, Addr: "http://fresh"})
	require.NoError(t, err)
	require.False(t, complete)
	require.Equal(t, 1, reg.RegisteredCount())

	dir, complete, err := reg.Register(rank.Info{ID: 1, Addr: "http://b"})
	require.NoError(t, err)
	require.True(t, complete)
	require.Equal(t, "http://fresh", dir.Ranks[0].Addr)
}

func TestDirectoryUnavailableBeforeComplete(t *testing.T) {
	reg := NewRankRegistry(2)

	_, ok := reg.Directory()
	require.False(t, ok)

	_, _, err := reg.Register(rank.Info{ID: 0, Addr: "http://a"})
	require.NoError(t, err)

	_, ok = reg.Directory()
	require.False(t, ok)
}
