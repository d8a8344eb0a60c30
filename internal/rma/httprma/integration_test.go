package httprma

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dreamware/kmerrma/internal/kmer"
	"github.com/dreamware/kmerrma/internal/rank"
	"github.com/dreamware/kmerrma/internal/rma"
)

func directoryOf(ranks ...*rankServer) rank.Directory {
	var dir rank.Directory
	for i, r := range ranks {
		dir.Ranks = append(dir.Ranks, rank.Info{ID: i, Addr: r.http.URL})
	}

	return dir
}

func rankDirectory() rank.Directory {
	return rank.Directory{Ranks: []rank.Info{{ID: 0, Addr: "http://127.0.0.1:1"}}}
}

// rankServer is one rank's real HTTP server backed by a real LocalStore,
// spun up with httptest.Server rather than a subprocess — the httprma
// substrate's own integration coverage, grounded in the teacher's
// test/integration package's pattern of exercising real network round trips
// instead of in-process fakes (the fakes live in internal/rma/rmatest and
// back internal/hashtable's own tests instead).
type rankServer struct {
	store *rma.LocalStore
	http  *httptest.Server
}

func newRankServer(size uint64) *rankServer {
	store := rma.NewLocalStore(size)
	srv := NewServer(store)
	ts := httptest.NewServer(srv.Handler())

	return &rankServer{store: store, http: ts}
}

func (r *rankServer) Close() {
	r.http.Close()
}

func TestClientPutGetPayloadOverRealHTTP(t *testing.T) {
	rank0 := newRankServer(4)
	defer rank0.Close()

	dir := directoryOf(rank0)
	c := &Client{Directory: dir, MyRank: 0}

	rec, err := kmer.NewRecord("ACGT", 4, 'T', 'F')
	require.NoError(t, err)

	s := rma.Slot{Rank: 0, Local: 2, Logical: 2}

	require.NoError(t, c.RemotePutPayload(context.Background(), s, rec))

	got, err := c.RemoteGetPayload(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, rec.Bases, got.Bases)
	require.Equal(t, rec.ForwardExt, got.ForwardExt)
	require.Equal(t, rec.BackwardExt, got.BackwardExt)
}

func TestClientFetchAddFlagOverRealHTTP(t *testing.T) {
	rank0 := newRankServer(4)
	defer rank0.Close()

	c := &Client{Directory: directoryOf(rank0), MyRank: 0}
	s := rma.Slot{Rank: 0, Local: 0, Logical: 0}

	pre1, err := c.RemoteFetchAddFlag(context.Background(), s, 1)
	require.NoError(t, err)
	require.Equal(t, int32(0), pre1)

	pre2, err := c.RemoteFetchAddFlag(context.Background(), s, 1)
	require.NoError(t, err)
	require.Equal(t, int32(1), pre2)

	flag, err := c.RemoteGetFlag(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, int32(2), flag)
}

func TestClientRemoteCallToUnknownRankFails(t *testing.T) {
	c := &Client{Directory: rankDirectory(), MyRank: 0}

	_, err := c.RemoteGetFlag(context.Background(), rma.Slot{Rank: 5, Local: 0})
	require.ErrorIs(t, err, rma.ErrTransport)
}
