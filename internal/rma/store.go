package rma

import (
	"sync"
	"sync/atomic"

	"github.com/dreamware/kmerrma/internal/kmer"
)

// LocalStore holds one rank's share of the two parallel global arrays: a
// payload array of k-mer records and a flags array of claim counters
// (SPEC_FULL.md §2 layer 2). Both httprma's server handlers and rmatest's
// in-process fake are built directly on top of this type, so the same
// claim/commit semantics back both the real and the test substrate.
type LocalStore struct {
	payload []kmer.Record
	flags   []int32
	mu      []sync.RWMutex // per-offset lock guarding a payload write/read pair
}

// NewLocalStore allocates a partition of size n, with every flag cell
// initialized to 0 (SPEC_FULL.md §3 invariant: "Flag cells are initialized
// to 0 on every process before any insert is issued").
func NewLocalStore(n uint64) *LocalStore {
	return &LocalStore{
		payload: make([]kmer.Record, n),
		flags:   make([]int32, n),
		mu:      make([]sync.RWMutex, n),
	}
}

// Size returns the number of local slots this store manages.
func (s *LocalStore) Size() uint64 {
	return uint64(len(s.payload))
}

// PutPayload writes rec into the local offset's payload cell.
func (s *LocalStore) PutPayload(offset uint64, rec kmer.Record) {
	s.mu[offset].Lock()
	defer s.mu[offset].Unlock()
	s.payload[offset] = rec
}

// GetPayload reads the local offset's payload cell.
func (s *LocalStore) GetPayload(offset uint64) kmer.Record {
	s.mu[offset].RLock()
	defer s.mu[offset].RUnlock()
	return s.payload[offset]
}

// GetFlag reads the local offset's flag cell.
func (s *LocalStore) GetFlag(offset uint64) int32 {
	return atomic.LoadInt32(&s.flags[offset])
}

// FetchAddFlag atomically adds delta to the local offset's flag cell and
// returns the pre-increment value — the sole atomic primitive the slot
// protocol needs (SPEC_FULL.md §4.3).
func (s *LocalStore) FetchAddFlag(offset uint64, delta int32) int32 {
	return atomic.AddInt32(&s.flags[offset], delta) - delta
}
