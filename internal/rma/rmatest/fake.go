// Package rmatest provides an in-process fake of rma.Substrate that runs
// every simulated rank's LocalStore in the same process, so the hash
// table's own unit tests (internal/hashtable) exercise the real probe
// engine and slot protocol without paying for real HTTP round trips
// (SPEC_FULL.md §8).
package rmatest

import (
	"context"
	"sync"

	"github.com/dreamware/kmerrma/internal/kmer"
	"github.com/dreamware/kmerrma/internal/rma"
)

// World holds every simulated rank's LocalStore plus the barrier state
// shared between them.
type World struct {
	mu        sync.Mutex
	stores    []*rma.LocalStore
	worldSize int
	barriers  map[string]*cyclicBarrier
}

type cyclicBarrier struct {
	mu       sync.Mutex
	arrived  int
	released chan struct{}
}

// NewWorld creates a World of worldSize ranks, each owning mySize(r) local
// slots per the given per-rank sizes.
func NewWorld(mySizes []uint64) *World {
	stores := make([]*rma.LocalStore, len(mySizes))
	for i, n := range mySizes {
		stores[i] = rma.NewLocalStore(n)
	}

	return &World{
		stores:    stores,
		worldSize: len(mySizes),
		barriers:  make(map[string]*cyclicBarrier),
	}
}

// Substrate returns the rma.Substrate view of this world for rank r.
func (w *World) Substrate(r int) rma.Substrate {
	return &substrate{world: w, rank: r}
}

func (w *World) arrive(phase string) {
	w.mu.Lock()
	b, ok := w.barriers[phase]
	if !ok {
		b = &cyclicBarrier{released: make(chan struct{})}
		w.barriers[phase] = b
	}
	w.mu.Unlock()

	b.mu.Lock()
	b.arrived++
	count := b.arrived
	released := b.released
	if count >= w.worldSize {
		close(released)
	}
	b.mu.Unlock()

	<-released
}

// substrate is the per-rank view of a World.
type substrate struct {
	world *World
	rank  int
}

var _ rma.Substrate = (*substrate)(nil)

func (s *substrate) RemotePutPayload(_ context.Context, slot rma.Slot, rec kmer.Record) error {
	s.world.stores[slot.Rank].PutPayload(slot.Local, rec)
	return nil
}

func (s *substrate) RemoteGetPayload(_ context.Context, slot rma.Slot) (kmer.Record, error) {
	return s.world.stores[slot.Rank].GetPayload(slot.Local), nil
}

func (s *substrate) RemoteGetFlag(_ context.Context, slot rma.Slot) (int32, error) {
	return s.world.stores[slot.Rank].GetFlag(slot.Local), nil
}

func (s *substrate) RemoteFetchAddFlag(_ context.Context, slot rma.Slot, delta int32) (int32, error) {
	return s.world.stores[slot.Rank].FetchAddFlag(slot.Local, delta), nil
}

func (s *substrate) Barrier(_ context.Context, phase string) error {
	s.world.arrive(phase)
	return nil
}
