package rendezvous

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultBarrierTimeout bounds how long a barrier phase waits for
// stragglers before declaring the phase fatally stuck. Spec.md §7 kind 3
// treats any transport fault as fatal with no retry; a rank that never
// arrives is the barrier's equivalent of that fault.
const DefaultBarrierTimeout = 30 * time.Second

// phaseState tracks arrivals for one barrier phase.
type phaseState struct {
	arrived  map[int]bool
	released chan struct{}
}

// BarrierCoordinator tracks arrivals per named phase and releases all
// waiters once worldSize arrivals are seen for that phase. Adapted from the
// teacher's HealthMonitor: the same "count acks, act at a threshold" shape,
// repurposed from health-check counting to barrier-arrival counting.
type BarrierCoordinator struct {
	mu        sync.Mutex
	worldSize int
	phases    map[string]*phaseState
	timeout   time.Duration
}

// NewBarrierCoordinator creates a coordinator for a world of the given
// size.
func NewBarrierCoordinator(worldSize int) *BarrierCoordinator {
	return &BarrierCoordinator{
		worldSize: worldSize,
		phases:    make(map[string]*phaseState),
		timeout:   DefaultBarrierTimeout,
	}
}

// Arrive records rank r's arrival at the named phase and blocks until every
// rank in the world has arrived at that same phase, or until the barrier
// timeout elapses.
func (b *BarrierCoordinator) Arrive(ctx context.Context, phase string, r int) error {
	b.mu.Lock()
	st, ok := b.phases[phase]
	if !ok {
		st = &phaseState{arrived: make(map[int]bool), released: make(chan struct{})}
		b.phases[phase] = st
	}

	st.arrived[r] = true
	arrivedCount := len(st.arrived)

	var released chan struct{}
	if arrivedCount >= b.worldSize {
		released = st.released
		close(released)
	} else {
		released = st.released
	}
	b.mu.Unlock()

	log.Printf("[rendezvous] phase %q: rank %d arrived (%d/%d)", phase, r, arrivedCount, b.worldSize)

	select {
	case <-released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.timeout):
		return fmt.Errorf("rendezvous: phase %q timed out waiting for all %d ranks", phase, b.worldSize)
	}
}
