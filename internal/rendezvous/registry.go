// Package rendezvous implements the control-plane process every rank talks
// to for registration, directory lookup, and its collective barriers
// (construction, the insert/find phase boundary, and teardown). It is not
// on the RMA data path —
// payload and flag operations go directly rank-to-rank.
//
// Grounded in the teacher's internal/coordinator package: RankRegistry
// generalizes ShardRegistry's "collect registrations, publish once
// complete" shape; BarrierCoordinator generalizes HealthMonitor's
// "count acks against a threshold, fire a callback" shape from health
// checks to barrier arrivals.
package rendezvous

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/dreamware/kmerrma/internal/rank"
)

// ErrAlreadyComplete is returned when a rank tries to register after the
// directory has already been published.
var ErrAlreadyComplete = errors.New("rendezvous: registration already complete")

// RankRegistry collects rank registrations and publishes the directory once
// every expected rank has checked in.
type RankRegistry struct {
	mu        sync.RWMutex
	ranks     []rank.Info
	worldSize int
	complete  bool
}

// NewRankRegistry creates a registry expecting exactly worldSize ranks.
func NewRankRegistry(worldSize int) *RankRegistry {
	return &RankRegistry{worldSize: worldSize}
}

// Register records rank info. It returns the directory and true once every
// expected rank has registered, or a zero Directory and false while
// registration is still in progress.
func (r *RankRegistry) Register(info rank.Info) (rank.Directory, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.complete {
		return rank.Directory{}, false, fmt.Errorf("%w: rank %d", ErrAlreadyComplete, info.ID)
	}

	if info.ID < 0 || info.ID >= r.worldSize {
		return rank.Directory{}, false, fmt.Errorf("rendezvous: rank id %d out of range [0, %d)", info.ID, r.worldSize)
	}

	// A rank that registers twice before the directory publishes — e.g.
	// retrying after a response was lost in transit — updates its entry in
	// place rather than double-counting, the same re-registration lookup
	// the teacher's coordinator does for node registration.
	if idx := slices.IndexFunc(r.ranks, func(existing rank.Info) bool { return existing.ID == info.ID }); idx >= 0 {
		r.ranks[idx] = info
	} else {
		r.ranks = append(r.ranks, info)
	}

	if len(r.ranks) < r.worldSize {
		return rank.Directory{}, false, nil
	}

	r.complete = true

	return r.directoryLocked(), true, nil
}

// Directory returns the published directory, or false if registration has
// not completed yet.
func (r *RankRegistry) Directory() (rank.Directory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.complete {
		return rank.Directory{}, false
	}

	return r.directoryLocked(), true
}

func (r *RankRegistry) directoryLocked() rank.Directory {
	out := make([]rank.Info, r.worldSize)
	for _, info := range r.ranks {
		out[info.ID] = info
	}

	return rank.Directory{Ranks: out}
}

// RegisteredCount reports how many distinct ranks have checked in so far.
func (r *RankRegistry) RegisteredCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ranks)
}
