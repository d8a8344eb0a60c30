// Package rma defines the remote memory layer contract the hash table core
// consumes (SPEC_FULL.md §4.2): synchronous remote put/get on a payload
// array, and a relaxed atomic fetch-add on a parallel flags array, both
// addressed by a Slot already resolved to (rank, local offset) by the
// partitioning layer.
//
// Two implementations live in this module: httprma, which moves these calls
// over HTTP between rank processes, and rmatest, an in-process fake used by
// the hash table's own unit tests so they run without real network I/O.
package rma

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreamware/kmerrma/internal/kmer"
)

// ErrTransport reports a failed remote operation. Per SPEC_FULL.md §7 kind
// 3, this is always fatal at this layer — there is no retry here.
var ErrTransport = errors.New("rma: transport fault")

// Slot identifies one logical cell of the table, already resolved to the
// rank that owns it and that rank's local offset.
type Slot struct {
	Rank    int
	Local   uint64
	Logical uint64
}

func (s Slot) String() string {
	return fmt.Sprintf("slot{logical=%d rank=%d local=%d}", s.Logical, s.Rank, s.Local)
}

// Substrate is the one-sided RMA contract the probe engine is built on.
// Every method blocks the caller until the operation has completed
// remotely; concurrency is exposed only through RemoteFetchAddFlag's
// return value (SPEC_FULL.md §4.2, §5).
type Substrate interface {
	// RemotePutPayload writes rec into slot s's payload cell.
	RemotePutPayload(ctx context.Context, s Slot, rec kmer.Record) error

	// RemoteGetPayload reads slot s's payload cell.
	RemoteGetPayload(ctx context.Context, s Slot) (kmer.Record, error)

	// RemoteGetFlag reads slot s's flag cell.
	RemoteGetFlag(ctx context.Context, s Slot) (int32, error)

	// RemoteFetchAddFlag atomically adds delta to slot s's flag cell and
	// returns the pre-increment value.
	RemoteFetchAddFlag(ctx context.Context, s Slot, delta int32) (int32, error)

	// Barrier blocks until every rank has called Barrier for the named
	// phase, then returns for all of them. It is the one place payload
	// writes are published to readers across ranks (SPEC_FULL.md §5).
	// The core issues exactly two phases: "construction" and
	// "insert-find".
	Barrier(ctx context.Context, phase string) error
}

func transportErrf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrTransport}, args...)...)
}
