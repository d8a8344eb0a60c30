// Package slot implements the claim/commit discipline of SPEC_FULL.md §4.3:
// at-most-one winning writer per logical slot, identified by the unique
// caller that observes a pre-increment fetch-add value of zero.
package slot

import (
	"context"

	"github.com/dreamware/kmerrma/internal/kmer"
	"github.com/dreamware/kmerrma/internal/rma"
)

// Claim attempts to own slot s by issuing exactly one remote fetch-add on
// its flag cell. It reports whether the caller won (observed pre-increment
// 0); a winner must go on to write the payload itself — Claim never writes
// it.
func Claim(ctx context.Context, sub rma.Substrate, s rma.Slot) (won bool, err error) {
	pre, err := sub.RemoteFetchAddFlag(ctx, s, 1)
	if err != nil {
		return false, err
	}

	return pre == 0, nil
}

// Commit writes rec into slot s's payload cell. Call it only after Claim
// reports a win for that slot.
func Commit(ctx context.Context, sub rma.Substrate, s rma.Slot, rec kmer.Record) error {
	return sub.RemotePutPayload(ctx, s, rec)
}

// Occupied reports whether slot s is nominally occupied (flag != 0). Its
// payload is authoritative only after the phase barrier separating writers
// from readers (SPEC_FULL.md §4.3); callers across the insert/find boundary
// are responsible for having issued that barrier first.
func Occupied(ctx context.Context, sub rma.Substrate, s rma.Slot) (bool, error) {
	flag, err := sub.RemoteGetFlag(ctx, s)
	if err != nil {
		return false, err
	}

	return flag != 0, nil
}

// Read fetches the payload at slot s. Call it only once Occupied reports
// true and only after the phase barrier.
func Read(ctx context.Context, sub rma.Substrate, s rma.Slot) (kmer.Record, error) {
	return sub.RemoteGetPayload(ctx, s)
}
