package hashtable

import (
	"context"

	"github.com/dreamware/kmerrma/internal/kmer"
	"github.com/dreamware/kmerrma/internal/slot"
)

// Insert attempts to claim a slot for rec via linear probing starting at
// its home slot (SPEC_FULL.md §4.4). It returns ErrTableFull if the full
// probe sweep of N slots exhausts without a claim — ambiguous with "record
// already present" is not a concern here: insert never deduplicates
// (spec.md §4.4 "Duplicate handling").
func (t *Table) Insert(ctx context.Context, rec kmer.Record) error {
	if t.phase != phaseOpenForInsert {
		panic("hashtable: Insert called outside OPEN_FOR_INSERT")
	}

	n := t.layout.N
	if n == 0 {
		return ErrTableFull
	}

	h := rec.Hash()

	for probe := uint64(0); probe < n; probe++ {
		logical := (h + probe) % n
		s := t.slotFor(logical)

		won, err := slot.Claim(ctx, t.sub, s)
		if err != nil {
			return err
		}

		if won {
			return slot.Commit(ctx, t.sub, s, rec)
		}
	}

	return ErrTableFull
}

// Find locates the record matching key q via linear probing starting at
// its home slot, and writes it into out on success. It does not terminate
// early on an empty slot — SPEC_FULL.md §4.4 "Probe termination policy" —
// because a losing claimant at an earlier slot in this probe sequence may
// have moved its key further along while that earlier slot remains empty.
// The full N-slot sweep is always paid on a miss.
func (t *Table) Find(ctx context.Context, q kmer.Key, out *kmer.Record) error {
	if t.phase != phaseOpenForFind {
		panic("hashtable: Find called outside OPEN_FOR_FIND")
	}

	n := t.layout.N
	if n == 0 {
		return ErrKeyNotFound
	}

	h := q.Hash()

	for probe := uint64(0); probe < n; probe++ {
		logical := (h + probe) % n
		s := t.slotFor(logical)

		occupied, err := slot.Occupied(ctx, t.sub, s)
		if err != nil {
			return err
		}

		if !occupied {
			continue
		}

		rec, err := slot.Read(ctx, t.sub, s)
		if err != nil {
			return err
		}

		if q.Equal(rec) {
			*out = rec
			return nil
		}
	}

	return ErrKeyNotFound
}
