// Package hashtable implements the probe engine and table state machine of
// SPEC_FULL.md §4.4–§4.5: the distributed open-addressing hash table built
// on top of the slot protocol and the RMA substrate.
package hashtable

import (
	"context"
	"fmt"

	"github.com/dreamware/kmerrma/internal/partition"
	"github.com/dreamware/kmerrma/internal/rma"
)

// phase tracks the table's lifecycle per SPEC_FULL.md §4.5's state machine:
// constructing -> (construction barrier) -> openForInsert ->
// (phase barrier) -> openForFind.
type phase int

const (
	phaseConstructing phase = iota
	phaseOpenForInsert
	phaseOpenForFind
)

const (
	phaseNameConstruction = "construction"
	phaseNameInsertFind   = "insert-find"
)

// Table is the global distributed hash table: a fixed logical capacity N
// partitioned across a world of ranks, addressed entirely through an
// rma.Substrate. It holds no local storage of its own — that lives in each
// rank's rma.LocalStore, reached through the substrate.
type Table struct {
	sub    rma.Substrate
	layout partition.Layout
	phase  phase
}

// New constructs the table collectively: every rank must call New with the
// same capacity. It issues the construction barrier itself (SPEC_FULL.md
// §6: "Caller must issue a collective barrier before first use" — folded in
// here so callers cannot forget it) and returns a table ready for Insert.
func New(ctx context.Context, sub rma.Substrate, capacity uint64, worldSize int) (*Table, error) {
	if worldSize <= 0 {
		return nil, fmt.Errorf("hashtable: world size must be > 0, got %d", worldSize)
	}

	layout := partition.New(capacity, worldSize)

	if err := sub.Barrier(ctx, phaseNameConstruction); err != nil {
		return nil, fmt.Errorf("hashtable: construction barrier: %w", err)
	}

	return &Table{sub: sub, layout: layout, phase: phaseOpenForInsert}, nil
}

// Size returns the global capacity N.
func (t *Table) Size() uint64 {
	return t.layout.N
}

// BeginFindPhase issues the mandatory phase barrier between insert and find
// (SPEC_FULL.md §4.4 "Consistency requirement") and transitions the table
// to OPEN_FOR_FIND. Calling Insert after this, or Find before it, is a
// contract violation (SPEC_FULL.md §7 kind 4) and panics — cheap to assert,
// per spec.md's explicit invitation to do so.
func (t *Table) BeginFindPhase(ctx context.Context) error {
	if t.phase != phaseOpenForInsert {
		panic("hashtable: BeginFindPhase called outside OPEN_FOR_INSERT")
	}

	if err := t.sub.Barrier(ctx, phaseNameInsertFind); err != nil {
		return fmt.Errorf("hashtable: phase barrier: %w", err)
	}

	t.phase = phaseOpenForFind

	return nil
}

func (t *Table) slotFor(logical uint64) rma.Slot {
	r, local := t.layout.Locate(logical)
	return rma.Slot{Rank: r, Local: local, Logical: logical}
}
