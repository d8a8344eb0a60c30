package hashtable

import "errors"

// ErrTableFull is the kind-1 error of SPEC_FULL.md §7: Insert exhausted its
// full probe sweep without claiming a slot.
var ErrTableFull = errors.New("hashtable: table is full")

// ErrKeyNotFound is the kind-2 error of SPEC_FULL.md §7: Find exhausted its
// full probe sweep without locating a matching key.
var ErrKeyNotFound = errors.New("hashtable: key not found")
