// Package seqstore caches evaluations of Hex positions keyed by ply depth
// and canonical position string.
package seqstore

import (
	"errors"
)

var ErrStoreBusy = errors.New("store is being written by another search")

// Record is the stored evaluation of one position.
type Record struct {
	// RawValue is the static heuristic value; always set.
	RawValue float64
	// Value is the value found by search. Only meaningful when Resolved.
	Value    float64
	Resolved bool
	// Nexts are the canonical keys of the positions one move later.
	Nexts []string
}

// Best is the resolved value if there is one, the raw value otherwise.
func (r *Record) Best() float64 {
	if r.Resolved {
		return r.Value
	}
	return r.RawValue
}

// Resolve sets the searched value. A resolved record keeps its first value.
func (r *Record) Resolve(v float64) {
	if r.Resolved {
		return
	}
	r.Value = v
	r.Resolved = true
}

// Store is a sequence value store. Depth is the number of stones played.
type Store interface {
	Get(depth int, key string) (*Record, bool)
	Put(depth int, key string, rec *Record)
	// ForEach calls fn for every record at the given depth.
	ForEach(depth int, fn func(key string, rec *Record))
	// MaxDepth is the deepest depth holding a record, -1 if empty.
	MaxDepth() int
	Len() int
	// Claim reserves the store for one writer until Release. A second
	// owner gets ErrStoreBusy.
	Claim(owner uint64) error
	Release(owner uint64)
}

// Budgeted is implemented by stores that can run out of room. Searches stop
// adding records once OverBudget is true.
type Budgeted interface {
	OverBudget() bool
}
