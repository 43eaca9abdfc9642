package seqstore

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// rough per-record overhead: map entry, Record struct, slice headers.
const recordOverhead = 96

// MemoryStore keeps every record in memory for the lifetime of the store.
// Nothing is ever evicted. It is not safe for concurrent use.
type MemoryStore struct {
	levels   []map[string]*Record
	maxDepth int
	count    int

	bytes       uint64
	budgetBytes uint64

	owner   uint64
	claimed bool

	lookups uint64
	hits    uint64
	created uint64
}

// NewMemoryStore creates a store with one level per possible depth of a
// dim×dim board.
func NewMemoryStore(dim int) *MemoryStore {
	s := &MemoryStore{}
	s.reset(dim*dim + 1)
	return s
}

func (s *MemoryStore) reset(levels int) {
	s.levels = make([]map[string]*Record, levels)
	for i := range s.levels {
		s.levels[i] = make(map[string]*Record)
	}
	s.maxDepth = -1
	s.count = 0
	s.bytes = 0
	s.lookups = 0
	s.hits = 0
	s.created = 0
}

// Reset drops every record. It must not be called while the store is
// claimed.
func (s *MemoryStore) Reset() {
	s.reset(len(s.levels))
	log.Debug().Int("levels", len(s.levels)).Msg("sequence-store-reset")
}

// SetMemoryFraction caps the approximate size of the store at a fraction of
// the system memory. Zero or a negative fraction removes the cap.
func (s *MemoryStore) SetMemoryFraction(fraction float64) {
	if fraction <= 0 {
		s.budgetBytes = 0
		return
	}
	total := memory.TotalMemory()
	s.budgetBytes = uint64(fraction * float64(total))
	log.Info().Float64("fraction", fraction).
		Uint64("budget-bytes", s.budgetBytes).
		Uint64("total-system-memory-bytes", total).
		Msg("sequence-store-budget")
}

func (s *MemoryStore) level(depth int) map[string]*Record {
	if depth < 0 {
		return nil
	}
	for depth >= len(s.levels) {
		s.levels = append(s.levels, make(map[string]*Record))
	}
	return s.levels[depth]
}

func (s *MemoryStore) Get(depth int, key string) (*Record, bool) {
	s.lookups++
	if depth < 0 || depth >= len(s.levels) {
		return nil, false
	}
	rec, ok := s.levels[depth][key]
	if ok {
		s.hits++
	}
	return rec, ok
}

func (s *MemoryStore) Put(depth int, key string, rec *Record) {
	lvl := s.level(depth)
	if lvl == nil {
		return
	}
	if old, ok := lvl[key]; ok {
		s.bytes -= recordSize(key, old)
	} else {
		s.count++
		s.created++
	}
	lvl[key] = rec
	s.bytes += recordSize(key, rec)
	s.maxDepth = max(s.maxDepth, depth)
}

func recordSize(key string, rec *Record) uint64 {
	n := uint64(recordOverhead + len(key))
	for _, k := range rec.Nexts {
		n += uint64(16 + len(k))
	}
	return n
}

func (s *MemoryStore) ForEach(depth int, fn func(key string, rec *Record)) {
	if depth < 0 || depth >= len(s.levels) {
		return
	}
	for k, rec := range s.levels[depth] {
		fn(k, rec)
	}
}

func (s *MemoryStore) MaxDepth() int {
	return s.maxDepth
}

func (s *MemoryStore) Len() int {
	return s.count
}

// LenAt is the number of records at one depth.
func (s *MemoryStore) LenAt(depth int) int {
	if depth < 0 || depth >= len(s.levels) {
		return 0
	}
	return len(s.levels[depth])
}

func (s *MemoryStore) Claim(owner uint64) error {
	if s.claimed && s.owner != owner {
		return ErrStoreBusy
	}
	s.claimed = true
	s.owner = owner
	return nil
}

func (s *MemoryStore) Release(owner uint64) {
	if s.claimed && s.owner == owner {
		s.claimed = false
		s.owner = 0
	}
}

// OverBudget is true once the approximate size passes the memory cap.
func (s *MemoryStore) OverBudget() bool {
	return s.budgetBytes > 0 && s.bytes > s.budgetBytes
}

// ApproxBytes is the estimated memory held by the records.
func (s *MemoryStore) ApproxBytes() uint64 {
	return s.bytes
}

// Stats are the store's usage counters.
type Stats struct {
	Records int
	Lookups uint64
	Hits    uint64
	Created uint64
	Bytes   uint64
}

func (s *MemoryStore) Stats() Stats {
	return Stats{
		Records: s.count,
		Lookups: s.lookups,
		Hits:    s.hits,
		Created: s.created,
		Bytes:   s.bytes,
	}
}
