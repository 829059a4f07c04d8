package dynamic

import "sync/atomic"

// Stats holds monotonically increasing operation counters for a dynamic
// index, adapted from the teacher's workload stats to the operations a
// log-structured cascade actually performs.
type Stats struct {
	inserts     uint64
	erases      uint64
	lookups     uint64
	compactions uint64
}

func (s *Stats) recordInsert()     { atomic.AddUint64(&s.inserts, 1) }
func (s *Stats) recordErase()      { atomic.AddUint64(&s.erases, 1) }
func (s *Stats) recordLookup()     { atomic.AddUint64(&s.lookups, 1) }
func (s *Stats) recordCompaction() { atomic.AddUint64(&s.compactions, 1) }

func (s *Stats) Inserts() uint64     { return atomic.LoadUint64(&s.inserts) }
func (s *Stats) Erases() uint64      { return atomic.LoadUint64(&s.erases) }
func (s *Stats) Lookups() uint64     { return atomic.LoadUint64(&s.lookups) }
func (s *Stats) Compactions() uint64 { return atomic.LoadUint64(&s.compactions) }
