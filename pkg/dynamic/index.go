package dynamic

import (
	"log"
	"math"

	"github.com/google/btree"

	"neurolearn/pkg/common"
)

const btreeDegree = 32

// maxLevels bounds how many cascade levels a compaction may target, the
// same backstop-against-runaway-growth role index.maxRecursionLevels
// plays for recursive segmentation. capacity(levelNumber) doubles per
// level, so a baseCapacity=1 index would need 2^maxLevels live entries
// in one level to legitimately exceed this — far beyond what an
// in-memory index can hold regardless of available RAM, which is
// exactly the condition ErrCapacityExhausted exists to report.
//
// A package-level var rather than a const so a test can shrink it to
// force the boundary without allocating an index of pathological size.
var maxLevels = 62

// Index is the dynamic log-structured index: an L0 in-memory buffer
// backed by a B-tree plus a cascade of levels L1, L2, ... produced by
// compaction, giving insert/erase/find/lower_bound/upper_bound/iteration
// over a mutable key set with versioned most-recent-wins semantics.
//
// Index is not safe for concurrent use; callers serialize externally,
// the same contract a static index's immutability gives readers for
// free and a dynamic index cannot.
type Index[K common.Key, V any] struct {
	baseCapacity    int
	minIndexedLevel int

	buffer  *btree.BTreeG[entry[K, V]]
	levels  []*level[K, V] // levels[i] is L_{i+1}
	version uint64
	live    int
	stats   Stats
}

// NewIndex creates an empty dynamic index. baseCapacity is L0's
// capacity (and the unit levels above it double from); minIndexedLevel
// is the lowest level number that carries a static index and Bloom
// filter rather than being searched by direct binary search.
func NewIndex[K common.Key, V any](baseCapacity, minIndexedLevel int) *Index[K, V] {
	if baseCapacity <= 0 {
		baseCapacity = 1
	}
	return &Index[K, V]{
		baseCapacity:    baseCapacity,
		minIndexedLevel: minIndexedLevel,
		buffer:          btree.NewG(btreeDegree, bufferLess[K, V]),
	}
}

// InsertOrAssign records value v for key k under a fresh version,
// shadowing any earlier entry for k. It returns ErrCapacityExhausted if
// the compaction it triggers fails; the index is left exactly as it was
// before the call in that case, including the buffer entry the call
// itself just wrote.
func (ix *Index[K, V]) InsertOrAssign(k K, v V) error {
	_, existed := ix.Find(k)
	ix.version++
	e := entry[K, V]{Key: k, Value: v, Version: ix.version}
	ix.buffer.ReplaceOrInsert(e)
	if !existed {
		ix.live++
	}
	ix.stats.recordInsert()

	if err := ix.maybeCompact(); err != nil {
		ix.buffer.Delete(e)
		if !existed {
			ix.live--
		}
		ix.version--
		return err
	}
	return nil
}

// Erase writes a tombstone for k under a fresh version and reports
// whether k was present beforehand. A key with no current entry gets no
// tombstone at all, since there is nothing left for it to shadow. On
// ErrCapacityExhausted the tombstone this call wrote is retracted and
// the index is left exactly as it was before the call.
func (ix *Index[K, V]) Erase(k K) (bool, error) {
	_, existed := ix.Find(k)
	if !existed {
		return false, nil
	}
	ix.version++
	e := entry[K, V]{Key: k, Tombstone: true, Version: ix.version}
	ix.buffer.ReplaceOrInsert(e)
	ix.live--
	ix.stats.recordErase()

	if err := ix.maybeCompact(); err != nil {
		ix.buffer.Delete(e)
		ix.live++
		ix.version--
		return true, err
	}
	return true, nil
}

// Find returns the value for k and whether it is present: false if k
// was never inserted, or its newest entry is a tombstone.
func (ix *Index[K, V]) Find(k K) (V, bool) {
	ix.stats.recordLookup()
	if e, ok := ix.bufferLookup(k); ok {
		if e.Tombstone {
			var zero V
			return zero, false
		}
		return e.Value, true
	}
	for _, lvl := range ix.levels {
		if e, ok := lvl.lookup(k); ok {
			if e.Tombstone {
				var zero V
				return zero, false
			}
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// Count returns 1 if k is present, 0 otherwise.
func (ix *Index[K, V]) Count(k K) int {
	if _, ok := ix.Find(k); ok {
		return 1
	}
	return 0
}

// Size returns the number of keys currently present (live, non-deleted).
func (ix *Index[K, V]) Size() int {
	return ix.live
}

// Stats returns the index's operation counters.
func (ix *Index[K, V]) Stats() Stats {
	return ix.stats
}

func (ix *Index[K, V]) bufferLookup(k K) (entry[K, V], bool) {
	pivot := entry[K, V]{Key: k, Version: math.MaxUint64}
	var found entry[K, V]
	ok := false
	ix.buffer.AscendGreaterOrEqual(pivot, func(item entry[K, V]) bool {
		if item.Key == k {
			found = item
			ok = true
		}
		return false
	})
	return found, ok
}

func (ix *Index[K, V]) maybeCompact() error {
	if ix.buffer.Len() < ix.baseCapacity {
		return nil
	}
	return ix.compact()
}

// compact drains the buffer and cascades it up through the level list
// following the capacity-doubling merge rule: fold in consecutive
// levels starting at L1 until the accumulated size fits the next
// level's capacity, then merge that whole set into it.
func (ix *Index[K, V]) compact() error {
	bufEntries := make([]entry[K, V], 0, ix.buffer.Len())
	ix.buffer.Ascend(func(e entry[K, V]) bool {
		bufEntries = append(bufEntries, e)
		return true
	})

	target := 1
	sum := len(bufEntries)
	for target <= maxLevels && sum+ix.levelSize(target) > ix.capacity(target) {
		sum += ix.levelSize(target)
		target++
	}
	if target > maxLevels {
		// Nothing has been mutated yet: bufEntries is a read-only
		// snapshot of the buffer and ix.levels hasn't been touched, so
		// returning here leaves the index exactly as it was before
		// the call, satisfying the transactional-on-failure contract.
		return ErrCapacityExhausted
	}
	targetIdx := target - 1

	runs := make([][]entry[K, V], 0, target+1)
	runs = append(runs, bufEntries)
	for i := 1; i < target; i++ {
		runs = append(runs, ix.levels[i-1].entries)
	}
	ix.ensureLevel(targetIdx)
	runs = append(runs, ix.levels[targetIdx].entries)

	dropTombstones := ix.isOldestTarget(targetIdx)
	// The merge heap must break ties on equal keys by version, newest
	// first: every run being merged here only ever holds one entry per
	// key except the buffer run, but a stale entry surviving in an
	// already-compacted level is exactly as dangerous as a stale one in
	// the buffer, so the comparator cannot special-case either source.
	merged := mergeRuns(runs, bufferLess[K, V], dropTombstones)

	ix.buffer = btree.NewG(btreeDegree, bufferLess[K, V])
	for i := 0; i < targetIdx; i++ {
		ix.levels[i] = emptyLevel[K, V]()
	}
	ix.levels[targetIdx] = buildLevel[K, V](merged, target, ix.minIndexedLevel)
	ix.stats.recordCompaction()
	log.Printf("[dynamic] compaction merged L0..L%d -> L%d (%d entries)", target-1, target, len(merged))
	return nil
}

func (ix *Index[K, V]) capacity(levelNumber int) int {
	return ix.baseCapacity << uint(levelNumber)
}

func (ix *Index[K, V]) levelSize(levelNumber int) int {
	i := levelNumber - 1
	if i < 0 || i >= len(ix.levels) {
		return 0
	}
	return len(ix.levels[i].entries)
}

func (ix *Index[K, V]) ensureLevel(i int) {
	for len(ix.levels) <= i {
		ix.levels = append(ix.levels, emptyLevel[K, V]())
	}
}

func (ix *Index[K, V]) isOldestTarget(targetIdx int) bool {
	for i := targetIdx + 1; i < len(ix.levels); i++ {
		if len(ix.levels[i].entries) > 0 {
			return false
		}
	}
	return true
}
