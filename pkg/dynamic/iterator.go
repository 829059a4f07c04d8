package dynamic

import "neurolearn/pkg/common"

// Iterator yields the live (non-tombstone) entries of a dynamic index in
// ascending key order, each key appearing at most once, via the k-way
// merge of the buffer snapshot and every level's run.
type Iterator[K common.Key, V any] struct {
	heap *mergeHeap[K, V]
	runs [][]entry[K, V]

	havePrev bool
	prevKey  K
}

func newIterator[K common.Key, V any](runs [][]entry[K, V]) *Iterator[K, V] {
	// Ties on equal keys must break by version (newest first): a run
	// from an older level can still hold a stale entry that a newer
	// level or the buffer has already shadowed.
	return &Iterator[K, V]{heap: newMergeHeap(runs, bufferLess[K, V]), runs: runs}
}

// Next advances the iterator, returning the next live key/value pair in
// ascending order, or ok=false once exhausted.
func (it *Iterator[K, V]) Next() (key K, value V, ok bool) {
	for {
		e, more := it.heap.next(it.runs)
		if !more {
			return key, value, false
		}
		if it.havePrev && e.Key == it.prevKey {
			continue
		}
		it.havePrev = true
		it.prevKey = e.Key
		if e.Tombstone {
			continue
		}
		return e.Key, e.Value, true
	}
}

// Iterator returns an iterator over every live entry, from the smallest
// key present.
func (ix *Index[K, V]) Iterator() *Iterator[K, V] {
	var bufSlice []entry[K, V]
	ix.buffer.Ascend(func(e entry[K, V]) bool {
		bufSlice = append(bufSlice, e)
		return true
	})

	runs := make([][]entry[K, V], 0, len(ix.levels)+1)
	runs = append(runs, bufSlice)
	for _, lvl := range ix.levels {
		runs = append(runs, lvl.entries)
	}
	return newIterator(runs)
}

// LowerBound returns an iterator over every live entry with key >= k.
func (ix *Index[K, V]) LowerBound(k K) *Iterator[K, V] {
	return ix.boundedIterator(k, false)
}

// UpperBound returns an iterator over every live entry with key > k.
func (ix *Index[K, V]) UpperBound(k K) *Iterator[K, V] {
	return ix.boundedIterator(k, true)
}

func (ix *Index[K, V]) boundedIterator(k K, strict bool) *Iterator[K, V] {
	// A pivot version of 0 sorts after every real entry with Key == k
	// (versions start at 1); max-uint64 sorts before all of them.
	version := ^uint64(0)
	if strict {
		version = 0
	}
	pivot := entry[K, V]{Key: k, Version: version}

	var bufSlice []entry[K, V]
	ix.buffer.AscendGreaterOrEqual(pivot, func(e entry[K, V]) bool {
		bufSlice = append(bufSlice, e)
		return true
	})

	runs := make([][]entry[K, V], 0, len(ix.levels)+1)
	runs = append(runs, bufSlice)
	for _, lvl := range ix.levels {
		var lo int
		if strict {
			lo = lvl.upperBoundIndex(k)
		} else {
			lo = lvl.lowerBoundIndex(k)
		}
		runs = append(runs, lvl.entries[lo:])
	}
	return newIterator(runs)
}
