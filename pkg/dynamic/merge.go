package dynamic

import (
	"container/heap"

	"neurolearn/pkg/common"
)

// mergeItem is one live cursor position during a k-way merge: the entry
// currently at the front of run runIdx, and where it sits in that run.
type mergeItem[K common.Key, V any] struct {
	e       entry[K, V]
	runIdx  int
	elemIdx int
}

// mergeHeap is a min-heap over mergeItems ordered by (key ascending,
// version descending), the ordering spec'd as load-bearing for
// dynamic-index merges: a naive (key asc, version asc) merge would let a
// stale write shadow a newer one.
type mergeHeap[K common.Key, V any] struct {
	items []mergeItem[K, V]
	less  func(a, b entry[K, V]) bool
}

func (h mergeHeap[K, V]) Len() int { return len(h.items) }
func (h mergeHeap[K, V]) Less(i, j int) bool {
	return h.less(h.items[i].e, h.items[j].e)
}
func (h mergeHeap[K, V]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *mergeHeap[K, V]) Push(x any) { h.items = append(h.items, x.(mergeItem[K, V])) }

func (h *mergeHeap[K, V]) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}

func newMergeHeap[K common.Key, V any](runs [][]entry[K, V], less func(a, b entry[K, V]) bool) *mergeHeap[K, V] {
	h := &mergeHeap[K, V]{less: less}
	for ri, run := range runs {
		if len(run) > 0 {
			h.items = append(h.items, mergeItem[K, V]{e: run[0], runIdx: ri})
		}
	}
	heap.Init(h)
	return h
}

// next pops the globally-next (key, version) pair from the heap and
// advances that run's cursor, returning ok=false once every run is
// drained.
func (h *mergeHeap[K, V]) next(runs [][]entry[K, V]) (entry[K, V], bool) {
	if h.Len() == 0 {
		var zero entry[K, V]
		return zero, false
	}
	top := heap.Pop(h).(mergeItem[K, V])
	run := runs[top.runIdx]
	if top.elemIdx+1 < len(run) {
		heap.Push(h, mergeItem[K, V]{e: run[top.elemIdx+1], runIdx: top.runIdx, elemIdx: top.elemIdx + 1})
	}
	return top.e, true
}

// mergeRuns performs the full k-way merge of already (key asc, version
// desc)-ordered runs into a single run holding at most one entry per
// key: the one with the largest version. dropTombstones discards
// tombstone entries entirely, which is only safe when the merge target
// is the currently-oldest non-empty level (no older level remains that
// the tombstone could still be shadowing).
func mergeRuns[K common.Key, V any](runs [][]entry[K, V], less func(a, b entry[K, V]) bool, dropTombstones bool) []entry[K, V] {
	h := newMergeHeap(runs, less)

	var out []entry[K, V]
	var havePrev bool
	var prevKey K
	for {
		e, ok := h.next(runs)
		if !ok {
			break
		}
		if havePrev && e.Key == prevKey {
			// A newer version of this key was already emitted.
			continue
		}
		havePrev = true
		prevKey = e.Key
		if dropTombstones && e.Tombstone {
			continue
		}
		out = append(out, e)
	}
	return out
}
