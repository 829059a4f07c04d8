package dynamic

import (
	"sort"

	"neurolearn/pkg/common"
	"neurolearn/pkg/index"
)

// level-0 static indexes are rebuilt cheaply enough on every compaction
// that a fixed, conservative error bound is preferable to threading a
// tuning knob through the dynamic index's external constructor, which
// spec.md keeps to (base_capacity, min_indexed_level).
const (
	levelIndexEpsilon          = 8
	levelIndexEpsilonRecursive = 2
	levelBloomFalsePositive    = 0.01
)

// level is one Lᵢ of the dynamic index's cascade: either empty, or a
// sorted run holding at most one entry per key (duplicates are resolved
// at merge time). Levels at or above min_indexed_level additionally
// carry a static index and a Bloom filter over their keys.
type level[K common.Key, V any] struct {
	entries []entry[K, V]
	idx     *index.Static[K]
	bloom   *bloomFilter[K]
}

func emptyLevel[K common.Key, V any]() *level[K, V] {
	return &level[K, V]{}
}

// buildLevel installs entries (already deduplicated, sorted ascending
// by key) as the content of the level numbered levelNumber (1-based:
// ix.levels[0] is L1). A static index and Bloom filter are attached
// only once levelNumber reaches minIndexedLevel.
func buildLevel[K common.Key, V any](entries []entry[K, V], levelNumber, minIndexedLevel int) *level[K, V] {
	lvl := &level[K, V]{entries: entries}
	if levelNumber < minIndexedLevel || len(entries) == 0 {
		return lvl
	}

	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	if built, err := index.Build(keys, levelIndexEpsilon, levelIndexEpsilonRecursive); err == nil {
		lvl.idx = built
	}

	bloom := newBloomFilter[K](len(entries), levelBloomFalsePositive)
	for _, e := range entries {
		bloom.Add(e.Key)
	}
	lvl.bloom = bloom
	return lvl
}

// lookup returns the entry for k within this level's run, searching
// through the static index's candidate window when one is attached, or
// the whole run by direct binary search otherwise.
func (l *level[K, V]) lookup(k K) (entry[K, V], bool) {
	if l.bloom != nil && !l.bloom.Contains(k) {
		return entry[K, V]{}, false
	}

	lo, hi := 0, len(l.entries)
	if l.idx != nil {
		r := l.idx.Search(k)
		lo, hi = r.Lo, r.Hi
	}
	i := lo + sort.Search(hi-lo, func(i int) bool { return l.entries[lo+i].Key >= k })
	if i < hi && l.entries[i].Key == k {
		return l.entries[i], true
	}
	return entry[K, V]{}, false
}

// lowerBoundIndex returns the position of the first entry with key >= k.
func (l *level[K, V]) lowerBoundIndex(k K) int {
	return sort.Search(len(l.entries), func(i int) bool { return l.entries[i].Key >= k })
}

// upperBoundIndex returns the position of the first entry with key > k.
func (l *level[K, V]) upperBoundIndex(k K) int {
	return sort.Search(len(l.entries), func(i int) bool { return l.entries[i].Key > k })
}
