// Package index implements the static multi-level learned index: a
// recursive stack of segment levels built once over a sorted key array,
// immutable thereafter, giving O(log_2ε n) point-search via bounded
// descent plus a short final scan.
package index

import (
	"errors"
	"sort"

	"neurolearn/pkg/common"
	"neurolearn/pkg/pla"
)

// ErrInvalidInput is returned at construction when epsilon or
// epsilonRecursive is negative, or the key sequence is not
// non-decreasing. No partial index is retained on failure.
var ErrInvalidInput = errors.New("index: invalid construction input")

// maxRecursionLevels bounds the number of recursive segmentation passes
// as a backstop against runaway recursion on pathological inputs; every
// observed input converges to a root in well under this many levels.
const maxRecursionLevels = 64

// Range is a half-open positional range [Lo, Hi) in the underlying key
// array guaranteed to contain every occurrence of a queried key.
type Range struct {
	Lo, Hi int
}

// Static is an immutable multi-level learned index. It borrows, never
// owns, the underlying sorted key array: Search returns positions into
// that array without needing to read it.
type Static[K common.Key] struct {
	epsilon          int
	epsilonRecursive int
	levels           [][]pla.Segment[K] // levels[0] indexes the data; levels[len-1] is the root
	n                int
}

// Build constructs a Static index over the non-decreasing key sequence
// keys. epsilon bounds level-0 error; epsilonRecursive bounds the error
// of every level built on top of it. If epsilonRecursive is 0, recursion
// still proceeds, level after level, until a level has one segment; that
// single-segment level is the root.
func Build[K common.Key](keys []K, epsilon, epsilonRecursive int) (*Static[K], error) {
	if epsilon < 0 || epsilonRecursive < 0 {
		return nil, ErrInvalidInput
	}
	if len(keys) == 0 {
		return &Static[K]{epsilon: epsilon, epsilonRecursive: epsilonRecursive}, nil
	}

	level0, err := pla.Build(keys, epsilon)
	if err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	levels := [][]pla.Segment[K]{level0}
	current := level0
	for i := 0; len(current) > epsilonRecursive+1 && i < maxRecursionLevels; i++ {
		firstXs := make([]K, len(current))
		for j, s := range current {
			firstXs[j] = s.FirstX
		}
		next, err := pla.Build(firstXs, epsilonRecursive)
		if err != nil {
			return nil, errors.Join(ErrInvalidInput, err)
		}
		if len(next) >= len(current) {
			// No further compression is possible; stop here rather
			// than looping without making progress.
			break
		}
		levels = append(levels, next)
		current = next
	}

	return &Static[K]{
		epsilon:          epsilon,
		epsilonRecursive: epsilonRecursive,
		levels:           levels,
		n:                len(keys),
	}, nil
}

// Search returns the positional range guaranteed to contain every
// occurrence of q in the underlying key array.
func (s *Static[K]) Search(q K) Range {
	if s.n == 0 {
		return Range{0, 0}
	}

	numLevels := len(s.levels)
	idx := scanSegment(s.levels[numLevels-1], q)

	for l := numLevels - 1; l > 0; l-- {
		seg := s.levels[l][idx]
		lowerLen := len(s.levels[l-1])
		p := clampInt(int(seg.PredictFloat(q)), 0, lowerLen-1)
		lo := clampInt(p-s.epsilonRecursive, 0, lowerLen)
		hi := clampInt(p+s.epsilonRecursive+1, 0, lowerLen)
		idx = findSegment(s.levels[l-1], q, lo, hi)
	}

	seg := s.levels[0][idx]
	p := clampInt(int(seg.PredictFloat(q)), 0, s.n-1)
	lo := clampInt(p-s.epsilon, 0, s.n)
	hi := clampInt(p+s.epsilon+1, 0, s.n)
	return Range{Lo: lo, Hi: hi}
}

// SegmentsCount returns the number of level-0 segments.
func (s *Static[K]) SegmentsCount() int {
	if len(s.levels) == 0 {
		return 0
	}
	return len(s.levels[0])
}

// LevelsCount returns the number of levels, including the root.
func (s *Static[K]) LevelsCount() int {
	return len(s.levels)
}

// SizeInBytes estimates the index's memory footprint: each segment
// stores one key (approximated as 8 bytes, the size of the widest Key
// type this package supports) plus a float64 slope and intercept.
func (s *Static[K]) SizeInBytes() int {
	const perSegment = 8 + 8 + 8
	total := 0
	for _, lvl := range s.levels {
		total += len(lvl) * perSegment
	}
	return total
}

// scanSegment locates, via linear scan, the segment with the largest
// FirstX <= q. The root level is small by construction so this is O(1)
// in practice.
func scanSegment[K common.Key](segs []pla.Segment[K], q K) int {
	idx := 0
	for i := 1; i < len(segs); i++ {
		if segs[i].FirstX > q {
			break
		}
		idx = i
	}
	return idx
}

// findSegment locates the segment with the largest FirstX <= q, searching
// the window [lo, hi) first and falling back to the full segs slice if
// the window turns out to be degenerate.
func findSegment[K common.Key](segs []pla.Segment[K], q K, lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi > len(segs) {
		hi = len(segs)
	}
	if lo >= hi {
		lo, hi = 0, len(segs)
	}

	off := sort.Search(hi-lo, func(i int) bool {
		return segs[lo+i].FirstX > q
	})
	pos := lo + off - 1
	if pos < 0 {
		pos = 0
	}
	if pos >= len(segs) {
		pos = len(segs) - 1
	}
	return pos
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
