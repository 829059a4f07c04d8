package pla

import (
	"math"

	"neurolearn/pkg/common"
)

// Build runs the streaming segmentation algorithm over keys and returns
// the minimal sequence of segments approximating positions 0..len(keys)-1
// within +/-epsilon. keys must be non-decreasing; violating that is
// reported as ErrNonMonotone rather than silently accepted.
func Build[K common.Key](keys []K, epsilon int) ([]Segment[K], error) {
	if epsilon < 0 {
		return nil, ErrInvalidEpsilon
	}
	if len(keys) == 0 {
		return nil, nil
	}
	if err := validateMonotone(keys); err != nil {
		return nil, err
	}

	b, err := NewBuilder[K](epsilon)
	if err != nil {
		return nil, err
	}

	var segments []Segment[K]
	for i, k := range keys {
		ok, err := b.Add(k, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			segments = append(segments, b.Segment())
			b.Reset()
			if ok2, err := b.Add(k, i); err != nil || !ok2 {
				// A single fresh point can never be rejected.
				return nil, err
			}
		}
	}
	if !b.Empty() {
		segments = append(segments, b.Segment())
	}
	return segments, nil
}

// validateMonotone performs the debug-time assertion the segmentation
// contract requires: the key sequence must be non-decreasing, and
// floating-point keys must never be NaN.
func validateMonotone[K common.Key](keys []K) error {
	for i, k := range keys {
		f := common.ToFloat64(k)
		if math.IsNaN(f) {
			return ErrNaN
		}
		if i > 0 && f < common.ToFloat64(keys[i-1]) {
			return ErrNonMonotone
		}
	}
	return nil
}
