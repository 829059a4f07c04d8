package pla

import (
	"errors"

	"neurolearn/pkg/common"
)

// ErrNonMonotone is returned when the input key sequence is not
// non-decreasing. The segmentation engine requires a sorted sequence;
// silent acceptance of unsorted input is not acceptable for a public API.
var ErrNonMonotone = errors.New("pla: key sequence is not non-decreasing")

// ErrInvalidEpsilon is returned when epsilon is negative.
var ErrInvalidEpsilon = errors.New("pla: epsilon must be >= 0")

// ErrNaN is returned when a floating-point key is NaN.
var ErrNaN = errors.New("pla: NaN keys are not supported")

// Segment is an affine approximation over a contiguous key range:
// position(k) = Slope*(k - FirstX) + Intercept, guaranteed accurate to
// within the builder's epsilon for every key in [FirstX, next.FirstX).
type Segment[K common.Key] struct {
	FirstX    K
	Slope     float64
	Intercept float64
}

// Predict returns the segment's predicted position for key k.
func (s Segment[K]) Predict(k K) int {
	return int(s.Slope*(common.ToFloat64(k)-common.ToFloat64(s.FirstX)) + s.Intercept)
}

// PredictFloat returns the unrounded predicted position, useful when the
// caller needs to clamp before rounding.
func (s Segment[K]) PredictFloat(k K) float64 {
	return s.Slope*(common.ToFloat64(k)-common.ToFloat64(s.FirstX)) + s.Intercept
}

// Covers reports whether k falls in this segment's half-open range
// [FirstX, nextFirstX). The caller supplies the next segment's FirstX;
// for the last segment in a Static index, that is the sentinel
// lastKey + 1 rather than a real segment boundary.
func (s Segment[K]) Covers(k K, nextFirstX K) bool {
	return k >= s.FirstX && k < nextFirstX
}
