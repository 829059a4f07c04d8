// Package geo holds the geometric primitives the segmentation engine
// uses: exact-rational orientation and slope comparisons for convex-hull
// maintenance, and the float64 slope conversions (Float64, Midpoint) used
// when a segment is closed.
//
// Builder.Add (pla/builder.go) only ever needs to compare two candidate
// slopes from a shared pivot point, never a standalone three-point
// orientation test, so hull maintenance is built entirely on Slope's
// exact big.Rat comparisons rather than a separate integer cross-product
// primitive: comparing dy/dx as rationals from a common pivot is the
// same sign test a cross product would give, without requiring a second
// representation of the same coordinates. Key is constrained to
// constraints.Integer | constraints.Float (common.Key), so coordinates
// reach this package as float64 already; an int64-only cross product
// could not serve float-keyed builders anyway. That float64 conversion
// is exact for the integer keys this package is exercised with in
// practice (magnitudes well under 2^53), and for float64 keys it is a
// no-op; keys whose exact value exceeds 2^53 can lose low bits before
// the rational comparison ever sees them, same as any float64-based
// geometry. The rational arithmetic below removes cancellation error
// from the comparison itself, not from the input conversion.
package geo

import "math/big"

// Slope is an exact rational slope, kept as a numerator/denominator pair
// during hull maintenance to avoid the cancellation that float64 slope
// comparisons would suffer on nearly-collinear points.
type Slope struct {
	r *big.Rat
}

// NewSlope builds the rational slope dy/dx.
func NewSlope(dy, dx float64) Slope {
	r := new(big.Rat)
	r.SetFloat64(dy)
	d := new(big.Rat)
	d.SetFloat64(dx)
	r.Quo(r, d)
	return Slope{r: r}
}

// Less reports whether s is strictly smaller than other.
func (s Slope) Less(other Slope) bool {
	return s.r.Cmp(other.r) < 0
}

// Greater reports whether s is strictly larger than other.
func (s Slope) Greater(other Slope) bool {
	return s.r.Cmp(other.r) > 0
}

// Float64 returns a float64 representative of the slope.
func (s Slope) Float64() float64 {
	f, _ := s.r.Float64()
	return f
}

// Midpoint returns a floating point representative of the bisector of
// the feasibility cone [lo, hi].
func Midpoint(lo, hi Slope) float64 {
	mid := new(big.Rat).Add(lo.r, hi.r)
	mid.Quo(mid, big.NewRat(2, 1))
	f, _ := mid.Float64()
	return f
}
