package pla

import (
	"math"

	"neurolearn/pkg/common"
	"neurolearn/pkg/geo"
)

// hullPoint is a point on one of the two running convex hulls, kept in
// float64 form; the exact rational arithmetic lives in the Slope
// comparisons derived from pairs of hullPoints, not in the coordinates
// themselves.
type hullPoint struct {
	X float64
	Y float64
}

// slopeBetween returns the slope of the segment from b to a, i.e. the
// Slope value corresponding to (a - b) in point-subtraction notation.
func slopeBetween(a, b hullPoint) geo.Slope {
	return geo.NewSlope(a.Y-b.Y, a.X-b.X)
}

// Builder performs the streaming "Optimal Piecewise Linear
// Representation" construction described for the segmentation engine: it
// consumes a non-decreasing sequence of (key, position) points and
// maintains the convex hull of feasible slopes as two rays pinned at a
// rotation point. Add reports when no single line can cover the new
// point together with everything seen so far, at which point the caller
// must close the current segment before starting a new one.
type Builder[K common.Key] struct {
	epsilon float64

	upper      []hullPoint
	lower      []hullPoint
	upperStart int
	lowerStart int
	rectangle  [4]hullPoint
	inHull     int

	firstX   K
	firstXf  float64
	haveLast bool
	lastXf   float64
}

// NewBuilder creates a Builder for the given non-negative error bound.
func NewBuilder[K common.Key](epsilon int) (*Builder[K], error) {
	if epsilon < 0 {
		return nil, ErrInvalidEpsilon
	}
	return &Builder[K]{epsilon: float64(epsilon)}, nil
}

// Reset clears the builder so it can start accumulating a new segment.
func (b *Builder[K]) Reset() {
	b.upper = b.upper[:0]
	b.lower = b.lower[:0]
	b.upperStart = 0
	b.lowerStart = 0
	b.inHull = 0
	b.haveLast = false
}

// Empty reports whether the builder currently holds no points.
func (b *Builder[K]) Empty() bool {
	return b.inHull == 0
}

// Add offers the point (x, y) to the current segment. It returns true if
// the point was absorbed into the current feasibility cone. It returns
// false if no single line can cover the point together with every point
// already accumulated; the caller must then read Segment, call Reset,
// and Add the same point again to begin the next segment.
func (b *Builder[K]) Add(x K, y int) (bool, error) {
	xf := common.ToFloat64(x)
	if math.IsNaN(xf) {
		return false, ErrNaN
	}

	duplicate := b.haveLast && xf == b.lastXf
	b.lastXf = xf
	b.haveLast = true

	if duplicate {
		// Consecutive equal keys add no new slope constraint; they
		// still belong to whichever segment is currently open.
		return true, nil
	}

	yf := float64(y)
	p1 := hullPoint{X: xf, Y: yf + b.epsilon} // upper bound on the line's value at x
	p2 := hullPoint{X: xf, Y: yf - b.epsilon} // lower bound on the line's value at x

	switch b.inHull {
	case 0:
		b.firstX = x
		b.firstXf = xf
		b.rectangle[0] = p1
		b.rectangle[1] = p2
		b.upper = append(b.upper[:0], p1)
		b.lower = append(b.lower[:0], p2)
		b.upperStart, b.lowerStart = 0, 0
		b.inHull = 1
		return true, nil
	case 1:
		b.rectangle[2] = p2
		b.rectangle[3] = p1
		b.upper = append(b.upper, p1)
		b.lower = append(b.lower, p2)
		b.inHull = 2
		return true, nil
	}

	slope1 := slopeBetween(b.rectangle[2], b.rectangle[0]) // minimum feasible slope
	slope2 := slopeBetween(b.rectangle[3], b.rectangle[1]) // maximum feasible slope

	outside1 := slopeBetween(p1, b.rectangle[2]).Less(slope1)
	outside2 := slopeBetween(p2, b.rectangle[3]).Greater(slope2)
	if outside1 || outside2 {
		b.inHull = 0
		return false, nil
	}

	if slopeBetween(p1, b.rectangle[3]).Less(slope2) {
		minI := b.lowerStart
		minSlope := slopeBetween(b.lower[b.lowerStart], p1)
		for i := b.lowerStart + 1; i < len(b.lower); i++ {
			s := slopeBetween(b.lower[i], p1)
			if s.Greater(minSlope) {
				break
			}
			minSlope = s
			minI = i
		}
		b.rectangle[1] = b.lower[minI]
		b.rectangle[3] = p1
		// Points before minI are now dominated and will never be
		// scanned again; drop them so the backing slice tracks the
		// live hull size instead of growing with every point absorbed
		// into the segment.
		if minI > 0 {
			b.lower = append(b.lower[:0], b.lower[minI:]...)
		}
		b.lowerStart = 0
	}

	if slopeBetween(p2, b.rectangle[2]).Greater(slope1) {
		maxI := b.upperStart
		maxSlope := slopeBetween(b.upper[b.upperStart], p2)
		for i := b.upperStart + 1; i < len(b.upper); i++ {
			s := slopeBetween(b.upper[i], p2)
			if s.Less(maxSlope) {
				break
			}
			maxSlope = s
			maxI = i
		}
		b.rectangle[0] = b.upper[maxI]
		b.rectangle[2] = p2
		if maxI > 0 {
			b.upper = append(b.upper[:0], b.upper[maxI:]...)
		}
		b.upperStart = 0
	}

	// Pop tail points the new point makes non-extremal (Graham scan), so
	// each slice holds only the convex chain that faces the feasible lines.
	for n := len(b.upper); n >= 2 && !slopeBetween(p1, b.upper[n-2]).Greater(slopeBetween(b.upper[n-1], b.upper[n-2])); n-- {
		b.upper = b.upper[:n-1]
	}
	for n := len(b.lower); n >= 2 && !slopeBetween(p2, b.lower[n-2]).Less(slopeBetween(b.lower[n-1], b.lower[n-2])); n-- {
		b.lower = b.lower[:n-1]
	}
	b.upper = append(b.upper, p1)
	b.lower = append(b.lower, p2)
	b.inHull++
	return true, nil
}

// Segment returns the affine segment currently accumulated. The caller
// must not call this on an empty builder.
func (b *Builder[K]) Segment() Segment[K] {
	if b.inHull == 1 {
		mid := (b.rectangle[0].Y + b.rectangle[1].Y) / 2
		return Segment[K]{FirstX: b.firstX, Slope: 0, Intercept: mid}
	}

	slope1 := slopeBetween(b.rectangle[2], b.rectangle[0])
	slope2 := slopeBetween(b.rectangle[3], b.rectangle[1])
	slope := geo.Midpoint(slope1, slope2)

	// Re-centre about first_x before averaging the two boundary
	// intercepts, to keep the subtraction small when keys are large.
	intercept1 := b.rectangle[0].Y - (b.rectangle[0].X-b.firstXf)*slope1.Float64()
	intercept2 := b.rectangle[1].Y - (b.rectangle[1].X-b.firstXf)*slope2.Float64()
	intercept := (intercept1 + intercept2) / 2

	return Segment[K]{FirstX: b.firstX, Slope: slope, Intercept: intercept}
}
