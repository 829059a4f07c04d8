// Package common holds the types shared by every learned-index package:
// the generic ordered Key constraint and the (key, position) Point pair
// the segmentation engine and the static/dynamic indexes both build on.
package common

import "golang.org/x/exp/constraints"

// Key is any totally ordered numeric type a learned index can be built
// over: integral or floating-point, per the data model's Key definition.
type Key interface {
	constraints.Integer | constraints.Float
}

// Point is a (key, position) pair: the x is a key from the indexed
// sequence and y is its position in that sequence.
type Point[K Key] struct {
	X K
	Y int
}

// ToFloat64 is the single place a generic Key is widened to float64 for
// arithmetic, mirroring the cast every numeric model in this tree applies
// before fitting a line.
func ToFloat64[K Key](k K) float64 {
	return float64(k)
}
