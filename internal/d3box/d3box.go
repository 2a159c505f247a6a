// Package d3box carries the small axis-aligned box helpers the
// geometry packages share. Boxes are gonum r3.Box values.
package d3box

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Elem returns a vector with all elements set to sides.
func Elem(sides float64) r3.Vec {
	return r3.Vec{X: sides, Y: sides, Z: sides}
}

// MinElem returns the element-wise minimum of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem returns the element-wise maximum of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Extend returns a box enclosing boxes a and b.
func Extend(a, b r3.Box) r3.Box {
	return r3.Box{Min: MinElem(a.Min, b.Min), Max: MaxElem(a.Max, b.Max)}
}

// Size returns the box dimensions.
func Size(b r3.Box) r3.Vec { return r3.Sub(b.Max, b.Min) }

// Center returns the box center.
func Center(b r3.Box) r3.Vec {
	return r3.Add(b.Min, r3.Scale(0.5, Size(b)))
}

// Enlarge grows the box by v (v/2 on each side).
func Enlarge(b r3.Box, v r3.Vec) r3.Box {
	h := r3.Scale(0.5, v)
	return r3.Box{Min: r3.Sub(b.Min, h), Max: r3.Add(b.Max, h)}
}

// Contains reports whether the box contains the point, bounds included.
func Contains(b r3.Box, v r3.Vec) bool {
	return b.Min.X <= v.X && b.Min.Y <= v.Y && b.Min.Z <= v.Z &&
		v.X <= b.Max.X && v.Y <= b.Max.Y && v.Z <= b.Max.Z
}

// Intersects reports whether boxes a and b overlap.
func Intersects(a, b r3.Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}

// Dist returns the distance from p to the box, zero if p is inside.
// It is a lower bound on the distance from p to any point in the box,
// which is what bounding-box pruned union evaluation needs.
func Dist(b r3.Box, p r3.Vec) float64 {
	dx := math.Max(math.Max(b.Min.X-p.X, p.X-b.Max.X), 0)
	dy := math.Max(math.Max(b.Min.Y-p.Y, p.Y-b.Max.Y), 0)
	dz := math.Max(math.Max(b.Min.Z-p.Z, p.Z-b.Max.Z), 0)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Finite reports whether the box has finite, positive extent.
func Finite(b r3.Box) bool {
	s := Size(b)
	ok := s.X > 0 && s.Y > 0 && s.Z > 0
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return ok
}
