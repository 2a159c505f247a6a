// Package profile builds the 2D worm thread cross-section faces used
// by the worm sweep/loft and, through it, the hob. Faces live in a
// plane perpendicular to the helix: local X is the axial (width)
// direction, local +Y the radial direction away from the worm axis.
package profile

import (
	"math"

	"github.com/soypat/sdf"
	"github.com/soypat/sdf/form2/must2"
	"gonum.org/v1/gonum/spatial/r2"

	wormgear "github.com/pzfreo/wormgear-sub000"
)

const (
	// arcRadiusFactor sizes the ZK convex flank arc as a fraction of
	// the module.
	arcRadiusFactor = 0.45
	// flankPoints is the sampling density of curved flanks.
	flankPoints = 9
	// involuteSagittaCap bounds the ZI flank bulge as a fraction of
	// the module.
	involuteSagittaCap = 0.2
)

// Spec parameterizes one thread cross-section.
type Spec struct {
	// InnerRadius is the radial position of the flank base, at or
	// below the root radius.
	InnerRadius float64
	// OuterRadius is the radial position of the thread tip.
	OuterRadius float64
	// HalfWidthAtInner and HalfWidthAtOuter set the axial half-widths
	// of the thread at the flank base and tip. Their difference
	// implies the pressure angle.
	HalfWidthAtInner float64
	HalfWidthAtOuter float64
	Module           float64
	Shape            wormgear.ProfileShape
}

// Validate rejects degenerate cross-section requests before any
// geometry is built.
func (s Spec) Validate() error {
	switch {
	case s.Module <= 0:
		return &wormgear.ParamError{Param: "profile.Module", Value: s.Module, Reason: "must be > 0"}
	case s.InnerRadius < 0:
		return &wormgear.ParamError{Param: "profile.InnerRadius", Value: s.InnerRadius, Reason: "must be >= 0"}
	case s.OuterRadius <= s.InnerRadius:
		return &wormgear.ParamError{Param: "profile.OuterRadius", Value: s.OuterRadius, Reason: "must be > inner radius"}
	case s.HalfWidthAtInner <= 0:
		return &wormgear.ParamError{Param: "profile.HalfWidthAtInner", Value: s.HalfWidthAtInner, Reason: "must be > 0"}
	case s.HalfWidthAtOuter <= 0:
		return &wormgear.ParamError{Param: "profile.HalfWidthAtOuter", Value: s.HalfWidthAtOuter, Reason: "self-intersecting profile"}
	case !validShape(s.Shape):
		return &wormgear.ParamError{Param: "profile.Shape", Value: float64(s.Shape), Reason: "unknown profile shape"}
	}
	return nil
}

func validShape(s wormgear.ProfileShape) bool {
	return s == wormgear.ProfileZA || s == wormgear.ProfileZK || s == wormgear.ProfileZI
}

// Face returns the closed planar cross-section as an SDF2. The polygon
// base is widened past the axial pitch period and dropped to radius 0
// so the swept thread merges cleanly with the worm core; the width
// surplus is clipped by the sweep's pitch-periodic evaluation.
func Face(s Spec) (sdf.SDF2, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var right []r2.Vec // right flank, base to tip
	a := r2.Vec{X: s.HalfWidthAtInner, Y: s.InnerRadius}
	b := r2.Vec{X: s.HalfWidthAtOuter, Y: s.OuterRadius}
	switch s.Shape {
	case wormgear.ProfileZA:
		right = []r2.Vec{a, b}
	case wormgear.ProfileZK:
		right = arcFlank(a, b, arcSagitta(a, b, arcRadiusFactor*s.Module), flankPoints)
	case wormgear.ProfileZI:
		right = arcFlank(a, b, involuteSagitta(s, a, b), flankPoints)
	}

	base := s.OuterRadius + s.HalfWidthAtInner
	poly := must2.NewPolygon()
	poly.Add(base, 0)
	poly.Add(base, s.InnerRadius)
	for _, v := range right {
		poly.Add(v.X, v.Y)
	}
	for i := len(right) - 1; i >= 0; i-- {
		poly.Add(-right[i].X, right[i].Y)
	}
	poly.Add(-base, s.InnerRadius)
	poly.Add(-base, 0)
	return must2.Polygon(poly.Vertices()), nil
}

// arcSagitta converts a flank arc radius into the mid-chord bulge
// height. Radii below the half-chord cannot span the flank and are
// clamped to a semicircular bulge.
func arcSagitta(a, b r2.Vec, radius float64) float64 {
	half := 0.5 * r2.Norm(r2.Sub(b, a))
	if radius < half {
		radius = half
	}
	return radius - math.Sqrt(radius*radius-half*half)
}

// involuteSagitta approximates the involute flank's deviation from the
// straight flank: chord²/(8·rb) against the base circle rb implied by
// the flank angle. The ZI form is a documented approximation; accuracy
// is secondary to ZA/ZK for this system's manufacturing use.
func involuteSagitta(s Spec, a, b r2.Vec) float64 {
	chord := r2.Norm(r2.Sub(b, a))
	alpha := math.Atan2(a.X-b.X, b.Y-a.Y) // flank angle from radial
	rb := s.InnerRadius * math.Cos(alpha)
	if rb < chord {
		rb = chord
	}
	sag := chord * chord / (8 * rb)
	if limit := involuteSagittaCap * s.Module; sag > limit {
		sag = limit
	}
	return sag
}

// arcFlank samples a circular arc of the given mid-chord sagitta
// between a and b, bulging away from the tooth centre line (convex
// material). n points inclusive of both endpoints.
func arcFlank(a, b r2.Vec, sagitta float64, n int) []r2.Vec {
	if sagitta <= 0 || n < 3 {
		return []r2.Vec{a, b}
	}
	chord := r2.Sub(b, a)
	l := r2.Norm(chord)
	dir := r2.Scale(1/l, chord)
	norm := r2.Vec{X: dir.Y, Y: -dir.X}
	if norm.X < 0 {
		norm = r2.Scale(-1, norm)
	}
	half := l / 2
	radius := (half*half + sagitta*sagitta) / (2 * sagitta)
	mid := r2.Add(a, r2.Scale(0.5, chord))
	pts := make([]r2.Vec, n)
	for i := 0; i < n; i++ {
		u := -half + l*float64(i)/float64(n-1)
		bulge := math.Sqrt(radius*radius-u*u) - (radius - sagitta)
		pts[i] = r2.Add(r2.Add(mid, r2.Scale(u, dir)), r2.Scale(bulge, norm))
	}
	pts[0], pts[n-1] = a, b
	return pts
}
