// Package worm builds the 3D worm solid by sweeping or lofting a
// thread cross-section along one helical path per thread start.
package worm

import (
	"log"
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"

	wormgear "github.com/pzfreo/wormgear-sub000"
	"github.com/pzfreo/wormgear-sub000/internal/solidops"
	"github.com/pzfreo/wormgear-sub000/profile"
)

const (
	// sweepMaxLeadAngle is the lead angle (degrees) above which the
	// continuous sweep map is rejected a priori: past it the
	// perpendicular-profile assumption shears the thread enough to
	// self-intersect at small modules, so the builder lofts instead.
	sweepMaxLeadAngle = 15.0
	// validityRes is the voxel resolution of the post-build probe on
	// sweep output.
	validityRes = 32
)

// Solid builds a worm solid with the default pressure angle and no
// fallback logging. Callers needing either use Builder directly.
func Solid(p wormgear.WormParameters, length float64, opts wormgear.Options) (sdf.SDF3, error) {
	return Builder{Worm: p, Length: length, Options: opts}.Solid()
}

// Builder produces worm solids. The zero value is not usable; fill
// Worm and Length.
type Builder struct {
	Worm wormgear.WormParameters
	// Length is the axial length the solid is trimmed to.
	Length float64
	// PressureAngle in degrees. Zero means 20.
	PressureAngle float64
	Options       wormgear.Options
	// Log receives fallback warnings. Nil disables logging.
	Log *log.Logger
}

func (b Builder) logf(format string, args ...any) {
	if b.Log != nil {
		b.Log.Printf(format, args...)
	}
}

// Solid builds the worm. Sweep requests that would self-intersect fall
// back to the loft method with a logged warning rather than returning a
// degenerate solid.
func (b Builder) Solid() (sdf.SDF3, error) {
	if err := b.Worm.Validate(); err != nil {
		return nil, err
	}
	if err := b.Options.Validate(); err != nil {
		return nil, err
	}
	if b.Length <= 0 {
		return nil, &wormgear.ParamError{Param: "worm.Length", Value: b.Length, Reason: "must be > 0"}
	}

	method := b.Options.Method
	if method == wormgear.MethodSweep && b.Worm.LeadAngle > sweepMaxLeadAngle {
		b.logf("worm: lead angle %.1f deg exceeds sweep limit %.0f deg, falling back to loft",
			b.Worm.LeadAngle, sweepMaxLeadAngle)
		method = wormgear.MethodLoft
	}
	s, err := b.build(method)
	if err != nil {
		return nil, err
	}
	if method == wormgear.MethodSweep {
		if verr := solidops.Valid(s, validityRes); verr != nil {
			b.logf("worm: sweep produced invalid solid (%v), falling back to loft", verr)
			if s, err = b.build(wormgear.MethodLoft); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (b Builder) build(method wormgear.Method) (sdf.SDF3, error) {
	face, err := profile.Face(b.profileSpec())
	if err != nil {
		return nil, err
	}
	var thread sdf.SDF3
	switch method {
	case wormgear.MethodSweep:
		thread = b.sweepThread(face)
	case wormgear.MethodLoft:
		thread, err = b.loftThread(face)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &wormgear.ParamError{Param: "options.Method", Value: float64(method), Reason: "unknown generation method"}
	}
	return b.trim(thread), nil
}

// profileSpec derives the cross-section from the worm dimensions: the
// axial half-width at the pitch line is half the thread thickness and
// the flanks open by the pressure angle toward the root.
func (b Builder) profileSpec() profile.Spec {
	p := b.Worm
	alpha := b.PressureAngle
	if alpha == 0 {
		alpha = 20
	}
	tanA := math.Tan(alpha * math.Pi / 180)
	rRoot := p.RootDiameter / 2
	rPitch := p.PitchDiameter / 2
	rTip := p.TipDiameter / 2
	wPitch := p.ThreadThickness / 2
	return profile.Spec{
		InnerRadius:      rRoot,
		OuterRadius:      rTip,
		HalfWidthAtInner: wPitch + (rPitch-rRoot)*tanA,
		HalfWidthAtOuter: wPitch - (rTip-rPitch)*tanA,
		Module:           p.Module,
		Shape:            b.Options.Profile,
	}
}

// taperLength is the axial span of the cosine tip ramp at each end.
func (b Builder) taperLength() float64 {
	return math.Min(b.Worm.AxialPitch(), b.Length/4)
}

// trim wraps a raw thread solid with the worm core cylinder, the
// cosine-ramped tip envelope and the axial length cut. The same
// envelope serves the globoid radius law: all three radii follow the
// throat offset along z.
func (b Builder) trim(thread sdf.SDF3) sdf.SDF3 {
	p := b.Worm
	t := &trimmedWorm{
		thread:   thread,
		rRoot:    p.RootDiameter / 2,
		rTip:     p.TipDiameter / 2,
		half:     b.Length / 2,
		taperLen: b.taperLength(),
		throat:   newThroatLaw(p),
	}
	rMax := t.rTip + t.throat.maxOffset(t.half)
	t.bb = r3.Box{
		Min: r3.Vec{X: -rMax, Y: -rMax, Z: -t.half},
		Max: r3.Vec{X: rMax, Y: rMax, Z: t.half},
	}
	return t
}

// throatLaw is the globoid hourglass radius law
// r(z) = base + R - sqrt(R*R - z*z), a documented circular-arc
// approximation of the true globoid envelope. Outside ±R the guarded
// fallback keeps r at the base radius instead of raising a domain
// error.
type throatLaw struct {
	radius float64 // curvature radius R; <= 0 means cylindrical
}

func newThroatLaw(p wormgear.WormParameters) throatLaw {
	if !p.Globoid {
		return throatLaw{}
	}
	return throatLaw{radius: p.ThroatRadius}
}

func (t throatLaw) offset(z float64) float64 {
	r := t.radius
	if r <= 0 || math.Abs(z) >= r {
		return 0
	}
	return r - math.Sqrt(r*r-z*z)
}

// maxOffset bounds the swell over |z| <= half. When the worm is longer
// than the throat arc the offset peaks just inside ±R.
func (t throatLaw) maxOffset(half float64) float64 {
	if t.radius <= 0 {
		return 0
	}
	if half >= t.radius {
		return t.radius
	}
	return t.offset(half)
}

// trimmedWorm unions the thread with the core cylinder, then
// intersects with the tip envelope and the axial length slab.
type trimmedWorm struct {
	thread   sdf.SDF3
	rRoot    float64
	rTip     float64
	half     float64
	taperLen float64
	throat   throatLaw
	bb       r3.Box
}

// taper is the cosine ramp from 0 at the trim planes to 1 one taper
// length inboard, so the thread terminates at root depth rather than a
// knife edge at the cut.
func (s *trimmedWorm) taper(z float64) float64 {
	e := s.half - math.Abs(z)
	switch {
	case e <= 0:
		return 0
	case e >= s.taperLen:
		return 1
	}
	return 0.5 - 0.5*math.Cos(math.Pi*e/s.taperLen)
}

func (s *trimmedWorm) Evaluate(p r3.Vec) float64 {
	d := math.Hypot(p.X, p.Y)
	ofs := s.throat.offset(p.Z)
	dCore := d - (s.rRoot + ofs)
	rTip := s.rRoot + s.taper(p.Z)*(s.rTip-s.rRoot) + ofs
	dd := math.Min(s.thread.Evaluate(p), dCore)
	dd = math.Max(dd, d-rTip)
	return math.Max(dd, math.Abs(p.Z)-s.half)
}

func (s *trimmedWorm) Bounds() r3.Box { return s.bb }

func throatBoundRadius(p wormgear.WormParameters, half float64) float64 {
	return p.TipDiameter/2 + newThroatLaw(p).maxOffset(half)
}

func threadBounds(p wormgear.WormParameters, half, margin float64) r3.Box {
	r := throatBoundRadius(p, half+margin)
	return r3.Box{
		Min: r3.Vec{X: -r, Y: -r, Z: -(half + margin)},
		Max: r3.Vec{X: r, Y: r, Z: half + margin},
	}
}
