package worm

import (
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// sweepThread maps the cross-section continuously along the helix. One
// evaluator covers every start: the axial sawtooth period is the axial
// pitch, which already interleaves all starts of a multi-start worm.
func (b Builder) sweepThread(face sdf.SDF2) sdf.SDF3 {
	p := b.Worm
	return &screwForm{
		thread: face,
		pitch:  p.AxialPitch(),
		lead:   p.Lead,
		hand:   float64(p.Hand),
		throat: newThroatLaw(p),
		bb:     threadBounds(p, b.Length/2, p.AxialPitch()),
	}
}

type screwForm struct {
	thread sdf.SDF2
	pitch  float64
	lead   float64
	hand   float64
	throat throatLaw
	bb     r3.Box
}

// sawTooth folds z into [-period/2, period/2] so one profile instance
// repeats every axial pitch.
func sawTooth(z, period float64) float64 {
	return period*math.Round(z/period) - z
}

func (s *screwForm) Evaluate(p r3.Vec) float64 {
	d := math.Hypot(p.X, p.Y)
	theta := math.Atan2(p.Y, p.X)
	z := p.Z - s.hand*s.lead*theta/(2*math.Pi)
	return s.thread.Evaluate(r2.Vec{
		X: sawTooth(z, s.pitch),
		Y: d - s.throat.offset(p.Z),
	})
}

func (s *screwForm) Bounds() r3.Box { return s.bb }
