// Package hobbing computes wheel teeth as the envelope of a hob swept
// through the coupled hob/wheel rotation, then subtracts that envelope
// from the wheel blank. The tooth flanks come out conjugate to the worm
// by construction rather than from a closed-form tooth equation.
package hobbing

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/soypat/sdf"
	"github.com/soypat/sdf/form3/must3"
	"gonum.org/v1/gonum/spatial/r3"

	wormgear "github.com/pzfreo/wormgear-sub000"
	"github.com/pzfreo/wormgear-sub000/internal/solidops"
)

// Simplify cadence. Cylindrical hobs tolerate a deep union tree for a
// few steps; globoid hobs are loft unions already, so their trees are
// flattened after every cut.
const (
	simplifyEvery        = 8
	simplifyEveryGloboid = 1
)

// Progress is one simulator progress event.
type Progress struct {
	// Percent is in [0, 100]. The terminal event is exactly 100.
	Percent float64
	Message string
}

// Simulator runs the virtual hobbing of one wheel. Fields are read-only
// during Run; a Simulator must not be shared between concurrent Runs.
type Simulator struct {
	Wheel    wormgear.WheelParameters
	Worm     wormgear.WormParameters
	Assembly wormgear.AssemblyParameters
	// Hob is the cutting solid, axis along Z, centred at the origin.
	Hob     sdf.SDF3
	Options wormgear.Options
	// OnProgress, when non-nil, receives events synchronously from the
	// simulation goroutine. It must not call back into the Simulator.
	OnProgress func(Progress)
	Log        *log.Logger
}

// New assembles a Simulator from validated-later parameters and a
// pre-built hob solid.
func New(wheel wormgear.WheelParameters, worm wormgear.WormParameters,
	asm wormgear.AssemblyParameters, hob sdf.SDF3, opts wormgear.Options) *Simulator {
	return &Simulator{
		Wheel:    wheel,
		Worm:     worm,
		Assembly: asm,
		Hob:      hob,
		Options:  opts,
	}
}

func (s *Simulator) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Printf(format, args...)
	}
}

func (s *Simulator) report(pct float64, format string, args ...any) {
	if s.OnProgress != nil {
		s.OnProgress(Progress{Percent: pct, Message: fmt.Sprintf(format, args...)})
	}
}

// Run performs the simulation. All parameter validation happens before
// any geometry work. Cancellation is honoured between steps: the
// returned *wormgear.CanceledError matches ctx.Err() through errors.Is
// and no partial solid accompanies it.
func (s *Simulator) Run(ctx context.Context) (sdf.SDF3, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	steps := s.Options.HobbingSteps()
	ratio := wormgear.GearRatio(s.Wheel, s.Worm)
	hand := float64(s.Assembly.Hand)
	dWheel := 2 * math.Pi / float64(steps)
	cadence := simplifyEvery
	if s.Worm.Globoid {
		cadence = simplifyEveryGloboid
		s.logf("hobbing: globoid hob, simplifying the envelope every step")
	}

	s.report(0, "hobbing %d steps, ratio %g:%d", steps, ratio*float64(s.Worm.Starts), s.Worm.Starts)

	var envelope sdf.SDF3
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.report(95*float64(i)/float64(steps), "hobbing cancelled after step %d", i)
			return nil, &wormgear.CanceledError{Stage: "hobbing", Step: i, Err: ctx.Err()}
		default:
		}

		// Conjugate action: the hob turns ratio times as fast as the
		// wheel, in the sense set by the thread hand.
		wheelAngle := float64(i) * dWheel
		hobAngle := hand * wheelAngle * ratio
		cut := s.posedHob(wheelAngle, hobAngle)

		if envelope == nil {
			envelope = cut
		} else {
			fused, err := solidops.RobustUnion(envelope, cut)
			if err != nil {
				s.report(95*float64(i)/float64(steps), "hobbing failed at step %d", i)
				return nil, &wormgear.GeometryError{
					Stage: "hobbing", Step: i,
					BoundA: envelope.Bounds(), BoundB: cut.Bounds(),
					Err: err,
				}
			}
			envelope = fused
		}
		if (i+1)%cadence == 0 {
			envelope = solidops.Simplify(envelope)
		}
		s.report(95*float64(i+1)/float64(steps), "hobbing step %d/%d", i+1, steps)
	}

	envelope = solidops.Simplify(envelope)
	s.logf("hobbing: envelope of %d poses holds %d leaf solids", steps, solidops.NodeCount(envelope))
	blank := must3.Cylinder(s.Wheel.FaceWidth, s.Wheel.TipDiameter/2, 0)
	wheel, err := solidops.RobustSubtract(blank, envelope)
	if err != nil {
		s.report(95, "hobbing failed cutting the blank")
		return nil, &wormgear.GeometryError{
			Stage: "hobbing", Step: -1,
			BoundA: blank.Bounds(), BoundB: envelope.Bounds(),
			Err: err,
		}
	}
	s.report(100, "hobbing complete")
	return wheel, nil
}

// posedHob places the hob against the wheel blank: spin the hob about
// its own axis, lay that axis into the wheel plane, push it out to the
// centre distance, then rotate the whole engagement site around the
// wheel. Rotating the site by -wheelAngle is equivalent to rotating the
// blank by +wheelAngle while keeping the hob station fixed.
func (s *Simulator) posedHob(wheelAngle, hobAngle float64) sdf.SDF3 {
	m := sdf.RotateZ(-wheelAngle).
		Mul(sdf.Translate3D(r3.Vec{X: s.Assembly.CentreDistance})).
		Mul(sdf.RotateX(math.Pi / 2)).
		Mul(sdf.RotateZ(hobAngle))
	return sdf.Transform3D(s.Hob, m)
}

func (s *Simulator) validate() error {
	if err := s.Options.Validate(); err != nil {
		return err
	}
	if err := s.Assembly.Validate(s.Worm, s.Wheel); err != nil {
		return err
	}
	if s.Hob == nil {
		return &wormgear.ParamError{Param: "hob", Reason: "hob solid must not be nil"}
	}
	return nil
}
