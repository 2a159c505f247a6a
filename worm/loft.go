package worm

import (
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pzfreo/wormgear-sub000/internal/solidops"
)

// slabOverlap stretches each station slab along the helix tangent so
// neighbouring flat sections overlap and union into a closed thread.
const slabOverlap = 1.3

// loftThread places discrete profile sections along each start's helix
// and unions them. Sections are flat slabs oriented by the local helix
// frame, thick enough to overlap their neighbours.
func (b Builder) loftThread(face sdf.SDF2) (sdf.SDF3, error) {
	p := b.Worm
	perTurn := b.Options.Sections()
	half := b.Length / 2
	margin := p.AxialPitch()
	span := 2 * (half + margin)

	// ceil of a positive turn count plus one is always at least 2, and
	// Options.Validate bounds perTurn, so count needs no guard here.
	turns := span / p.Lead
	count := int(math.Ceil(turns*float64(perTurn))) + 1

	rPitch := p.PitchDiameter / 2
	lambda := math.Atan2(p.Lead, 2*math.Pi*rPitch)
	throat := newThroatLaw(p)
	bb := threadBounds(p, half, margin)

	// step is axial spacing; along the helix it stretches by
	// 1/sin(lambda), and the slab thickness must cover that arc.
	step := span / float64(count-1)
	halfThick := slabOverlap * step / (2 * math.Sin(lambda))

	var starts []sdf.SDF3
	for j := 0; j < p.Starts; j++ {
		phase := float64(j) * 2 * math.Pi / float64(p.Starts)
		stations := make([]sdf.SDF3, 0, count)
		for k := 0; k < count; k++ {
			z := -half - margin + float64(k)*step
			theta := phase + float64(p.Hand)*2*math.Pi*z/p.Lead
			st := &loftStation{
				thread:    face,
				cosT:      math.Cos(theta),
				sinT:      math.Sin(theta),
				z:         z,
				radialOfs: throat.offset(z),
				cosL:      math.Cos(lambda),
				sinL:      float64(p.Hand) * math.Sin(lambda),
				halfThick: halfThick,
				bb:        bb,
			}
			stations = append(stations, st)
		}
		starts = append(starts, solidops.Simplify(stationUnion(stations)))
	}

	out := starts[0]
	for _, s := range starts[1:] {
		var err error
		out, err = solidops.RobustUnion(out, s)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func stationUnion(stations []sdf.SDF3) sdf.SDF3 {
	if len(stations) == 1 {
		return stations[0]
	}
	return sdf.Union3D(stations...)
}

// loftStation is one flat profile slab. The section plane contains the
// radial direction and the slab normal is the helix tangent at the
// station, so consecutive slabs tile the thread like a polygonal
// approximation of the swept tube.
type loftStation struct {
	thread     sdf.SDF2
	cosT, sinT float64 // station angle about the worm axis
	z          float64
	radialOfs  float64 // globoid throat offset at the station
	cosL, sinL float64 // lead angle, hand folded into the sign of sinL
	halfThick  float64
	bb         r3.Box
}

func (s *loftStation) Evaluate(p r3.Vec) float64 {
	// Undo the station rotation so the radial direction is +X.
	x := s.cosT*p.X + s.sinT*p.Y
	y := -s.sinT*p.X + s.cosT*p.Y
	z := p.Z - s.z
	// Local frame at the station: tangent (0, cosL, sinL),
	// thread-width direction (0, sinL, -cosL).
	w := s.sinL*y - s.cosL*z
	t := s.cosL*y + s.sinL*z
	d := s.thread.Evaluate(r2.Vec{X: w, Y: x - s.radialOfs})
	return math.Max(d, math.Abs(t)-s.halfThick)
}

func (s *loftStation) Bounds() r3.Box { return s.bb }
