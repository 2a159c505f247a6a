// Package wormgear computes the engineering parameters and 3D solid
// geometry of worm gear pairs (worm + mating wheel) for CNC and
// 3D-printed manufacture.
//
// The dimensional records in this package are plain structured data,
// lengths in millimeters and angles in degrees. They are created once,
// validated, and consumed read-only by the geometry packages: profile
// (2D thread cross-sections), worm (thread sweep/loft), hob (cutting
// tool) and hobbing (virtual hobbing simulation). Wheel teeth are not a
// standard involute shape; they are the envelope of the worm thread
// swept through all rotations, which is what the hobbing package
// computes.
package wormgear

import "math"

// Hand is the direction of the thread helix.
type Hand int8

const (
	// RightHand threads advance away from the viewer when rotated clockwise.
	RightHand Hand = 1
	// LeftHand is the mirror of RightHand.
	LeftHand Hand = -1
)

func (h Hand) String() string {
	switch h {
	case RightHand:
		return "right"
	case LeftHand:
		return "left"
	}
	return "unknown"
}

func (h Hand) isValid() bool { return h == RightHand || h == LeftHand }

// MinWheelTeeth is the undercut-avoidance threshold for wheel tooth counts.
const MinWheelTeeth = 17

// WormParameters is the immutable dimensional record of one worm.
// All diameters in millimeters, LeadAngle in degrees.
type WormParameters struct {
	Module        float64
	Starts        int
	PitchDiameter float64
	TipDiameter   float64
	RootDiameter  float64
	// Lead is the axial advance per revolution (= Starts * axial pitch).
	Lead            float64
	LeadAngle       float64
	Addendum        float64
	Dedendum        float64
	ThreadThickness float64
	Hand            Hand
	ProfileShift    float64
	// Globoid selects the hourglass (throated) worm shape.
	// ThroatRadius is the curvature radius R of the circular-arc
	// throat law r(z) = base + R - sqrt(R*R - z*z). The law is a
	// documented approximation of the true globoid envelope.
	Globoid      bool
	ThroatRadius float64
}

// NewWorm fills a WormParameters with standard proportions
// (addendum = m, dedendum = 1.2m, axial pitch = pi*m) derived from
// module, number of starts and pitch diameter.
func NewWorm(module float64, starts int, pitchDiameter float64, hand Hand) WormParameters {
	lead := math.Pi * module * float64(starts)
	return WormParameters{
		Module:          module,
		Starts:          starts,
		PitchDiameter:   pitchDiameter,
		TipDiameter:     pitchDiameter + 2*module,
		RootDiameter:    pitchDiameter - 2.4*module,
		Lead:            lead,
		LeadAngle:       180 / math.Pi * math.Atan(lead/(math.Pi*pitchDiameter)),
		Addendum:        module,
		Dedendum:        1.2 * module,
		ThreadThickness: math.Pi * module / 2,
		Hand:            hand,
	}
}

// AxialPitch is the thread-to-thread distance along the axis.
func (p WormParameters) AxialPitch() float64 {
	return p.Lead / float64(p.Starts)
}

// Validate checks the worm invariants. It returns a *ParamError naming
// the first offending parameter.
func (p WormParameters) Validate() error {
	switch {
	case p.Module <= 0:
		return &ParamError{Param: "worm.Module", Value: p.Module, Reason: "must be > 0"}
	case p.Starts < 1:
		return &ParamError{Param: "worm.Starts", Value: float64(p.Starts), Reason: "must be >= 1"}
	case p.RootDiameter <= 0:
		return &ParamError{Param: "worm.RootDiameter", Value: p.RootDiameter, Reason: "must be > 0"}
	case p.PitchDiameter <= p.RootDiameter:
		return &ParamError{Param: "worm.PitchDiameter", Value: p.PitchDiameter, Reason: "must be > root diameter"}
	case p.TipDiameter <= p.PitchDiameter:
		return &ParamError{Param: "worm.TipDiameter", Value: p.TipDiameter, Reason: "must be > pitch diameter"}
	case p.Lead <= 0:
		return &ParamError{Param: "worm.Lead", Value: p.Lead, Reason: "must be > 0"}
	case p.LeadAngle <= 0 || p.LeadAngle >= 90:
		return &ParamError{Param: "worm.LeadAngle", Value: p.LeadAngle, Reason: "must be in (0, 90) degrees"}
	case !p.Hand.isValid():
		return &ParamError{Param: "worm.Hand", Value: float64(p.Hand), Reason: "must be RightHand or LeftHand"}
	case p.Globoid && p.ThroatRadius <= 0:
		return &ParamError{Param: "worm.ThroatRadius", Value: p.ThroatRadius, Reason: "must be > 0 for globoid worms"}
	}
	return nil
}

// WheelParameters is the dimensional record of the mating wheel.
type WheelParameters struct {
	Module         float64
	Teeth          int
	PitchDiameter  float64
	TipDiameter    float64
	RootDiameter   float64
	ThroatDiameter float64
	// HelixAngle of the wheel teeth in degrees. For a 90 degree
	// crossed pair it equals the worm lead angle.
	HelixAngle   float64
	Addendum     float64
	Dedendum     float64
	ProfileShift float64
	// FaceWidth is the axial width of the wheel blank.
	FaceWidth float64
}

// NewWheel fills a WheelParameters with standard proportions from
// module, tooth count and face width.
func NewWheel(module float64, teeth int, faceWidth float64) WheelParameters {
	pitch := module * float64(teeth)
	return WheelParameters{
		Module:         module,
		Teeth:          teeth,
		PitchDiameter:  pitch,
		TipDiameter:    pitch + 2*module,
		RootDiameter:   pitch - 2.4*module,
		ThroatDiameter: pitch + 2*module,
		Addendum:       module,
		Dedendum:       1.2 * module,
		FaceWidth:      faceWidth,
	}
}

// Validate checks the wheel invariants.
func (p WheelParameters) Validate() error {
	switch {
	case p.Module <= 0:
		return &ParamError{Param: "wheel.Module", Value: p.Module, Reason: "must be > 0"}
	case p.Teeth < MinWheelTeeth:
		return &ParamError{Param: "wheel.Teeth", Value: float64(p.Teeth), Reason: "below undercut-avoidance minimum of 17"}
	case p.RootDiameter <= 0:
		return &ParamError{Param: "wheel.RootDiameter", Value: p.RootDiameter, Reason: "must be > 0"}
	case p.PitchDiameter <= p.RootDiameter:
		return &ParamError{Param: "wheel.PitchDiameter", Value: p.PitchDiameter, Reason: "must be > root diameter"}
	case p.TipDiameter <= p.PitchDiameter:
		return &ParamError{Param: "wheel.TipDiameter", Value: p.TipDiameter, Reason: "must be > pitch diameter"}
	case p.FaceWidth <= 0:
		return &ParamError{Param: "wheel.FaceWidth", Value: p.FaceWidth, Reason: "must be > 0"}
	}
	return nil
}

// AssemblyParameters binds a worm and wheel into one gear pair.
type AssemblyParameters struct {
	CentreDistance float64
	// PressureAngle in degrees, conventionally 20.
	PressureAngle float64
	Backlash      float64
	Hand          Hand
}

// NewAssembly derives the assembly constraints for a worm/wheel pair.
func NewAssembly(w WormParameters, g WheelParameters) AssemblyParameters {
	return AssemblyParameters{
		CentreDistance: (w.PitchDiameter + g.PitchDiameter) / 2,
		PressureAngle:  20,
		Hand:           w.Hand,
	}
}

// centreTol is the absolute slack allowed on the centre distance check
// on top of the backlash allowance.
const centreTol = 1e-6

// Validate checks the assembly against its worm and wheel: the modules
// must match (conjugate gearing) and the centre distance must equal the
// sum of the pitch radii within the backlash tolerance.
func (a AssemblyParameters) Validate(w WormParameters, g WheelParameters) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if w.Module != g.Module {
		return &ParamError{Param: "wheel.Module", Value: g.Module,
			Reason: "must match worm module for conjugate gearing"}
	}
	if a.PressureAngle <= 0 || a.PressureAngle >= 45 {
		return &ParamError{Param: "assembly.PressureAngle", Value: a.PressureAngle, Reason: "must be in (0, 45) degrees"}
	}
	if a.Backlash < 0 {
		return &ParamError{Param: "assembly.Backlash", Value: a.Backlash, Reason: "must be >= 0"}
	}
	want := (w.PitchDiameter + g.PitchDiameter) / 2
	if math.Abs(a.CentreDistance-want) > a.Backlash+centreTol {
		return &ParamError{Param: "assembly.CentreDistance", Value: a.CentreDistance,
			Reason: "must equal worm pitch radius + wheel pitch radius within backlash"}
	}
	return nil
}

// GearRatio is the transmission ratio wheel teeth / worm starts.
func GearRatio(g WheelParameters, w WormParameters) float64 {
	return float64(g.Teeth) / float64(w.Starts)
}
