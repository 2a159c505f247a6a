package wormgear

// ProfileShape selects the standardized worm thread cross-section.
type ProfileShape int

const (
	// ProfileZA is the straight-flank trapezoid. The pressure angle is
	// implied by the flank width difference between root and tip.
	ProfileZA ProfileShape = iota
	// ProfileZK replaces the flanks with convex circular arcs; the
	// rounded form reduces stress concentration on printed parts.
	ProfileZK
	// ProfileZI approximates involute flanks. Accuracy is secondary to
	// ZA/ZK for CNC and printed manufacture.
	ProfileZI
)

func (s ProfileShape) String() string {
	switch s {
	case ProfileZA:
		return "ZA"
	case ProfileZK:
		return "ZK"
	case ProfileZI:
		return "ZI"
	}
	return "unknown"
}

func (s ProfileShape) isValid() bool { return s >= ProfileZA && s <= ProfileZI }

// Method selects how the worm solid is generated from its profile.
type Method int

const (
	// MethodSweep sweeps a single profile continuously along the helix
	// with the profile's radial axis locked away from the worm axis.
	MethodSweep Method = iota
	// MethodLoft samples the profile at discrete stations along the
	// helix and lofts through them.
	MethodLoft
)

func (m Method) String() string {
	switch m {
	case MethodSweep:
		return "sweep"
	case MethodLoft:
		return "loft"
	}
	return "unknown"
}

func (m Method) isValid() bool { return m == MethodSweep || m == MethodLoft }

// Quality is a named preset resolving to a hobbing step count.
type Quality int

const (
	// QualityPreview resolves to 36 hobbing steps.
	QualityPreview Quality = iota
	// QualityBalanced resolves to 72 hobbing steps.
	QualityBalanced
	// QualityHigh resolves to 144 hobbing steps.
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityPreview:
		return "preview"
	case QualityBalanced:
		return "balanced"
	case QualityHigh:
		return "high"
	}
	return "unknown"
}

// Steps resolves the preset to its hobbing step count.
func (q Quality) Steps() int {
	switch q {
	case QualityPreview:
		return 36
	case QualityBalanced:
		return 72
	case QualityHigh:
		return 144
	}
	return 0
}

// Hobbing step count bounds. Below the minimum the wheel teeth come out
// visibly faceted; above the maximum the compounding boolean cost risks
// unbounded memory and time.
const (
	MinHobbingSteps = 6
	MaxHobbingSteps = 1000
)

// DefaultSectionsPerTurn is the loft sampling density per helix turn.
const DefaultSectionsPerTurn = 36

// MinSectionsPerTurn is the usable smoothness floor for lofting.
// Explicit densities below it fail validation.
const MinSectionsPerTurn = 12

// Options is the manufacturing-options record supplied alongside the
// dimensional parameters.
type Options struct {
	Profile ProfileShape
	Method  Method
	// Steps is an explicit hobbing step count. Zero defers to Quality.
	Steps   int
	Quality Quality
	// SectionsPerTurn is the loft station density. Zero means
	// DefaultSectionsPerTurn.
	SectionsPerTurn int
	// Clearance oversizes the hob relative to the nominal worm for
	// cutting clearance.
	Clearance float64
}

// HobbingSteps resolves the effective step count.
func (o Options) HobbingSteps() int {
	if o.Steps != 0 {
		return o.Steps
	}
	return o.Quality.Steps()
}

// Sections resolves the effective loft station density.
func (o Options) Sections() int {
	if o.SectionsPerTurn != 0 {
		return o.SectionsPerTurn
	}
	return DefaultSectionsPerTurn
}

// Validate checks the options record once at entry so invalid method or
// shape tags fail fast instead of silently defaulting.
func (o Options) Validate() error {
	if !o.Profile.isValid() {
		return &ParamError{Param: "options.Profile", Value: float64(o.Profile), Reason: "unknown profile shape"}
	}
	if !o.Method.isValid() {
		return &ParamError{Param: "options.Method", Value: float64(o.Method), Reason: "unknown generation method"}
	}
	if o.Steps == 0 && o.Quality.Steps() == 0 {
		return &ParamError{Param: "options.Quality", Value: float64(o.Quality), Reason: "unknown quality preset"}
	}
	if n := o.HobbingSteps(); n < MinHobbingSteps || n > MaxHobbingSteps {
		return &ParamError{Param: "options.Steps", Value: float64(n), Reason: "hobbing step count outside [6, 1000]"}
	}
	if o.SectionsPerTurn != 0 && o.SectionsPerTurn < MinSectionsPerTurn {
		return &ParamError{Param: "options.SectionsPerTurn", Value: float64(o.SectionsPerTurn),
			Reason: "loft needs at least 12 sections per turn"}
	}
	if o.Clearance < 0 {
		return &ParamError{Param: "options.Clearance", Value: o.Clearance, Reason: "must be >= 0"}
	}
	return nil
}
