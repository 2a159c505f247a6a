package wormgear

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ParamError reports an invalid caller input. It is returned before any
// expensive geometry work begins and names the offending parameter.
type ParamError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s=%g: %s", e.Param, e.Value, e.Reason)
}

// GeometryError reports a mid-computation numerical or geometric
// failure after its bounded retry has also failed. Stage identifies the
// failing component ("profile", "sweep", "loft", "hob", "hobbing").
// Step is the hobbing step index, or -1 when not applicable. For failed
// boolean operations the operand bounding boxes are carried so the
// failure can be reproduced and diagnosed.
type GeometryError struct {
	Stage          string
	Step           int
	BoundA, BoundB r3.Box
	Err            error
}

func (e *GeometryError) Error() string {
	where := e.Stage
	if e.Step >= 0 {
		where = fmt.Sprintf("%s step %d", e.Stage, e.Step)
	}
	if e.BoundA != (r3.Box{}) || e.BoundB != (r3.Box{}) {
		return fmt.Sprintf("%s: %v (operand bounds a=%s b=%s)",
			where, e.Err, fmtBox(e.BoundA), fmtBox(e.BoundB))
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// CanceledError is the clean-termination outcome of a cancelled
// simulation. It is not a geometric failure: no partial solid is
// returned alongside it. It matches the underlying context error
// through errors.Is.
type CanceledError struct {
	Stage string
	// Step is the last fully completed step before cancellation.
	Step int
	Err  error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("%s cancelled after step %d: %v", e.Stage, e.Step, e.Err)
}

func (e *CanceledError) Unwrap() error { return e.Err }

func fmtBox(b r3.Box) string {
	return fmt.Sprintf("[%.3g %.3g %.3g;%.3g %.3g %.3g]",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}
