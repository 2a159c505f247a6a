// Package features applies mounting features (bores, keyways, set-screw
// pilots, hubs) to finished worm and wheel solids. All features are
// referenced to the part axis, which is Z for every solid this module
// produces.
package features

import (
	"math"

	"github.com/soypat/sdf"
	"github.com/soypat/sdf/form3/must3"
	"gonum.org/v1/gonum/spatial/r3"

	wormgear "github.com/pzfreo/wormgear-sub000"
)

// cutMargin extends cutters past the part faces so boolean results have
// no coplanar face ambiguity.
const cutMargin = 0.1

// Bore drills an axial through-hole centred on the part axis.
func Bore(s sdf.SDF3, diameter float64) (sdf.SDF3, error) {
	if diameter <= 0 {
		return nil, &wormgear.ParamError{Param: "features.BoreDiameter", Value: diameter, Reason: "must be > 0"}
	}
	bb := s.Bounds()
	if r := partRadius(bb); diameter/2 >= r {
		return nil, &wormgear.ParamError{Param: "features.BoreDiameter", Value: diameter,
			Reason: "bore radius must be smaller than the part radius"}
	}
	h := bb.Max.Z - bb.Min.Z + 2*cutMargin
	var drill sdf.SDF3 = must3.Cylinder(h, diameter/2, 0)
	drill = sdf.Transform3D(drill, sdf.Translate3D(r3.Vec{Z: (bb.Max.Z + bb.Min.Z) / 2}))
	return sdf.Difference3D(s, drill), nil
}

// KeyDims are parallel-key slot dimensions per DIN 6885-1 for a given
// bore diameter: the key width and the slot depth into the hub.
type KeyDims struct {
	Width    float64
	HubDepth float64
}

// din6885 maps bore diameter ranges (over min, up to and including max)
// to standard key sizes.
var din6885 = []struct {
	min, max float64
	dims     KeyDims
}{
	{6, 8, KeyDims{Width: 2, HubDepth: 1.0}},
	{8, 10, KeyDims{Width: 3, HubDepth: 1.4}},
	{10, 12, KeyDims{Width: 4, HubDepth: 1.8}},
	{12, 17, KeyDims{Width: 5, HubDepth: 2.3}},
	{17, 22, KeyDims{Width: 6, HubDepth: 2.8}},
	{22, 30, KeyDims{Width: 8, HubDepth: 3.3}},
	{30, 38, KeyDims{Width: 10, HubDepth: 3.3}},
	{38, 44, KeyDims{Width: 12, HubDepth: 3.3}},
}

// KeyDimsFor returns the DIN 6885-1 slot size for a bore diameter.
// Diameters outside the table fall back to proportional sizing
// (width d/4, depth d/8).
func KeyDimsFor(boreDiameter float64) KeyDims {
	for _, row := range din6885 {
		if boreDiameter > row.min && boreDiameter <= row.max {
			return row.dims
		}
	}
	return KeyDims{Width: boreDiameter / 4, HubDepth: boreDiameter / 8}
}

// Keyway cuts a parallel-key slot along the full length of an existing
// bore. The slot sits on the +X side of the bore.
func Keyway(s sdf.SDF3, boreDiameter float64) (sdf.SDF3, error) {
	if boreDiameter <= 0 {
		return nil, &wormgear.ParamError{Param: "features.BoreDiameter", Value: boreDiameter, Reason: "must be > 0"}
	}
	k := KeyDimsFor(boreDiameter)
	bb := s.Bounds()
	h := bb.Max.Z - bb.Min.Z + 2*cutMargin
	// Cutter reaches back into the bore so the slot floor is flat at
	// bore radius + depth.
	reach := boreDiameter / 2
	var slot sdf.SDF3 = must3.Box(r3.Vec{X: reach + k.HubDepth, Y: k.Width, Z: h}, 0)
	slot = sdf.Transform3D(slot, sdf.Translate3D(r3.Vec{
		X: (reach + k.HubDepth) / 2,
		Z: (bb.Max.Z + bb.Min.Z) / 2,
	}))
	return sdf.Difference3D(s, slot), nil
}

// SetScrew cuts a radial pilot hole from the bore to the outside of the
// part at the given axial position, aimed along +X. The hole is sized
// for tapping, not clearance.
func SetScrew(s sdf.SDF3, screwDiameter, atZ float64) (sdf.SDF3, error) {
	if screwDiameter <= 0 {
		return nil, &wormgear.ParamError{Param: "features.SetScrewDiameter", Value: screwDiameter, Reason: "must be > 0"}
	}
	bb := s.Bounds()
	if atZ <= bb.Min.Z || atZ >= bb.Max.Z {
		return nil, &wormgear.ParamError{Param: "features.SetScrewZ", Value: atZ,
			Reason: "must lie inside the part along the axis"}
	}
	reach := partRadius(bb) + cutMargin
	pilot := must3.Cylinder(reach, screwDiameter/2, 0)
	m := sdf.Translate3D(r3.Vec{X: reach / 2, Z: atZ}).Mul(sdf.RotateY(math.Pi / 2))
	return sdf.Difference3D(s, sdf.Transform3D(pilot, m)), nil
}

// Hub unions a cylindrical boss onto the +Z face of the part, sharing
// the part axis. Bore the part after adding the hub so the hole runs
// through both.
func Hub(s sdf.SDF3, diameter, length float64) (sdf.SDF3, error) {
	if diameter <= 0 {
		return nil, &wormgear.ParamError{Param: "features.HubDiameter", Value: diameter, Reason: "must be > 0"}
	}
	if length <= 0 {
		return nil, &wormgear.ParamError{Param: "features.HubLength", Value: length, Reason: "must be > 0"}
	}
	bb := s.Bounds()
	var boss sdf.SDF3 = must3.Cylinder(length+cutMargin, diameter/2, 0)
	boss = sdf.Transform3D(boss, sdf.Translate3D(r3.Vec{Z: bb.Max.Z + (length-cutMargin)/2}))
	return sdf.Union3D(s, boss), nil
}

func partRadius(bb r3.Box) float64 {
	return math.Max(math.Max(bb.Max.X, -bb.Min.X), math.Max(bb.Max.Y, -bb.Min.Y))
}
