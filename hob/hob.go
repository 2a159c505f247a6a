// Package hob derives the cutting tool for the virtual hobbing
// simulation from the worm it must be conjugate to.
package hob

import (
	"log"

	"github.com/soypat/sdf"
	"github.com/soypat/sdf/form3/must3"

	wormgear "github.com/pzfreo/wormgear-sub000"
	"github.com/pzfreo/wormgear-sub000/worm"
)

const (
	// defaultClearanceFactor sizes the radial oversize as a fraction
	// of the module when no clearance is given.
	defaultClearanceFactor = 0.1
	// globoidSectionCap bounds the loft section count for globoid
	// hobs. A globoid hob is re-simplified every hobbing step, so the
	// per-evaluation cost of its stations dominates the whole run.
	globoidSectionCap = 18
)

// Build derives a hob from worm parameters with the default pressure
// angle and no logging.
func Build(p wormgear.WormParameters, length float64, opts wormgear.Options) (sdf.SDF3, error) {
	return Builder{Worm: p, Length: length, Options: opts}.Solid()
}

// Builder produces hob solids. The hob is the worm thread oversized by
// a radial clearance so the generated wheel does not bind on the real
// worm.
type Builder struct {
	Worm          wormgear.WormParameters
	Length        float64
	PressureAngle float64
	Options       wormgear.Options
	Log           *log.Logger
}

// Solid builds the hob, axis along Z like the worm it is derived from.
func (b Builder) Solid() (sdf.SDF3, error) {
	opts := b.Options
	if b.Worm.Globoid && opts.Sections() > globoidSectionCap {
		if b.Log != nil {
			b.Log.Printf("hob: capping globoid sections per turn at %d (requested %d)",
				globoidSectionCap, opts.Sections())
		}
		opts.SectionsPerTurn = globoidSectionCap
	}
	wb := worm.Builder{
		Worm:          b.Worm,
		Length:        b.Length,
		PressureAngle: b.PressureAngle,
		Options:       opts,
		Log:           b.Log,
	}
	s, err := wb.Solid()
	if err != nil {
		return nil, err
	}
	return FromSolid(s, b.clearance()), nil
}

// Proxy is a plain cylinder at the hob tip radius plus clearance. It
// cuts the wheel blank to the correct throat without tooth flanks,
// useful for fast previews of the hobbing kinematics.
func (b Builder) Proxy() (sdf.SDF3, error) {
	if err := b.Worm.Validate(); err != nil {
		return nil, err
	}
	if b.Length <= 0 {
		return nil, &wormgear.ParamError{Param: "hob.Length", Value: b.Length, Reason: "must be > 0"}
	}
	return must3.Cylinder(b.Length, b.Worm.TipDiameter/2+b.clearance(), 0), nil
}

func (b Builder) clearance() float64 {
	if b.Options.Clearance > 0 {
		return b.Options.Clearance
	}
	return defaultClearanceFactor * b.Worm.Module
}

// FromSolid turns an arbitrary solid into a hob by growing it radially
// by the given clearance. Callers with a pre-built worm solid can skip
// the rebuild in Builder.Solid.
func FromSolid(s sdf.SDF3, clearance float64) sdf.SDF3 {
	if clearance == 0 {
		return s
	}
	return sdf.Offset3D(s, clearance)
}
