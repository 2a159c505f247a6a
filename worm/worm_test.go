package worm

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	wormgear "github.com/pzfreo/wormgear-sub000"
	"github.com/pzfreo/wormgear-sub000/internal/solidops"
	"gonum.org/v1/gonum/spatial/r3"
)

func testBuilder() Builder {
	return Builder{
		Worm:   wormgear.NewWorm(2, 1, 16, wormgear.RightHand),
		Length: 30,
	}
}

func TestBuilderValidation(t *testing.T) {
	b := testBuilder()
	b.Length = 0
	if _, err := b.Solid(); err == nil {
		t.Error("zero length passed validation")
	}

	b = testBuilder()
	b.Worm.Module = 0
	var perr *wormgear.ParamError
	if _, err := b.Solid(); !errors.As(err, &perr) {
		t.Errorf("invalid worm: got %v, want *ParamError", err)
	}

	b = testBuilder()
	b.Options.Method = wormgear.Method(9)
	if _, err := b.Solid(); err == nil {
		t.Error("unknown method passed validation")
	}
}

func TestGloboidNeedsThroatRadius(t *testing.T) {
	b := testBuilder()
	b.Worm.Globoid = true
	b.Worm.ThroatRadius = 0
	_, err := b.Solid()
	var perr *wormgear.ParamError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *ParamError", err)
	}
	if perr.Param != "worm.ThroatRadius" {
		t.Errorf("flagged %q, want worm.ThroatRadius", perr.Param)
	}
}

func TestSolidBounds(t *testing.T) {
	b := testBuilder()
	for _, method := range []wormgear.Method{wormgear.MethodSweep, wormgear.MethodLoft} {
		b.Options.Method = method
		s, err := b.Solid()
		if err != nil {
			t.Fatalf("%v: %v", method, err)
		}
		bb := s.Bounds()
		if got, want := bb.Max.Z-bb.Min.Z, b.Length; math.Abs(got-want) > 1e-9 {
			t.Errorf("%v: axial extent %g, want %g", method, got, want)
		}
		rTip := b.Worm.TipDiameter / 2
		if bb.Max.X < rTip-1e-9 || bb.Max.X > rTip+1 {
			t.Errorf("%v: radial bound %g, want about %g", method, bb.Max.X, rTip)
		}
	}
}

func TestSolidMembership(t *testing.T) {
	b := testBuilder()
	s, err := b.Solid()
	if err != nil {
		t.Fatal(err)
	}
	rRoot := b.Worm.RootDiameter / 2
	rTip := b.Worm.TipDiameter / 2
	for _, tc := range []struct {
		name   string
		p      r3.Vec
		inside bool
	}{
		{"axis", r3.Vec{}, true},
		{"core", r3.Vec{X: rRoot - 0.2}, true},
		{"outside tip", r3.Vec{X: rTip + 0.5}, false},
		{"past end", r3.Vec{Z: b.Length/2 + 0.5}, false},
		{"core near end", r3.Vec{X: rRoot - 0.2, Z: b.Length/2 - 0.5}, true},
	} {
		d := s.Evaluate(tc.p)
		if tc.inside && d > 0 {
			t.Errorf("%s: d=%g, want inside", tc.name, d)
		}
		if !tc.inside && d <= 0 {
			t.Errorf("%s: d=%g, want outside", tc.name, d)
		}
	}
}

// The thread must actually protrude past the core: somewhere at mid
// thread-depth radius there is material, and the same radius half an
// axial pitch away (between threads) is empty at the same angle.
func TestThreadProtrudes(t *testing.T) {
	b := testBuilder()
	s, err := b.Solid()
	if err != nil {
		t.Fatal(err)
	}
	rMid := (b.Worm.RootDiameter + b.Worm.TipDiameter) / 4
	pitch := b.Worm.AxialPitch()
	// scan one axial pitch at the mid radius looking for both states
	foundIn, foundOut := false, false
	for i := 0; i < 32; i++ {
		z := -pitch/2 + pitch*float64(i)/31
		if s.Evaluate(r3.Vec{X: rMid, Z: z}) < 0 {
			foundIn = true
		} else {
			foundOut = true
		}
	}
	if !foundIn {
		t.Error("no thread material at mid depth")
	}
	if !foundOut {
		t.Error("no gap between threads at mid depth")
	}
}

func TestSweepLoftAgree(t *testing.T) {
	if testing.Short() {
		t.Skip("volume comparison is slow")
	}
	b := testBuilder()
	b.Options.Method = wormgear.MethodSweep
	sweep, err := b.Solid()
	if err != nil {
		t.Fatal(err)
	}
	b.Options.Method = wormgear.MethodLoft
	loft, err := b.Solid()
	if err != nil {
		t.Fatal(err)
	}
	const cells = 100
	vs, err := solidops.Volume(sweep, cells)
	if err != nil {
		t.Fatal(err)
	}
	vl, err := solidops.Volume(loft, cells)
	if err != nil {
		t.Fatal(err)
	}
	if diff := math.Abs(vs-vl) / vs; diff > 0.05 {
		t.Errorf("sweep volume %g vs loft volume %g: %.1f%% apart", vs, vl, 100*diff)
	}
}

// Both build methods must produce a printable solid: one connected
// body whose rendered surface is closed.
func TestSolidMeshIntegrity(t *testing.T) {
	if testing.Short() {
		t.Skip("meshing is slow")
	}
	b := testBuilder()
	for _, method := range []wormgear.Method{wormgear.MethodSweep, wormgear.MethodLoft} {
		b.Options.Method = method
		s, err := b.Solid()
		if err != nil {
			t.Fatalf("%v: %v", method, err)
		}
		if err := solidops.Valid(s, 48); err != nil {
			t.Errorf("%v: solid invalid: %v", method, err)
		}
		tris, err := solidops.Mesh(s, 64)
		if err != nil {
			t.Fatalf("%v: mesh: %v", method, err)
		}
		if !solidops.Watertight(tris) {
			t.Errorf("%v: rendered surface is not closed", method)
		}
		if v := solidops.MeshVolume(tris); v <= 0 {
			t.Errorf("%v: mesh volume %g, want > 0", method, v)
		}
	}
}

// High lead angles are rejected for sweeping before any geometry is
// built; the builder lofts instead and says so.
func TestSteepLeadFallsBackToLoft(t *testing.T) {
	var buf bytes.Buffer
	b := Builder{
		// 4 starts on a slim worm gives a lead angle past the sweep limit.
		Worm:    wormgear.NewWorm(2, 4, 14, wormgear.RightHand),
		Length:  30,
		Options: wormgear.Options{Method: wormgear.MethodSweep},
		Log:     log.New(&buf, "", 0),
	}
	if b.Worm.LeadAngle <= sweepMaxLeadAngle {
		t.Fatalf("test geometry has lead angle %g, need > %g", b.Worm.LeadAngle, sweepMaxLeadAngle)
	}
	s, err := b.Solid()
	if err != nil {
		t.Fatal(err)
	}
	if s == nil {
		t.Fatal("no solid returned")
	}
	if !strings.Contains(buf.String(), "falling back to loft") {
		t.Errorf("fallback not logged, log was %q", buf.String())
	}
}

func TestGloboidNarrowsWaist(t *testing.T) {
	b := testBuilder()
	b.Worm.Globoid = true
	b.Worm.ThroatRadius = 22
	s, err := b.Solid()
	if err != nil {
		t.Fatal(err)
	}
	rTip := b.Worm.TipDiameter / 2
	// At the waist the tip envelope sits at the nominal radius;
	// toward the ends it swells by the throat offset.
	if d := s.Evaluate(r3.Vec{X: rTip + 0.1}); d <= 0 {
		t.Error("material outside nominal tip radius at the waist")
	}
	off := newThroatLaw(b.Worm).offset(b.Length / 2)
	if off <= 0 {
		t.Fatal("throat law produced no swell at the ends")
	}
	bb := s.Bounds()
	if bb.Max.X < rTip+off-1e-9 {
		t.Errorf("bounds %g do not cover the swollen ends (%g)", bb.Max.X, rTip+off)
	}
}

func TestThroatLawClamp(t *testing.T) {
	law := throatLaw{radius: 10}
	if got := law.offset(0); got != 0 {
		t.Errorf("offset at waist = %g, want 0", got)
	}
	if got, want := law.offset(6), 2.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("offset(6) = %g, want %g", got, want)
	}
	// beyond the throat radius the law clamps instead of going complex
	if got := law.offset(15); got != 0 {
		t.Errorf("offset past throat radius = %g, want clamped 0", got)
	}
}

func TestSawTooth(t *testing.T) {
	const p = 2 * math.Pi
	for _, z := range []float64{0, 1, -1, p, 3 * p, -2.5 * p, 100} {
		u := sawTooth(z, p)
		if u < -p/2-1e-9 || u > p/2+1e-9 {
			t.Errorf("sawTooth(%g) = %g outside one period", z, u)
		}
	}
	if u := sawTooth(p, p); math.Abs(u) > 1e-12 {
		t.Errorf("sawTooth at exact period = %g, want 0", u)
	}
}
