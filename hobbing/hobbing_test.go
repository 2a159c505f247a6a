package hobbing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/soypat/sdf"
	"github.com/soypat/sdf/form3/must3"
	"gonum.org/v1/gonum/spatial/r3"

	wormgear "github.com/pzfreo/wormgear-sub000"
	"github.com/pzfreo/wormgear-sub000/hob"
	"github.com/pzfreo/wormgear-sub000/internal/solidops"
)

func testPair(teeth int) (wormgear.WormParameters, wormgear.WheelParameters, wormgear.AssemblyParameters) {
	w := wormgear.NewWorm(2, 1, 16, wormgear.RightHand)
	g := wormgear.NewWheel(2, teeth, 12)
	return w, g, wormgear.NewAssembly(w, g)
}

func proxyHob(t *testing.T, w wormgear.WormParameters, length float64) sdf.SDF3 {
	t.Helper()
	s, err := hob.Builder{Worm: w, Length: length}.Proxy()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunValidatesBeforeGeometry(t *testing.T) {
	w, g, a := testPair(30)
	events := 0
	sim := New(g, w, a, proxyHob(t, w, 20), wormgear.Options{Steps: wormgear.MinHobbingSteps - 1})
	sim.OnProgress = func(Progress) { events++ }
	s, err := sim.Run(context.Background())
	var perr *wormgear.ParamError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *ParamError", err)
	}
	if s != nil {
		t.Error("solid returned alongside validation error")
	}
	if events != 0 {
		t.Errorf("%d progress events before validation failure, want none", events)
	}
}

func TestRunRejectsNilHob(t *testing.T) {
	w, g, a := testPair(30)
	sim := New(g, w, a, nil, wormgear.Options{Steps: 6})
	if _, err := sim.Run(context.Background()); err == nil {
		t.Error("nil hob passed validation")
	}
}

func TestRunRejectsMismatchedModules(t *testing.T) {
	w, g, a := testPair(30)
	g.Module = 3
	sim := New(g, w, a, proxyHob(t, w, 20), wormgear.Options{Steps: 6})
	if _, err := sim.Run(context.Background()); err == nil {
		t.Error("module mismatch passed validation")
	}
}

func TestRunProducesCutBlank(t *testing.T) {
	w, g, a := testPair(30)
	sim := New(g, w, a, proxyHob(t, w, 20), wormgear.Options{Steps: 12})
	s, err := sim.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// Blank material away from the rim survives; the rim at the
	// engagement site is cut to the throat.
	if d := s.Evaluate(r3.Vec{X: g.PitchDiameter / 4}); d >= 0 {
		t.Errorf("mid-blank material missing, d=%g", d)
	}
	rim := g.TipDiameter/2 - 0.05
	cutDepth := a.CentreDistance - (w.TipDiameter/2 + 0.2)
	if rim <= cutDepth {
		t.Fatal("test geometry does not cut the rim")
	}
	if d := s.Evaluate(r3.Vec{X: rim}); d <= 0 {
		t.Errorf("rim at engagement site not cut, d=%g", d)
	}
}

func TestProgressReporting(t *testing.T) {
	w, g, a := testPair(30)
	sim := New(g, w, a, proxyHob(t, w, 20), wormgear.Options{Steps: 12})
	var events []Progress
	sim.OnProgress = func(p Progress) { events = append(events, p) }
	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(events) < 12 {
		t.Fatalf("%d progress events, want at least one per step", len(events))
	}
	last := 0.0
	for _, e := range events {
		if e.Percent < last-1e-9 {
			t.Fatalf("progress went backwards: %g after %g", e.Percent, last)
		}
		if e.Percent < 0 || e.Percent > 100 {
			t.Fatalf("progress %g outside [0, 100]", e.Percent)
		}
		last = e.Percent
	}
	if events[len(events)-1].Percent != 100 {
		t.Errorf("terminal event percent = %g, want 100", events[len(events)-1].Percent)
	}
}

func TestRunCancellation(t *testing.T) {
	w, g, a := testPair(30)
	const steps = 72
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sim := New(g, w, a, proxyHob(t, w, 20), wormgear.Options{Steps: steps})
	sim.OnProgress = func(p Progress) {
		if p.Message == fmt.Sprintf("hobbing step %d/%d", 40, steps) {
			cancel()
		}
	}
	s, err := sim.Run(ctx)
	if s != nil {
		t.Error("partial solid returned after cancellation")
	}
	var cerr *wormgear.CanceledError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want *CanceledError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("cancellation does not match context.Canceled")
	}
	if cerr.Step != 40 {
		t.Errorf("cancelled at step %d, want 40", cerr.Step)
	}
}

// With an integer gear ratio and a full circle of steps the pose set is
// closed under rotation by one step, so the generated wheel must be
// rotationally symmetric even for a hob with no symmetry of its own.
// A wrong hob/wheel angle coupling breaks this closure.
func TestConjugateClosureSymmetry(t *testing.T) {
	w, g, a := testPair(18) // ratio 18:1
	// Wide enough in X to reach from outside the blank rim down past
	// the throat, with no rotational symmetry of its own.
	asym := must3.Box(r3.Vec{X: 16, Y: 5, Z: 9}, 0)
	const steps = 36
	sim := New(g, w, a, asym, wormgear.Options{Steps: steps})
	s, err := sim.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	dTheta := 2 * math.Pi / steps
	sin, cos := math.Sin(dTheta), math.Cos(dTheta)
	for _, p := range []r3.Vec{
		{X: g.TipDiameter / 2 * 0.98},
		{X: g.PitchDiameter / 2, Z: 2},
		{X: -g.PitchDiameter / 2, Y: 4, Z: -3},
	} {
		q := r3.Vec{X: cos*p.X - sin*p.Y, Y: sin*p.X + cos*p.Y, Z: p.Z}
		dp, dq := s.Evaluate(p), s.Evaluate(q)
		if math.Abs(dp-dq) > 1e-6 {
			t.Errorf("rotation symmetry broken at %v: %g vs %g", p, dp, dq)
		}
	}
}

// End-to-end generation with the real hob geometry. The wheel must be a
// single watertight body strictly smaller than its blank.
func TestGeneratedWheel(t *testing.T) {
	if testing.Short() {
		t.Skip("full hobbing run is slow")
	}
	w, g, a := testPair(30)
	hs, err := hob.Builder{Worm: w, Length: 1.5 * g.FaceWidth}.Solid()
	if err != nil {
		t.Fatal(err)
	}
	sim := New(g, w, a, hs, wormgear.Options{Quality: wormgear.QualityBalanced})
	wheel, err := sim.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := solidops.Valid(wheel, 48); err != nil {
		t.Fatalf("generated wheel invalid: %v", err)
	}
	tris, err := solidops.Mesh(wheel, 64)
	if err != nil {
		t.Fatal(err)
	}
	if !solidops.Watertight(tris) {
		t.Error("generated wheel mesh is not watertight")
	}
	v := solidops.MeshVolume(tris)
	blank := math.Pi * math.Pow(g.TipDiameter/2, 2) * g.FaceWidth
	if v <= 0 || v >= blank {
		t.Errorf("wheel volume %g outside (0, blank %g)", v, blank)
	}
	if v > 0.99*blank {
		t.Error("hobbing removed almost no material")
	}
}
