// Package solidops wraps the raw distance-field booleans with the
// defensive behavior iterative solid modelling needs: validity-probed
// fuse/cut with one relaxed-tolerance retry, union-tree flattening to
// keep evaluation cost bounded across many accumulated operands, and
// single-body extraction when a result splits into multiple components.
package solidops

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pzfreo/wormgear-sub000/internal/d3box"
)

// relaxTol is the relaxed coincidence tolerance applied when a boolean
// operation is retried after a validity-probe failure.
const relaxTol = 1e-4

// ErrDegenerate reports a boolean result that failed the validity probe
// even after the relaxed-tolerance retry.
var ErrDegenerate = errors.New("boolean result is degenerate")

// flatUnion is an n-ary union with per-child bounding boxes. Evaluate
// skips children whose box lower bound cannot beat the running minimum,
// which keeps the cost of the accumulated hobbing envelope tractable.
type flatUnion struct {
	children []sdf.SDF3
	boxes    []r3.Box
	bb       r3.Box
}

func (u *flatUnion) Evaluate(p r3.Vec) float64 {
	d := math.MaxFloat64
	for i, c := range u.children {
		// The box distance only bounds the child's field from below
		// outside the box; a containing box has distance zero however
		// deep the point sits, so children containing p are never pruned.
		if !d3box.Contains(u.boxes[i], p) && d3box.Dist(u.boxes[i], p) >= d {
			continue
		}
		if v := c.Evaluate(p); v < d {
			d = v
		}
	}
	return d
}

func (u *flatUnion) Bounds() r3.Box { return u.bb }

func newFlatUnion(children []sdf.SDF3) *flatUnion {
	u := &flatUnion{children: children, boxes: make([]r3.Box, len(children))}
	u.bb = children[0].Bounds()
	for i, c := range children {
		u.boxes[i] = c.Bounds()
		u.bb = d3box.Extend(u.bb, u.boxes[i])
	}
	return u
}

func flatten(s sdf.SDF3, dst []sdf.SDF3) []sdf.SDF3 {
	if u, ok := s.(*flatUnion); ok {
		for _, c := range u.children {
			dst = flatten(c, dst)
		}
		return dst
	}
	return append(dst, s)
}

// Simplify reduces an accumulated union tree to a single flat n-ary
// union with bounding-box pruned evaluation. Simplifying an already
// simple solid is a no-op: the call is idempotent and NodeCount and
// volume are unchanged by a second application.
func Simplify(s sdf.SDF3) sdf.SDF3 {
	kids := flatten(s, nil)
	if len(kids) == 1 {
		return kids[0]
	}
	return newFlatUnion(kids)
}

// NodeCount returns the number of leaf solids in a union tree. It is
// the cost measure Simplify keeps bounded.
func NodeCount(s sdf.SDF3) int {
	if u, ok := s.(*flatUnion); ok {
		n := 0
		for _, c := range u.children {
			n += NodeCount(c)
		}
		return n
	}
	return 1
}

// probe checks a solid for the degeneracies distance-field booleans can
// produce: non-finite or empty bounds, or non-finite distances.
func probe(s sdf.SDF3) error {
	bb := s.Bounds()
	if !d3box.Finite(bb) {
		return fmt.Errorf("%w: bounds %v", ErrDegenerate, bb)
	}
	for _, p := range []r3.Vec{d3box.Center(bb), bb.Min, bb.Max} {
		if d := s.Evaluate(p); math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: non-finite distance at %v", ErrDegenerate, p)
		}
	}
	return nil
}

// RobustUnion fuses a and b, retrying once with a relaxed coincidence
// tolerance before propagating the failure. The result accumulates
// flat: fusing onto a previous RobustUnion result extends the same
// n-ary union rather than deepening the tree.
func RobustUnion(a, b sdf.SDF3) (sdf.SDF3, error) {
	if a == nil || b == nil {
		return nil, errors.New("nil operand to union")
	}
	u := newFlatUnion(flatten(b, flatten(a, nil)))
	if err := probe(u); err == nil {
		return u, nil
	}
	u = newFlatUnion(flatten(sdf.Offset3D(b, relaxTol), flatten(a, nil)))
	if err := probe(u); err != nil {
		return nil, err
	}
	return u, nil
}

// RobustSubtract cuts b from a, retrying once with a relaxed tolerance
// (a slightly oversized cutter) before propagating the failure.
func RobustSubtract(a, b sdf.SDF3) (sdf.SDF3, error) {
	if a == nil || b == nil {
		return nil, errors.New("nil operand to subtract")
	}
	d := sdf.Difference3D(a, b)
	if err := probe(d); err == nil {
		return d, nil
	}
	d = sdf.Difference3D(a, sdf.Offset3D(b, relaxTol))
	if err := probe(d); err != nil {
		return nil, err
	}
	return d, nil
}

// clipBox is a box solid used to clip a multi-body result down to its
// dominant component.
type clipBox struct {
	bb     r3.Box
	center r3.Vec
	half   r3.Vec
}

func newClipBox(bb r3.Box) *clipBox {
	return &clipBox{bb: bb, center: d3box.Center(bb), half: r3.Scale(0.5, d3box.Size(bb))}
}

func (c *clipBox) Evaluate(p r3.Vec) float64 {
	q := r3.Sub(p, c.center)
	d := r3.Sub(r3.Vec{X: math.Abs(q.X), Y: math.Abs(q.Y), Z: math.Abs(q.Z)}, c.half)
	out := r3.Norm(d3box.MaxElem(d, r3.Vec{}))
	in := math.Min(math.Max(d.X, math.Max(d.Y, d.Z)), 0)
	return out + in
}

func (c *clipBox) Bounds() r3.Box { return c.bb }

// SingleBody resolves a solid to the single intended body. A solid that
// is already one connected component is returned unchanged. When
// numerical splitting has produced debris, the dominant body is kept
// only if it holds at least 95% of the material and the debris is
// spatially disjoint from it; anything more ambiguous fails loudly
// rather than silently picking a sub-body. res is the voxel labelling
// resolution along the longest axis.
func SingleBody(s sdf.SDF3, res int) (sdf.SDF3, error) {
	comps, err := Components(s, res)
	if err != nil {
		return nil, err
	}
	switch len(comps) {
	case 0:
		return nil, errors.New("solid has no material")
	case 1:
		return s, nil
	}
	total := 0.0
	dominant := 0
	for i, c := range comps {
		total += c.Volume
		if c.Volume > comps[dominant].Volume {
			dominant = i
		}
	}
	if comps[dominant].Volume < 0.95*total {
		return nil, fmt.Errorf("ambiguous compound: %d bodies, largest holds %.0f%% of material",
			len(comps), 100*comps[dominant].Volume/total)
	}
	keep := d3box.Enlarge(comps[dominant].Bounds, d3box.Elem(2*comps[dominant].VoxelSize))
	for i, c := range comps {
		if i != dominant && d3box.Intersects(keep, c.Bounds) {
			return nil, fmt.Errorf("ambiguous compound: debris body overlaps dominant body bounds %s", fmtBox(keep))
		}
	}
	return sdf.Intersect3D(s, newClipBox(keep)), nil
}

func fmtBox(b r3.Box) string {
	return fmt.Sprintf("[%.3g %.3g %.3g;%.3g %.3g %.3g]",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}
