package solidops

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/sdf"
	"github.com/soypat/sdf/render"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pzfreo/wormgear-sub000/internal/d3box"
)

// Mesh triangulates a solid with the octree renderer at the given cell
// resolution.
func Mesh(s sdf.SDF3, cells int) ([]r3.Triangle, error) {
	return render.RenderAll(render.NewOctreeRenderer(s, cells))
}

// MeshVolume computes the enclosed volume of a triangle soup by the
// divergence theorem (sum of signed tetrahedra against the origin).
// The result is only meaningful for watertight meshes.
func MeshVolume(tris []r3.Triangle) float64 {
	v := 0.0
	for _, t := range tris {
		v += r3.Dot(t[0], r3.Cross(t[1], t[2]))
	}
	return math.Abs(v) / 6
}

// MeshBounds returns the axis-aligned bounds of a triangle soup.
func MeshBounds(tris []r3.Triangle) r3.Box {
	if len(tris) == 0 {
		return r3.Box{}
	}
	bb := r3.Box{Min: tris[0][0], Max: tris[0][0]}
	for _, t := range tris {
		for _, v := range t {
			bb.Min = d3box.MinElem(bb.Min, v)
			bb.Max = d3box.MaxElem(bb.Max, v)
		}
	}
	return bb
}

// vertKey quantizes a vertex for edge matching. The octree renderer
// emits exactly coincident vertices for shared edges, so a fine
// quantization only guards against float formatting noise.
type vertKey [3]int64

func quantize(v r3.Vec) vertKey {
	const scale = 1e7
	return vertKey{
		int64(math.Round(v.X * scale)),
		int64(math.Round(v.Y * scale)),
		int64(math.Round(v.Z * scale)),
	}
}

type edgeKey struct{ a, b vertKey }

func edge(a, b vertKey) edgeKey {
	// undirected: order the endpoints
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			if a[i] > b[i] {
				a, b = b, a
			}
			break
		}
	}
	return edgeKey{a, b}
}

// Watertight reports whether every edge of the mesh is shared by
// exactly two triangles, the closed-2-manifold condition a machinable
// solid must satisfy.
func Watertight(tris []r3.Triangle) bool {
	if len(tris) == 0 {
		return false
	}
	edges := make(map[edgeKey]int, 3*len(tris))
	for _, t := range tris {
		k0, k1, k2 := quantize(t[0]), quantize(t[1]), quantize(t[2])
		if k0 == k1 || k1 == k2 || k2 == k0 {
			continue // degenerate sliver, ignore for connectivity
		}
		edges[edge(k0, k1)]++
		edges[edge(k1, k2)]++
		edges[edge(k2, k0)]++
	}
	for _, n := range edges {
		if n != 2 {
			return false
		}
	}
	return true
}

// Volume meshes the solid and returns its enclosed volume.
func Volume(s sdf.SDF3, cells int) (float64, error) {
	tris, err := Mesh(s, cells)
	if err != nil {
		return 0, err
	}
	if len(tris) == 0 {
		return 0, errors.New("solid produced no surface")
	}
	return MeshVolume(tris), nil
}

// Valid is the cheap validity probe the builders run on candidate
// output: the solid must contain material and form a single connected
// body at the given voxel resolution.
func Valid(s sdf.SDF3, res int) error {
	comps, err := Components(s, res)
	if err != nil {
		return err
	}
	switch {
	case len(comps) == 0:
		return errors.New("no material")
	case len(comps) > 1:
		return fmt.Errorf("%d disconnected bodies", len(comps))
	case comps[0].Volume <= 0:
		return errors.New("non-positive volume")
	}
	return nil
}
