package solidops

import (
	"errors"
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pzfreo/wormgear-sub000/internal/d3box"
)

// Component is one connected body found by voxel labelling.
type Component struct {
	// Volume is the approximate material volume (voxel count times
	// voxel volume).
	Volume float64
	Bounds r3.Box
	// VoxelSize is the labelling cell edge used, for tolerance scaling.
	VoxelSize float64
}

// Components labels the 6-connected components of a solid on a voxel
// grid with res cells along the longest bounding-box axis. It is the
// connectivity check behind SingleBody and the builders' validity
// probes.
func Components(s sdf.SDF3, res int) ([]Component, error) {
	if s == nil {
		return nil, errors.New("nil solid")
	}
	if res < 4 {
		res = 4
	}
	bb := d3box.Enlarge(s.Bounds(), d3box.Elem(1e-3))
	if !d3box.Finite(bb) {
		return nil, errors.New("solid has degenerate bounds")
	}
	size := d3box.Size(bb)
	longest := math.Max(size.X, math.Max(size.Y, size.Z))
	h := longest / float64(res)
	nx := int(math.Ceil(size.X/h)) + 1
	ny := int(math.Ceil(size.Y/h)) + 1
	nz := int(math.Ceil(size.Z/h)) + 1

	idx := func(i, j, k int) int { return (k*ny+j)*nx + i }
	at := func(i, j, k int) r3.Vec {
		return r3.Add(bb.Min, r3.Vec{
			X: (float64(i) + 0.5) * h,
			Y: (float64(j) + 0.5) * h,
			Z: (float64(k) + 0.5) * h,
		})
	}

	inside := make([]bool, nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				inside[idx(i, j, k)] = s.Evaluate(at(i, j, k)) <= 0
			}
		}
	}

	seen := make([]bool, len(inside))
	var comps []Component
	var queue []int
	for start, in := range inside {
		if !in || seen[start] {
			continue
		}
		// flood fill one component
		count := 0
		cb := r3.Box{Min: bb.Max, Max: bb.Min}
		queue = append(queue[:0], start)
		seen[start] = true
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			count++
			ci := cur % nx
			cj := (cur / nx) % ny
			ck := cur / (nx * ny)
			p := at(ci, cj, ck)
			cb.Min = d3box.MinElem(cb.Min, p)
			cb.Max = d3box.MaxElem(cb.Max, p)
			for _, d := range [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
				ni, nj, nk := ci+d[0], cj+d[1], ck+d[2]
				if ni < 0 || nj < 0 || nk < 0 || ni >= nx || nj >= ny || nk >= nz {
					continue
				}
				n := idx(ni, nj, nk)
				if inside[n] && !seen[n] {
					seen[n] = true
					queue = append(queue, n)
				}
			}
		}
		comps = append(comps, Component{
			Volume:    float64(count) * h * h * h,
			Bounds:    d3box.Enlarge(cb, d3box.Elem(h)),
			VoxelSize: h,
		})
	}
	return comps, nil
}
