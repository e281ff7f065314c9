package og

import (
	"errors"
	"fmt"
)

// ErrNoEllipsoid is returned when a geodetic path is supplied without
// an ellipsoid to convert it through.
var ErrNoEllipsoid = errors.New("og: geodetic path requires an ellipsoid")

// Extrusion order tags. Each logical path point is emitted as four
// duplicated vertices carrying one tag each; the vertex stage uses the
// tag to pick the left/right and inner/outer extrusion offset, so no
// extra attributes are needed to thicken the line on the GPU.
const (
	orderOuterLeft  = 1
	orderOuterRight = -1
	orderInnerLeft  = 2
	orderInnerRight = -2
)

// pushQuad emits the four duplicated vertices and order tags for one
// logical path point.
func pushQuad(outVertices *[]float32, outOrders *[]float32, p Vec3) {
	x, y, z := float32(p.X), float32(p.Y), float32(p.Z)
	*outVertices = append(*outVertices,
		x, y, z,
		x, y, z,
		x, y, z,
		x, y, z,
	)
	*outOrders = append(*outOrders,
		orderOuterLeft, orderOuterRight, orderInnerLeft, orderInnerRight,
	)
}

// appendRingIndexes writes the leading strip-break pair for a ring and
// returns the ring's starting index. The first ring of a buffer starts
// at zero; later rings continue from the buffer's trailing state so
// indices stay globally unique across the whole multi-ring buffer.
func appendRingIndexes(outIndexes *[]uint32) uint32 {
	if len(*outIndexes) == 0 {
		*outIndexes = append(*outIndexes, 0, 0)
		return 0
	}
	base := (*outIndexes)[len(*outIndexes)-5] + 9
	*outIndexes = append(*outIndexes, base, base)
	return base
}

// validateIndexBuffer rejects a non-empty incoming index buffer too
// short to carry a complete prior emission. Appending derives the next
// ring's base from the buffer's trailing state, and the shortest legal
// emission is a 2-point open ring of 10 indices; anything shorter was
// not produced by this package.
func validateIndexBuffer(outIndexes []uint32) error {
	if n := len(outIndexes); n != 0 && n < 10 {
		return fmt.Errorf("%w: index buffer holds a partial emission", ErrInvalidPath)
	}
	return nil
}

// validateRings checks that every ring has enough points to build a
// mesh from. Both open strips and closed rings need at least 2 points:
// the open case extrapolates a phantom neighbor from the first two, and
// a 1-point ring cannot form a segment.
func validateRings[T any](path [][]T) error {
	if len(path) == 0 {
		return ErrInvalidPath
	}
	for _, ring := range path {
		if len(ring) < 2 {
			return ErrInvalidPath
		}
	}
	return nil
}

// AppendLineData3v tessellates a cartesian path into the three parallel
// mesh buffers of a thick line strip: duplicated vertex positions,
// extrusion order tags and triangle-strip indices.
//
// Every logical point, including two synthetic phantom endpoints per
// ring, becomes four duplicated vertices. For closed rings the phantom
// points reuse the ring's real endpoints; for open strips they are
// linearly extrapolated one step beyond each end so the mitered-line
// vertex stage always has a defined neighbor.
//
// The function appends, so one polyline built from several disjoint
// rings can share a single buffer triple across calls. Ring boundaries
// are separated by two repeated indices forming degenerate triangles
// that break the strip without extra draw calls.
//
// When ell is non-nil, every real point's geodetic and web-mercator
// forms are collected into outLonLat and outMerc (index-aligned with
// the path) and outExtent is grown to cover the ring, sparing
// downstream consumers the reconversion.
//
// Paths where any ring has fewer than 2 points, and non-empty incoming
// index buffers shorter than one complete ring emission, fail with
// ErrInvalidPath before any output is touched.
func AppendLineData3v(
	path [][]Vec3,
	isClosed bool,
	outVertices *[]float32,
	outOrders *[]float32,
	outIndexes *[]uint32,
	ell *Ellipsoid,
	outLonLat *[][]LonLat,
	outMerc *[][]LonLat,
	outExtent *Extent,
) error {
	if err := validateRings(path); err != nil {
		return err
	}
	if err := validateIndexBuffer(*outIndexes); err != nil {
		return err
	}

	for _, ring := range path {
		index := appendRingIndexes(outIndexes)

		var last Vec3
		if isClosed {
			last = ring[len(ring)-1]
		} else {
			last = ring[0].Extrapolate(ring[1])
		}
		pushQuad(outVertices, outOrders, last)

		var ringLonLat, ringMerc []LonLat
		if ell != nil {
			ringLonLat = make([]LonLat, 0, len(ring))
			ringMerc = make([]LonLat, 0, len(ring))
		}

		for _, cur := range ring {
			if ell != nil {
				ll := ell.CartesianToLonLat(cur)
				ringLonLat = append(ringLonLat, ll)
				ringMerc = append(ringMerc, ll.ForwardMercator())
				if outExtent != nil {
					outExtent.Merge(ll)
				}
			}
			pushQuad(outVertices, outOrders, cur)
			*outIndexes = append(*outIndexes, index, index+1, index+2, index+3)
			index += 4
		}

		var first Vec3
		if isClosed {
			first = ring[0]
			// Wrap the strip back into the phantom-first quad.
			*outIndexes = append(*outIndexes, index, index+1)
		} else {
			n := len(ring)
			first = ring[n-1].Extrapolate(ring[n-2])
		}
		pushQuad(outVertices, outOrders, first)

		if ell != nil {
			if outLonLat != nil {
				*outLonLat = append(*outLonLat, ringLonLat)
			}
			if outMerc != nil {
				*outMerc = append(*outMerc, ringMerc)
			}
		}
	}

	return nil
}

// AppendLineDataLonLat tessellates a geodetic path. Each coordinate is
// converted to cartesian space through the ellipsoid for the vertex
// buffer; the cartesian and mercator forms of every point are collected
// into outPath3v and outMerc, index-aligned with the path.
//
// An ellipsoid is mandatory for geodetic input; passing nil fails with
// ErrNoEllipsoid.
func AppendLineDataLonLat(
	path [][]LonLat,
	isClosed bool,
	outVertices *[]float32,
	outOrders *[]float32,
	outIndexes *[]uint32,
	ell *Ellipsoid,
	outPath3v *[][]Vec3,
	outMerc *[][]LonLat,
	outExtent *Extent,
) error {
	if ell == nil {
		return ErrNoEllipsoid
	}
	if err := validateRings(path); err != nil {
		return err
	}
	if err := validateIndexBuffer(*outIndexes); err != nil {
		return err
	}

	for _, ring := range path {
		index := appendRingIndexes(outIndexes)

		ring3v := make([]Vec3, len(ring))
		for i, ll := range ring {
			ring3v[i] = ell.LonLatToCartesian(ll)
		}

		var last Vec3
		if isClosed {
			last = ring3v[len(ring3v)-1]
		} else {
			last = ring3v[0].Extrapolate(ring3v[1])
		}
		pushQuad(outVertices, outOrders, last)

		var ringMerc []LonLat
		if outMerc != nil {
			ringMerc = make([]LonLat, 0, len(ring))
		}

		for i, cur := range ring3v {
			ll := ring[i]
			if ringMerc != nil {
				ringMerc = append(ringMerc, ll.ForwardMercator())
			}
			if outExtent != nil {
				outExtent.Merge(ll)
			}
			pushQuad(outVertices, outOrders, cur)
			*outIndexes = append(*outIndexes, index, index+1, index+2, index+3)
			index += 4
		}

		var first Vec3
		if isClosed {
			first = ring3v[0]
			*outIndexes = append(*outIndexes, index, index+1)
		} else {
			n := len(ring3v)
			first = ring3v[n-1].Extrapolate(ring3v[n-2])
		}
		pushQuad(outVertices, outOrders, first)

		if outPath3v != nil {
			*outPath3v = append(*outPath3v, ring3v)
		}
		if outMerc != nil {
			*outMerc = append(*outMerc, ringMerc)
		}
	}

	return nil
}

// UpdateLineData3v overwrites vertex positions in place for a path with
// unchanged topology (same ring count, ring lengths and closure). The
// order and index buffers stay valid, which makes this substantially
// cheaper than a rebuild. The emission order matches AppendLineData3v
// exactly, so the result is byte-identical to a from-scratch build of
// the same path.
//
// Fails with ErrInvalidPath when the vertex buffer length does not
// match the path's topology; the buffer is untouched on error.
func UpdateLineData3v(path [][]Vec3, isClosed bool, vertices []float32) error {
	if err := validateRings(path); err != nil {
		return err
	}

	quads := 0
	for _, ring := range path {
		quads += len(ring) + 2
	}
	if len(vertices) != quads*12 {
		return ErrInvalidPath
	}

	off := 0
	writeQuad := func(p Vec3) {
		x, y, z := float32(p.X), float32(p.Y), float32(p.Z)
		for i := 0; i < 4; i++ {
			vertices[off] = x
			vertices[off+1] = y
			vertices[off+2] = z
			off += 3
		}
	}

	for _, ring := range path {
		if isClosed {
			writeQuad(ring[len(ring)-1])
		} else {
			writeQuad(ring[0].Extrapolate(ring[1]))
		}
		for _, cur := range ring {
			writeQuad(cur)
		}
		if isClosed {
			writeQuad(ring[0])
		} else {
			n := len(ring)
			writeQuad(ring[n-1].Extrapolate(ring[n-2]))
		}
	}

	return nil
}
