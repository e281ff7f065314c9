package og

import "fmt"

// DefaultThickness is the polyline thickness in screen pixels used when
// the config leaves it zero.
const DefaultThickness = 1.5

// Resource slots of a polyline. Each owns one GPU buffer and one
// lifecycle state.
const (
	resVertices = iota
	resOrders
	resIndexes
	resourceCount
)

// PolylineConfig holds creation parameters for a Polyline.
// Zero values select defaults: thickness 1.5, opaque white color,
// open topology, visible.
type PolylineConfig struct {
	// Path3v is the initial path in cartesian coordinates.
	Path3v [][]Vec3

	// PathLonLat is the initial path in geodetic coordinates. Used only
	// when Path3v is empty; conversion happens on Attach when the
	// ellipsoid becomes available.
	PathLonLat [][]LonLat

	// Thickness is the line thickness in screen pixels.
	Thickness float64

	// Color is the RGBA line color. The zero value means opaque white.
	Color [4]float32

	// Closed selects ring topology instead of an open strip.
	Closed bool

	// PickingColor is the solid color used by picking passes.
	PickingColor [3]float32
}

// Polyline is a thick, mitered 3D line entity. It owns one path in one
// coordinate representation (lazily convertible to the other through
// the ellipsoid) and one derived line mesh, plus the GPU buffer handles
// once a render handler is attached.
//
// A polyline is created detached: path data is stored raw and the mesh
// is computed when Attach supplies the render handler and ellipsoid.
// Mutations mark the affected buffers dirty; the next Draw rebuilds
// them lazily. Polyline is not safe for concurrent use.
type Polyline struct {
	id uint64

	thickness    float64
	color        [4]float32
	pickingColor [3]float32
	visible      bool
	closed       bool

	// Source path and its derived representations.
	path3v     [][]Vec3
	pathLonLat [][]LonLat
	pathMerc   [][]LonLat
	extent     Extent

	// Line mesh buffers (CPU side).
	vertices []float32
	orders   []float32
	indexes  []uint32

	handler   Handler
	ellipsoid *Ellipsoid
	states    [resourceCount]ResourceState
	handles   [resourceCount]BufferHandle

	released bool
}

// NewPolyline creates a detached polyline from the given config.
func NewPolyline(cfg PolylineConfig) *Polyline {
	thickness := cfg.Thickness
	if thickness <= 0 {
		thickness = DefaultThickness
	}
	color := cfg.Color
	if color == ([4]float32{}) {
		color = [4]float32{1, 1, 1, 1}
	}

	return &Polyline{
		thickness:    thickness,
		color:        color,
		pickingColor: cfg.PickingColor,
		visible:      true,
		closed:       cfg.Closed,
		path3v:       cfg.Path3v,
		pathLonLat:   cfg.PathLonLat,
		extent:       EmptyExtent(),
	}
}

// ID returns the polyline's collection-assigned identifier, or zero
// when the polyline has not been added to a collection.
func (p *Polyline) ID() uint64 { return p.id }

// Thickness returns the line thickness in screen pixels.
func (p *Polyline) Thickness() float64 { return p.thickness }

// SetThickness sets the line thickness in screen pixels.
// Thickness is a shader uniform, so no buffer rebuild is needed.
func (p *Polyline) SetThickness(t float64) {
	if t > 0 {
		p.thickness = t
	}
}

// Color returns the RGBA line color.
func (p *Polyline) Color() [4]float32 { return p.color }

// SetColor sets the RGBA line color.
func (p *Polyline) SetColor(r, g, b, a float32) {
	p.color = [4]float32{r, g, b, a}
}

// SetPickingColor sets the solid color used by picking passes.
// Picking-color allocation itself belongs to the host scene.
func (p *Polyline) SetPickingColor(r, g, b float32) {
	p.pickingColor = [3]float32{r, g, b}
}

// IsVisible reports whether the polyline is drawn.
func (p *Polyline) IsVisible() bool { return p.visible }

// SetVisibility shows or hides the polyline.
func (p *Polyline) SetVisibility(visible bool) { p.visible = visible }

// IsClosed reports whether the path is a closed ring.
func (p *Polyline) IsClosed() bool { return p.closed }

// SetClosed switches between open-strip and closed-ring topology and
// rebuilds the mesh. On error the previous topology is kept.
func (p *Polyline) SetClosed(closed bool) error {
	if closed == p.closed {
		return nil
	}
	p.closed = closed
	if err := p.rebuild(); err != nil {
		p.closed = !closed
		return err
	}
	return nil
}

// Extent returns the geodetic bounding extent of the path. It is empty
// until the path has been built with an ellipsoid available.
func (p *Polyline) Extent() Extent { return p.extent }

// Path3v returns the cartesian path. The returned rings are the
// polyline's own storage and must not be mutated.
func (p *Polyline) Path3v() [][]Vec3 { return p.path3v }

// PathLonLat returns the geodetic path derived through the ellipsoid.
func (p *Polyline) PathLonLat() [][]LonLat { return p.pathLonLat }

// PathMercator returns the web-mercator projection of the path.
func (p *Polyline) PathMercator() [][]LonLat { return p.pathMerc }

// Attach assigns the render handler and ellipsoid, computes the line
// mesh from the stored path and marks all GPU buffers for rebuild on
// the next draw.
func (p *Polyline) Attach(handler Handler, ell *Ellipsoid) error {
	if handler == nil {
		return ErrDetached
	}
	p.handler = handler
	p.ellipsoid = ell
	if err := p.rebuild(); err != nil {
		return err
	}
	return nil
}

// Detach releases the GPU buffers and forgets the render handler.
// The CPU-side path and mesh stay intact, so a later Attach restores
// the polyline without recomputation of the source path.
func (p *Polyline) Detach() {
	p.releaseBuffers()
	p.handler = nil
	p.ellipsoid = nil
}

// Close releases GPU resources and empties the polyline.
// Close is idempotent; a closed polyline draws as a no-op.
func (p *Polyline) Close() {
	if p.released {
		return
	}
	p.Detach()
	p.path3v = nil
	p.pathLonLat = nil
	p.pathMerc = nil
	p.vertices = nil
	p.orders = nil
	p.indexes = nil
	p.released = true
}

// SetPath3v replaces the path with cartesian points and rebuilds the
// whole mesh. On error the previous path and mesh are left unchanged.
func (p *Polyline) SetPath3v(path [][]Vec3, isClosed bool) error {
	if err := validateRings(path); err != nil {
		return err
	}
	prevPath, prevLonLat, prevClosed := p.path3v, p.pathLonLat, p.closed
	p.path3v = path
	p.pathLonLat = nil
	p.closed = isClosed
	if err := p.rebuild(); err != nil {
		p.path3v, p.pathLonLat, p.closed = prevPath, prevLonLat, prevClosed
		return err
	}
	return nil
}

// SetPathLonLat replaces the path with geodetic points and rebuilds the
// whole mesh. While detached (no ellipsoid yet) the path is stored raw
// and the mesh is computed on Attach.
func (p *Polyline) SetPathLonLat(path [][]LonLat, isClosed bool) error {
	if err := validateRings(path); err != nil {
		return err
	}
	prevPath, prevLonLat, prevClosed := p.path3v, p.pathLonLat, p.closed
	p.path3v = nil
	p.pathLonLat = path
	p.closed = isClosed
	if err := p.rebuild(); err != nil {
		p.path3v, p.pathLonLat, p.closed = prevPath, prevLonLat, prevClosed
		return err
	}
	return nil
}

// SetPathEqualTopology3v overwrites point positions for a path with the
// same topology as the current one: same ring count, ring lengths and
// closure. Only the vertex buffer is rebuilt; orders and indexes are
// reused, which skips index recomputation entirely. The resulting
// vertex layout is byte-identical to a from-scratch rebuild of the same
// path.
func (p *Polyline) SetPathEqualTopology3v(path [][]Vec3) error {
	if len(path) != len(p.path3v) {
		return fmt.Errorf("%w: ring count changed", ErrInvalidPath)
	}
	for i, ring := range path {
		if len(ring) != len(p.path3v[i]) {
			return fmt.Errorf("%w: ring %d length changed", ErrInvalidPath, i)
		}
	}
	if err := UpdateLineData3v(path, p.closed, p.vertices); err != nil {
		return err
	}
	p.path3v = path
	p.deriveGeodetic()
	if p.handler != nil {
		p.states[resVertices] = ResourceDirty
	}
	return nil
}

// Draw resolves any pending buffer rebuild and issues one triangle-strip
// draw through the handler. Drawing is a no-op when the polyline is
// invisible, empty or released. Drawing a visible non-empty polyline
// with no handler attached fails with ErrDetached.
func (p *Polyline) Draw() error {
	return p.draw(false)
}

// DrawPicking draws the polyline as a solid picking-color fill with
// blending and face culling disabled, for hit-testing by color lookup.
func (p *Polyline) DrawPicking() error {
	return p.draw(true)
}

func (p *Polyline) draw(picking bool) error {
	if p.released || !p.visible {
		return nil
	}
	if len(p.path3v) == 0 && len(p.pathLonLat) == 0 {
		return nil
	}
	if p.handler == nil {
		return ErrDetached
	}
	if len(p.vertices) == 0 {
		// Geodetic path attached without an ellipsoid; no mesh to draw.
		return nil
	}
	if err := p.update(); err != nil {
		return err
	}

	call := DrawCall{
		Vertices:  p.handles[resVertices],
		Orders:    p.handles[resOrders],
		Indexes:   p.handles[resIndexes],
		Count:     len(p.indexes),
		Topology:  TopologyTriangleStrip,
		Thickness: p.thickness,
		Color:     p.color,
		Blending:  true,
		Culling:   true,
	}
	if picking {
		call.Color = [4]float32{p.pickingColor[0], p.pickingColor[1], p.pickingColor[2], 1}
		call.Picking = true
		call.Blending = false
		call.Culling = false
	}
	return p.handler.DrawElements(call)
}

// rebuild regenerates the CPU-side mesh from the stored path into
// staging buffers and swaps them in on success, leaving the previous
// mesh intact on failure. All buffer slots become dirty.
func (p *Polyline) rebuild() error {
	var (
		vertices []float32
		orders   []float32
		indexes  []uint32
		lonlat   [][]LonLat
		merc     [][]LonLat
		path3v   [][]Vec3
	)
	extent := EmptyExtent()

	switch {
	case len(p.path3v) > 0:
		err := AppendLineData3v(p.path3v, p.closed,
			&vertices, &orders, &indexes,
			p.ellipsoid, &lonlat, &merc, &extent)
		if err != nil {
			return err
		}
		path3v = p.path3v

	case len(p.pathLonLat) > 0:
		if p.ellipsoid == nil {
			// Geodetic path stored raw; the mesh is built on Attach.
			return nil
		}
		err := AppendLineDataLonLat(p.pathLonLat, p.closed,
			&vertices, &orders, &indexes,
			p.ellipsoid, &path3v, &merc, &extent)
		if err != nil {
			return err
		}
		lonlat = p.pathLonLat

	default:
		// No path yet; nothing to build.
		return nil
	}

	p.vertices = vertices
	p.orders = orders
	p.indexes = indexes
	p.path3v = path3v
	p.pathLonLat = lonlat
	p.pathMerc = merc
	p.extent = extent

	if p.handler != nil {
		for i := range p.states {
			p.states[i] = ResourceDirty
		}
	}

	Logger().Debug("og: polyline mesh rebuilt",
		"vertices", len(vertices), "indexes", len(indexes))
	return nil
}

// deriveGeodetic refreshes the geodetic and mercator forms plus the
// extent after an in-place position update.
func (p *Polyline) deriveGeodetic() {
	if p.ellipsoid == nil {
		return
	}
	extent := EmptyExtent()
	lonlat := make([][]LonLat, len(p.path3v))
	merc := make([][]LonLat, len(p.path3v))
	for i, ring := range p.path3v {
		lonlat[i] = make([]LonLat, len(ring))
		merc[i] = make([]LonLat, len(ring))
		for j, v := range ring {
			ll := p.ellipsoid.CartesianToLonLat(v)
			lonlat[i][j] = ll
			merc[i][j] = ll.ForwardMercator()
			extent.Merge(ll)
		}
	}
	p.pathLonLat = lonlat
	p.pathMerc = merc
	p.extent = extent
}

// update rebuilds every dirty GPU buffer. A new buffer is created first
// and the old handle is released only after success, so a failed
// rebuild never corrupts the existing buffers.
func (p *Polyline) update() error {
	for res := 0; res < resourceCount; res++ {
		if p.states[res] != ResourceDirty {
			continue
		}

		var (
			handle BufferHandle
			err    error
		)
		switch res {
		case resVertices:
			handle, err = p.handler.CreateVertexBuffer(p.vertices, 3)
		case resOrders:
			handle, err = p.handler.CreateVertexBuffer(p.orders, 1)
		case resIndexes:
			handle, err = p.handler.CreateIndexBuffer(p.indexes)
		}
		if err != nil {
			return fmt.Errorf("og: polyline buffer rebuild: %w", err)
		}

		if old := p.handles[res]; old != 0 {
			if derr := p.handler.DeleteBuffer(old); derr != nil {
				Logger().Warn("og: stale buffer release failed", "error", derr)
			}
		}
		p.handles[res] = handle
		p.states[res] = ResourceClean
	}
	return nil
}

// releaseBuffers deletes all GPU handles and moves every resource back
// to the detached state.
func (p *Polyline) releaseBuffers() {
	if p.handler == nil {
		return
	}
	for res := 0; res < resourceCount; res++ {
		if p.handles[res] != 0 {
			if err := p.handler.DeleteBuffer(p.handles[res]); err != nil {
				Logger().Warn("og: buffer release failed", "error", err)
			}
			p.handles[res] = 0
		}
		p.states[res] = ResourceDetached
	}
}
