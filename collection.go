package og

import "errors"

// Collection errors.
var (
	// ErrNilPolyline is returned when adding a nil polyline.
	ErrNilPolyline = errors.New("og: polyline is nil")

	// ErrAlreadyOwned is returned when adding a polyline that already
	// belongs to a collection.
	ErrAlreadyOwned = errors.New("og: polyline already belongs to a collection")
)

// PolylineCollection owns a set of polylines together with the render
// handler, the ellipsoid and the identity generator they share. Adding
// a polyline attaches it; removing it releases its GPU buffers.
//
// PolylineCollection is owned by the rendering thread and is not safe
// for concurrent use.
type PolylineCollection struct {
	handler   Handler
	ellipsoid *Ellipsoid

	ids       IDGenerator
	polylines []*Polyline
	byID      map[uint64]*Polyline

	closed bool
}

// NewPolylineCollection creates a collection bound to the given render
// handler and ellipsoid.
func NewPolylineCollection(handler Handler, ell *Ellipsoid) *PolylineCollection {
	return &PolylineCollection{
		handler:   handler,
		ellipsoid: ell,
		byID:      make(map[uint64]*Polyline),
	}
}

// Len returns the number of polylines in the collection.
func (c *PolylineCollection) Len() int { return len(c.polylines) }

// Add attaches the polyline to the collection's render handler,
// assigns it a unique identity and takes ownership of it.
func (c *PolylineCollection) Add(p *Polyline) error {
	if p == nil {
		return ErrNilPolyline
	}
	if p.id != 0 {
		return ErrAlreadyOwned
	}
	if err := p.Attach(c.handler, c.ellipsoid); err != nil {
		return err
	}
	p.id = c.ids.Next()
	c.polylines = append(c.polylines, p)
	c.byID[p.id] = p
	return nil
}

// Get returns the polyline with the given identity, or nil.
func (c *PolylineCollection) Get(id uint64) *Polyline {
	return c.byID[id]
}

// Remove detaches the polyline, releases its GPU buffers and drops it
// from the collection. Removing a polyline the collection does not own
// is a no-op.
func (c *PolylineCollection) Remove(p *Polyline) {
	if p == nil || c.byID[p.id] != p {
		return
	}
	delete(c.byID, p.id)
	for i, q := range c.polylines {
		if q == p {
			c.polylines = append(c.polylines[:i], c.polylines[i+1:]...)
			break
		}
	}
	p.Detach()
	p.id = 0
}

// Draw draws every visible polyline. The first draw error aborts the
// pass and is returned.
func (c *PolylineCollection) Draw() error {
	for _, p := range c.polylines {
		if err := p.Draw(); err != nil {
			return err
		}
	}
	return nil
}

// DrawPicking draws every visible polyline in solid picking colors.
func (c *PolylineCollection) DrawPicking() error {
	for _, p := range c.polylines {
		if err := p.DrawPicking(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every polyline and empties the collection.
// Close is idempotent.
func (c *PolylineCollection) Close() {
	if c.closed {
		return
	}
	for _, p := range c.polylines {
		p.Close()
	}
	c.polylines = nil
	c.byID = map[uint64]*Polyline{}
	c.closed = true
}
