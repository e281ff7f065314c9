package og

// Extent is a geodetic bounding rectangle in degrees.
type Extent struct {
	SouthWest LonLat
	NorthEast LonLat
}

// NewExtent creates an extent from its southwest and northeast corners.
func NewExtent(sw, ne LonLat) Extent {
	return Extent{SouthWest: sw, NorthEast: ne}
}

// EmptyExtent returns an inverted extent that any Merge call will replace.
func EmptyExtent() Extent {
	return Extent{
		SouthWest: LonLat{Lon: 180, Lat: 90},
		NorthEast: LonLat{Lon: -180, Lat: -90},
	}
}

// IsEmpty reports whether the extent is still inverted, i.e. no
// coordinate has been merged into it yet.
func (e Extent) IsEmpty() bool {
	return e.SouthWest.Lon > e.NorthEast.Lon || e.SouthWest.Lat > e.NorthEast.Lat
}

// Merge grows the extent to include the given coordinate.
func (e *Extent) Merge(ll LonLat) {
	if ll.Lon < e.SouthWest.Lon {
		e.SouthWest.Lon = ll.Lon
	}
	if ll.Lat < e.SouthWest.Lat {
		e.SouthWest.Lat = ll.Lat
	}
	if ll.Lon > e.NorthEast.Lon {
		e.NorthEast.Lon = ll.Lon
	}
	if ll.Lat > e.NorthEast.Lat {
		e.NorthEast.Lat = ll.Lat
	}
}

// Contains reports whether the coordinate lies inside the extent.
func (e Extent) Contains(ll LonLat) bool {
	return ll.Lon >= e.SouthWest.Lon && ll.Lon <= e.NorthEast.Lon &&
		ll.Lat >= e.SouthWest.Lat && ll.Lat <= e.NorthEast.Lat
}
