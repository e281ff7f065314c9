package og

import "math"

// WGS84 is the standard Earth reference ellipsoid.
var WGS84 = NewEllipsoid(6378137.0, 6356752.3142451793)

// Ellipsoid converts between geodetic and cartesian coordinates on an
// ellipsoid of revolution. Cartesian space is earth-centered: X toward
// the prime meridian, Y toward 90 degrees east, Z toward the north pole.
type Ellipsoid struct {
	a float64 // equatorial radius, meters
	b float64 // polar radius, meters

	e2  float64 // first eccentricity squared
	ep2 float64 // second eccentricity squared
}

// NewEllipsoid creates an ellipsoid from its equatorial and polar radii
// in meters.
func NewEllipsoid(equatorial, polar float64) *Ellipsoid {
	a2 := equatorial * equatorial
	b2 := polar * polar
	return &Ellipsoid{
		a:   equatorial,
		b:   polar,
		e2:  (a2 - b2) / a2,
		ep2: (a2 - b2) / b2,
	}
}

// Equatorial returns the equatorial radius in meters.
func (e *Ellipsoid) Equatorial() float64 { return e.a }

// Polar returns the polar radius in meters.
func (e *Ellipsoid) Polar() float64 { return e.b }

// LonLatToCartesian converts a geodetic coordinate to cartesian space.
func (e *Ellipsoid) LonLatToCartesian(ll LonLat) Vec3 {
	lon := ll.Lon * math.Pi / 180
	lat := ll.Lat * math.Pi / 180
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	// Prime vertical radius of curvature.
	n := e.a / math.Sqrt(1-e.e2*sinLat*sinLat)

	return Vec3{
		X: (n + ll.Height) * cosLat * cosLon,
		Y: (n + ll.Height) * cosLat * sinLon,
		Z: (n*(1-e.e2) + ll.Height) * sinLat,
	}
}

// CartesianToLonLat converts a cartesian point to geodetic coordinates
// using Bowring's closed-form approximation, accurate to millimeters
// for near-surface points.
func (e *Ellipsoid) CartesianToLonLat(v Vec3) LonLat {
	p := math.Hypot(v.X, v.Y)
	if p == 0 {
		// On the rotation axis longitude is undefined; use zero.
		lat := math.Pi / 2
		if v.Z < 0 {
			lat = -lat
		}
		return LonLat{Lon: 0, Lat: lat * 180 / math.Pi, Height: math.Abs(v.Z) - e.b}
	}

	theta := math.Atan2(v.Z*e.a, p*e.b)
	sinT, cosT := math.Sincos(theta)
	lat := math.Atan2(
		v.Z+e.ep2*e.b*sinT*sinT*sinT,
		p-e.e2*e.a*cosT*cosT*cosT,
	)
	lon := math.Atan2(v.Y, v.X)

	sinLat, cosLat := math.Sincos(lat)
	n := e.a / math.Sqrt(1-e.e2*sinLat*sinLat)
	h := p/cosLat - n

	return LonLat{
		Lon:    lon * 180 / math.Pi,
		Lat:    lat * 180 / math.Pi,
		Height: h,
	}
}

// ForwardMercator projects a geodetic coordinate to web-mercator meters.
// It exists on the ellipsoid so consumers can use one collaborator for
// every coordinate conversion.
func (e *Ellipsoid) ForwardMercator(ll LonLat) LonLat {
	return ll.ForwardMercator()
}
