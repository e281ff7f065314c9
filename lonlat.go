package og

import "math"

// MercatorPole is the northing/easting of the web-mercator projection
// boundary in meters, equal to pi times the WGS84 equatorial radius.
const MercatorPole = 20037508.342789244

// MaxMercatorLat is the highest latitude representable in web-mercator.
const MaxMercatorLat = 85.05112877980659

// LonLat represents a geodetic coordinate: longitude and latitude in
// degrees plus height in meters above the ellipsoid surface.
//
// After ForwardMercator, Lon and Lat hold projected meters instead of
// degrees; Height passes through unchanged.
type LonLat struct {
	Lon, Lat, Height float64
}

// NewLonLat creates a LonLat from degrees and height in meters.
func NewLonLat(lon, lat, height float64) LonLat {
	return LonLat{Lon: lon, Lat: lat, Height: height}
}

// ForwardMercator projects the geodetic coordinate to web-mercator meters.
func (ll LonLat) ForwardMercator() LonLat {
	return LonLat{
		Lon:    ll.Lon * MercatorPole / 180,
		Lat:    math.Log(math.Tan((90+ll.Lat)*math.Pi/360)) / math.Pi * MercatorPole,
		Height: ll.Height,
	}
}

// InverseMercator converts web-mercator meters back to degrees.
func (ll LonLat) InverseMercator() LonLat {
	return LonLat{
		Lon:    ll.Lon * 180 / MercatorPole,
		Lat:    math.Atan(math.Exp(ll.Lat*math.Pi/MercatorPole))*360/math.Pi - 90,
		Height: ll.Height,
	}
}
