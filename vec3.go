package og

import (
	"errors"
	"math"
)

// ErrInvalidPoint is returned when a raw point cannot be normalized
// into a Vec3 (wrong component count).
var ErrInvalidPoint = errors.New("og: point must have exactly 3 components")

// Vec3 represents a 3D point or vector in cartesian space.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Vec3FromSlice normalizes a raw coordinate triple into a Vec3.
// It is the boundary conversion for callers that carry points as
// plain float slices instead of constructed Vec3 values.
func Vec3FromSlice(p []float64) (Vec3, error) {
	if len(p) != 3 {
		return Vec3{}, ErrInvalidPoint
	}
	return Vec3{X: p[0], Y: p[1], Z: p[2]}, nil
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Scale returns the vector scaled by a scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns the negation of the vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the length (magnitude) of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSq returns the squared length of the vector.
// This is faster than Length when only comparing magnitudes.
func (v Vec3) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Distance returns the distance between two points.
func (v Vec3) Distance(w Vec3) float64 {
	return v.Sub(w).Length()
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to itself.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / length, Y: v.Y / length, Z: v.Z / length}
}

// Lerp performs linear interpolation between two points.
// t=0 returns v, t=1 returns w, intermediate values interpolate.
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
	}
}

// Extrapolate returns the point one step beyond v on the line from w
// through v, i.e. 2*v - w. Polyline building uses it to synthesize the
// phantom neighbors of an open path's endpoints.
func (v Vec3) Extrapolate(w Vec3) Vec3 {
	return Vec3{
		X: v.X + v.X - w.X,
		Y: v.Y + v.Y - w.Y,
		Z: v.Z + v.Z - w.Z,
	}
}
