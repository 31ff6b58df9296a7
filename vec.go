package schematic

import "github.com/chewxy/math32"

// Vec2 represents a 2D point or vector in world coordinates.
// World units are grid units; one grid unit is BaseZoom logical pixels at
// zoom factor 1.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Div returns the vector divided by a scalar.
func (v Vec2) Div(s float32) Vec2 {
	return Vec2{X: v.X / s, Y: v.Y / s}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(w Vec2) float32 {
	return v.X*w.X + v.Y*w.Y
}

// Length returns the length of the vector.
func (v Vec2) Length() float32 {
	return math32.Hypot(v.X, v.Y)
}

// Normalized returns a unit vector in the same direction.
// The zero vector is returned unchanged.
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Div(l)
}

// Perp returns the vector rotated 90 degrees counterclockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Min returns the componentwise minimum of two vectors.
func (v Vec2) Min(w Vec2) Vec2 {
	return Vec2{X: math32.Min(v.X, w.X), Y: math32.Min(v.Y, w.Y)}
}

// Max returns the componentwise maximum of two vectors.
func (v Vec2) Max(w Vec2) Vec2 {
	return Vec2{X: math32.Max(v.X, w.X), Y: math32.Max(v.Y, w.Y)}
}

// Rect is an axis-aligned rectangle in world coordinates.
type Rect struct {
	Min, Max Vec2
}

// RectFromCorners returns the rectangle spanned by two arbitrary corners.
func RectFromCorners(a, b Vec2) Rect {
	return Rect{Min: a.Min(b), Max: a.Max(b)}
}

// Intersects reports whether r and s overlap.
func (r Rect) Intersects(s Rect) bool {
	return r.Min.X <= s.Max.X && s.Min.X <= r.Max.X &&
		r.Min.Y <= s.Max.Y && s.Min.Y <= r.Max.Y
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Expand grows the rectangle by m on every side.
func (r Rect) Expand(m float32) Rect {
	return Rect{
		Min: Vec2{X: r.Min.X - m, Y: r.Min.Y - m},
		Max: Vec2{X: r.Max.X + m, Y: r.Max.Y + m},
	}
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{Min: r.Min.Min(s.Min), Max: r.Max.Max(s.Max)}
}
