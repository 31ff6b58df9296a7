package schematic

import "github.com/chewxy/math32"

// Rotation is a quantized symbol rotation in 90 degree steps, clockwise in
// the y-up world space. Values outside 0..3 behave like Rot0 (the shader's
// default switch arm); upstream data is assumed pre-validated, so the
// fallback is silent rather than an error.
type Rotation uint32

const (
	Rot0 Rotation = iota
	Rot90
	Rot180
	Rot270
)

// Apply rotates a local-space position by the quantized rotation.
// This is the CPU mirror of the switch in symbol.wgsl.
func (r Rotation) Apply(p Vec2) Vec2 {
	switch r {
	case Rot90:
		return Vec2{X: p.Y, Y: -p.X}
	case Rot180:
		return Vec2{X: -p.X, Y: -p.Y}
	case Rot270:
		return Vec2{X: -p.Y, Y: p.X}
	default:
		return p
	}
}

// Inverse returns the rotation that undoes r.
func (r Rotation) Inverse() Rotation {
	return Rotation((4 - uint32(r)%4) % 4)
}

// SymbolLocal applies the symbol instance transform to a local vertex:
// mirroring (negating local x) happens BEFORE rotation. Mirror-then-rotate
// and rotate-then-mirror differ for Rot90 and Rot270.
func SymbolLocal(p Vec2, r Rotation, mirrored bool) Vec2 {
	if mirrored {
		p.X = -p.X
	}
	return r.Apply(p)
}

// ShapeLocal applies the free-rotation instance transform to a local vertex:
// mirroring scales by (-1, 1) BEFORE the continuous rotation, matching the
// quantized compose order. The angle is in radians, counterclockwise.
func ShapeLocal(p Vec2, angle float32, mirrored bool) Vec2 {
	if mirrored {
		p.X = -p.X
	}
	sin, cos := math32.Sincos(angle)
	return Vec2{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// TransformBounds returns the axis-aligned bounds of a local rectangle after
// the symbol instance transform and translation by offset. Used for
// visibility culling of placed symbols.
func TransformBounds(local Rect, r Rotation, mirrored bool, offset Vec2) Rect {
	corners := [4]Vec2{
		local.Min,
		{X: local.Max.X, Y: local.Min.Y},
		local.Max,
		{X: local.Min.X, Y: local.Max.Y},
	}
	first := SymbolLocal(corners[0], r, mirrored).Add(offset)
	out := Rect{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := SymbolLocal(c, r, mirrored).Add(offset)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}
