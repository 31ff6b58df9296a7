package schematic

import "github.com/chewxy/math32"

// BaseZoom is the number of logical pixels covered by one world (grid) unit
// at zoom factor 1.
const BaseZoom = 10.0

// LogicalPixelSize is the size of one logical pixel in world units.
const LogicalPixelSize = 1.0 / BaseZoom

// Camera describes the viewport: pan offset and zoom in world space, and the
// framebuffer resolution in pixels.
//
// Zoom must be positive and Resolution components nonzero; these are
// configuration invariants validated upstream, not checked here. A violating
// camera produces visually degenerate output, not an error.
type Camera struct {
	// Offset is the world-space point at the center of the viewport.
	Offset Vec2

	// Zoom is the user zoom factor. The effective world-to-pixel scale is
	// Zoom * BaseZoom.
	Zoom float32

	// Resolution is the framebuffer size in pixels.
	Resolution Vec2
}

// PixelsPerUnit returns the effective world-to-pixel scale.
func (c Camera) PixelsPerUnit() float32 {
	return c.Zoom * BaseZoom
}

// WorldToClip maps a world-space position to clip space. Translation happens
// in world space before scaling, then the result is normalized by the
// resolution and mapped into the [-1, 1] clip range:
//
//	clip = ((p - Offset) * Zoom*BaseZoom) / Resolution * 2
//
// Output z is 0 and w is 1 (centered orthographic projection). This is the
// CPU mirror of the transform every shader applies; the two must stay in
// lockstep.
func (c Camera) WorldToClip(p Vec2) Vec2 {
	scale := c.PixelsPerUnit()
	return Vec2{
		X: (p.X - c.Offset.X) * scale / c.Resolution.X * 2,
		Y: (p.Y - c.Offset.Y) * scale / c.Resolution.Y * 2,
	}
}

// VisibleRect returns the world-space rectangle covered by the viewport.
func (c Camera) VisibleRect() Rect {
	scale := c.PixelsPerUnit()
	half := Vec2{
		X: c.Resolution.X / scale * 0.5,
		Y: c.Resolution.Y / scale * 0.5,
	}
	return Rect{Min: c.Offset.Sub(half), Max: c.Offset.Add(half)}
}

// GridCells returns the integer grid points intersecting the visible world
// rectangle, keeping only points whose coordinates are multiples of step.
// The result feeds the grid pass instance buffer and must be recomputed on
// every pan or zoom change.
func (c Camera) GridCells(step int32) []Vec2 {
	r := c.VisibleRect()

	left := int32(math32.Floor(r.Min.X))
	right := int32(math32.Ceil(r.Max.X))
	bottom := int32(math32.Floor(r.Min.Y))
	top := int32(math32.Ceil(r.Max.Y))

	cells := make([]Vec2, 0, int(right-left+1)*int(top-bottom+1))
	for y := bottom; y <= top; y++ {
		if y%step != 0 {
			continue
		}
		for x := left; x <= right; x++ {
			if x%step != 0 {
				continue
			}
			cells = append(cells, Vec2{X: float32(x), Y: float32(y)})
		}
	}
	return cells
}
