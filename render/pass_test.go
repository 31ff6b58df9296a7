package render

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/schematic"
	"github.com/voltlab/schematic/text/atlas"
)

func quadForTest() atlas.Quad {
	return atlas.Quad{
		Min:      schematic.V2(1, 1),
		Max:      schematic.V2(3, 2),
		UVMin:    schematic.V2(0.25, 0.9),
		UVMax:    schematic.V2(0.75, 0.1),
		Selected: true,
	}
}

func TestViewUniformLayout(t *testing.T) {
	cam := schematic.Camera{
		Offset:     schematic.V2(3, -2),
		Zoom:       2,
		Resolution: schematic.V2(800, 600),
	}
	u := viewUniform(cam, symbolUniformSize)
	require.Len(t, u, symbolUniformSize)

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(u[off:]))
	}
	assert.Equal(t, float32(800), readF32(0)) // resolution.x
	assert.Equal(t, float32(600), readF32(4)) // resolution.y
	assert.Equal(t, float32(3), readF32(8))   // offset.x
	assert.Equal(t, float32(-2), readF32(12)) // offset.y
	assert.Equal(t, float32(20), readF32(16)) // zoom * BaseZoom
	// Tail padding stays zero.
	for i := 20; i < symbolUniformSize; i++ {
		assert.Zero(t, u[i])
	}
}

func TestDiscMesh(t *testing.T) {
	vertices, indices := discMesh(anchorSegments)

	// Center plus one rim vertex per segment.
	require.Len(t, vertices, (anchorSegments+1)*8)
	require.Len(t, indices, anchorSegments*3*2)

	// Every triangle fans from the center, and the last one wraps back to
	// rim vertex 1.
	for i := 0; i < anchorSegments; i++ {
		tri := indices[i*6:]
		assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(tri[0:2]))
	}
	last := indices[(anchorSegments-1)*6:]
	assert.Equal(t, uint16(anchorSegments), binary.LittleEndian.Uint16(last[2:4]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(last[4:6]))

	// Rim vertices lie on the unit circle.
	for i := 1; i <= anchorSegments; i++ {
		x := math.Float32frombits(binary.LittleEndian.Uint32(vertices[i*8:]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(vertices[i*8+4:]))
		assert.InDelta(t, 1.0, float64(x*x+y*y), 1e-5)
	}
}

func TestDotQuadCornerOrder(t *testing.T) {
	data := dotQuad(nil, 0.5)
	require.Len(t, data, 4*8)

	corner := func(i int) schematic.Vec2 {
		return schematic.V2(
			math.Float32frombits(binary.LittleEndian.Uint32(data[i*8:])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[i*8+4:])),
		)
	}
	assert.Equal(t, schematic.V2(-0.5, -0.5), corner(0))
	assert.Equal(t, schematic.V2(0.5, -0.5), corner(1))
	assert.Equal(t, schematic.V2(0.5, 0.5), corner(2))
	assert.Equal(t, schematic.V2(-0.5, 0.5), corner(3))
}

func TestFrameIndexData(t *testing.T) {
	data := frameIndexData()
	require.Len(t, data, 24*2)

	// All indices reference the 8 ring vertices, and both rings are used.
	seen := make(map[uint16]bool)
	for i := 0; i < 24; i++ {
		idx := binary.LittleEndian.Uint16(data[i*2:])
		assert.Less(t, idx, uint16(8))
		seen[idx] = true
	}
	assert.Len(t, seen, 8)
}

func TestDefaultPassOrder(t *testing.T) {
	order := DefaultPassOrder()
	require.Len(t, order, 7)
	assert.Equal(t, PassGrid, order[0])
	assert.Equal(t, PassSelectionBox, order[len(order)-1])

	// The selection overlay draws above text, text above geometry.
	pos := make(map[PassKind]int)
	for i, k := range order {
		pos[k] = i
	}
	assert.Less(t, pos[PassWires], pos[PassSymbols])
	assert.Less(t, pos[PassSymbols], pos[PassText])
}

func TestAppendTextQuadLayout(t *testing.T) {
	q := quadForTest()
	data := appendTextQuad(nil, q)
	require.Len(t, data, 4*textVertexStride)

	// BR vertex mixes Max.X with Min.Y and the matching UV corners.
	br := data[textVertexStride:]
	x := math.Float32frombits(binary.LittleEndian.Uint32(br[0:4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(br[4:8]))
	u := math.Float32frombits(binary.LittleEndian.Uint32(br[8:12]))
	v := math.Float32frombits(binary.LittleEndian.Uint32(br[12:16]))
	sel := binary.LittleEndian.Uint32(br[16:20])
	assert.Equal(t, float32(3), x)
	assert.Equal(t, float32(1), y)
	assert.Equal(t, float32(0.75), u)
	assert.Equal(t, float32(0.9), v)
	assert.Equal(t, uint32(1), sel)
}

func TestBlendedShadersEmitPremultipliedAlpha(t *testing.T) {
	// Blended pipelines use the (One, OneMinusSrcAlpha) blend state, so
	// their fragment shaders must scale rgb by alpha. A straight-alpha
	// output would add the full text color over every texel of a glyph
	// quad, including fully transparent ones.
	assert.Contains(t, textShaderSource, "in.color.rgb * alpha")
	assert.Contains(t, textShaderSource, "in.color.a * alpha")
	assert.Contains(t, selectionBoxShaderSource, "globals.color.rgb * globals.color.a")

	// With premultiplied output a zero-coverage texel is all zeros and
	// One*src + (1-src.a)*dst leaves the framebuffer untouched.
	color := schematic.Color{0.85, 0.85, 0.85, 1}
	alpha := atlas.Coverage(0, 4)
	src := [4]float32{color[0] * alpha, color[1] * alpha, color[2] * alpha, color[3] * alpha}
	dst := [4]float32{0.12, 0.12, 0.12, 1}
	for i := range dst {
		blended := src[i] + (1-src[3])*dst[i]
		assert.Equal(t, dst[i], blended)
	}
}

// Half-extents in logical pixels: fine grid dots span one, coarse dots and
// wires span two.
func TestStrokeSizes(t *testing.T) {
	assert.InDelta(t, 0.5*schematic.LogicalPixelSize, gridFineDotRadius, 1e-9)
	assert.InDelta(t, 1.0*schematic.LogicalPixelSize, gridCoarseDotRadius, 1e-9)
	assert.InDelta(t, 1.0*schematic.LogicalPixelSize, wireHalfWidth, 1e-9)
}
