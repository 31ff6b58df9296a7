package render

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/schematic"
)

type wireVertex struct {
	pos      schematic.Vec2
	selected uint32
}

func decodeWireVertices(t *testing.T, data []byte) []wireVertex {
	t.Helper()
	require.Zero(t, len(data)%wireVertexStride)
	out := make([]wireVertex, len(data)/wireVertexStride)
	for i := range out {
		b := data[i*wireVertexStride:]
		out[i] = wireVertex{
			pos: schematic.V2(
				math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
				math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
			),
			selected: binary.LittleEndian.Uint32(b[8:12]),
		}
	}
	return out
}

func bigVisible() schematic.Rect {
	return schematic.Rect{Min: schematic.V2(-100, -100), Max: schematic.V2(100, 100)}
}

func TestBuildWireVerticesQuadExpansion(t *testing.T) {
	wires := []schematic.WireSegment{
		{A: schematic.V2(0, 0), B: schematic.V2(10, 0)},
	}
	verts := decodeWireVertices(t, buildWireVertices(wires, bigVisible()))
	require.Len(t, verts, 4)

	// Horizontal segment: the normal is vertical, corners in BL,BR,TR,TL
	// order.
	assert.InDelta(t, -wireHalfWidth, verts[0].pos.Y, 1e-6)
	assert.InDelta(t, 0, verts[0].pos.X, 1e-6)
	assert.InDelta(t, -wireHalfWidth, verts[1].pos.Y, 1e-6)
	assert.InDelta(t, 10, verts[1].pos.X, 1e-6)
	assert.InDelta(t, wireHalfWidth, verts[2].pos.Y, 1e-6)
	assert.InDelta(t, wireHalfWidth, verts[3].pos.Y, 1e-6)
}

func TestBuildWireVerticesMixedSelection(t *testing.T) {
	// A wire of two segments with mixed selection renders with
	// per-segment coloring: all four vertices of a segment carry its own
	// flag.
	wires := []schematic.WireSegment{
		{A: schematic.V2(0, 0), B: schematic.V2(5, 0), Selected: true},
		{A: schematic.V2(5, 0), B: schematic.V2(5, 5), Selected: false},
	}
	verts := decodeWireVertices(t, buildWireVertices(wires, bigVisible()))
	require.Len(t, verts, 8)

	for i := 0; i < 4; i++ {
		assert.Equal(t, uint32(1), verts[i].selected)
	}
	for i := 4; i < 8; i++ {
		assert.Equal(t, uint32(0), verts[i].selected)
	}
}

func TestBuildWireVerticesCulling(t *testing.T) {
	visible := schematic.Rect{Min: schematic.V2(0, 0), Max: schematic.V2(10, 10)}
	wires := []schematic.WireSegment{
		{A: schematic.V2(1, 1), B: schematic.V2(2, 2)},     // inside
		{A: schematic.V2(50, 50), B: schematic.V2(60, 50)}, // outside
		{A: schematic.V2(-5, 5), B: schematic.V2(15, 5)},   // crossing
	}
	verts := decodeWireVertices(t, buildWireVertices(wires, visible))
	assert.Len(t, verts, 8) // two segments survive
}

func TestBuildWireVerticesSkipsDegenerate(t *testing.T) {
	wires := []schematic.WireSegment{
		{A: schematic.V2(3, 3), B: schematic.V2(3, 3)},
	}
	assert.Empty(t, buildWireVertices(wires, bigVisible()))
}
