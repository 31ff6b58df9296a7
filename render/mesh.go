package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
)

// Mesh is the tessellated geometry of one symbol shape in local space,
// origin at the symbol anchor. Indices are triangle-list and relative to
// the mesh's own vertices.
type Mesh struct {
	Vertices []schematic.Vec2
	Indices  []uint16
}

// Bounds returns the axis-aligned extent of the mesh vertices.
func (m Mesh) Bounds() schematic.Rect {
	if len(m.Vertices) == 0 {
		return schematic.Rect{}
	}
	r := schematic.Rect{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		r.Min = r.Min.Min(v)
		r.Max = r.Max.Max(v)
	}
	return r
}

// shapeRange locates one registered shape inside the library's shared
// vertex and index buffers.
type shapeRange struct {
	firstIndex int
	indexCount int
	baseVertex int
	bounds     schematic.Rect
}

// shapeLibrary concatenates all registered shape meshes into one vertex
// buffer and one index buffer. The symbol and free-rotation shape passes
// both draw from it, selecting a shape via firstIndex/baseVertex offsets.
//
// Registration marks the library dirty; GPU buffers are rebuilt lazily
// before the next frame.
type shapeLibrary struct {
	shapes map[schematic.ShapeID]shapeRange

	vertexData []byte
	indexData  []byte
	numVerts   int
	numIndices int

	vertexBuf hal.Buffer
	indexBuf  hal.Buffer
	dirty     bool
}

func newShapeLibrary() shapeLibrary {
	return shapeLibrary{shapes: make(map[schematic.ShapeID]shapeRange)}
}

// register appends a mesh under the given ID. Re-registering an ID is an
// error; shape geometry is immutable once placed in the shared buffers.
func (l *shapeLibrary) register(id schematic.ShapeID, mesh Mesh) error {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return fmt.Errorf("%w: shape %d", ErrEmptyMesh, id)
	}
	if _, exists := l.shapes[id]; exists {
		return fmt.Errorf("render: shape %d already registered", id)
	}
	for _, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Vertices) {
			return fmt.Errorf("render: shape %d index %d out of range", id, idx)
		}
	}

	l.shapes[id] = shapeRange{
		firstIndex: l.numIndices,
		indexCount: len(mesh.Indices),
		baseVertex: l.numVerts,
		bounds:     mesh.Bounds(),
	}
	for _, v := range mesh.Vertices {
		l.vertexData = appendVec2(l.vertexData, v)
	}
	for _, idx := range mesh.Indices {
		l.indexData = binary.LittleEndian.AppendUint16(l.indexData, idx)
	}
	l.numVerts += len(mesh.Vertices)
	l.numIndices += len(mesh.Indices)
	l.dirty = true
	return nil
}

func (l *shapeLibrary) lookup(id schematic.ShapeID) (shapeRange, bool) {
	r, ok := l.shapes[id]
	return r, ok
}

// ensure uploads the concatenated mesh data if shapes were registered
// since the last frame.
func (l *shapeLibrary) ensure(device hal.Device, queue hal.Queue) error {
	if !l.dirty || l.numVerts == 0 {
		return nil
	}
	l.destroyBuffers(device)

	vbuf, err := newStaticBuffer(device, queue, "shape_lib_verts", l.vertexData, gputypes.BufferUsageVertex)
	if err != nil {
		return err
	}
	ibuf, err := newStaticBuffer(device, queue, "shape_lib_indices", l.indexData, gputypes.BufferUsageIndex)
	if err != nil {
		device.DestroyBuffer(vbuf)
		return err
	}
	l.vertexBuf = vbuf
	l.indexBuf = ibuf
	l.dirty = false

	schematic.Logger().Debug("shape library uploaded",
		"shapes", len(l.shapes), "vertices", l.numVerts, "indices", l.numIndices)
	return nil
}

func (l *shapeLibrary) destroyBuffers(device hal.Device) {
	if l.vertexBuf != nil {
		device.DestroyBuffer(l.vertexBuf)
		l.vertexBuf = nil
	}
	if l.indexBuf != nil {
		device.DestroyBuffer(l.indexBuf)
		l.indexBuf = nil
	}
}
