package render

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
)

// wireHalfWidth is half the wire thickness in world units; wires render
// two logical pixels wide.
const wireHalfWidth = 1.0 * schematic.LogicalPixelSize

// wireUniformSize is the byte size of the wire uniform buffer.
// Layout: color vec4 (16) + selected_color vec4 (16) + resolution vec2 (8) +
// offset vec2 (8) + zoom f32 (4) + struct padding (12) = 64 bytes.
const wireUniformSize = 64

// wireVertexStride is the per-vertex byte stride:
// position vec2 (8) + selected u32 (4) = 12 bytes.
const wireVertexStride = 12

// wirePass draws wire segments as screen-aligned quads. Selection is a
// per-vertex flag resolved to a color in the vertex stage, so a wire whose
// segments carry mixed selection renders with per-segment coloring.
//
// Batches are capped at quadBatchSize quads to keep indices within uint16;
// every batch reuses the same static index pattern with a vertex buffer
// offset.
type wirePass struct {
	bundle     pipelineBundle
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	// quadIndexBuf is shared with the text pass and owned by the viewport.
	quadIndexBuf hal.Buffer

	vertices  dynamicBuffer
	quadCount int
}

func (p *wirePass) init(device hal.Device, quadIndexBuf hal.Buffer) error {
	bundle, err := buildPipeline(device, pipelineSpec{
		label:       "wire",
		source:      wireShaderSource,
		bindEntries: []gputypes.BindGroupLayoutEntry{uniformBindEntry()},
		vertexLayouts: []gputypes.VertexBufferLayout{
			{
				ArrayStride: wireVertexStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
					{Format: gputypes.VertexFormatUint32, Offset: 8, ShaderLocation: 1},    // selected
				},
			},
		},
	})
	if err != nil {
		return err
	}
	p.bundle = bundle

	p.uniformBuf, p.bindGroup, err = newUniformBindGroup(device, p.bundle.bindLayout, "wire", wireUniformSize)
	if err != nil {
		p.bundle.destroy(device)
		return err
	}

	p.quadIndexBuf = quadIndexBuf
	p.vertices = newDynamicBuffer("wire_verts", gputypes.BufferUsageVertex)
	return nil
}

// build expands visible segments into quads and uploads vertex data and
// the uniform.
func (p *wirePass) build(device hal.Device, queue hal.Queue, wires []schematic.WireSegment, cam schematic.Camera, theme schematic.Theme) error {
	visible := cam.VisibleRect().Expand(wireHalfWidth)
	data := buildWireVertices(wires, visible)
	p.quadCount = len(data) / (4 * wireVertexStride)
	if p.quadCount == 0 {
		return nil
	}
	if err := p.vertices.upload(device, queue, data); err != nil {
		return err
	}

	uniform := make([]byte, 0, wireUniformSize)
	uniform = appendColor(uniform, theme.Wire)
	uniform = appendColor(uniform, theme.SelectedWire)
	uniform = appendVec2(uniform, cam.Resolution)
	uniform = appendVec2(uniform, cam.Offset)
	uniform = appendF32(uniform, cam.PixelsPerUnit())
	uniform = appendPad(uniform, wireUniformSize-len(uniform))
	queue.WriteBuffer(p.uniformBuf, 0, uniform)
	return nil
}

func (p *wirePass) encode(rp hal.RenderPassEncoder) {
	if p.quadCount == 0 {
		return
	}
	rp.SetPipeline(p.bundle.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetIndexBuffer(p.quadIndexBuf, gputypes.IndexFormatUint16, 0)

	for done := 0; done < p.quadCount; done += quadBatchSize {
		batch := p.quadCount - done
		if batch > quadBatchSize {
			batch = quadBatchSize
		}
		rp.SetVertexBuffer(0, p.vertices.buf, uint64(done)*4*wireVertexStride)
		rp.DrawIndexed(uint32(batch)*6, 1, 0, 0, 0) //nolint:gosec // batch bounded by quadBatchSize
	}
}

func (p *wirePass) destroy(device hal.Device) {
	p.vertices.destroy(device)
	if p.bindGroup != nil {
		device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	p.bundle.destroy(device)
}

// buildWireVertices expands each segment into a 4-vertex quad in the shared
// corner order. Segments entirely outside the visible rect and degenerate
// zero-length segments produce nothing.
func buildWireVertices(wires []schematic.WireSegment, visible schematic.Rect) []byte {
	data := make([]byte, 0, len(wires)*4*wireVertexStride)
	for _, w := range wires {
		if !schematic.RectFromCorners(w.A, w.B).Expand(wireHalfWidth).Intersects(visible) {
			continue
		}
		dir := w.B.Sub(w.A).Normalized()
		if dir == (schematic.Vec2{}) {
			continue
		}
		n := dir.Perp().Mul(wireHalfWidth)

		sel := uint32(0)
		if w.Selected {
			sel = 1
		}
		for _, corner := range [4]schematic.Vec2{
			w.A.Sub(n), w.B.Sub(n), w.B.Add(n), w.A.Add(n),
		} {
			data = appendVec2(data, corner)
			data = appendU32(data, sel)
		}
	}
	return data
}
