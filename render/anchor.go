package render

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
)

// anchorUniformSize is the byte size of the anchor uniform buffer.
// Layout: input_color vec4 (16) + output_color vec4 (16) +
// bidirectional_color vec4 (16) + resolution vec2 (8) + offset vec2 (8) +
// zoom f32 (4) + struct padding (12) = 80 bytes.
const anchorUniformSize = 80

// anchorInstanceStride is the per-instance byte stride:
// offset vec2 (8) + kind u32 (4) + size f32 (4) = 16 bytes.
const anchorInstanceStride = 16

// anchorSegments is the rim vertex count of the disc mesh.
const anchorSegments = 24

// anchorPass draws pin anchors as instanced unit discs, scaled per
// instance and colored by pin kind in the vertex stage. Anchors never
// rotate or mirror with their symbol.
type anchorPass struct {
	bundle     pipelineBundle
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	meshBuf    hal.Buffer
	indexBuf   hal.Buffer
	indexCount uint32

	instances     dynamicBuffer
	instanceCount uint32
}

func (p *anchorPass) init(device hal.Device, queue hal.Queue) error {
	bundle, err := buildPipeline(device, pipelineSpec{
		label:       "anchor",
		source:      anchorShaderSource,
		bindEntries: []gputypes.BindGroupLayoutEntry{uniformBindEntry()},
		vertexLayouts: []gputypes.VertexBufferLayout{
			{
				ArrayStride: 8,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				},
			},
			{
				ArrayStride: anchorInstanceStride,
				StepMode:    gputypes.VertexStepModeInstance,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1}, // inst_offset
					{Format: gputypes.VertexFormatUint32, Offset: 8, ShaderLocation: 2},    // kind
					{Format: gputypes.VertexFormatFloat32, Offset: 12, ShaderLocation: 3},  // size
				},
			},
		},
	})
	if err != nil {
		return err
	}
	p.bundle = bundle

	p.uniformBuf, p.bindGroup, err = newUniformBindGroup(device, p.bundle.bindLayout, "anchor", anchorUniformSize)
	if err != nil {
		p.bundle.destroy(device)
		return err
	}

	mesh, indices := discMesh(anchorSegments)
	p.meshBuf, err = newStaticBuffer(device, queue, "anchor_mesh", mesh, gputypes.BufferUsageVertex)
	if err != nil {
		p.destroy(device)
		return err
	}
	p.indexBuf, err = newStaticBuffer(device, queue, "anchor_indices", indices, gputypes.BufferUsageIndex)
	if err != nil {
		p.destroy(device)
		return err
	}
	p.indexCount = uint32(len(indices) / 2) //nolint:gosec // disc index count is constant

	p.instances = newDynamicBuffer("anchor_instances", gputypes.BufferUsageVertex)
	return nil
}

func (p *anchorPass) build(device hal.Device, queue hal.Queue, anchors []schematic.Anchor, cam schematic.Camera, theme schematic.Theme) error {
	p.instanceCount = 0
	if len(anchors) == 0 {
		return nil
	}
	visible := cam.VisibleRect()

	data := make([]byte, 0, len(anchors)*anchorInstanceStride)
	var count uint32
	for _, a := range anchors {
		if !visible.Expand(a.Size).Contains(a.Offset) {
			continue
		}
		data = appendVec2(data, a.Offset)
		data = appendU32(data, uint32(a.Kind))
		data = appendF32(data, a.Size)
		count++
	}
	if count == 0 {
		return nil
	}
	if err := p.instances.upload(device, queue, data); err != nil {
		return err
	}
	p.instanceCount = count

	uniform := make([]byte, 0, anchorUniformSize)
	uniform = appendColor(uniform, theme.AnchorInput)
	uniform = appendColor(uniform, theme.AnchorOutput)
	uniform = appendColor(uniform, theme.AnchorBidirectional)
	uniform = appendVec2(uniform, cam.Resolution)
	uniform = appendVec2(uniform, cam.Offset)
	uniform = appendF32(uniform, cam.PixelsPerUnit())
	uniform = appendPad(uniform, anchorUniformSize-len(uniform))
	queue.WriteBuffer(p.uniformBuf, 0, uniform)
	return nil
}

func (p *anchorPass) encode(rp hal.RenderPassEncoder) {
	if p.instanceCount == 0 {
		return
	}
	rp.SetPipeline(p.bundle.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.meshBuf, 0)
	rp.SetVertexBuffer(1, p.instances.buf, 0)
	rp.SetIndexBuffer(p.indexBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(p.indexCount, p.instanceCount, 0, 0, 0)
}

func (p *anchorPass) destroy(device hal.Device) {
	p.instances.destroy(device)
	if p.indexBuf != nil {
		device.DestroyBuffer(p.indexBuf)
		p.indexBuf = nil
	}
	if p.meshBuf != nil {
		device.DestroyBuffer(p.meshBuf)
		p.meshBuf = nil
	}
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

// discMesh builds a unit disc as a triangle fan around vertex 0: center
// plus segments rim vertices, segments triangles.
func discMesh(segments int) (vertices, indices []byte) {
	vertices = appendVec2(nil, schematic.Vec2{})
	for i := 0; i < segments; i++ {
		angle := 2 * math32.Pi * float32(i) / float32(segments)
		sin, cos := math32.Sincos(angle)
		vertices = appendVec2(vertices, schematic.V2(cos, sin))
	}
	for i := 0; i < segments; i++ {
		a := uint16(i + 1) //nolint:gosec // segments is small
		b := a + 1
		if i == segments-1 {
			b = 1
		}
		indices = binary.LittleEndian.AppendUint16(indices, 0)
		indices = binary.LittleEndian.AppendUint16(indices, a)
		indices = binary.LittleEndian.AppendUint16(indices, b)
	}
	return vertices, indices
}
