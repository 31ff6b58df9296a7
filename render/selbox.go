package render

import (
	"encoding/binary"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
)

// selBoxUniformSize is the byte size of the selection box uniform buffer.
// Same layout as the grid uniform: color vec4 (16) + resolution vec2 (8) +
// offset vec2 (8) + zoom f32 (4) + struct padding (12) = 48 bytes.
const selBoxUniformSize = 48

// selBoxOutlinePx is the outline thickness in screen pixels. The world
// thickness is recomputed from the zoom every frame so the outline width
// stays constant on screen.
const selBoxOutlinePx = 1.5

// selBoxPass draws the drag-selection rectangle as a hollow frame: an
// outer and an inner ring of 4 vertices each, bridged by 8 triangles.
// The pass is active only on frames whose snapshot carries a box.
type selBoxPass struct {
	bundle     pipelineBundle
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	vertexBuf hal.Buffer
	indexBuf  hal.Buffer
	active    bool
}

func (p *selBoxPass) init(device hal.Device, queue hal.Queue) error {
	bundle, err := buildPipeline(device, pipelineSpec{
		label:       "selection_box",
		source:      selectionBoxShaderSource,
		bindEntries: []gputypes.BindGroupLayoutEntry{uniformBindEntry()},
		vertexLayouts: []gputypes.VertexBufferLayout{
			{
				ArrayStride: 8,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				},
			},
		},
		blend: true,
	})
	if err != nil {
		return err
	}
	p.bundle = bundle

	p.uniformBuf, p.bindGroup, err = newUniformBindGroup(device, p.bundle.bindLayout, "selection_box", selBoxUniformSize)
	if err != nil {
		p.bundle.destroy(device)
		return err
	}

	// 8 vertices rewritten per frame; the frame topology is fixed.
	p.vertexBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "selection_box_verts",
		Size:  8 * 8,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		p.destroy(device)
		return err
	}
	p.indexBuf, err = newStaticBuffer(device, queue, "selection_box_indices", frameIndexData(), gputypes.BufferUsageIndex)
	if err != nil {
		p.destroy(device)
		return err
	}
	return nil
}

func (p *selBoxPass) build(queue hal.Queue, box *[2]schematic.Vec2, cam schematic.Camera, theme schematic.Theme) {
	p.active = box != nil
	if !p.active {
		return
	}

	outer := schematic.RectFromCorners(box[0], box[1])
	inset := selBoxOutlinePx / cam.PixelsPerUnit()
	inner := outer.Expand(-inset)
	// A box thinner than two outline widths collapses to a filled rect.
	if inner.Min.X > inner.Max.X {
		inner.Min.X = (outer.Min.X + outer.Max.X) / 2
		inner.Max.X = inner.Min.X
	}
	if inner.Min.Y > inner.Max.Y {
		inner.Min.Y = (outer.Min.Y + outer.Max.Y) / 2
		inner.Max.Y = inner.Min.Y
	}

	data := make([]byte, 0, 8*8)
	for _, r := range [2]schematic.Rect{outer, inner} {
		data = appendVec2(data, r.Min)
		data = appendVec2(data, schematic.V2(r.Max.X, r.Min.Y))
		data = appendVec2(data, r.Max)
		data = appendVec2(data, schematic.V2(r.Min.X, r.Max.Y))
	}
	queue.WriteBuffer(p.vertexBuf, 0, data)

	uniform := make([]byte, 0, selBoxUniformSize)
	uniform = appendColor(uniform, theme.SelectionBox)
	uniform = appendVec2(uniform, cam.Resolution)
	uniform = appendVec2(uniform, cam.Offset)
	uniform = appendF32(uniform, cam.PixelsPerUnit())
	uniform = appendPad(uniform, selBoxUniformSize-len(uniform))
	queue.WriteBuffer(p.uniformBuf, 0, uniform)
}

func (p *selBoxPass) encode(rp hal.RenderPassEncoder) {
	if !p.active {
		return
	}
	rp.SetPipeline(p.bundle.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertexBuf, 0)
	rp.SetIndexBuffer(p.indexBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(24, 1, 0, 0, 0)
}

func (p *selBoxPass) destroy(device hal.Device) {
	if p.indexBuf != nil {
		device.DestroyBuffer(p.indexBuf)
		p.indexBuf = nil
	}
	if p.vertexBuf != nil {
		device.DestroyBuffer(p.vertexBuf)
		p.vertexBuf = nil
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

// frameIndexData builds the 24 indices bridging the outer ring (0..3) and
// inner ring (4..7) into 4 side quads of 2 triangles each.
func frameIndexData() []byte {
	sides := [4][4]uint16{
		{0, 1, 5, 4}, // bottom
		{1, 2, 6, 5}, // right
		{2, 3, 7, 6}, // top
		{3, 0, 4, 7}, // left
	}
	data := make([]byte, 0, 24*2)
	for _, s := range sides {
		for _, idx := range [6]uint16{s[0], s[1], s[2], s[2], s[3], s[0]} {
			data = binary.LittleEndian.AppendUint16(data, idx)
		}
	}
	return data
}
