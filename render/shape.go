package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
)

// shapePass is the free-rotation variant of the symbol pass: instances
// carry a continuous angle in radians instead of quarter turns, evaluated
// with a sin/cos rotation matrix in the vertex stage. The mirror-then-rotate
// compose order matches the quantized pass.
//
// It shares the mesh library, uniform layout, and instance stride with
// symbolPass; only the rotation attribute format differs.
type shapePass struct {
	bundle     pipelineBundle
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	library *shapeLibrary

	instances dynamicBuffer
	draws     []symbolDraw
}

func (p *shapePass) init(device hal.Device, library *shapeLibrary) error {
	bundle, err := buildPipeline(device, pipelineSpec{
		label:         "shape",
		source:        shapeShaderSource,
		bindEntries:   []gputypes.BindGroupLayoutEntry{uniformBindEntry()},
		vertexLayouts: symbolVertexLayouts(gputypes.VertexFormatFloat32),
	})
	if err != nil {
		return err
	}
	p.bundle = bundle

	p.uniformBuf, p.bindGroup, err = newUniformBindGroup(device, p.bundle.bindLayout, "shape", symbolUniformSize)
	if err != nil {
		p.bundle.destroy(device)
		return err
	}

	p.library = library
	p.instances = newDynamicBuffer("shape_instances", gputypes.BufferUsageVertex)
	return nil
}

func (p *shapePass) build(device hal.Device, queue hal.Queue, shapes []schematic.FreePlacement, cam schematic.Camera) error {
	p.draws = p.draws[:0]
	if len(shapes) == 0 {
		return nil
	}
	visible := cam.VisibleRect()

	groups := make(map[schematic.ShapeID][]*schematic.FreePlacement, 8)
	var order []schematic.ShapeID
	for i := range shapes {
		s := &shapes[i]
		rng, ok := p.library.lookup(s.Shape)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownShape, s.Shape)
		}
		if !freeBounds(rng.bounds, s.Angle, s.Mirrored, s.Offset).Intersects(visible) {
			continue
		}
		if _, seen := groups[s.Shape]; !seen {
			order = append(order, s.Shape)
		}
		groups[s.Shape] = append(groups[s.Shape], s)
	}

	data := make([]byte, 0, len(shapes)*symbolInstanceStride)
	var next uint32
	for _, id := range order {
		group := groups[id]
		rng, _ := p.library.lookup(id)
		p.draws = append(p.draws, symbolDraw{
			rng:           rng,
			firstInstance: next,
			instanceCount: uint32(len(group)), //nolint:gosec // placement count fits uint32
		})
		for _, s := range group {
			data = appendVec2(data, s.Offset)
			data = appendF32(data, s.Angle)
			data = appendU32(data, boolU32(s.Mirrored))
			data = appendColor(data, s.Color)
		}
		next += uint32(len(group)) //nolint:gosec // placement count fits uint32
	}
	if len(p.draws) == 0 {
		return nil
	}
	if err := p.instances.upload(device, queue, data); err != nil {
		return err
	}

	queue.WriteBuffer(p.uniformBuf, 0, viewUniform(cam, symbolUniformSize))
	return nil
}

func (p *shapePass) encode(rp hal.RenderPassEncoder) {
	if len(p.draws) == 0 {
		return
	}
	rp.SetPipeline(p.bundle.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.library.vertexBuf, 0)
	rp.SetVertexBuffer(1, p.instances.buf, 0)
	rp.SetIndexBuffer(p.library.indexBuf, gputypes.IndexFormatUint16, 0)
	for _, d := range p.draws {
		rp.DrawIndexed(
			uint32(d.rng.indexCount), //nolint:gosec // mesh sizes fit uint32
			d.instanceCount,
			uint32(d.rng.firstIndex), //nolint:gosec // mesh sizes fit uint32
			int32(d.rng.baseVertex),  //nolint:gosec // mesh sizes fit int32
			d.firstInstance,
		)
	}
}

func (p *shapePass) destroy(device hal.Device) {
	p.instances.destroy(device)
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

// freeBounds returns the axis-aligned bounds of a local rectangle after the
// free-rotation instance transform and translation.
func freeBounds(local schematic.Rect, angle float32, mirrored bool, offset schematic.Vec2) schematic.Rect {
	corners := [4]schematic.Vec2{
		local.Min,
		{X: local.Max.X, Y: local.Min.Y},
		local.Max,
		{X: local.Min.X, Y: local.Max.Y},
	}
	first := schematic.ShapeLocal(corners[0], angle, mirrored).Add(offset)
	out := schematic.Rect{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := schematic.ShapeLocal(c, angle, mirrored).Add(offset)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}
