package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
)

// symbolUniformSize is the byte size of the symbol uniform buffer.
// Layout: resolution vec2 (8) + offset vec2 (8) + zoom f32 (4) = 20 bytes,
// padded to 32 for allocation alignment.
const symbolUniformSize = 32

// symbolInstanceStride is the per-instance byte stride:
// offset vec2 (8) + rotation u32 (4) + mirrored u32 (4) + color vec4 (16)
// = 32 bytes.
const symbolInstanceStride = 32

// symbolDraw is one instanced draw of a shape group.
type symbolDraw struct {
	rng           shapeRange
	firstInstance uint32
	instanceCount uint32
}

// symbolPass draws placed component symbols with quarter-turn rotation and
// mirroring resolved in the vertex stage. Instances are grouped by shape so
// each registered mesh is drawn once per frame with all of its placements.
type symbolPass struct {
	bundle     pipelineBundle
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	library *shapeLibrary

	instances dynamicBuffer
	draws     []symbolDraw
}

func (p *symbolPass) init(device hal.Device, library *shapeLibrary) error {
	bundle, err := buildPipeline(device, pipelineSpec{
		label:         "symbol",
		source:        symbolShaderSource,
		bindEntries:   []gputypes.BindGroupLayoutEntry{uniformBindEntry()},
		vertexLayouts: symbolVertexLayouts(gputypes.VertexFormatUint32),
	})
	if err != nil {
		return err
	}
	p.bundle = bundle

	p.uniformBuf, p.bindGroup, err = newUniformBindGroup(device, p.bundle.bindLayout, "symbol", symbolUniformSize)
	if err != nil {
		p.bundle.destroy(device)
		return err
	}

	p.library = library
	p.instances = newDynamicBuffer("symbol_instances", gputypes.BufferUsageVertex)
	return nil
}

// build groups visible placements by shape, packs their instance data, and
// uploads. Referencing an unregistered shape fails the frame.
func (p *symbolPass) build(device hal.Device, queue hal.Queue, symbols []schematic.Placement, cam schematic.Camera) error {
	p.draws = p.draws[:0]
	if len(symbols) == 0 {
		return nil
	}
	visible := cam.VisibleRect()

	// Group placements by shape, preserving first-seen shape order so the
	// draw sequence is deterministic across frames.
	groups := make(map[schematic.ShapeID][]*schematic.Placement, 8)
	var order []schematic.ShapeID
	for i := range symbols {
		s := &symbols[i]
		rng, ok := p.library.lookup(s.Shape)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownShape, s.Shape)
		}
		if !schematic.TransformBounds(rng.bounds, s.Rotation, s.Mirrored, s.Offset).Intersects(visible) {
			continue
		}
		if _, seen := groups[s.Shape]; !seen {
			order = append(order, s.Shape)
		}
		groups[s.Shape] = append(groups[s.Shape], s)
	}

	data := make([]byte, 0, len(symbols)*symbolInstanceStride)
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
			data = appendU32(data, uint32(s.Rotation))
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

func (p *symbolPass) encode(rp hal.RenderPassEncoder) {
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

func (p *symbolPass) destroy(device hal.Device) {
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

// symbolVertexLayouts is the two-slot layout shared by the symbol and
// free-rotation shape passes; only the rotation attribute format differs
// (u32 quarter turns vs f32 radians).
func symbolVertexLayouts(rotationFormat gputypes.VertexFormat) []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			},
		},
		{
			ArrayStride: symbolInstanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1},  // inst_offset
				{Format: rotationFormat, Offset: 8, ShaderLocation: 2},                  // rotation
				{Format: gputypes.VertexFormatUint32, Offset: 12, ShaderLocation: 3},    // mirrored
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 4}, // color
			},
		},
	}
}

// viewUniform packs the minimal resolution/offset/zoom uniform used by the
// symbol and shape passes, padded to size.
func viewUniform(cam schematic.Camera, size int) []byte {
	uniform := make([]byte, 0, size)
	uniform = appendVec2(uniform, cam.Resolution)
	uniform = appendVec2(uniform, cam.Offset)
	uniform = appendF32(uniform, cam.PixelsPerUnit())
	return appendPad(uniform, size-len(uniform))
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
