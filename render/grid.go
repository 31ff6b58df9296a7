package render

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
)

// Grid zoom thresholds. Below hideZoom the grid draws nothing and the frame
// shows only the cleared background; between hideZoom and fineZoom only
// every second grid point is drawn, with the larger dot mesh.
const (
	gridHideZoom = 0.99
	gridFineZoom = 1.99
)

// Dot half-extents in world units. The coarse dot compensates for the
// doubled grid step so point density stays visually even across the
// threshold.
const (
	gridFineDotRadius   = 0.5 * schematic.LogicalPixelSize
	gridCoarseDotRadius = 1.0 * schematic.LogicalPixelSize
)

// gridUniformSize is the byte size of the grid uniform buffer.
// Layout: color vec4 (16) + resolution vec2 (8) + offset vec2 (8) +
// zoom f32 (4) + struct padding (12) = 48 bytes.
const gridUniformSize = 48

// gridInstanceStride is the per-instance byte stride: cell offset vec2 = 8.
const gridInstanceStride = 8

// gridPass draws one instanced dot quad per visible grid point. Instances
// are rebuilt from the camera on every frame so pan and zoom never show a
// stale grid.
type gridPass struct {
	bundle     pipelineBundle
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	// meshBuf holds both dot quads: fine at base vertex 0, coarse at 4.
	meshBuf  hal.Buffer
	indexBuf hal.Buffer

	instances     dynamicBuffer
	instanceCount uint32
	baseVertex    int
}

func (p *gridPass) init(device hal.Device, queue hal.Queue) error {
	bundle, err := buildPipeline(device, pipelineSpec{
		label:       "grid",
		source:      gridShaderSource,
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
				ArrayStride: gridInstanceStride,
				StepMode:    gputypes.VertexStepModeInstance,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1}, // cell_offset
				},
			},
		},
	})
	if err != nil {
		return err
	}
	p.bundle = bundle

	p.uniformBuf, p.bindGroup, err = newUniformBindGroup(device, p.bundle.bindLayout, "grid", gridUniformSize)
	if err != nil {
		p.bundle.destroy(device)
		return err
	}

	mesh := dotQuad(nil, gridFineDotRadius)
	mesh = dotQuad(mesh, gridCoarseDotRadius)
	p.meshBuf, err = newStaticBuffer(device, queue, "grid_mesh", mesh, gputypes.BufferUsageVertex)
	if err != nil {
		p.destroy(device)
		return err
	}
	p.indexBuf, err = newStaticBuffer(device, queue, "grid_indices", quadIndexData(1), gputypes.BufferUsageIndex)
	if err != nil {
		p.destroy(device)
		return err
	}

	p.instances = newDynamicBuffer("grid_instances", gputypes.BufferUsageVertex)
	return nil
}

// build recomputes the visible grid points and uploads instances and the
// uniform. At zoom below gridHideZoom the pass goes quiescent.
func (p *gridPass) build(device hal.Device, queue hal.Queue, cam schematic.Camera, theme schematic.Theme) error {
	p.instanceCount = 0
	if cam.Zoom < gridHideZoom {
		return nil
	}

	step := int32(2)
	p.baseVertex = 4
	if cam.Zoom > gridFineZoom {
		step = 1
		p.baseVertex = 0
	}

	cells := cam.GridCells(step)
	if len(cells) == 0 {
		return nil
	}
	data := make([]byte, 0, len(cells)*gridInstanceStride)
	for _, c := range cells {
		data = appendVec2(data, c)
	}
	if err := p.instances.upload(device, queue, data); err != nil {
		return err
	}
	p.instanceCount = uint32(len(cells)) //nolint:gosec // cell count fits uint32

	uniform := make([]byte, 0, gridUniformSize)
	uniform = appendColor(uniform, theme.Grid)
	uniform = appendVec2(uniform, cam.Resolution)
	uniform = appendVec2(uniform, cam.Offset)
	uniform = appendF32(uniform, cam.PixelsPerUnit())
	uniform = appendPad(uniform, gridUniformSize-len(uniform))
	queue.WriteBuffer(p.uniformBuf, 0, uniform)
	return nil
}

func (p *gridPass) encode(rp hal.RenderPassEncoder) {
	if p.instanceCount == 0 {
		return
	}
	rp.SetPipeline(p.bundle.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.meshBuf, 0)
	rp.SetVertexBuffer(1, p.instances.buf, 0)
	rp.SetIndexBuffer(p.indexBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(6, p.instanceCount, 0, int32(p.baseVertex), 0) //nolint:gosec // base vertex is 0 or 4
}

func (p *gridPass) destroy(device hal.Device) {
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

// dotQuad appends the 4 corner vertices of a centered square with the given
// half-extent, in the shared quad corner order (BL, BR, TR, TL).
func dotQuad(buf []byte, r float32) []byte {
	buf = appendVec2(buf, schematic.V2(-r, -r))
	buf = appendVec2(buf, schematic.V2(r, -r))
	buf = appendVec2(buf, schematic.V2(r, r))
	return appendVec2(buf, schematic.V2(-r, r))
}
