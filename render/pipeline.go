package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// sampleCount is the MSAA sample count for all passes.
const sampleCount = 4

// targetFormat is the color format of the MSAA attachment, the resolve
// texture, and every pipeline's color target.
const targetFormat = gputypes.TextureFormatBGRA8Unorm

// pipelineSpec describes one pass pipeline for buildPipeline.
type pipelineSpec struct {
	label  string
	source string

	// bindEntries is the group 0 layout. Every pass binds its uniform
	// buffer at binding 0; the text pass adds texture and sampler entries.
	bindEntries []gputypes.BindGroupLayoutEntry

	vertexLayouts []gputypes.VertexBufferLayout

	// blend enables premultiplied alpha blending (One, OneMinusSrcAlpha).
	// Shaders on blended pipelines must emit premultiplied color. Only the
	// text and selection box passes blend; the schematic passes write
	// opaque.
	blend bool
}

// pipelineBundle holds the GPU objects of one pass pipeline.
type pipelineBundle struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// uniformBindEntry is the group 0 binding 0 layout shared by every pass.
func uniformBindEntry() gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
}

// buildPipeline compiles a pass shader and creates its bind group layout,
// pipeline layout, and render pipeline. All pipelines share the same color
// target format, MSAA state, and triangle-list topology.
func buildPipeline(device hal.Device, spec pipelineSpec) (pipelineBundle, error) {
	var b pipelineBundle

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  spec.label + "_shader",
		Source: hal.ShaderSource{WGSL: spec.source},
	})
	if err != nil {
		return b, fmt.Errorf("compile %s shader: %w", spec.label, err)
	}
	b.shader = shader

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   spec.label + "_bind_layout",
		Entries: spec.bindEntries,
	})
	if err != nil {
		b.destroy(device)
		return pipelineBundle{}, fmt.Errorf("create %s bind layout: %w", spec.label, err)
	}
	b.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            spec.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		b.destroy(device)
		return pipelineBundle{}, fmt.Errorf("create %s pipeline layout: %w", spec.label, err)
	}
	b.pipeLayout = pipeLayout

	target := gputypes.ColorTargetState{
		Format:    targetFormat,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if spec.blend {
		blend := gputypes.BlendStatePremultiplied()
		target.Blend = &blend
	}

	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  spec.label + "_pipeline",
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
			Buffers:    spec.vertexLayouts,
		},
		Fragment: &hal.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		b.destroy(device)
		return pipelineBundle{}, fmt.Errorf("create %s pipeline: %w", spec.label, err)
	}
	b.pipeline = pipeline

	return b, nil
}

// destroy releases pipeline resources in reverse creation order.
func (b *pipelineBundle) destroy(device hal.Device) {
	if b.pipeline != nil {
		device.DestroyRenderPipeline(b.pipeline)
		b.pipeline = nil
	}
	if b.pipeLayout != nil {
		device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.bindLayout != nil {
		device.DestroyBindGroupLayout(b.bindLayout)
		b.bindLayout = nil
	}
	if b.shader != nil {
		device.DestroyShaderModule(b.shader)
		b.shader = nil
	}
}

// newUniformBindGroup creates the fixed-size uniform buffer of a pass and
// its group 0 bind group. The buffer contents are rewritten every frame;
// the bind group is created once because the buffer handle never changes.
func newUniformBindGroup(device hal.Device, layout hal.BindGroupLayout, label string, size uint64) (hal.Buffer, hal.BindGroup, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_uniform",
		Size:  size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s uniform: %w", label, err)
	}
	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: size,
			}},
		},
	})
	if err != nil {
		device.DestroyBuffer(buf)
		return nil, nil, fmt.Errorf("create %s bind group: %w", label, err)
	}
	return buf, bindGroup, nil
}
