package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
	"github.com/voltlab/schematic/text/atlas"
)

// textUniformSize is the byte size of the text uniform buffer.
// Layout: color vec4 (16) + selected_color vec4 (16) + resolution vec2 (8) +
// offset vec2 (8) + zoom f32 (4) + px_range f32 (4) + struct padding (8)
// = 64 bytes.
const textUniformSize = 64

// textVertexStride is the per-vertex byte stride:
// position vec2 (8) + uv vec2 (8) + selected u32 (4) = 20 bytes.
const textVertexStride = 20

// textPass draws labels as SDF glyph quads sampled from a single font
// atlas texture. The atlas is uploaded once at viewport creation; vertex
// data is rebuilt per frame from the label layout.
//
// px_range is a per-frame uniform derived from the zoom and the largest
// label size on screen; mixed label sizes share one edge falloff width.
type textPass struct {
	bundle     pipelineBundle
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	atlas     *atlas.Atlas
	atlasTex  hal.Texture
	atlasView hal.TextureView
	sampler   hal.Sampler

	quadIndexBuf hal.Buffer

	vertices  dynamicBuffer
	quadCount int
}

func (p *textPass) init(device hal.Device, queue hal.Queue, a *atlas.Atlas, quadIndexBuf hal.Buffer) error {
	bundle, err := buildPipeline(device, pipelineSpec{
		label:  "text",
		source: textShaderSource,
		bindEntries: []gputypes.BindGroupLayoutEntry{
			uniformBindEntry(),
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
		vertexLayouts: []gputypes.VertexBufferLayout{
			{
				ArrayStride: textVertexStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
					{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
					{Format: gputypes.VertexFormatUint32, Offset: 16, ShaderLocation: 2},   // selected
				},
			},
		},
		blend: true,
	})
	if err != nil {
		return err
	}
	p.bundle = bundle

	if err := p.createAtlasResources(device, queue, a); err != nil {
		p.bundle.destroy(device)
		return err
	}

	p.atlas = a
	p.quadIndexBuf = quadIndexBuf
	p.vertices = newDynamicBuffer("text_verts", gputypes.BufferUsageVertex)
	return nil
}

// createAtlasResources uploads the atlas texture and builds the sampler,
// uniform buffer, and the combined bind group.
func (p *textPass) createAtlasResources(device hal.Device, queue hal.Queue, a *atlas.Atlas) error {
	w := uint32(a.Width)  //nolint:gosec // atlas dimensions fit uint32
	h := uint32(a.Height) //nolint:gosec // atlas dimensions fit uint32

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "text_atlas",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}
	p.atlasTex = tex

	queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		a.RGBA(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "text_atlas_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyAtlasResources(device)
		return fmt.Errorf("create atlas view: %w", err)
	}
	p.atlasView = view

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "text_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		p.destroyAtlasResources(device)
		return fmt.Errorf("create text sampler: %w", err)
	}
	p.sampler = sampler

	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "text_uniform",
		Size:  textUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		p.destroyAtlasResources(device)
		return fmt.Errorf("create text uniform: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "text_bind",
		Layout: p.bundle.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: textUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
		},
	})
	if err != nil {
		p.destroyAtlasResources(device)
		return fmt.Errorf("create text bind group: %w", err)
	}
	p.bindGroup = bindGroup
	return nil
}

func (p *textPass) build(device hal.Device, queue hal.Queue, labels []schematic.Label, cam schematic.Camera, theme schematic.Theme) error {
	p.quadCount = 0
	if len(labels) == 0 {
		return nil
	}
	visible := cam.VisibleRect()

	var data []byte
	maxSize := float32(0)
	for _, label := range labels {
		quads := p.atlas.Layout(label)
		if len(quads) == 0 {
			continue
		}
		bounds := schematic.Rect{Min: quads[0].Min, Max: quads[0].Max}
		for _, q := range quads[1:] {
			bounds = bounds.Union(schematic.Rect{Min: q.Min, Max: q.Max})
		}
		if !bounds.Intersects(visible) {
			continue
		}
		if label.Size > maxSize {
			maxSize = label.Size
		}
		for _, q := range quads {
			data = appendTextQuad(data, q)
		}
	}
	p.quadCount = len(data) / (4 * textVertexStride)
	if p.quadCount == 0 {
		return nil
	}
	if err := p.vertices.upload(device, queue, data); err != nil {
		return err
	}

	uniform := make([]byte, 0, textUniformSize)
	uniform = appendColor(uniform, theme.Text)
	uniform = appendColor(uniform, theme.SelectedText)
	uniform = appendVec2(uniform, cam.Resolution)
	uniform = appendVec2(uniform, cam.Offset)
	uniform = appendF32(uniform, cam.PixelsPerUnit())
	uniform = appendF32(uniform, p.atlas.PxRange(cam.PixelsPerUnit()*maxSize))
	uniform = appendPad(uniform, textUniformSize-len(uniform))
	queue.WriteBuffer(p.uniformBuf, 0, uniform)
	return nil
}

func (p *textPass) encode(rp hal.RenderPassEncoder) {
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
		rp.SetVertexBuffer(0, p.vertices.buf, uint64(done)*4*textVertexStride)
		rp.DrawIndexed(uint32(batch)*6, 1, 0, 0, 0) //nolint:gosec // batch bounded by quadBatchSize
	}
}

func (p *textPass) destroy(device hal.Device) {
	p.vertices.destroy(device)
	p.destroyAtlasResources(device)
	p.bundle.destroy(device)
}

func (p *textPass) destroyAtlasResources(device hal.Device) {
	if p.bindGroup != nil {
		device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.sampler != nil {
		device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.atlasView != nil {
		device.DestroyTextureView(p.atlasView)
		p.atlasView = nil
	}
	if p.atlasTex != nil {
		device.DestroyTexture(p.atlasTex)
		p.atlasTex = nil
	}
}

// appendTextQuad writes the 4 vertices of a glyph quad in the shared quad
// corner order (BL, BR, TR, TL).
func appendTextQuad(data []byte, q atlas.Quad) []byte {
	sel := boolU32(q.Selected)

	data = appendVec2(data, q.Min)
	data = appendVec2(data, schematic.V2(q.UVMin.X, q.UVMin.Y))
	data = appendU32(data, sel)

	data = appendVec2(data, schematic.V2(q.Max.X, q.Min.Y))
	data = appendVec2(data, schematic.V2(q.UVMax.X, q.UVMin.Y))
	data = appendU32(data, sel)

	data = appendVec2(data, q.Max)
	data = appendVec2(data, schematic.V2(q.UVMax.X, q.UVMax.Y))
	data = appendU32(data, sel)

	data = appendVec2(data, schematic.V2(q.Min.X, q.Max.Y))
	data = appendVec2(data, schematic.V2(q.UVMin.X, q.UVMax.Y))
	data = appendU32(data, sel)

	return data
}
