package render

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/voltlab/schematic"
	"github.com/voltlab/schematic/text/atlas"
)

// PassKind identifies one render pass in the frame pass order.
type PassKind uint8

const (
	PassGrid PassKind = iota
	PassWires
	PassSymbols
	PassShapes
	PassAnchors
	PassText
	PassSelectionBox
)

// DefaultPassOrder returns the standard back-to-front pass order.
func DefaultPassOrder() []PassKind {
	return []PassKind{
		PassGrid, PassWires, PassSymbols, PassShapes,
		PassAnchors, PassText, PassSelectionBox,
	}
}

// Config configures a Viewport.
type Config struct {
	// Theme provides the pass colors and the clear color.
	Theme schematic.Theme

	// PassOrder is the draw order within the frame's single render pass.
	// Nil means DefaultPassOrder. A pass may be omitted to disable it.
	PassOrder []PassKind

	// Atlas is the SDF font atlas for the text pass. When nil, rendering
	// a snapshot that carries labels fails with ErrNoAtlas.
	Atlas *atlas.Atlas
}

// DefaultConfig returns a dark-themed config with the standard pass order.
func DefaultConfig() Config {
	return Config{
		Theme:     schematic.DarkTheme(),
		PassOrder: DefaultPassOrder(),
	}
}

// RenderTarget describes where a frame's pixels go in offscreen mode.
// Data, when non-nil, receives tightly packed RGBA pixels and must hold at
// least Width*Height*4 bytes. With nil Data the frame stays on the GPU in
// the viewport's resolve texture.
type RenderTarget struct {
	Width, Height int
	Data          []byte
}

// Viewport composites schematic snapshots into frames. It owns the shared
// MSAA and resolve textures, the per-pass pipelines and buffers, and the
// symbol shape library.
//
// Every frame runs as one render pass with pipeline switching: the MSAA
// attachment is cleared to the theme background, each configured pass
// records its draws, and the attachment resolves to the offscreen resolve
// texture or to a caller-provided surface view.
type Viewport struct {
	ctx *Context
	cfg Config

	targets targetSet
	library shapeLibrary

	// quadIndexBuf is the uint16 quad index pattern shared by the wire
	// and text passes.
	quadIndexBuf hal.Buffer

	grid    gridPass
	wires   wirePass
	symbols symbolPass
	shapes  shapePass
	anchors anchorPass
	text    textPass
	selBox  selBoxPass

	surfaceView   hal.TextureView
	surfaceWidth  uint32
	surfaceHeight uint32
}

// NewViewport creates a viewport and all of its pass pipelines on the
// context's device. Textures are allocated lazily at the first frame.
func NewViewport(ctx *Context, cfg Config) (*Viewport, error) {
	if ctx == nil || ctx.device == nil {
		return nil, ErrNilDevice
	}
	if cfg.PassOrder == nil {
		cfg.PassOrder = DefaultPassOrder()
	}
	v := &Viewport{
		ctx:     ctx,
		cfg:     cfg,
		library: newShapeLibrary(),
	}
	device, queue := ctx.device, ctx.queue

	quadIdx, err := newStaticBuffer(device, queue, "quad_indices",
		quadIndexData(quadBatchSize), gputypes.BufferUsageIndex)
	if err != nil {
		return nil, err
	}
	v.quadIndexBuf = quadIdx

	if err := v.grid.init(device, queue); err != nil {
		v.Destroy()
		return nil, fmt.Errorf("grid pass: %w", err)
	}
	if err := v.wires.init(device, v.quadIndexBuf); err != nil {
		v.Destroy()
		return nil, fmt.Errorf("wire pass: %w", err)
	}
	if err := v.symbols.init(device, &v.library); err != nil {
		v.Destroy()
		return nil, fmt.Errorf("symbol pass: %w", err)
	}
	if err := v.shapes.init(device, &v.library); err != nil {
		v.Destroy()
		return nil, fmt.Errorf("shape pass: %w", err)
	}
	if err := v.anchors.init(device, queue); err != nil {
		v.Destroy()
		return nil, fmt.Errorf("anchor pass: %w", err)
	}
	if cfg.Atlas != nil {
		if err := v.text.init(device, queue, cfg.Atlas, v.quadIndexBuf); err != nil {
			v.Destroy()
			return nil, fmt.Errorf("text pass: %w", err)
		}
	}
	if err := v.selBox.init(device, queue); err != nil {
		v.Destroy()
		return nil, fmt.Errorf("selection box pass: %w", err)
	}
	return v, nil
}

// RegisterShape adds a symbol mesh to the shape library under the given
// ID. Shapes must be registered before a snapshot references them; GPU
// upload happens lazily at the next frame.
func (v *Viewport) RegisterShape(id schematic.ShapeID, mesh Mesh) error {
	return v.library.register(id, mesh)
}

// SetSurfaceTarget switches the viewport to resolve frames directly into
// the given surface texture view, skipping the offscreen resolve texture
// and any readback. Call with a nil view to return to offscreen mode. The
// caller retains ownership of the view.
func (v *Viewport) SetSurfaceTarget(view hal.TextureView, w, h uint32) {
	v.surfaceView = view
	v.surfaceWidth = w
	v.surfaceHeight = h
}

// RenderFrame renders one snapshot. In offscreen mode the target dimensions
// must match the snapshot camera resolution; a mismatch means the caller's
// target is stale relative to the scene and the frame is refused. In
// surface mode the target is ignored, but a zero-size surface is refused
// the same way.
//
// The snapshot must stay unmodified until RenderFrame returns; the
// viewport does not retain it afterwards.
func (v *Viewport) RenderFrame(target RenderTarget, snap *schematic.Snapshot) error {
	if v.ctx.closed {
		return ErrContextClosed
	}
	if snap == nil {
		return ErrNilSnapshot
	}
	device, queue := v.ctx.device, v.ctx.queue
	cam := snap.Camera

	w, h := v.surfaceWidth, v.surfaceHeight
	surface := v.surfaceView != nil
	if surface {
		if w == 0 || h == 0 {
			return fmt.Errorf("%w: empty surface", ErrStaleTarget)
		}
	} else {
		if target.Width <= 0 || target.Height <= 0 {
			return fmt.Errorf("%w: empty target", ErrStaleTarget)
		}
		if target.Width != int(cam.Resolution.X) || target.Height != int(cam.Resolution.Y) {
			return fmt.Errorf("%w: target %dx%d, camera %gx%g",
				ErrStaleTarget, target.Width, target.Height, cam.Resolution.X, cam.Resolution.Y)
		}
		if target.Data != nil && len(target.Data) < target.Width*target.Height*4 {
			return fmt.Errorf("%w: pixel buffer too small", ErrStaleTarget)
		}
		w = uint32(target.Width)  //nolint:gosec // validated positive
		h = uint32(target.Height) //nolint:gosec // validated positive
	}
	if len(snap.Labels) > 0 && v.cfg.Atlas == nil {
		return ErrNoAtlas
	}

	if err := v.targets.ensure(device, w, h, surface); err != nil {
		return fmt.Errorf("ensure textures: %w", err)
	}
	if err := v.library.ensure(device, queue); err != nil {
		return fmt.Errorf("upload shape library: %w", err)
	}
	if err := v.buildPasses(device, queue, snap); err != nil {
		return err
	}
	return v.encodeSubmit(target, surface)
}

// buildPasses rebuilds all per-frame GPU data from the snapshot.
func (v *Viewport) buildPasses(device hal.Device, queue hal.Queue, snap *schematic.Snapshot) error {
	cam := snap.Camera
	theme := v.cfg.Theme

	if err := v.grid.build(device, queue, cam, theme); err != nil {
		return fmt.Errorf("build grid: %w", err)
	}
	if err := v.wires.build(device, queue, snap.Wires, cam, theme); err != nil {
		return fmt.Errorf("build wires: %w", err)
	}
	if err := v.symbols.build(device, queue, snap.Symbols, cam); err != nil {
		return fmt.Errorf("build symbols: %w", err)
	}
	if err := v.shapes.build(device, queue, snap.Shapes, cam); err != nil {
		return fmt.Errorf("build shapes: %w", err)
	}
	if err := v.anchors.build(device, queue, snap.Anchors, cam, theme); err != nil {
		return fmt.Errorf("build anchors: %w", err)
	}
	if v.cfg.Atlas != nil {
		if err := v.text.build(device, queue, snap.Labels, cam, theme); err != nil {
			return fmt.Errorf("build text: %w", err)
		}
	}
	v.selBox.build(queue, snap.SelectionBox, cam, theme)
	return nil
}

// encodeSubmit records the unified render pass, submits it, and waits for
// the fence. Offscreen frames with a Data target additionally copy the
// resolve texture into a staging buffer and read it back as RGBA.
func (v *Viewport) encodeSubmit(target RenderTarget, surface bool) error {
	device, queue := v.ctx.device, v.ctx.queue

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "viewport_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("viewport_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	resolveView := v.targets.resolveView
	if surface {
		resolveView = v.surfaceView
	}
	bg := v.cfg.Theme.Background
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "viewport_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          v.targets.msaaView,
			ResolveTarget: resolveView,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(bg[0]), G: float64(bg[1]), B: float64(bg[2]), A: float64(bg[3]),
			},
		}},
	})

	for _, kind := range v.cfg.PassOrder {
		switch kind {
		case PassGrid:
			v.grid.encode(rp)
		case PassWires:
			v.wires.encode(rp)
		case PassSymbols:
			v.symbols.encode(rp)
		case PassShapes:
			v.shapes.encode(rp)
		case PassAnchors:
			v.anchors.encode(rp)
		case PassText:
			if v.cfg.Atlas != nil {
				v.text.encode(rp)
			}
		case PassSelectionBox:
			v.selBox.encode(rp)
		}
	}

	rp.End()

	readback := !surface && target.Data != nil
	var stagingBuf hal.Buffer
	var alignedBytesPerRow uint32
	w, h := v.targets.width, v.targets.height
	if readback {
		// After resolve the texture is in attachment layout; the copy
		// needs a transfer source transition. No-op on non-Vulkan
		// backends.
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: v.targets.resolveTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})

		// Copy rows padded to the required 256-byte pitch.
		const copyPitchAlignment = 256
		bytesPerRow := w * 4
		alignedBytesPerRow = (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
		stagingBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
			Label: "viewport_staging",
			Size:  uint64(alignedBytesPerRow) * uint64(h),
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("create staging buffer: %w", err)
		}
		defer device.DestroyBuffer(stagingBuf)

		encoder.CopyTextureToBuffer(v.targets.resolveTex, stagingBuf, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: v.targets.resolveTex, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})

		// Return to attachment layout for the next frame's resolve.
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: v.targets.resolveTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	if readback {
		raw := make([]byte, uint64(alignedBytesPerRow)*uint64(h))
		if err := queue.ReadBuffer(stagingBuf, 0, raw); err != nil {
			return fmt.Errorf("readback: %w", err)
		}
		unpackFrame(raw, target.Data, int(w), int(h), int(alignedBytesPerRow))
	}
	return nil
}

// Destroy releases all GPU resources held by the viewport. The surface
// view, if set, is owned by the caller and left alive. Safe to call more
// than once.
func (v *Viewport) Destroy() {
	device := v.ctx.device
	if device == nil {
		return
	}
	v.selBox.destroy(device)
	if v.cfg.Atlas != nil {
		v.text.destroy(device)
	}
	v.anchors.destroy(device)
	v.shapes.destroy(device)
	v.symbols.destroy(device)
	v.wires.destroy(device)
	v.grid.destroy(device)
	v.library.destroyBuffers(device)
	if v.quadIndexBuf != nil {
		device.DestroyBuffer(v.quadIndexBuf)
		v.quadIndexBuf = nil
	}
	v.targets.destroy(device)
	v.surfaceView = nil
}

// unpackFrame strips the staging buffer's row pitch padding and converts
// BGRA texels to tightly packed RGBA.
func unpackFrame(raw, dst []byte, w, h, pitch int) {
	for row := 0; row < h; row++ {
		src := raw[row*pitch:]
		out := dst[row*w*4:]
		for x := 0; x < w; x++ {
			b, g, r, a := src[x*4], src[x*4+1], src[x*4+2], src[x*4+3]
			out[x*4] = r
			out[x*4+1] = g
			out[x*4+2] = b
			out[x*4+3] = a
		}
	}
}
