package render

import "errors"

// Render errors.
var (
	// ErrNoGPU is returned when no usable GPU adapter can be found.
	ErrNoGPU = errors.New("render: no GPU adapter available")

	// ErrNilDevice is returned when a context is created without a device.
	ErrNilDevice = errors.New("render: device is nil")

	// ErrContextClosed is returned when using a context after Close.
	ErrContextClosed = errors.New("render: context is closed")

	// ErrNilSnapshot is returned when RenderFrame is called without a
	// snapshot.
	ErrNilSnapshot = errors.New("render: snapshot is nil")

	// ErrStaleTarget is returned when the render target dimensions do not
	// match the snapshot camera resolution. The frame is dropped rather
	// than rendered at the wrong size.
	ErrStaleTarget = errors.New("render: target does not match camera resolution")

	// ErrUnknownShape is returned when a snapshot references a shape ID
	// that was never registered.
	ErrUnknownShape = errors.New("render: unknown shape id")

	// ErrEmptyMesh is returned when registering a shape with no geometry.
	ErrEmptyMesh = errors.New("render: shape mesh is empty")

	// ErrNoAtlas is returned when a snapshot carries labels but the
	// viewport was configured without a font atlas.
	ErrNoAtlas = errors.New("render: no font atlas configured")
)
