// Package schematic is the rendering core of a circuit editor. It turns a
// logical circuit scene (wires, component symbols, pin anchors, a background
// grid, and text labels) into GPU draw calls under a pannable, zoomable 2D
// viewport.
//
// The package itself holds the CPU-side data model: the per-frame scene
// snapshot, the camera (pan offset, zoom factor, viewport resolution), the
// quantized symbol transform math, and the theme colors. The GPU passes live
// in the render subpackage; SDF font atlas handling lives in text/atlas.
//
// The engine is deliberately immediate-mode: a Snapshot is captured once per
// frame, treated as immutable for the duration of that frame's encode, and
// expanded into per-pass vertex and instance lists. There is no retained
// GPU-side scene graph. Circuit semantics (logic evaluation, netlists) are an
// external concern; this package only consumes the visible geometry they
// produce.
package schematic
