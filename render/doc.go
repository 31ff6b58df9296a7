// Package render draws schematic snapshots on the GPU.
//
// The package is organized as a set of render passes (grid, wires, symbols,
// free-rotation shapes, anchors, text, selection box) composited by a
// Viewport into a single render pass per frame with pipeline switching.
// All passes share one MSAA color attachment that resolves either to an
// internal offscreen texture or to a caller-provided surface view.
//
// Rendering is immediate mode: every frame rebuilds vertex and instance
// data from an immutable schematic.Snapshot and re-uploads it before
// submission. Dynamic buffers grow geometrically and never shrink.
//
// A Viewport and its Context are not safe for concurrent use. One frame
// must complete before the next begins.
package render
