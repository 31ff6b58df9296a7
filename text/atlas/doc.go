// Package atlas loads prebaked multi-channel SDF font atlases and lays out
// label text as glyph quads for the render text pass.
//
// The on-disk format is the msdf-atlas-gen JSON/PNG pair: glyph plane bounds
// and advances in em units, atlas bounds in texels, optional kerning pairs,
// and the distance range the atlas was generated with. The atlas texture is
// immutable after load and safely shared across frames.
//
// The distance range used at bake time must match the px_range handed to the
// shader at render time; a mismatch produces blurry or aliased glyph edges.
// PxRange derives the screen-space value from the bake parameter and the
// current zoom so the two cannot drift.
package atlas
