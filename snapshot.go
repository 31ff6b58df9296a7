package schematic

// Color is an RGBA color with components in [0, 1], laid out exactly as a
// vec4<f32> shader attribute.
type Color [4]float32

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// AnchorKind classifies a pin anchor by its direction.
type AnchorKind uint32

const (
	// AnchorInput marks a pin that consumes a signal. It doubles as the
	// fallback: unrecognized kind values render with the input color.
	AnchorInput AnchorKind = iota

	// AnchorOutput marks a pin that drives a signal.
	AnchorOutput

	// AnchorBidirectional marks a pin that both drives and consumes.
	AnchorBidirectional
)

// ShapeID identifies a symbol mesh registered with the render shape library.
type ShapeID uint32

// WireSegment is one straight run of a circuit connection. Selection is
// tracked per segment; the wire pass emits it per vertex, so a multi-segment
// wire with mixed selection renders with per-segment coloring.
type WireSegment struct {
	A, B     Vec2
	Selected bool
}

// Placement is one placed component symbol. Rotation is quantized to
// quarter turns; mirroring negates local x before rotation.
type Placement struct {
	Shape    ShapeID
	Offset   Vec2
	Rotation Rotation
	Mirrored bool
	Color    Color
}

// FreePlacement is a viewport-level shape with continuous rotation, used
// where geometry is not confined to orthogonal schematic placement.
type FreePlacement struct {
	Shape    ShapeID
	Offset   Vec2
	Angle    float32 // radians, counterclockwise
	Mirrored bool
	Color    Color
}

// Anchor is a pin endpoint marker. Size is the marker radius in world
// units; wire joints and component pins use different sizes.
type Anchor struct {
	Offset Vec2
	Kind   AnchorKind
	Size   float32
}

// Label is a text run anchored at a world-space position. Size is the font
// size in world (grid) units. The text pass breaks the run into glyph quads
// using the loaded SDF atlas.
type Label struct {
	Text     string
	Position Vec2
	Size     float32
	Selected bool
}

// Snapshot is the read-only per-frame view of the scene consumed by the
// frame compositor. It is the sole interface to the externally owned circuit
// model.
//
// A snapshot is captured once per frame and must not be mutated until the
// frame's encode completes. The compositor never retains it across frames.
type Snapshot struct {
	Camera Camera

	Wires   []WireSegment
	Symbols []Placement
	Shapes  []FreePlacement
	Anchors []Anchor
	Labels  []Label

	// SelectionBox, when non-nil, is the active drag-selection rectangle
	// given by its two drag corners in world space.
	SelectionBox *[2]Vec2
}
