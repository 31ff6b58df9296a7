package atlas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/schematic"
)

const testMeta = `{
	"atlas": {
		"distanceRange": 2,
		"size": 32,
		"width": 8,
		"height": 8,
		"yOrigin": "bottom"
	},
	"metrics": {"lineHeight": 1.2},
	"glyphs": [
		{
			"unicode": 65,
			"advance": 0.6,
			"planeBounds": {"left": 0.0, "bottom": 0.0, "right": 0.5, "top": 0.7},
			"atlasBounds": {"left": 0, "bottom": 0, "right": 4, "top": 6}
		},
		{"unicode": 32, "advance": 0.25}
	],
	"kerning": [
		{"unicode1": 65, "unicode2": 65, "advance": -0.05}
	]
}`

func testTexture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255}) //nolint:gosec // tiny test image
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func loadTestAtlas(t *testing.T) *Atlas {
	t.Helper()
	a, err := Load([]byte(testMeta), bytes.NewReader(testTexture(t, 8, 8)))
	require.NoError(t, err)
	return a
}

func TestLoad(t *testing.T) {
	a := loadTestAtlas(t)

	assert.Equal(t, float32(2), a.DistanceRange)
	assert.Equal(t, float32(32), a.GlyphSize)
	assert.Equal(t, 8, a.Width)
	assert.Equal(t, 8, a.Height)
	assert.InDelta(t, 1.2, a.LineHeight, 1e-6)
	assert.Equal(t, 2, a.GlyphCount())
	assert.Len(t, a.RGBA(), 8*8*4)

	g, ok := a.Glyph('A')
	require.True(t, ok)
	assert.True(t, g.HasSprite)
	assert.InDelta(t, 0.6, g.Advance, 1e-6)

	// Bottom-origin atlas bounds flip in V against the top-down texture.
	assert.InDelta(t, 0.0, g.UV.Left, 1e-6)
	assert.InDelta(t, 0.5, g.UV.Right, 1e-6)
	assert.InDelta(t, 1.0, g.UV.Bottom, 1e-6)
	assert.InDelta(t, 0.25, g.UV.Top, 1e-6)

	space, ok := a.Glyph(' ')
	require.True(t, ok)
	assert.False(t, space.HasSprite)
}

func TestLoadErrors(t *testing.T) {
	tex := testTexture(t, 8, 8)

	t.Run("bad json", func(t *testing.T) {
		_, err := Load([]byte("{"), bytes.NewReader(tex))
		assert.ErrorIs(t, err, ErrBadMetadata)
	})

	t.Run("zero distance range", func(t *testing.T) {
		meta := `{"atlas": {"distanceRange": 0, "size": 32, "width": 8, "height": 8}}`
		_, err := Load([]byte(meta), bytes.NewReader(tex))
		assert.ErrorIs(t, err, ErrBadMetadata)
	})

	t.Run("not a png", func(t *testing.T) {
		_, err := Load([]byte(testMeta), bytes.NewReader([]byte("not png")))
		assert.ErrorIs(t, err, ErrBadTexture)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := Load([]byte(testMeta), bytes.NewReader(testTexture(t, 4, 4)))
		assert.ErrorIs(t, err, ErrBadTexture)
	})
}

func TestKerningAndMeasure(t *testing.T) {
	a := loadTestAtlas(t)

	assert.InDelta(t, -0.05, a.Kerning('A', 'A'), 1e-6)
	assert.Zero(t, a.Kerning('A', ' '))

	// "AA" = 0.6 + kerning + 0.6.
	assert.InDelta(t, 1.15, a.MeasureText("AA"), 1e-5)
	// Missing runes are skipped.
	assert.InDelta(t, 0.6, a.MeasureText("zAz"), 1e-5)
	// Spaces advance without kerning contribution against missing pairs.
	assert.InDelta(t, 0.85, a.MeasureText("A "), 1e-5)
}

func TestLayout(t *testing.T) {
	a := loadTestAtlas(t)

	label := schematic.Label{
		Text:     "A A",
		Position: schematic.V2(10, 20),
		Size:     2,
		Selected: true,
	}
	quads := a.Layout(label)
	require.Len(t, quads, 2) // the space advances but emits no quad

	// First glyph: plane bounds scaled by size, relative to the pen.
	q := quads[0]
	assert.InDelta(t, 10.0, q.Min.X, 1e-5)
	assert.InDelta(t, 20.0, q.Min.Y, 1e-5)
	assert.InDelta(t, 11.0, q.Max.X, 1e-5) // 0.5 em * size 2
	assert.InDelta(t, 21.4, q.Max.Y, 1e-5) // 0.7 em * size 2
	assert.True(t, q.Selected)

	// Second glyph pen: advance 0.6 + space 0.25, times size 2.
	assert.InDelta(t, 10+1.7, quads[1].Min.X, 1e-5)
}

func TestBounds(t *testing.T) {
	a := loadTestAtlas(t)

	label := schematic.Label{Text: "AA", Position: schematic.V2(0, 0), Size: 1}
	b := a.Bounds(label)
	assert.InDelta(t, 0, b.Min.X, 1e-5)
	assert.Greater(t, b.Max.X, float32(0.5))

	empty := a.Bounds(schematic.Label{Text: "zz"})
	assert.Equal(t, schematic.Rect{}, empty)
}

func TestPxRange(t *testing.T) {
	a := loadTestAtlas(t)

	// distanceRange 2, glyph size 32: at 32 px/em the screen range is 2.
	assert.InDelta(t, 2, a.PxRange(32), 1e-6)
	assert.InDelta(t, 4, a.PxRange(64), 1e-6)

	// Tiny text clamps to one pixel so edges never vanish.
	assert.Equal(t, float32(1), a.PxRange(1))
}
