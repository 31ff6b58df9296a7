package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/voltlab/schematic"
)

// Atlas load errors.
var (
	// ErrBadMetadata is returned when the atlas JSON is malformed or
	// carries out-of-range generation parameters.
	ErrBadMetadata = errors.New("atlas: invalid atlas metadata")

	// ErrBadTexture is returned when the atlas texture cannot be decoded
	// or disagrees with the metadata dimensions.
	ErrBadTexture = errors.New("atlas: invalid atlas texture")
)

// Bounds is an axis-aligned box, either in em units (plane bounds) or in
// normalized [0, 1] texture coordinates (UV bounds).
type Bounds struct {
	Left, Bottom, Right, Top float32
}

// Glyph holds the layout metrics and atlas location of one glyph.
// Glyphs without a sprite (space, for example) advance the pen but emit no
// quad.
type Glyph struct {
	// Advance is the pen advance in em units.
	Advance float32

	// Plane is the quad extent relative to the pen position, in em units.
	Plane Bounds

	// UV is the quad's texture region in normalized coordinates.
	UV Bounds

	// HasSprite reports whether the glyph occupies atlas area.
	HasSprite bool
}

// Atlas is an immutable multi-channel SDF font atlas: glyph metrics, kerning
// pairs, and the RGBA texture data ready for GPU upload. Safe for concurrent
// reads; never mutated after Load.
type Atlas struct {
	// DistanceRange is the SDF spread in atlas texels, the bake-time
	// generation parameter px_range must be derived from.
	DistanceRange float32

	// GlyphSize is the atlas pixel count per em.
	GlyphSize float32

	// Width and Height are the texture dimensions in texels.
	Width, Height int

	// LineHeight is the baseline-to-baseline distance in em units.
	LineHeight float32

	glyphs  map[rune]Glyph
	kerning map[[2]rune]float32
	rgba    []byte
}

// JSON wire structures for the msdf-atlas-gen metadata format.
type (
	metaFile struct {
		Atlas   metaAtlas   `json:"atlas"`
		Metrics metaMetrics `json:"metrics"`
		Glyphs  []metaGlyph `json:"glyphs"`
		Kerning []metaKern  `json:"kerning"`
	}
	metaAtlas struct {
		DistanceRange float32 `json:"distanceRange"`
		Size          float32 `json:"size"`
		Width         int     `json:"width"`
		Height        int     `json:"height"`
		YOrigin       string  `json:"yOrigin"`
	}
	metaMetrics struct {
		LineHeight float32 `json:"lineHeight"`
	}
	metaGlyph struct {
		Unicode     rune        `json:"unicode"`
		Advance     float32     `json:"advance"`
		PlaneBounds *metaBounds `json:"planeBounds"`
		AtlasBounds *metaBounds `json:"atlasBounds"`
	}
	metaBounds struct {
		Left   float32 `json:"left"`
		Bottom float32 `json:"bottom"`
		Right  float32 `json:"right"`
		Top    float32 `json:"top"`
	}
	metaKern struct {
		Unicode1 rune    `json:"unicode1"`
		Unicode2 rune    `json:"unicode2"`
		Advance  float32 `json:"advance"`
	}
)

// Load parses msdf-atlas-gen JSON metadata and the matching PNG texture.
// The texture is converted to tightly packed RGBA for GPU upload.
func Load(meta []byte, texture io.Reader) (*Atlas, error) {
	var m metaFile
	if err := json.Unmarshal(meta, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMetadata, err)
	}
	if m.Atlas.DistanceRange <= 0 {
		return nil, fmt.Errorf("%w: distanceRange %v", ErrBadMetadata, m.Atlas.DistanceRange)
	}
	if m.Atlas.Size <= 0 || m.Atlas.Width <= 0 || m.Atlas.Height <= 0 {
		return nil, fmt.Errorf("%w: size %vx%v@%v", ErrBadMetadata, m.Atlas.Width, m.Atlas.Height, m.Atlas.Size)
	}

	img, err := png.Decode(texture)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadTexture, err)
	}
	b := img.Bounds()
	if b.Dx() != m.Atlas.Width || b.Dy() != m.Atlas.Height {
		return nil, fmt.Errorf("%w: texture %dx%d does not match metadata %dx%d",
			ErrBadTexture, b.Dx(), b.Dy(), m.Atlas.Width, m.Atlas.Height)
	}

	a := &Atlas{
		DistanceRange: m.Atlas.DistanceRange,
		GlyphSize:     m.Atlas.Size,
		Width:         m.Atlas.Width,
		Height:        m.Atlas.Height,
		LineHeight:    m.Metrics.LineHeight,
		glyphs:        make(map[rune]Glyph, len(m.Glyphs)),
		kerning:       make(map[[2]rune]float32, len(m.Kerning)),
		rgba:          textureRGBA(img),
	}

	// msdf-atlas-gen defaults to a bottom-origin atlas; decoded PNG rows
	// are top-down, so bottom-origin bounds flip in V.
	flipV := m.Atlas.YOrigin != "top"

	w := float32(m.Atlas.Width)
	h := float32(m.Atlas.Height)
	for _, g := range m.Glyphs {
		glyph := Glyph{Advance: g.Advance}
		if g.PlaneBounds != nil && g.AtlasBounds != nil {
			glyph.HasSprite = true
			glyph.Plane = Bounds(*g.PlaneBounds)
			glyph.UV = Bounds{
				Left:   g.AtlasBounds.Left / w,
				Right:  g.AtlasBounds.Right / w,
				Bottom: g.AtlasBounds.Bottom / h,
				Top:    g.AtlasBounds.Top / h,
			}
			if flipV {
				glyph.UV.Bottom = 1 - glyph.UV.Bottom
				glyph.UV.Top = 1 - glyph.UV.Top
			}
		}
		a.glyphs[g.Unicode] = glyph
	}
	for _, k := range m.Kerning {
		a.kerning[[2]rune{k.Unicode1, k.Unicode2}] = k.Advance
	}

	schematic.Logger().Info("atlas loaded",
		"glyphs", len(a.glyphs), "kerning", len(a.kerning),
		"size", m.Atlas.Width, "distance_range", a.DistanceRange)
	return a, nil
}

// Glyph looks up the glyph for a rune.
func (a *Atlas) Glyph(r rune) (Glyph, bool) {
	g, ok := a.glyphs[r]
	return g, ok
}

// Kerning returns the kerning adjustment between two runes in em units,
// or 0 when the pair carries none.
func (a *Atlas) Kerning(prev, next rune) float32 {
	return a.kerning[[2]rune{prev, next}]
}

// GlyphCount returns the number of glyphs in the atlas.
func (a *Atlas) GlyphCount() int { return len(a.glyphs) }

// RGBA returns the texture as tightly packed RGBA bytes, row-major,
// Width*Height*4 long. The slice is shared and must not be mutated.
func (a *Atlas) RGBA() []byte { return a.rgba }

// MeasureText returns the advance width of a text run in em units,
// including kerning. Runes absent from the atlas are skipped, matching the
// layout walk.
func (a *Atlas) MeasureText(text string) float32 {
	var width float32
	prev := rune(-1)
	for _, r := range text {
		g, ok := a.glyphs[r]
		if !ok {
			continue
		}
		if prev >= 0 {
			width += a.Kerning(prev, r)
		}
		width += g.Advance
		prev = r
	}
	return width
}

// PxRange converts the bake-time distance range into the screen-space
// px_range uniform for a given world-to-pixel scale (glyph screen pixels per
// em). Values below 1 would make edges narrower than a pixel and are
// clamped.
func (a *Atlas) PxRange(pixelsPerEm float32) float32 {
	r := a.DistanceRange * pixelsPerEm / a.GlyphSize
	if r < 1 {
		return 1
	}
	return r
}

// textureRGBA converts any decoded image to tightly packed RGBA.
func textureRGBA(img image.Image) []byte {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba.Pix
}
