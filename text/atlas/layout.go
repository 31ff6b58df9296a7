package atlas

import "github.com/voltlab/schematic"

// Quad is one glyph quad produced by layout: world-space corners, atlas UV
// corners, and the selection flag carried through to the text pass vertices.
type Quad struct {
	// Min and Max are the quad corners in world space (Min is left/bottom).
	Min, Max schematic.Vec2

	// UVMin and UVMax are the texture corners matching Min and Max.
	UVMin, UVMax schematic.Vec2

	Selected bool
}

// Layout breaks a label into glyph quads. Position is the world-space pen
// origin (baseline left), size the font size in world units per em. Runes
// missing from the atlas are skipped; spriteless glyphs only advance the
// pen.
func (a *Atlas) Layout(label schematic.Label) []Quad {
	quads := make([]Quad, 0, len(label.Text))

	var penX float32
	prev := rune(-1)
	for _, r := range label.Text {
		g, ok := a.glyphs[r]
		if !ok {
			continue
		}
		kern := float32(0)
		if prev >= 0 {
			kern = a.Kerning(prev, r)
		}

		if g.HasSprite {
			left := (penX + kern + g.Plane.Left) * label.Size
			right := (penX + kern + g.Plane.Right) * label.Size
			bottom := g.Plane.Bottom * label.Size
			top := g.Plane.Top * label.Size

			quads = append(quads, Quad{
				Min:      label.Position.Add(schematic.V2(left, bottom)),
				Max:      label.Position.Add(schematic.V2(right, top)),
				UVMin:    schematic.V2(g.UV.Left, g.UV.Bottom),
				UVMax:    schematic.V2(g.UV.Right, g.UV.Top),
				Selected: label.Selected,
			})
		}

		penX += g.Advance + kern
		prev = r
	}
	return quads
}

// Bounds returns the world-space bounds of a laid-out label, for culling.
// The zero rect is returned for labels that produce no quads.
func (a *Atlas) Bounds(label schematic.Label) schematic.Rect {
	quads := a.Layout(label)
	if len(quads) == 0 {
		return schematic.Rect{}
	}
	out := schematic.Rect{Min: quads[0].Min, Max: quads[0].Max}
	for _, q := range quads[1:] {
		out = out.Union(schematic.Rect{Min: q.Min, Max: q.Max})
	}
	return out
}
