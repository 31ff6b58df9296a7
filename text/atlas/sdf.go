package atlas

import "github.com/chewxy/math32"

// Median3 returns the median of three SDF channel samples. Multi-channel
// atlases store a distance per channel so glyph corners stay sharp; the
// median reconstructs the true distance. CPU mirror of the text shader.
func Median3(r, g, b float32) float32 {
	return math32.Max(math32.Min(r, g), math32.Min(math32.Max(r, g), b))
}

// Coverage converts a sampled distance (0.5 is the glyph edge) into an
// opacity in [0, 1], with the edge falloff spanning 1/pxRange around 0.5.
// CPU mirror of the text shader: px_range*(dist-0.5)+0.5, clamped.
func Coverage(dist, pxRange float32) float32 {
	px := pxRange*(dist-0.5) + 0.5
	if px < 0 {
		return 0
	}
	if px > 1 {
		return 1
	}
	return px
}
