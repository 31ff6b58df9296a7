package schematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotationApply(t *testing.T) {
	p := V2(1, 0)

	assert.Equal(t, V2(1, 0), Rot0.Apply(p))
	assert.Equal(t, V2(0, -1), Rot90.Apply(p))
	assert.Equal(t, V2(-1, 0), Rot180.Apply(p))
	assert.Equal(t, V2(0, 1), Rot270.Apply(p))
}

func TestRotationGroupOrderFour(t *testing.T) {
	// Applying any quarter turn four times is the identity.
	for r := Rot0; r <= Rot270; r++ {
		p := V2(3, -7)
		for i := 0; i < 4; i++ {
			p = r.Apply(p)
		}
		assert.Equal(t, V2(3, -7), p, "rotation %d", r)
	}
}

func TestRotationInverse(t *testing.T) {
	for r := Rot0; r <= Rot270; r++ {
		p := V2(2, 5)
		assert.Equal(t, p, r.Inverse().Apply(r.Apply(p)), "rotation %d", r)
	}
}

func TestRotationOutOfRangeFallsBackToIdentity(t *testing.T) {
	p := V2(4, 9)
	assert.Equal(t, p, Rotation(4).Apply(p))
	assert.Equal(t, p, Rotation(250).Apply(p))
}

func TestSymbolLocalMirrorBeforeRotate(t *testing.T) {
	p := V2(1, 0)

	t.Run("mirror with quarter turn", func(t *testing.T) {
		// Mirror first: (1,0) -> (-1,0); then quarter turn (x,y) -> (y,-x)
		// gives (0,1). Rotating first then mirroring would give (0,-1).
		assert.Equal(t, V2(0, 1), SymbolLocal(p, Rot90, true))
		rotThenMirror := Rot90.Apply(p)
		rotThenMirror.X = -rotThenMirror.X
		assert.NotEqual(t, rotThenMirror, SymbolLocal(p, Rot90, true))
	})

	t.Run("order matters for 90 and 270 only", func(t *testing.T) {
		for r := Rot0; r <= Rot270; r++ {
			mirrorFirst := SymbolLocal(p, r, true)
			rotFirst := r.Apply(p)
			rotFirst.X = -rotFirst.X
			if r == Rot90 || r == Rot270 {
				assert.NotEqual(t, rotFirst, mirrorFirst, "rotation %d", r)
			} else {
				assert.Equal(t, rotFirst, mirrorFirst, "rotation %d", r)
			}
		}
	})
}

func TestShapeLocalMatchesQuantized(t *testing.T) {
	// At exact quarter-turn angles the continuous transform must agree
	// with the quantized one, including the mirror-then-rotate order.
	const halfPi = 3.14159265 / 2
	for _, mirrored := range []bool{false, true} {
		for r := Rot0; r <= Rot270; r++ {
			// Quantized rotations are clockwise in the (x,y)->(y,-x)
			// convention, so the matching continuous angle is negative.
			angle := -halfPi * float32(r)
			p := V2(2, 1)
			want := SymbolLocal(p, r, mirrored)
			got := ShapeLocal(p, angle, mirrored)
			assert.InDelta(t, want.X, got.X, 1e-4, "rot %d mirrored %v", r, mirrored)
			assert.InDelta(t, want.Y, got.Y, 1e-4, "rot %d mirrored %v", r, mirrored)
		}
	}
}

func TestTransformBounds(t *testing.T) {
	local := Rect{Min: V2(0, 0), Max: V2(2, 1)}

	t.Run("quarter turn swaps extents", func(t *testing.T) {
		b := TransformBounds(local, Rot90, false, V2(0, 0))
		assert.Equal(t, V2(0, -2), b.Min)
		assert.Equal(t, V2(1, 0), b.Max)
	})

	t.Run("offset translates", func(t *testing.T) {
		b := TransformBounds(local, Rot0, false, V2(10, 20))
		assert.Equal(t, V2(10, 20), b.Min)
		assert.Equal(t, V2(12, 21), b.Max)
	})

	t.Run("mirror flips x", func(t *testing.T) {
		b := TransformBounds(local, Rot0, true, V2(0, 0))
		assert.Equal(t, V2(-2, 0), b.Min)
		assert.Equal(t, V2(0, 1), b.Max)
	})
}

func TestThemeSymbolColor(t *testing.T) {
	th := DarkTheme()
	assert.Equal(t, th.Symbol, th.SymbolColor(false))
	assert.Equal(t, th.SelectedSymbol, th.SymbolColor(true))
}

func TestThemeAnchorColor(t *testing.T) {
	th := DarkTheme()
	assert.Equal(t, th.AnchorInput, th.AnchorColor(AnchorInput))
	assert.Equal(t, th.AnchorOutput, th.AnchorColor(AnchorOutput))
	assert.Equal(t, th.AnchorBidirectional, th.AnchorColor(AnchorBidirectional))

	// Unrecognized kinds fall back to the input color.
	assert.Equal(t, th.AnchorInput, th.AnchorColor(AnchorKind(7)))
}
