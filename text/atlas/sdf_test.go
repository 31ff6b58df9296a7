package atlas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian3(t *testing.T) {
	assert.Equal(t, float32(2), Median3(1, 2, 3))
	assert.Equal(t, float32(2), Median3(3, 2, 1))
	assert.Equal(t, float32(2), Median3(2, 3, 1))
	assert.Equal(t, float32(5), Median3(5, 5, 1))
	assert.Equal(t, float32(0.5), Median3(0.5, 0.5, 0.5))
}

func TestCoverage(t *testing.T) {
	const pxRange = 4.0

	t.Run("edge is half covered", func(t *testing.T) {
		assert.InDelta(t, 0.5, Coverage(0.5, pxRange), 1e-6)
	})

	t.Run("clamp boundaries", func(t *testing.T) {
		// Fully transparent at and below 0.5 - 0.5/pxRange, fully opaque
		// at and above 0.5 + 0.5/pxRange.
		lo := float32(0.5 - 0.5/pxRange)
		hi := float32(0.5 + 0.5/pxRange)

		assert.Equal(t, float32(0), Coverage(lo, pxRange))
		assert.Equal(t, float32(0), Coverage(lo-0.1, pxRange))
		assert.Equal(t, float32(1), Coverage(hi, pxRange))
		assert.Equal(t, float32(1), Coverage(hi+0.1, pxRange))
	})

	t.Run("monotonic in distance", func(t *testing.T) {
		prev := float32(-1)
		for d := float32(0); d <= 1.0; d += 0.05 {
			c := Coverage(d, pxRange)
			assert.GreaterOrEqual(t, c, prev, "coverage dipped at %v", d)
			assert.GreaterOrEqual(t, c, float32(0))
			assert.LessOrEqual(t, c, float32(1))
			prev = c
		}
	})

	t.Run("larger px_range sharpens the falloff", func(t *testing.T) {
		// A point slightly inside the glyph gets more coverage when the
		// screen-space range is wider.
		assert.Greater(t, Coverage(0.55, 8), Coverage(0.55, 2))
	})
}
