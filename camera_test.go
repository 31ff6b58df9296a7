package schematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCamera() Camera {
	return Camera{
		Offset:     V2(3, -2),
		Zoom:       2,
		Resolution: V2(800, 600),
	}
}

func TestCameraWorldToClip(t *testing.T) {
	cam := testCamera()

	t.Run("offset maps to clip origin", func(t *testing.T) {
		c := cam.WorldToClip(cam.Offset)
		assert.Equal(t, float32(0), c.X)
		assert.Equal(t, float32(0), c.Y)
	})

	t.Run("known value", func(t *testing.T) {
		// scale = 2*10 = 20 px/unit. One unit right of center:
		// 20/800*2 = 0.05 clip x.
		c := cam.WorldToClip(V2(4, -2))
		assert.InDelta(t, 0.05, c.X, 1e-6)
		assert.InDelta(t, 0, c.Y, 1e-6)
	})

	t.Run("affine in world position", func(t *testing.T) {
		// For fixed camera parameters the transform is affine:
		// f(p) - f(q) depends only on p - q.
		p, q := V2(7, 3), V2(-1, 5)
		d1 := cam.WorldToClip(p).Sub(cam.WorldToClip(q))
		d2 := cam.WorldToClip(p.Add(V2(100, -40))).Sub(cam.WorldToClip(q.Add(V2(100, -40))))
		assert.InDelta(t, d1.X, d2.X, 1e-4)
		assert.InDelta(t, d1.Y, d2.Y, 1e-4)
	})

	t.Run("zoom scales deltas linearly", func(t *testing.T) {
		doubled := cam
		doubled.Zoom = cam.Zoom * 2
		d := cam.WorldToClip(V2(5, 1)).Sub(cam.WorldToClip(V2(4, 1)))
		dd := doubled.WorldToClip(V2(5, 1)).Sub(doubled.WorldToClip(V2(4, 1)))
		assert.InDelta(t, d.X*2, dd.X, 1e-6)
	})
}

func TestCameraVisibleRect(t *testing.T) {
	cam := testCamera()
	r := cam.VisibleRect()

	// 800 px / 20 px-per-unit = 40 units wide, 30 tall, centered on Offset.
	assert.InDelta(t, 3-20, r.Min.X, 1e-5)
	assert.InDelta(t, 3+20, r.Max.X, 1e-5)
	assert.InDelta(t, -2-15, r.Min.Y, 1e-5)
	assert.InDelta(t, -2+15, r.Max.Y, 1e-5)

	// Corners map to clip extremes.
	c := cam.WorldToClip(r.Max)
	assert.InDelta(t, 1, c.X, 1e-5)
	assert.InDelta(t, 1, c.Y, 1e-5)
}

func TestCameraGridCells(t *testing.T) {
	cam := Camera{Offset: V2(0, 0), Zoom: 2, Resolution: V2(100, 100)}
	// 100 px / 20 px-per-unit = 5 units, so x and y span [-2.5, 2.5];
	// floor(-2.5) = -3 and ceil(2.5) = 3 give integer coordinates -3..3.

	t.Run("step 1 covers every visible point", func(t *testing.T) {
		cells := cam.GridCells(1)
		require.Len(t, cells, 49) // 7x7 for -3..3
		assert.Contains(t, cells, V2(0, 0))
		assert.Contains(t, cells, V2(-3, 3))
	})

	t.Run("step 2 keeps even coordinates only", func(t *testing.T) {
		cells := cam.GridCells(2)
		require.Len(t, cells, 9) // x and y each in {-2, 0, 2}
		for _, c := range cells {
			assert.Zero(t, int32(c.X)%2)
			assert.Zero(t, int32(c.Y)%2)
		}
	})

	t.Run("pan shifts the cell set", func(t *testing.T) {
		panned := cam
		panned.Offset = V2(10, 0)
		cells := panned.GridCells(1)
		assert.Contains(t, cells, V2(10, 0))
		assert.NotContains(t, cells, V2(0, 0))
	})
}
