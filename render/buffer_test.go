package render

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowCapacity(t *testing.T) {
	t.Run("never shrinks", func(t *testing.T) {
		assert.Equal(t, uint64(1024), growCapacity(1024, 10))
		assert.Equal(t, uint64(1024), growCapacity(1024, 1024))
	})

	t.Run("doubles when exceeded", func(t *testing.T) {
		assert.Equal(t, uint64(2048), growCapacity(1024, 1025))
		assert.Equal(t, uint64(2048), growCapacity(1024, 2000))
	})

	t.Run("jumps straight to large requests", func(t *testing.T) {
		assert.Equal(t, uint64(10000), growCapacity(1024, 10000))
	})

	t.Run("first allocation uses the request", func(t *testing.T) {
		assert.Equal(t, uint64(256), growCapacity(0, 256))
	})
}

func TestQuadIndexData(t *testing.T) {
	data := quadIndexData(3)
	require.Len(t, data, 3*6*2)

	indices := make([]uint16, 18)
	for i := range indices {
		indices[i] = binary.LittleEndian.Uint16(data[i*2:])
	}

	// Two triangles per quad: 0,1,2 and 2,3,0, offset by 4 per quad.
	assert.Equal(t, []uint16{0, 1, 2, 2, 3, 0}, indices[0:6])
	assert.Equal(t, []uint16{4, 5, 6, 6, 7, 4}, indices[6:12])
	assert.Equal(t, []uint16{8, 9, 10, 10, 11, 8}, indices[12:18])
}

func TestQuadBatchFitsUint16(t *testing.T) {
	// The largest index of a full batch must stay within uint16.
	data := quadIndexData(quadBatchSize)
	last := binary.LittleEndian.Uint16(data[len(data)-2*2:])
	assert.Equal(t, uint16((quadBatchSize-1)*4+3), last)
}
