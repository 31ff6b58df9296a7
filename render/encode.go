package render

import (
	"encoding/binary"
	"math"

	"github.com/voltlab/schematic"
)

// Little-endian append helpers for building vertex, instance, and uniform
// byte streams. Field order in these streams must match the WGSL struct
// layouts exactly; each pass documents its layout next to its stride
// constant.

func appendF32(buf []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
}

func appendU32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func appendVec2(buf []byte, v schematic.Vec2) []byte {
	buf = appendF32(buf, v.X)
	return appendF32(buf, v.Y)
}

func appendColor(buf []byte, c schematic.Color) []byte {
	for _, ch := range c {
		buf = appendF32(buf, ch)
	}
	return buf
}

// appendPad appends n zero bytes, used for uniform struct tail padding.
func appendPad(buf []byte, n int) []byte {
	return append(buf, make([]byte, n)...)
}
