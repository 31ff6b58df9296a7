package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// dynamicBuffer is a GPU buffer re-filled every frame with variable-size
// data. Capacity grows geometrically and never shrinks, so a zoomed-out
// frame with many instances does not cause reallocation churn when panning.
type dynamicBuffer struct {
	label string
	usage gputypes.BufferUsage

	buf hal.Buffer
	cap uint64
}

func newDynamicBuffer(label string, usage gputypes.BufferUsage) dynamicBuffer {
	return dynamicBuffer{label: label, usage: usage | gputypes.BufferUsageCopyDst}
}

// growCapacity returns the capacity for a requested size: the current
// capacity if it suffices, otherwise the larger of double the current
// capacity and the request. Never returns less than the current capacity.
func growCapacity(current, need uint64) uint64 {
	if need <= current {
		return current
	}
	doubled := current * 2
	if doubled < need {
		return need
	}
	return doubled
}

// upload ensures capacity and writes data. The write completes before the
// queue submission that uses the buffer, so no per-frame fencing is needed.
func (d *dynamicBuffer) upload(device hal.Device, queue hal.Queue, data []byte) error {
	need := uint64(len(data))
	if need == 0 {
		return nil
	}
	if d.buf == nil || need > d.cap {
		newCap := growCapacity(d.cap, need)
		if d.buf != nil {
			device.DestroyBuffer(d.buf)
			d.buf = nil
		}
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: d.label,
			Size:  newCap,
			Usage: d.usage,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", d.label, err)
		}
		d.buf = buf
		d.cap = newCap
	}
	queue.WriteBuffer(d.buf, 0, data)
	return nil
}

func (d *dynamicBuffer) destroy(device hal.Device) {
	if d.buf != nil {
		device.DestroyBuffer(d.buf)
		d.buf = nil
		d.cap = 0
	}
}

// newStaticBuffer creates a buffer and uploads its contents once. Used for
// per-pass meshes and index patterns that never change after init.
func newStaticBuffer(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// quadIndexData builds 16-bit indices for numQuads quads of 4 vertices
// each, two triangles per quad (0,1,2, 2,3,0). Shared by the wire and text
// passes; both cap batches at quadBatchSize so indices stay within uint16.
func quadIndexData(numQuads int) []byte {
	data := make([]byte, 0, numQuads*6*2)
	for i := 0; i < numQuads; i++ {
		base := uint16(i * 4) //nolint:gosec // bounded by quadBatchSize
		for _, off := range [6]uint16{0, 1, 2, 2, 3, 0} {
			data = binary.LittleEndian.AppendUint16(data, base+off)
		}
	}
	return data
}

// quadBatchSize is the maximum quads drawn per batch. 16384 quads use
// vertex indices 0..65535, the full uint16 range.
const quadBatchSize = 16384
