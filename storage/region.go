package storage

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/chunkarena/memutils"
)

// byteRegion implements the range operations of Medium over a flat byte slice. It backs both
// HeapMedium and MappedMedium, which differ only in where the slice comes from.
type byteRegion struct {
	capacity int
	stride   int
	data     []byte
}

func (r *byteRegion) init(capacity, stride int, data []byte) {
	r.capacity = capacity
	r.stride = stride
	r.data = data
}

func (r *byteRegion) Capacity() int { return r.capacity }
func (r *byteRegion) Stride() int { return r.stride }

func (r *byteRegion) checkRange(offset, count int) error {
	if r.data == nil {
		return memutils.ErrReleased
	}
	return memutils.CheckRange(offset, count, r.capacity, "element range")
}

func (r *byteRegion) bytes(offset, count int) []byte {
	return r.data[offset*r.stride : (offset+count)*r.stride]
}

func (r *byteRegion) CopyRange(srcOffset, dstOffset, count int) error {
	err := r.checkRange(srcOffset, count)
	if err != nil {
		return err
	}
	err = r.checkRange(dstOffset, count)
	if err != nil {
		return err
	}

	copy(r.bytes(dstOffset, count), r.bytes(srcOffset, count))
	return nil
}

func (r *byteRegion) ReadRange(offset, count int) ([]byte, error) {
	err := r.checkRange(offset, count)
	if err != nil {
		return nil, err
	}

	out := make([]byte, count*r.stride)
	copy(out, r.bytes(offset, count))
	return out, nil
}

func (r *byteRegion) WriteRange(offset int, data []byte) error {
	if len(data)%r.stride != 0 {
		return errors.Wrapf(memutils.ErrSizeMismatch, "%d bytes is not a whole number of %d-byte elements", len(data), r.stride)
	}

	count := len(data) / r.stride
	err := r.checkRange(offset, count)
	if err != nil {
		return err
	}

	copy(r.bytes(offset, count), data)
	return nil
}

func (r *byteRegion) FillRange(offset, count int, pattern uint8) error {
	err := r.checkRange(offset, count)
	if err != nil {
		return err
	}

	target := r.bytes(offset, count)
	for i := range target {
		target[i] = pattern
	}
	return nil
}
