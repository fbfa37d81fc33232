package storage

import (
	"github.com/vkngwrapper/chunkarena/memutils"
)

// HeapMedium is a Medium backed by an ordinary Go byte slice
type HeapMedium struct {
	byteRegion
}

var _ Medium = &HeapMedium{}

// NewHeapMedium allocates capacity elements of stride bytes each on the Go heap
func NewHeapMedium(capacity, stride int) (*HeapMedium, error) {
	err := memutils.CheckPositive(capacity, "capacity")
	if err != nil {
		return nil, err
	}
	err = memutils.CheckPositive(stride, "stride")
	if err != nil {
		return nil, err
	}

	m := &HeapMedium{}
	m.init(capacity, stride, make([]byte, capacity*stride))
	return m, nil
}

// Release drops the backing slice so the garbage collector can reclaim it
func (m *HeapMedium) Release() error {
	if m.data == nil {
		return memutils.ErrReleased
	}
	m.data = nil
	return nil
}
