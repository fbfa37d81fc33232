//go:build unix

package storage

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/chunkarena/memutils"
	"golang.org/x/sys/unix"
)

// MappedMedium is a Medium backed by an anonymous private memory mapping. Its memory lives outside
// the Go heap, so large blocks do not add to garbage collector pressure.
type MappedMedium struct {
	byteRegion
}

var _ Medium = &MappedMedium{}

// NewMappedMedium maps capacity elements of stride bytes each
func NewMappedMedium(capacity, stride int) (*MappedMedium, error) {
	err := memutils.CheckPositive(capacity, "capacity")
	if err != nil {
		return nil, err
	}
	err = memutils.CheckPositive(stride, "stride")
	if err != nil {
		return nil, err
	}

	size := capacity * stride
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot map %d bytes for %d elements", size, capacity)
	}

	m := &MappedMedium{}
	m.init(capacity, stride, data)
	return m, nil
}

// Release unmaps the medium's memory
func (m *MappedMedium) Release() error {
	if m.data == nil {
		return memutils.ErrReleased
	}

	data := m.data
	m.data = nil
	return unix.Munmap(data)
}
