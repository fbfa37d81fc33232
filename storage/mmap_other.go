//go:build !unix

package storage

import "github.com/pkg/errors"

// ErrMappingNotSupported is returned by NewMappedMedium on platforms without mmap
var ErrMappingNotSupported = errors.New("memory mapped storage is not supported on this platform")

// MappedMedium is unavailable on this platform
type MappedMedium struct {
	byteRegion
}

func NewMappedMedium(capacity, stride int) (*MappedMedium, error) {
	return nil, ErrMappingNotSupported
}

func (m *MappedMedium) Release() error {
	return nil
}
