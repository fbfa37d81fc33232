package storage

import (
	"github.com/pkg/errors"
)

// Kind selects the kind of Medium that New will construct for each buffer
type Kind uint32

const (
	// KindHeap backs each buffer with a HeapMedium
	KindHeap Kind = iota
	// KindMapped backs each buffer with a MappedMedium
	KindMapped
)

var kindMapping = map[Kind]string{
	KindHeap:   "KindHeap",
	KindMapped: "KindMapped",
}

func (k Kind) String() string {
	return kindMapping[k]
}

// NewMedium constructs a single Medium of the requested kind
func NewMedium(kind Kind, capacity, stride int) (Medium, error) {
	switch kind {
	case KindHeap:
		medium, err := NewHeapMedium(capacity, stride)
		if err != nil {
			return nil, err
		}
		return medium, nil
	case KindMapped:
		medium, err := NewMappedMedium(capacity, stride)
		if err != nil {
			return nil, err
		}
		return medium, nil
	}

	return nil, errors.Errorf("unknown storage kind: %d", kind)
}
