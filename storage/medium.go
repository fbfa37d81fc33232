package storage

//go:generate mockgen -source medium.go -destination ./mocks/medium.go -package mock_storage

// Medium is a fixed-capacity run of equally sized elements that an arena block partitions into
// chunks. Offsets and counts are always measured in elements; byte slices passed in and out hold
// count*Stride() bytes.
//
// The arena never interprets the bytes it stores: element layout is entirely up to the consumer.
type Medium interface {
	// Capacity returns the number of elements the medium can hold
	Capacity() int
	// Stride returns the size in bytes of a single element
	Stride() int

	// CopyRange copies count elements from srcOffset to dstOffset. The ranges may overlap, in which
	// case the copy must behave as if the source was read in full before the destination was written.
	CopyRange(srcOffset, dstOffset, count int) error
	// ReadRange returns a copy of count elements starting at offset
	ReadRange(offset, count int) ([]byte, error)
	// WriteRange writes data, which must hold a whole number of elements, starting at offset
	WriteRange(offset int, data []byte) error
	// FillRange sets every byte of count elements starting at offset to pattern
	FillRange(offset, count int, pattern uint8) error

	// Release frees the memory behind the medium. All further calls will fail with
	// memutils.ErrReleased.
	Release() error
}
