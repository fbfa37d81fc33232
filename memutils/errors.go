package memutils

import "github.com/pkg/errors"

var (
	// ErrOutOfCapacity is returned when an allocation would extend the used prefix of a block past its
	// capacity. The caller may free chunks, defragment, and retry.
	ErrOutOfCapacity error = errors.New("not enough capacity remains in the block")
	// ErrUnknownHandle is returned when a handle does not resolve to a live chunk in the block it was
	// presented to, either because it was already freed or because it belongs to another block
	ErrUnknownHandle error = errors.New("handle does not map to a live chunk in this block")
	// ErrSizeMismatch is returned when data written to or read from a chunk does not match the chunk's size
	ErrSizeMismatch error = errors.New("data length does not match the chunk size")
	// ErrInvalidSize is the error returned from CheckPositive or CheckNonNegative when a size-like
	// argument is out of range
	ErrInvalidSize error = errors.New("size is out of range")
	// ErrReleased is returned when operating on a block or storage medium whose memory has been released
	ErrReleased error = errors.New("memory has already been released")

	// ErrNameAlreadyExists is returned by the registry when a block is created under a name that is taken
	ErrNameAlreadyExists error = errors.New("a block with this name already exists")
	// ErrNameNotFound is returned by the registry when no block is registered under the requested name
	ErrNameNotFound error = errors.New("no block is registered with this name")
	// ErrBlockNotFound is returned by the registry when asked to remove a block it does not own
	ErrBlockNotFound error = errors.New("block is not registered")
	// ErrNotStarted is returned by the registry when it is used before Startup or after Shutdown
	ErrNotStarted error = errors.New("registry has not been started")
)
