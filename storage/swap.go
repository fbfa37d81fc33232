package storage

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/chunkarena/memutils"
)

// SwapBuffer holds one or more identically sized media and rotates which of them is read from and
// which is written to. Consumers write into the RoleWrite buffer, call Swap, and the data they wrote
// becomes visible through RoleRead.
//
// Relocations and fills performed by an arena block apply to every buffer, so that a chunk's data
// follows it regardless of which buffer it was written to. With a single buffer, both roles refer
// to the same medium.
type SwapBuffer struct {
	buffers []Medium
	walker  int
}

// NewSwapBuffer creates a SwapBuffer over the provided media, which must all share a capacity and
// stride. The first medium initially holds RoleRead.
func NewSwapBuffer(buffers ...Medium) (*SwapBuffer, error) {
	if len(buffers) == 0 {
		return nil, errors.Wrap(memutils.ErrInvalidSize, "a swap buffer requires at least one medium")
	}

	capacity := buffers[0].Capacity()
	stride := buffers[0].Stride()
	for i, buffer := range buffers {
		if buffer.Capacity() != capacity || buffer.Stride() != stride {
			return nil, errors.Wrapf(memutils.ErrSizeMismatch,
				"medium %d holds %d elements of %d bytes, expected %d elements of %d bytes",
				i, buffer.Capacity(), buffer.Stride(), capacity, stride)
		}
	}

	return &SwapBuffer{
		buffers: buffers,
	}, nil
}

// New constructs bufferCount media of the requested kind and wraps them in a SwapBuffer. If any
// medium fails to construct, the ones already constructed are released.
func New(kind Kind, capacity, stride, bufferCount int) (*SwapBuffer, error) {
	err := memutils.CheckPositive(bufferCount, "bufferCount")
	if err != nil {
		return nil, err
	}

	buffers := make([]Medium, 0, bufferCount)
	for i := 0; i < bufferCount; i++ {
		medium, err := NewMedium(kind, capacity, stride)
		if err != nil {
			for _, created := range buffers {
				err = errors.CombineErrors(err, created.Release())
			}
			return nil, err
		}

		buffers = append(buffers, medium)
	}

	return NewSwapBuffer(buffers...)
}

func (s *SwapBuffer) Capacity() int { return s.buffers[0].Capacity() }
func (s *SwapBuffer) Stride() int { return s.buffers[0].Stride() }
func (s *SwapBuffer) BufferCount() int { return len(s.buffers) }

// Buffer returns the medium currently holding the requested role
func (s *SwapBuffer) Buffer(role Role) (Medium, error) {
	switch role {
	case RoleRead:
		return s.buffers[s.walker], nil
	case RoleWrite:
		return s.buffers[(s.walker+1)%len(s.buffers)], nil
	}

	return nil, errors.Newf("unknown buffer role: %d", role)
}

// Swap rotates every buffer's role forward by one
func (s *SwapBuffer) Swap() {
	s.walker = (s.walker + 1) % len(s.buffers)
}

// CopyRange copies count elements from srcOffset to dstOffset within every buffer
func (s *SwapBuffer) CopyRange(srcOffset, dstOffset, count int) error {
	for i, buffer := range s.buffers {
		err := buffer.CopyRange(srcOffset, dstOffset, count)
		if err != nil {
			return errors.Wrapf(err, "failed to copy range in buffer %d", i)
		}
	}

	return nil
}

// FillRange fills count elements starting at offset with pattern within every buffer
func (s *SwapBuffer) FillRange(offset, count int, pattern uint8) error {
	for i, buffer := range s.buffers {
		err := buffer.FillRange(offset, count, pattern)
		if err != nil {
			return errors.Wrapf(err, "failed to fill range in buffer %d", i)
		}
	}

	return nil
}

// Snapshot returns a copy of count elements starting at offset from every buffer, in buffer order
func (s *SwapBuffer) Snapshot(offset, count int) ([][]byte, error) {
	snapshot := make([][]byte, 0, len(s.buffers))
	for i, buffer := range s.buffers {
		data, err := buffer.ReadRange(offset, count)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to snapshot range in buffer %d", i)
		}
		snapshot = append(snapshot, data)
	}

	return snapshot, nil
}

// Restore writes a snapshot taken by Snapshot back to offset. Every buffer is written even if an
// earlier one fails; the failures are combined and returned together.
func (s *SwapBuffer) Restore(offset int, snapshot [][]byte) error {
	if len(snapshot) != len(s.buffers) {
		return errors.Wrapf(memutils.ErrSizeMismatch, "snapshot holds %d buffers, expected %d", len(snapshot), len(s.buffers))
	}

	var err error
	for i, buffer := range s.buffers {
		writeErr := buffer.WriteRange(offset, snapshot[i])
		if writeErr != nil {
			err = errors.CombineErrors(err, errors.Wrapf(writeErr, "failed to restore range in buffer %d", i))
		}
	}

	return err
}

// Release releases every buffer, continuing past failures and returning all of them combined
func (s *SwapBuffer) Release() error {
	var err error
	for _, buffer := range s.buffers {
		err = errors.CombineErrors(err, buffer.Release())
	}

	return err
}
