package arena

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/chunkarena/memutils"
	"github.com/vkngwrapper/chunkarena/storage"
)

// Handle is a stable reference to a chunk allocated from a Block. It remains valid across
// compaction, which may relocate the chunk's data, until it is passed to Block.Free. Handles are
// small values that can be copied and compared freely; the zero Handle is never valid.
type Handle struct {
	block      *Block
	slot       uint32
	generation uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("Handle{slot: %d, generation: %d}", h.slot, h.generation)
}

// Block returns the Block this handle was allocated from, or nil for the zero Handle
func (h Handle) Block() *Block {
	return h.block
}

// IsValid returns true if the handle currently resolves to a live chunk
func (h Handle) IsValid() bool {
	if h.block == nil {
		return false
	}

	_, err := h.block.resolve(h)
	return err == nil
}

// Offset returns the element offset the chunk currently begins at. The result may change after
// any call to Block.Defragment.
func (h Handle) Offset() (int, error) {
	if h.block == nil {
		return 0, errors.Wrap(memutils.ErrUnknownHandle, "zero handle")
	}

	chunk, err := h.block.resolve(h)
	if err != nil {
		return 0, err
	}

	return chunk.Start, nil
}

// Size returns the number of elements in the chunk
func (h Handle) Size() (int, error) {
	if h.block == nil {
		return 0, errors.Wrap(memutils.ErrUnknownHandle, "zero handle")
	}

	chunk, err := h.block.resolve(h)
	if err != nil {
		return 0, err
	}

	return chunk.Size, nil
}

// Write replaces the chunk's contents in the buffer currently holding role. data must be exactly
// Size() elements long, otherwise memutils.ErrSizeMismatch is returned and nothing is written.
func (h Handle) Write(role storage.Role, data []byte) error {
	if h.block == nil {
		return errors.Wrap(memutils.ErrUnknownHandle, "zero handle")
	}

	h.block.logger.Debug("Handle::Write")
	return h.block.writeChunk(h, role, data)
}

// Read returns a copy of the chunk's contents in the buffer currently holding role
func (h Handle) Read(role storage.Role) ([]byte, error) {
	if h.block == nil {
		return nil, errors.Wrap(memutils.ErrUnknownHandle, "zero handle")
	}

	h.block.logger.Debug("Handle::Read")
	return h.block.readChunk(h, role)
}
