package arena

import (
	"context"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/chunkarena/memutils"
	"github.com/vkngwrapper/chunkarena/memutils/defrag"
	"github.com/vkngwrapper/chunkarena/memutils/ledger"
	"github.com/vkngwrapper/chunkarena/storage"
	"golang.org/x/exp/slog"
)

// Block is a fixed-capacity linear arena over a SwapBuffer. Chunks are always allocated at the end
// of the used prefix; freeing the last chunk shrinks the prefix immediately, while freeing any other
// chunk leaves a fragment behind that Defragment later reclaims by sliding live chunks down over it.
//
// Callers refer to chunks through Handle values, which stay valid when Defragment relocates
// chunk data. A Block is not safe for concurrent use.
type Block struct {
	logger *slog.Logger
	flags  BlockCreateFlags

	ledger    *ledger.Ledger
	handles   handleTable
	compactor defrag.Compactor
	storage   *storage.SwapBuffer

	released bool
}

var _ memutils.Validatable = &Block{}

func (b *Block) Capacity() int { return b.ledger.Capacity() }
func (b *Block) Stride() int { return b.storage.Stride() }
func (b *Block) BufferCount() int { return b.storage.BufferCount() }
func (b *Block) EndIndex() int { return b.ledger.EndIndex() }
func (b *Block) AllocationCount() int { return b.ledger.AllocationCount() }
func (b *Block) FragmentCount() int { return b.ledger.FragmentCount() }
func (b *Block) Flags() BlockCreateFlags { return b.flags }
func (b *Block) IsReleased() bool { return b.released }

// Buffer returns the storage medium currently holding role. Writing to the medium directly
// bypasses handle and size checks.
func (b *Block) Buffer(role storage.Role) (storage.Medium, error) {
	if b.released {
		return nil, memutils.ErrReleased
	}

	return b.storage.Buffer(role)
}

func (b *Block) shouldFill() bool {
	return b.flags&BlockCreateSkipFill == 0
}

// Allocate reserves size elements at the end of the block's used prefix and returns a Handle
// to them. memutils.ErrOutOfCapacity is returned if the used prefix cannot grow by size, even if
// enough space has been freed elsewhere in the block: call Defragment to reclaim it.
func (b *Block) Allocate(size int) (Handle, error) {
	b.logger.Debug("Block::Allocate", slog.Int("size", size))

	if b.released {
		return Handle{}, memutils.ErrReleased
	}

	err := memutils.CheckPositive(size, "size")
	if err != nil {
		return Handle{}, err
	}

	chunk, err := b.ledger.Bump(size)
	if err != nil {
		return Handle{}, err
	}

	if b.shouldFill() {
		err = b.storage.FillRange(chunk.Start, chunk.Size, memutils.UninitializedFillPattern)
		if err != nil {
			_, releaseErr := b.ledger.Release(chunk)
			return Handle{}, cerrors.CombineErrors(err, releaseErr)
		}
	}

	slot, generation := b.handles.insert(chunk)
	memutils.DebugValidate(b)

	return Handle{
		block:      b,
		slot:       slot,
		generation: generation,
	}, nil
}

// Free releases the chunk behind handle. The handle, and every copy of it, stops resolving
// immediately. memutils.ErrUnknownHandle is returned if the handle was already freed or was
// allocated from a different block.
func (b *Block) Free(handle Handle) error {
	b.logger.Debug("Block::Free", slog.Any("handle", handle))

	if b.released {
		return memutils.ErrReleased
	}

	chunk, err := b.resolve(handle)
	if err != nil {
		memutils.DebugFailFast(err)
		return err
	}

	if b.shouldFill() {
		err = b.storage.FillRange(chunk.Start, chunk.Size, memutils.UninitializedFillPattern)
		if err != nil {
			return err
		}
	}

	b.handles.remove(handle.slot, handle.generation)
	_, err = b.ledger.Release(chunk)
	if err != nil {
		panic(cerrors.NewAssertionErrorWithWrappedErrf(err, "handle %s resolved to a chunk the ledger does not hold", handle.String()))
	}

	memutils.DebugValidate(b)
	return nil
}

// Defragment performs up to steps compaction steps, relocating live chunks toward the start of
// the block until no fragments remain. Pass defrag.Unbounded to run to completion. Every relocation
// is applied to all buffers, so data written through either role follows its chunk.
//
// Defragment can be called repeatedly with a small budget to spread compaction over time. The block
// is fully consistent between calls, and may be allocated from or freed to in the meantime.
func (b *Block) Defragment(steps int) (defrag.Stats, error) {
	b.logger.Debug("Block::Defragment", slog.Int("steps", steps))

	if b.released {
		return defrag.Stats{}, memutils.ErrReleased
	}

	pass := defrag.PassContext{MaxSteps: steps}
	_, err := b.compactor.Run(&pass)
	memutils.DebugValidate(b)

	return pass.Stats, err
}

// relocate moves a chunk's data in every buffer. The span from the destination to the end of the
// source is snapshotted first, so a failure partway through leaves every buffer as it was and the
// compactor can abandon the step.
func (b *Block) relocate(move defrag.Move) error {
	spanCount := move.SrcOffset + move.Size - move.DstOffset
	snapshot, err := b.storage.Snapshot(move.DstOffset, spanCount)
	if err != nil {
		return err
	}

	err = b.storage.CopyRange(move.SrcOffset, move.DstOffset, move.Size)
	if err == nil && b.shouldFill() {
		err = b.storage.FillRange(move.VacatedOffset(), move.VacatedSize(), memutils.UninitializedFillPattern)
	}
	if err == nil {
		return nil
	}

	restoreErr := b.storage.Restore(move.DstOffset, snapshot)
	if restoreErr != nil {
		panic(cerrors.NewAssertionErrorWithWrappedErrf(restoreErr,
			"chunk %s could not be restored after a failed relocation: %v", move.Chunk.String(), err))
	}

	return err
}

// Swap rotates the roles of the block's buffers, so that data written to the RoleWrite buffer
// becomes readable through RoleRead. memutils.ErrReleased is returned once the block is released.
func (b *Block) Swap() error {
	b.logger.Debug("Block::Swap")

	if b.released {
		return memutils.ErrReleased
	}

	b.storage.Swap()
	return nil
}

// Release frees the block's storage. Any chunks that are still allocated are reported to the
// logger as unreleased memory. All handles from this block stop resolving.
func (b *Block) Release() error {
	b.logger.Debug("Block::Release")

	if b.released {
		return memutils.ErrReleased
	}

	if !b.ledger.IsEmpty() {
		b.handles.visitLive(func(slot, generation uint32, chunk *ledger.Chunk) {
			b.logUnreleasedMemory(slot, generation, chunk)
		})
	}

	err := b.storage.Release()

	b.released = true
	b.handles.clear()
	b.ledger.Clear()

	return err
}

func (b *Block) logUnreleasedMemory(slot, generation uint32, chunk *ledger.Chunk) {
	b.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed chunk",
		slog.Int("offset", chunk.Start),
		slog.Int("size", chunk.Size),
		slog.Int("slot", int(slot)),
		slog.Int("generation", int(generation)),
	)
}

func (b *Block) resolve(handle Handle) (*ledger.Chunk, error) {
	if b.released {
		return nil, memutils.ErrReleased
	}
	if handle.block != b {
		return nil, cerrors.Wrapf(memutils.ErrUnknownHandle, "%s was not allocated from this block", handle.String())
	}

	chunk, ok := b.handles.lookup(handle.slot, handle.generation)
	if !ok {
		return nil, cerrors.Wrapf(memutils.ErrUnknownHandle, "%s has been freed", handle.String())
	}

	return chunk, nil
}

func (b *Block) writeChunk(handle Handle, role storage.Role, data []byte) error {
	chunk, err := b.resolve(handle)
	if err != nil {
		memutils.DebugFailFast(err)
		return err
	}

	expected := chunk.Size * b.storage.Stride()
	if len(data) != expected {
		return cerrors.Wrapf(memutils.ErrSizeMismatch, "wrote %d bytes to a chunk of %d bytes", len(data), expected)
	}

	buffer, err := b.storage.Buffer(role)
	if err != nil {
		return err
	}

	return buffer.WriteRange(chunk.Start, data)
}

func (b *Block) readChunk(handle Handle, role storage.Role) ([]byte, error) {
	chunk, err := b.resolve(handle)
	if err != nil {
		memutils.DebugFailFast(err)
		return nil, err
	}

	buffer, err := b.storage.Buffer(role)
	if err != nil {
		return nil, err
	}

	return buffer.ReadRange(chunk.Start, chunk.Size)
}

// Validate performs internal consistency checks on the block's ledger and handle table. When the
// block is functioning correctly, it should not be possible for this method to return an error.
func (b *Block) Validate() error {
	if b.released {
		return errors.New("block has been released")
	}

	err := b.ledger.Validate()
	if err != nil {
		return errors.Wrap(err, "block ledger failed validation")
	}

	if b.handles.liveCount != b.ledger.AllocationCount() {
		return errors.Errorf("block has %d live handles but %d allocated chunks", b.handles.liveCount, b.ledger.AllocationCount())
	}

	b.handles.visitLive(func(slot, generation uint32, chunk *ledger.Chunk) {
		if err != nil {
			return
		}

		allocated, ok := b.ledger.AllocatedAt(chunk.Start)
		if !ok || allocated != chunk {
			err = errors.Errorf("handle in slot %d resolves to chunk %s, which is not allocated", slot, chunk.String())
		}
	})

	return err
}

// AddStatistics sums this block's usage into the statistics currently present in the
// provided memutils.Statistics object
func (b *Block) AddStatistics(stats *memutils.Statistics) {
	b.ledger.AddStatistics(stats)
}

// AddDetailedStatistics sums this block's usage and fragmentation into the statistics currently
// present in the provided memutils.DetailedStatistics object
func (b *Block) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	b.ledger.AddDetailedStatistics(stats)
}

// PrintDetailedMap writes a json object describing the block and every chunk in it, in offset order
func (b *Block) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	b.printDetailedMap(&objState)
}

func (b *Block) printDetailedMap(json *jwriter.ObjectState) {
	json.Name("Stride").Int(b.storage.Stride())
	json.Name("BufferCount").Int(b.storage.BufferCount())
	b.ledger.BlockJsonData(json)

	arrayState := json.Name("Regions").Array()
	defer arrayState.End()

	_ = b.ledger.VisitAllRegions(func(chunk ledger.Chunk, free bool) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(chunk.Start)
		obj.Name("Size").Int(chunk.Size)
		if free {
			obj.Name("Type").String("Fragmented")
		} else {
			obj.Name("Type").String("Allocated")
		}

		return nil
	})
}
