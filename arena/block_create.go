package arena

import (
	"io"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/chunkarena/memutils"
	"github.com/vkngwrapper/chunkarena/memutils/defrag"
	"github.com/vkngwrapper/chunkarena/memutils/ledger"
	"github.com/vkngwrapper/chunkarena/storage"
	"github.com/vkngwrapper/core/v2/common"
	"golang.org/x/exp/slog"
)

// BlockCreateFlags indicate specific block behaviors to activate or deactivate
type BlockCreateFlags int32

var blockCreateFlagsMapping = common.NewFlagStringMapping[BlockCreateFlags]()

func (f BlockCreateFlags) Register(str string) {
	blockCreateFlagsMapping.Register(f, str)
}
func (f BlockCreateFlags) String() string {
	return blockCreateFlagsMapping.FlagsToString(f)
}

const (
	// BlockCreateSkipFill prevents the block from writing memutils.UninitializedFillPattern over
	// chunks when they are allocated, freed, or vacated by compaction. Stale data will remain
	// visible in those ranges, but allocation and compaction no longer touch memory beyond the
	// relocation copies themselves.
	BlockCreateSkipFill BlockCreateFlags = 1 << iota
)

func init() {
	BlockCreateSkipFill.Register("BlockCreateSkipFill")
}

const (
	// defaultBufferCount is the number of buffers backing a block when BlockCreateInfo.BufferCount
	// is left at zero: one read buffer and one write buffer.
	defaultBufferCount int = 2
)

// BlockCreateInfo contains the settings used to create a Block along with its storage
type BlockCreateInfo struct {
	// Capacity is the number of elements the block can hold
	Capacity int
	// Stride is the size in bytes of a single element
	Stride int
	// Kind selects the storage medium backing each buffer. The zero value is storage.KindHeap.
	Kind storage.Kind
	// BufferCount is the number of buffers rotated by Block.Swap. If zero, two buffers are used.
	BufferCount int
	// Flags indicates specific block behaviors to activate or deactivate
	Flags BlockCreateFlags
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

// New creates a Block and the storage that backs it.
//
// logger - The logger to write debug output and unreleased memory reports to. If nil, output is
// discarded.
//
// info - The capacity, stride, and storage settings for the block
func New(logger *slog.Logger, info BlockCreateInfo) (*Block, error) {
	err := memutils.CheckPositive(info.Capacity, "info.Capacity")
	if err != nil {
		return nil, err
	}
	err = memutils.CheckPositive(info.Stride, "info.Stride")
	if err != nil {
		return nil, err
	}
	err = memutils.CheckNonNegative(info.BufferCount, "info.BufferCount")
	if err != nil {
		return nil, err
	}

	bufferCount := info.BufferCount
	if bufferCount == 0 {
		bufferCount = defaultBufferCount
	}

	buffers, err := storage.New(info.Kind, info.Capacity, info.Stride, bufferCount)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create %s storage for block", info.Kind)
	}

	return NewWithStorage(logger, info.Capacity, buffers, info.Flags)
}

// NewWithStorage creates a Block over storage the caller has already created. The block takes
// ownership of buffers and releases them when the block is released.
//
// capacity - The number of elements the block will hand out. It must not exceed the capacity
// of buffers.
func NewWithStorage(logger *slog.Logger, capacity int, buffers *storage.SwapBuffer, flags BlockCreateFlags) (*Block, error) {
	if buffers == nil {
		return nil, errors.New("attempted to create a block with nil storage")
	}

	err := memutils.CheckPositive(capacity, "capacity")
	if err != nil {
		return nil, err
	}
	err = memutils.CheckRange(0, capacity, buffers.Capacity(), "block capacity")
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = discardLogger()
	}

	block := &Block{
		logger:  logger,
		flags:   flags,
		ledger:  ledger.NewLedger(),
		storage: buffers,
	}
	block.ledger.Init(capacity)
	block.compactor = defrag.Compactor{
		Ledger:  block.ledger,
		Handler: block.relocate,
	}

	if flags&BlockCreateSkipFill == 0 {
		err = buffers.FillRange(0, capacity, memutils.UninitializedFillPattern)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Block::Create",
		slog.Int("capacity", capacity),
		slog.Int("stride", buffers.Stride()),
		slog.Int("bufferCount", buffers.BufferCount()),
		slog.String("flags", flags.String()),
	)

	return block, nil
}
