package ledger

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/chunkarena/memutils"
)

const btreeDegree = 32

// Ledger is the interval bookkeeping for a single linear block. It tracks two sets of chunks, each
// ordered by start offset: allocated chunks, and fragmented chunks that were freed without being
// the tail of the used prefix. Together the two sets tile [0, EndIndex()) exactly.
//
// New chunks are always bumped onto the end of the used prefix. Fragmented space is never handed
// out again directly; it is only reclaimed by compaction, which uses AbsorbTail, SlidePast, and Merge
// to rearrange the ledger one step at a time.
//
// Ledger does not touch any memory: moving the data behind a relocated chunk is the consumer's job.
type Ledger struct {
	capacity      int
	endIndex      int
	allocatedSize int

	allocated  *btree.BTreeG[*Chunk]
	fragmented *btree.BTreeG[*Chunk]
}

// NewLedger creates an empty Ledger. Init must be called before it is used.
func NewLedger() *Ledger {
	return &Ledger{
		allocated:  btree.NewG[*Chunk](btreeDegree, chunkLess),
		fragmented: btree.NewG[*Chunk](btreeDegree, chunkLess),
	}
}

// Init prepares the ledger for allocations and sizes it in elements based on the parameter capacity.
func (l *Ledger) Init(capacity int) {
	l.capacity = capacity
	l.Clear()
}

// Capacity returns the number of elements the ledger was initialized with
func (l *Ledger) Capacity() int { return l.capacity }

// EndIndex returns the boundary between the used prefix and untouched space
func (l *Ledger) EndIndex() int { return l.endIndex }

// AllocationCount returns the number of live allocated chunks
func (l *Ledger) AllocationCount() int { return l.allocated.Len() }

// FragmentCount returns the number of fragmented chunks awaiting compaction
func (l *Ledger) FragmentCount() int { return l.fragmented.Len() }

// AllocatedElements returns the total size of all live allocated chunks
func (l *Ledger) AllocatedElements() int { return l.allocatedSize }

// IsEmpty will return true if this ledger has no live allocated chunks
func (l *Ledger) IsEmpty() bool { return l.allocated.Len() == 0 }

// HasFragmentation returns true if any fragmented chunks remain
func (l *Ledger) HasFragmentation() bool { return l.fragmented.Len() > 0 }

// Clear instantly forgets all chunks and resets the end index
func (l *Ledger) Clear() {
	l.endIndex = 0
	l.allocatedSize = 0
	l.allocated.Clear(false)
	l.fragmented.Clear(false)
}

// Bump creates a new allocated chunk of the requested size at the end index and advances the
// end index past it. It returns memutils.ErrOutOfCapacity if and only if the chunk would not fit
// before the ledger's capacity.
func (l *Ledger) Bump(size int) (*Chunk, error) {
	err := memutils.CheckPositive(size, "size")
	if err != nil {
		return nil, err
	}

	if size > l.capacity-l.endIndex {
		return nil, errors.Wrapf(memutils.ErrOutOfCapacity, "requested %d elements at end index %d, but capacity is %d", size, l.endIndex, l.capacity)
	}

	chunk := &Chunk{Start: l.endIndex, Size: size}
	l.allocated.ReplaceOrInsert(chunk)
	l.endIndex += size
	l.allocatedSize += size

	return chunk, nil
}

// Release removes an allocated chunk from the ledger. If the chunk was the tail of the used
// prefix, the end index moves back to its start and true is returned. Otherwise the chunk becomes
// fragmented and waits for compaction, and false is returned.
//
// An error is returned if chunk is not the allocated chunk this ledger holds at chunk.Start.
func (l *Ledger) Release(chunk *Chunk) (bool, error) {
	found, ok := l.allocated.Get(chunk)
	if !ok || found != chunk {
		return false, errors.Errorf("chunk %s to free was not found in this ledger", chunk.String())
	}

	l.allocated.Delete(chunk)
	l.allocatedSize -= chunk.Size

	if chunk.End() == l.endIndex {
		l.endIndex = chunk.Start
		return true, nil
	}

	l.fragmented.ReplaceOrInsert(chunk)
	return false, nil
}

// AllocatedAt returns the allocated chunk that begins at start, if any
func (l *Ledger) AllocatedAt(start int) (*Chunk, bool) {
	return l.allocated.Get(&Chunk{Start: start})
}

// FragmentedAt returns the fragmented chunk that begins at start, if any
func (l *Ledger) FragmentedAt(start int) (*Chunk, bool) {
	return l.fragmented.Get(&Chunk{Start: start})
}

// LowestFragment returns the fragmented chunk with the lowest start offset, if any
func (l *Ledger) LowestFragment() (*Chunk, bool) {
	return l.fragmented.Min()
}

// AbsorbTail drops fragment, which must be the only fragmented chunk and must end at the end index,
// and moves the end index back to its start. Any other state means the tiling invariant has been
// broken and AbsorbTail panics.
func (l *Ledger) AbsorbTail(fragment *Chunk) {
	if fragment.End() != l.endIndex {
		panic(cerrors.AssertionFailedf("fragment %s absorbed as tail, but end index is %d", fragment.String(), l.endIndex))
	}
	if l.fragmented.Len() != 1 {
		panic(cerrors.AssertionFailedf("fragment %s reached the end index while %d fragments remain", fragment.String(), l.fragmented.Len()))
	}
	if found, ok := l.fragmented.Get(fragment); !ok || found != fragment {
		panic(cerrors.AssertionFailedf("fragment %s is not present in this ledger", fragment.String()))
	}

	l.endIndex = fragment.Start
	l.fragmented.Clear(false)
}

// SlidePast swaps the positions of fragment and the allocated chunk immediately after it: chunk
// moves down to fragment's old start and fragment now begins where chunk ends. Both *Chunk values
// are updated in place so any outstanding references observe the new offsets.
func (l *Ledger) SlidePast(fragment *Chunk, chunk *Chunk) {
	if chunk.Start != fragment.End() {
		panic(cerrors.AssertionFailedf("chunk %s does not immediately follow fragment %s", chunk.String(), fragment.String()))
	}
	if found, ok := l.fragmented.Get(fragment); !ok || found != fragment {
		panic(cerrors.AssertionFailedf("fragment %s is not present in this ledger", fragment.String()))
	}
	if found, ok := l.allocated.Get(chunk); !ok || found != chunk {
		panic(cerrors.AssertionFailedf("chunk %s is not allocated in this ledger", chunk.String()))
	}

	l.allocated.Delete(chunk)
	l.fragmented.Delete(fragment)

	chunk.Start = fragment.Start
	fragment.Start = chunk.End()

	l.allocated.ReplaceOrInsert(chunk)
	l.fragmented.ReplaceOrInsert(fragment)
}

// Merge combines fragment with the fragmented chunk next that immediately follows it. fragment
// keeps its start and grows by next's size; next is removed from the ledger.
func (l *Ledger) Merge(fragment *Chunk, next *Chunk) {
	if next.Start != fragment.End() {
		panic(cerrors.AssertionFailedf("fragment %s does not immediately follow fragment %s", next.String(), fragment.String()))
	}
	if found, ok := l.fragmented.Get(next); !ok || found != next {
		panic(cerrors.AssertionFailedf("fragment %s is not present in this ledger", next.String()))
	}

	l.fragmented.Delete(next)
	fragment.Size += next.Size
}

// VisitAllRegions will call the provided callback once for each allocated and fragmented chunk in
// the ledger, in order of start offset. The callback receives a copy of the chunk.
func (l *Ledger) VisitAllRegions(handleChunk func(chunk Chunk, free bool) error) error {
	fragments := make([]*Chunk, 0, l.fragmented.Len())
	l.fragmented.Ascend(func(item *Chunk) bool {
		fragments = append(fragments, item)
		return true
	})

	var err error
	fragmentIndex := 0
	l.allocated.Ascend(func(item *Chunk) bool {
		for fragmentIndex < len(fragments) && fragments[fragmentIndex].Start < item.Start {
			err = handleChunk(*fragments[fragmentIndex], true)
			fragmentIndex++
			if err != nil {
				return false
			}
		}

		err = handleChunk(*item, false)
		return err == nil
	})
	if err != nil {
		return err
	}

	for ; fragmentIndex < len(fragments); fragmentIndex++ {
		err = handleChunk(*fragments[fragmentIndex], true)
		if err != nil {
			return err
		}
	}

	return nil
}

// Validate performs internal consistency checks on the ledger: every chunk has a positive size,
// allocated and fragmented chunks together tile [0, EndIndex()) with no gaps or overlaps, and the
// end index does not exceed capacity. When the ledger is functioning correctly, it should not be
// possible for this method to return an error.
func (l *Ledger) Validate() error {
	if l.endIndex < 0 || l.endIndex > l.capacity {
		return errors.Errorf("end index %d falls outside of the capacity %d", l.endIndex, l.capacity)
	}

	var offset, allocatedSize int
	err := l.VisitAllRegions(func(chunk Chunk, free bool) error {
		if chunk.Size <= 0 {
			return errors.Errorf("chunk at offset %d has invalid size %d", chunk.Start, chunk.Size)
		}
		if chunk.Start < offset {
			return errors.Errorf("chunk %s overlaps the previous chunk, expected offset %d", chunk.String(), offset)
		}
		if chunk.Start > offset {
			return errors.Errorf("chunk %s leaves an untracked gap, expected offset %d", chunk.String(), offset)
		}

		if !free {
			allocatedSize += chunk.Size
		}
		offset = chunk.End()
		return nil
	})
	if err != nil {
		return err
	}

	if offset != l.endIndex {
		return errors.Errorf("chunks end at offset %d, but the end index is %d", offset, l.endIndex)
	}

	if allocatedSize != l.allocatedSize {
		return errors.Errorf("counted %d allocated elements, but the ledger indicates %d", allocatedSize, l.allocatedSize)
	}

	return nil
}

// AddStatistics sums this ledger's usage into the statistics currently present in the
// provided memutils.Statistics object.
func (l *Ledger) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.BlockCapacity += l.capacity
	stats.ChunkCount += l.allocated.Len()
	stats.UsedElements += l.endIndex
	stats.AllocatedElements += l.allocatedSize
}

// AddDetailedStatistics sums this ledger's usage and fragmentation into the statistics currently
// present in the provided memutils.DetailedStatistics object.
func (l *Ledger) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockCapacity += l.capacity
	stats.UsedElements += l.endIndex

	_ = l.VisitAllRegions(func(chunk Chunk, free bool) error {
		if free {
			stats.AddFragment(chunk.Size)
		} else {
			stats.AddChunk(chunk.Size)
		}

		return nil
	})

	if l.endIndex < l.capacity {
		stats.UnusedRangeCount++
	}
}

// BlockJsonData populates a json object with summary information about this ledger
func (l *Ledger) BlockJsonData(json *jwriter.ObjectState) {
	json.Name("Capacity").Int(l.capacity)
	json.Name("EndIndex").Int(l.endIndex)
	json.Name("AllocatedElements").Int(l.allocatedSize)
	json.Name("Chunks").Int(l.allocated.Len())
	json.Name("Fragments").Int(l.fragmented.Len())
}
