package arena

import (
	"math"

	"github.com/vkngwrapper/chunkarena/memutils/ledger"
)

const firstGeneration uint32 = 1

type handleSlot struct {
	chunk      *ledger.Chunk
	generation uint32
}

// handleTable maps (slot, generation) pairs to the ledger chunks they own. Slots are recycled
// through a free list and their generation is bumped on every release, so a stale handle never
// resolves to a chunk allocated after it was freed. A slot whose generation would wrap is retired
// rather than recycled.
type handleTable struct {
	slots     []handleSlot
	freeSlots []uint32
	liveCount int
}

func (t *handleTable) insert(chunk *ledger.Chunk) (uint32, uint32) {
	t.liveCount++

	if len(t.freeSlots) > 0 {
		slot := t.freeSlots[len(t.freeSlots)-1]
		t.freeSlots = t.freeSlots[:len(t.freeSlots)-1]

		t.slots[slot].chunk = chunk
		return slot, t.slots[slot].generation
	}

	if uint64(len(t.slots)) >= math.MaxUint32 {
		panic("handle table has exhausted its slot indices")
	}

	slot := uint32(len(t.slots))
	t.slots = append(t.slots, handleSlot{
		chunk:      chunk,
		generation: firstGeneration,
	})
	return slot, firstGeneration
}

func (t *handleTable) lookup(slot, generation uint32) (*ledger.Chunk, bool) {
	if int(slot) >= len(t.slots) {
		return nil, false
	}

	entry := &t.slots[slot]
	if entry.chunk == nil || entry.generation != generation {
		return nil, false
	}

	return entry.chunk, true
}

func (t *handleTable) remove(slot, generation uint32) (*ledger.Chunk, bool) {
	chunk, ok := t.lookup(slot, generation)
	if !ok {
		return nil, false
	}

	entry := &t.slots[slot]
	entry.chunk = nil
	entry.generation++
	t.liveCount--

	if entry.generation != math.MaxUint32 {
		t.freeSlots = append(t.freeSlots, slot)
	}

	return chunk, true
}

func (t *handleTable) visitLive(visit func(slot, generation uint32, chunk *ledger.Chunk)) {
	for i := range t.slots {
		if t.slots[i].chunk != nil {
			visit(uint32(i), t.slots[i].generation, t.slots[i].chunk)
		}
	}
}

func (t *handleTable) clear() {
	t.slots = nil
	t.freeSlots = nil
	t.liveCount = 0
}
