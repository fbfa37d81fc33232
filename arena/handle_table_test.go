package arena

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/chunkarena/memutils/ledger"
)

func TestHandleTableRecyclesSlots(t *testing.T) {
	var table handleTable
	first := &ledger.Chunk{Start: 0, Size: 1}
	second := &ledger.Chunk{Start: 1, Size: 1}

	slot, generation := table.insert(first)
	require.Equal(t, uint32(0), slot)
	require.Equal(t, firstGeneration, generation)

	chunk, ok := table.remove(slot, generation)
	require.True(t, ok)
	require.Same(t, first, chunk)

	_, ok = table.remove(slot, generation)
	require.False(t, ok)

	newSlot, newGeneration := table.insert(second)
	require.Equal(t, slot, newSlot)
	require.Equal(t, generation+1, newGeneration)

	_, ok = table.lookup(slot, generation)
	require.False(t, ok)

	chunk, ok = table.lookup(newSlot, newGeneration)
	require.True(t, ok)
	require.Same(t, second, chunk)
	require.Equal(t, 1, table.liveCount)
}

func TestHandleTableRetiresExhaustedSlot(t *testing.T) {
	var table handleTable
	slot, _ := table.insert(&ledger.Chunk{Start: 0, Size: 1})

	table.slots[slot].generation = math.MaxUint32 - 1
	_, ok := table.remove(slot, math.MaxUint32-1)
	require.True(t, ok)
	require.Empty(t, table.freeSlots)

	newSlot, generation := table.insert(&ledger.Chunk{Start: 1, Size: 1})
	require.NotEqual(t, slot, newSlot)
	require.Equal(t, firstGeneration, generation)
}

func TestHandleTableLookupOutOfRange(t *testing.T) {
	var table handleTable
	_, ok := table.lookup(3, firstGeneration)
	require.False(t, ok)
}
