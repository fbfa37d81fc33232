package defrag

import "github.com/vkngwrapper/chunkarena/memutils/ledger"

// Move describes a single relocation of an allocated chunk's data. The source and destination
// ranges may overlap when the chunk is larger than the fragment it is sliding over, so the copy
// must behave like memmove.
type Move struct {
	// Chunk is the allocated chunk being relocated. When the handler is called, Chunk.Start
	// still equals SrcOffset.
	Chunk *ledger.Chunk
	// SrcOffset is the element offset the chunk's data currently lives at
	SrcOffset int
	// DstOffset is the element offset the chunk's data must be copied to
	DstOffset int
	// Size is the number of elements to copy
	Size int
}

// VacatedOffset is the start of the range that no longer holds live data once the move is complete.
// It is also where the fragment slid past the chunk will begin.
func (m Move) VacatedOffset() int {
	return m.DstOffset + m.Size
}

// VacatedSize is the number of elements starting at VacatedOffset that no longer hold live data
// once the move is complete
func (m Move) VacatedSize() int {
	return m.SrcOffset - m.DstOffset
}

// MoveHandler is called to physically relocate data before the ledger records a move. If it returns
// an error, the step is abandoned and the ledger is left as it was.
type MoveHandler func(move Move) error
