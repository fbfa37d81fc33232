package ledger

import "fmt"

// Chunk is a contiguous half-open range [Start, Start+Size) of elements within a block.
// Chunks are owned by the Ledger that created them. Callers holding a *Chunk must not change
// Start or Size directly: the Ledger keys its ordered sets by Start.
type Chunk struct {
	Start int
	Size  int
}

// End returns the first element past the end of the chunk
func (c *Chunk) End() int {
	return c.Start + c.Size
}

func (c Chunk) String() string {
	return fmt.Sprintf("[%d, %d)", c.Start, c.Start+c.Size)
}

func chunkLess(left, right *Chunk) bool {
	return left.Start < right.Start
}
