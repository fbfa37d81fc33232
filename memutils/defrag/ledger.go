package defrag

import "github.com/vkngwrapper/chunkarena/memutils/ledger"

// Ledger is the interval bookkeeping a Compactor operates on. It is satisfied by *ledger.Ledger.
type Ledger interface {
	EndIndex() int
	FragmentCount() int
	LowestFragment() (*ledger.Chunk, bool)
	AllocatedAt(start int) (*ledger.Chunk, bool)
	FragmentedAt(start int) (*ledger.Chunk, bool)

	AbsorbTail(fragment *ledger.Chunk)
	SlidePast(fragment *ledger.Chunk, chunk *ledger.Chunk)
	Merge(fragment *ledger.Chunk, next *ledger.Chunk)
}

var _ Ledger = &ledger.Ledger{}
