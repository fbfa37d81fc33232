package defrag

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/chunkarena/memutils"
)

// Compactor is an incremental state machine that removes fragmentation from a Ledger. Each step
// resolves the lowest fragmented chunk against whatever begins immediately after it:
//   - If the fragment ends at the end index, it must be the last fragment. The end index moves
//     back to the fragment's start and compaction is complete.
//   - If an allocated chunk follows, its data is moved down into the fragment's place and the
//     fragment slides forward past it.
//   - If another fragment follows, the two are merged.
//
// Every step leaves the ledger fully consistent, so a caller may stop between any two steps
// and resume later, even after allocating or freeing in the meantime.
type Compactor struct {
	// Ledger is the bookkeeping to compact
	Ledger Ledger
	// Handler is called to move data for each relocation. It may be nil if the ledger does not
	// track real memory.
	Handler MoveHandler
}

// Run performs up to pass.MaxSteps resolution steps, adding their results to pass.Stats. It returns
// true if no fragmentation remains afterward. Any error returned from the Handler is returned
// immediately, with the step that produced it left unapplied.
func (c *Compactor) Run(pass *PassContext) (bool, error) {
	if c.Ledger == nil {
		panic("attempted to compact without a ledger")
	}

	err := memutils.CheckNonNegative(pass.MaxSteps, "pass.MaxSteps")
	if err != nil {
		return false, err
	}

	for pass.budgetRemaining() {
		result, size, err := c.step()
		if err != nil {
			return false, err
		}

		if result == StepIdle {
			return true, nil
		}

		pass.incrementCounters(result, size)

		if result == StepAbsorbedTail {
			return true, nil
		}
	}

	return c.Ledger.FragmentCount() == 0, nil
}

// Step performs a single resolution step and reports what it did
func (c *Compactor) Step() (StepResult, error) {
	result, _, err := c.step()
	return result, err
}

func (c *Compactor) step() (StepResult, int, error) {
	fragment, ok := c.Ledger.LowestFragment()
	if !ok {
		return StepIdle, 0, nil
	}

	if fragment.End() == c.Ledger.EndIndex() {
		size := fragment.Size
		c.Ledger.AbsorbTail(fragment)
		return StepAbsorbedTail, size, nil
	}

	nextStart := fragment.End()

	chunk, ok := c.Ledger.AllocatedAt(nextStart)
	if ok {
		size := chunk.Size
		if c.Handler != nil {
			err := c.Handler(Move{
				Chunk:     chunk,
				SrcOffset: chunk.Start,
				DstOffset: fragment.Start,
				Size:      size,
			})
			if err != nil {
				return StepIdle, 0, err
			}
		}

		c.Ledger.SlidePast(fragment, chunk)
		return StepSwapped, size, nil
	}

	next, ok := c.Ledger.FragmentedAt(nextStart)
	if ok {
		size := next.Size
		c.Ledger.Merge(fragment, next)
		return StepMerged, size, nil
	}

	panic(errors.AssertionFailedf("fragment %s is followed by no tracked chunk at offset %d, end index %d", fragment.String(), nextStart, c.Ledger.EndIndex()))
}
