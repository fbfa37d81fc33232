package defrag

// PassContext is an object used to track data for the current compaction pass across
// multiple steps
type PassContext struct {
	// MaxSteps is the maximum number of resolution steps to perform in this pass. Zero performs no
	// work at all; Unbounded runs until compaction is complete. A small budget lets the caller spread
	// compaction across many scheduling turns, bounding the latency of each one.
	MaxSteps int
	// Stats contains statistics for the current pass
	Stats Stats
}

func (p *PassContext) budgetRemaining() bool {
	return p.Stats.Steps < p.MaxSteps
}

func (p *PassContext) incrementCounters(result StepResult, size int) {
	p.Stats.Steps++

	switch result {
	case StepAbsorbedTail:
		p.Stats.ElementsReclaimed += size
	case StepSwapped:
		p.Stats.ChunksMoved++
		p.Stats.ElementsMoved += size
	case StepMerged:
		p.Stats.FragmentsMerged++
	}
}
