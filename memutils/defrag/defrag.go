package defrag

import "math"

// Unbounded can be used as a step budget to run compaction until no fragmentation remains
const Unbounded int = math.MaxInt

// StepResult identifies which resolution a single compaction step performed
type StepResult uint32

const (
	// StepIdle indicates that no fragmented chunks remained, so nothing was done
	StepIdle StepResult = iota
	// StepAbsorbedTail indicates that the last fragmented chunk ended at the end index, and the
	// end index was moved back to its start
	StepAbsorbedTail
	// StepSwapped indicates that the lowest fragmented chunk traded places with the allocated
	// chunk after it, relocating that chunk's data
	StepSwapped
	// StepMerged indicates that the lowest fragmented chunk was combined with the fragmented
	// chunk after it
	StepMerged
)

var stepResultMapping = map[StepResult]string{
	StepIdle:         "StepIdle",
	StepAbsorbedTail: "StepAbsorbedTail",
	StepSwapped:      "StepSwapped",
	StepMerged:       "StepMerged",
}

func (r StepResult) String() string {
	return stepResultMapping[r]
}

// Stats contains basic metrics for compaction over time
type Stats struct {
	// Steps is the number of resolution steps performed
	Steps int
	// ChunksMoved is the number of allocated chunks relocated toward the start of the block
	ChunksMoved int
	// ElementsMoved is the number of elements copied while relocating chunks
	ElementsMoved int
	// FragmentsMerged is the number of times two adjacent fragmented chunks were combined
	FragmentsMerged int
	// ElementsReclaimed is the number of elements the end index moved back when the last
	// fragmented chunk was absorbed
	ElementsReclaimed int
}

func (s *Stats) Add(stats Stats) {
	s.Steps += stats.Steps
	s.ChunksMoved += stats.ChunksMoved
	s.ElementsMoved += stats.ElementsMoved
	s.FragmentsMerged += stats.FragmentsMerged
	s.ElementsReclaimed += stats.ElementsReclaimed
}
