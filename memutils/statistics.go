package memutils

import "math"

// Statistics contains basic usage numbers for one or more blocks. All sizes are measured
// in elements, not bytes.
type Statistics struct {
	BlockCount        int
	ChunkCount        int
	BlockCapacity     int
	UsedElements      int
	AllocatedElements int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.ChunkCount = 0
	s.BlockCapacity = 0
	s.UsedElements = 0
	s.AllocatedElements = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.ChunkCount += other.ChunkCount
	s.BlockCapacity += other.BlockCapacity
	s.UsedElements += other.UsedElements
	s.AllocatedElements += other.AllocatedElements
}

// DetailedStatistics extends Statistics with information about fragmentation. Fragments are
// freed chunks that sit below a block's end index and have not been compacted yet. The untouched
// space past the end index is counted as an unused range.
type DetailedStatistics struct {
	Statistics
	FragmentCount      int
	FragmentedElements int
	UnusedRangeCount   int
	ChunkSizeMin       int
	ChunkSizeMax       int
	FragmentSizeMin    int
	FragmentSizeMax    int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FragmentCount = 0
	s.FragmentedElements = 0
	s.UnusedRangeCount = 0
	s.ChunkSizeMin = math.MaxInt
	s.ChunkSizeMax = 0
	s.FragmentSizeMin = math.MaxInt
	s.FragmentSizeMax = 0
}

func (s *DetailedStatistics) AddFragment(size int) {
	s.FragmentCount++
	s.FragmentedElements += size

	if size < s.FragmentSizeMin {
		s.FragmentSizeMin = size
	}

	if size > s.FragmentSizeMax {
		s.FragmentSizeMax = size
	}
}

func (s *DetailedStatistics) AddChunk(size int) {
	s.ChunkCount++
	s.AllocatedElements += size

	if size < s.ChunkSizeMin {
		s.ChunkSizeMin = size
	}

	if size > s.ChunkSizeMax {
		s.ChunkSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FragmentCount += other.FragmentCount
	s.FragmentedElements += other.FragmentedElements
	s.UnusedRangeCount += other.UnusedRangeCount

	if other.FragmentSizeMin < s.FragmentSizeMin {
		s.FragmentSizeMin = other.FragmentSizeMin
	}

	if other.FragmentSizeMax > s.FragmentSizeMax {
		s.FragmentSizeMax = other.FragmentSizeMax
	}

	if other.ChunkSizeMin < s.ChunkSizeMin {
		s.ChunkSizeMin = other.ChunkSizeMin
	}

	if other.ChunkSizeMax > s.ChunkSizeMax {
		s.ChunkSizeMax = other.ChunkSizeMax
	}
}
