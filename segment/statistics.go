package segment

import "math"

type Statistics struct {
	SegmentCount    int
	AllocationCount int
	MemoryBytes     int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.SegmentCount = 0
	s.AllocationCount = 0
	s.MemoryBytes = 0
	s.AllocationBytes = 0
}

// UnallocatedCount is the number of registered segments without a placement
func (s *Statistics) UnallocatedCount() int {
	return s.SegmentCount - s.AllocationCount
}

// Utilization is the fraction of the address space covered by allocated segments
func (s *Statistics) Utilization() float64 {
	if s.MemoryBytes == 0 {
		return 0
	}
	return float64(s.AllocationBytes) / float64(s.MemoryBytes)
}

type DetailedStatistics struct {
	Statistics
	UnusedRangeCount   int
	AllocationSizeMin  int
	AllocationSizeMax  int
	UnusedRangeSizeMin int
	UnusedRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.UnusedRangeCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.UnusedRangeSizeMin = math.MaxInt
	s.UnusedRangeSizeMax = 0
}

func (s *DetailedStatistics) AddUnusedRange(size int) {
	s.UnusedRangeCount++

	if size < s.UnusedRangeSizeMin {
		s.UnusedRangeSizeMin = size
	}

	if size > s.UnusedRangeSizeMax {
		s.UnusedRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}
