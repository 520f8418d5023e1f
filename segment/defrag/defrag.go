package defrag

// Stats contains basic metrics for compaction over time
type Stats struct {
	// Passes is the number of compaction passes that have been run
	Passes int
	// BytesMoved is the total size of segments that were given a new base address
	BytesMoved int
	// SegmentsMoved is the number of segments that were given a new base address
	SegmentsMoved int
	// BytesEvicted is the total size of segments that no longer fit after packing and were cleared
	BytesEvicted int
	// SegmentsEvicted is the number of segments that no longer fit after packing and were cleared
	SegmentsEvicted int
}

func (s *Stats) Add(stats Stats) {
	s.Passes += stats.Passes
	s.BytesMoved += stats.BytesMoved
	s.SegmentsMoved += stats.SegmentsMoved
	s.BytesEvicted += stats.BytesEvicted
	s.SegmentsEvicted += stats.SegmentsEvicted
}

// MoveOperation identifies what a compaction pass did to a single segment
type MoveOperation uint32

const (
	// MoveNone indicates that the segment was already at its packed address, or was not allocated
	MoveNone MoveOperation = iota
	// MoveRelocate indicates that the segment was given a lower base address
	MoveRelocate
	// MoveEvict indicates that the segment no longer fit and was cleared
	MoveEvict
)

var moveOperationMapping = map[MoveOperation]string{
	MoveNone:     "MoveNone",
	MoveRelocate: "MoveRelocate",
	MoveEvict:    "MoveEvict",
}

func (o MoveOperation) String() string {
	return moveOperationMapping[o]
}
