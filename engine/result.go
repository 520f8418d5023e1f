package engine

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/segsim/segment"
	"github.com/vkngwrapper/segsim/segment/defrag"
)

// PlacementStatus describes how a segment arrived at its final state in an allocation run
type PlacementStatus uint32

const (
	// PlacementUnallocated indicates that the segment has no placement
	PlacementUnallocated PlacementStatus = iota
	// PlacementRandom indicates that the segment kept the address it drew in the randomized pass
	PlacementRandom
	// PlacementCompacted indicates that the segment's address was assigned by a compaction pass
	PlacementCompacted
	// PlacementAdopted indicates that the segment took over the tentative range of another segment
	// during a post-compaction reattempt
	PlacementAdopted
)

var placementStatusMapping = map[PlacementStatus]string{
	PlacementUnallocated: "Unallocated",
	PlacementRandom:      "Random",
	PlacementCompacted:   "Compacted",
	PlacementAdopted:     "Adopted",
}

func (s PlacementStatus) String() string {
	return placementStatusMapping[s]
}

// FailureReason identifies why a segment ended a run without a placement
type FailureReason uint32

const (
	// FailureUnsatisfiable indicates that the segment is larger than the address space
	FailureUnsatisfiable FailureReason = iota
	// FailureExhausted indicates that the randomized pass ran out of attempts and neither compaction
	// nor the reattempt that follows it found room for the segment
	FailureExhausted
)

var failureReasonMapping = map[FailureReason]string{
	FailureUnsatisfiable: "segment is larger than memory",
	FailureExhausted:     "no room even after compaction",
}

func (r FailureReason) String() string {
	return failureReasonMapping[r]
}

// AllocationError reports a segment that is unallocated at the end of a run. It unwraps to
// segment.ErrUnallocated.
type AllocationError struct {
	Name   string
	Size   int
	Reason FailureReason
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("cannot allocate segment '%s' (size %d): %s", e.Name, e.Size, e.Reason)
}

func (e *AllocationError) Unwrap() error {
	return segment.ErrUnallocated
}

// Placement is the per-segment outcome of an allocation run
type Placement struct {
	Name  string
	Size  int
	Range segment.Range
	// Attempts is the number of random draws made for this segment
	Attempts int
	Status   PlacementStatus
}

// Allocated returns true if the segment ended the run with a resolved range
func (p Placement) Allocated() bool {
	return p.Range.IsSet()
}

// Result is returned by Engine.Allocate. It is a snapshot; later calls to Allocate do not change it.
type Result struct {
	MemorySize int
	// Placements holds one entry per registered segment, in registration order
	Placements []Placement
	// Failures holds one *AllocationError per unallocated segment, in registration order
	Failures []error
	// Defrag accumulates the statistics of every compaction pass run during the allocation
	Defrag     defrag.Stats
	Statistics segment.DetailedStatistics
}

// Err combines every failure in the result into a single error, or returns nil if every segment
// was allocated.
func (r *Result) Err() error {
	var err error
	for _, failure := range r.Failures {
		err = errors.CombineErrors(err, failure)
	}
	return err
}

// Allocated returns the placements that resolved to a range
func (r *Result) Allocated() []Placement {
	var allocated []Placement
	for _, placement := range r.Placements {
		if placement.Allocated() {
			allocated = append(allocated, placement)
		}
	}
	return allocated
}
