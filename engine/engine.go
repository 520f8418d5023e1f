package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/segsim/segment"
	"github.com/vkngwrapper/segsim/segment/defrag"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// Engine places an ordered set of fixed-size segments into a bounded address space. Each segment
// is placed at a random base address; when the random search for a segment runs out of attempts,
// the address space is compacted and a single reattempt is made for that segment.
//
// Engine is not safe for concurrent use.
type Engine struct {
	logger     *slog.Logger
	memorySize int
	rand       RandSource

	segments []*segment.Segment
	byName   *swiss.Map[string, []int]

	defragPass defrag.PassContext
	status     map[*segment.Segment]PlacementStatus
	attempts   []int
}

var _ segment.Validatable = &Engine{}

// MemorySize returns the size of the address space managed by the engine
func (e *Engine) MemorySize() int {
	return e.memorySize
}

// AddSegment registers a new unplaced segment after all previously registered segments. Names
// do not need to be unique, but duplicates are logged.
func (e *Engine) AddSegment(name string, size int) (*segment.Segment, error) {
	seg, err := segment.New(name, size)
	if err != nil {
		return nil, err
	}

	indices, exists := e.byName.Get(name)
	if exists {
		e.logger.Warn("duplicate segment name", slog.String("Name", name), slog.Int("Count", len(indices)+1))
	}
	if size > e.memorySize {
		e.logger.Warn("segment is larger than memory and can never be placed",
			slog.String("Name", name),
			slog.Int("Size", size),
			slog.Int("MemorySize", e.memorySize))
	}

	e.byName.Put(name, append(indices, len(e.segments)))
	e.segments = append(e.segments, seg)

	return seg, nil
}

// Segments returns the registered segments in registration order. The slice is a copy, but the
// segments are the live objects owned by the engine.
func (e *Engine) Segments() []*segment.Segment {
	return slices.Clone(e.segments)
}

// SegmentsNamed returns every registered segment with the provided name, in registration order
func (e *Engine) SegmentsNamed(name string) []*segment.Segment {
	indices, ok := e.byName.Get(name)
	if !ok {
		return nil
	}

	named := make([]*segment.Segment, 0, len(indices))
	for _, index := range indices {
		named = append(named, e.segments[index])
	}
	return named
}

// Allocate runs one full allocation pass over every registered segment in registration order and
// returns the outcome. Placements left over from a previous call are cleared first, so each call is
// an independent run that draws new random addresses.
func (e *Engine) Allocate() *Result {
	e.logger.Debug("Engine::Allocate",
		slog.Int("MemorySize", e.memorySize),
		slog.Int("SegmentCount", len(e.segments)))

	for _, seg := range e.segments {
		seg.Clear()
	}
	e.status = make(map[*segment.Segment]PlacementStatus, len(e.segments))
	e.attempts = make([]int, len(e.segments))
	e.defragPass.MemorySize = e.memorySize

	result := &Result{MemorySize: e.memorySize}

	for index, seg := range e.segments {
		tentative, placed := e.placeRandomly(index)
		if placed {
			e.status[seg] = PlacementRandom
			continue
		}

		e.logger.Warn("random placement failed, compacting memory",
			slog.String("Name", seg.Name()),
			slog.Int("Size", seg.Size()),
			slog.Int("Attempts", e.attempts[index]))

		e.compact(seg)
		result.Defrag.Add(e.defragPass.Stats)

		if !e.reattempt(index, tentative) {
			e.logger.Warn("cannot allocate segment even after compaction",
				slog.String("Name", seg.Name()),
				slog.Int("Size", seg.Size()))
		}
	}

	e.populateResult(result)
	segment.DebugValidate(e)

	return result
}

// placeRandomly draws base addresses for the segment at index until it no longer overlaps any
// other allocated segment, or until every distinct base address has had a chance to be drawn.
// It returns the last tentative range and whether it was accepted. An unaccepted range is left on
// the segment.
func (e *Engine) placeRandomly(index int) (segment.Range, bool) {
	seg := e.segments[index]
	limit := e.memorySize - seg.Size()
	if limit < 0 {
		return segment.UnsetRange, false
	}

	others := e.snapshotOthers(index)
	for attempt := 0; attempt <= limit; attempt++ {
		seg.Place(e.rand.Intn(limit + 1))
		e.attempts[index]++

		tentative := seg.Range()
		overlapIndex := slices.IndexFunc(others, tentative.Overlaps)
		if overlapIndex < 0 {
			e.logger.Debug("    placed segment",
				slog.String("Name", seg.Name()),
				slog.Int("Base", tentative.Base),
				slog.Int("End", tentative.End),
				slog.Int("Attempts", e.attempts[index]))
			return tentative, true
		}
	}

	return seg.Range(), false
}

// snapshotOthers copies the ranges of every allocated segment other than the one at index
func (e *Engine) snapshotOthers(index int) []segment.Range {
	others := make([]segment.Range, 0, len(e.segments))
	for otherIndex, other := range e.segments {
		if otherIndex == index || !other.Allocated() {
			continue
		}
		others = append(others, other.Range())
	}
	return others
}

func (e *Engine) compact(failing *segment.Segment) {
	e.defragPass.Run(e.segments)

	for _, move := range e.defragPass.Moves() {
		switch {
		case move.Operation == defrag.MoveEvict:
			e.status[move.Segment] = PlacementUnallocated
		case move.Operation == defrag.MoveRelocate, move.Segment == failing:
			e.status[move.Segment] = PlacementCompacted
		}
	}

	e.logger.Debug("    compacted memory",
		slog.Int("SegmentsMoved", e.defragPass.Stats.SegmentsMoved),
		slog.Int("SegmentsEvicted", e.defragPass.Stats.SegmentsEvicted),
		slog.Int("Cursor", e.defragPass.Cursor()))
}

// reattempt looks for a different unallocated segment at least as large as the failing one and,
// if that segment and the failing segment's last tentative range both lie within memory, moves the
// tentative range onto that segment. It returns true if that happened or if compaction already left
// the failing segment allocated.
//
// The range is given to the other segment, not the failing one. A segment that is unallocated holds
// Unset addresses and so is never within memory, which means the transfer does not happen for any
// layout the engine itself produces. The within-memory test on the other segment is required: without
// it an unallocated segment would adopt a range that overlaps allocated segments.
func (e *Engine) reattempt(index int, tentative segment.Range) bool {
	failing := e.segments[index]

	for otherIndex, other := range e.segments {
		if otherIndex == index || other.Allocated() || other.Size() < failing.Size() {
			continue
		}

		if other.Within(e.memorySize) && tentative.Within(e.memorySize) {
			other.Assign(tentative)
			e.status[other] = PlacementAdopted

			e.logger.Debug("    transferred tentative range",
				slog.String("From", failing.Name()),
				slog.String("To", other.Name()),
				slog.String("Range", tentative.String()))
			return true
		}
	}

	return failing.Allocated()
}

func (e *Engine) populateResult(result *Result) {
	result.Placements = make([]Placement, 0, len(e.segments))

	for index, seg := range e.segments {
		status := e.status[seg]
		if !seg.Allocated() {
			status = PlacementUnallocated

			reason := FailureExhausted
			if seg.Size() > e.memorySize {
				reason = FailureUnsatisfiable
			}
			result.Failures = append(result.Failures, &AllocationError{
				Name:   seg.Name(),
				Size:   seg.Size(),
				Reason: reason,
			})
		}

		result.Placements = append(result.Placements, Placement{
			Name:     seg.Name(),
			Size:     seg.Size(),
			Range:    seg.Range(),
			Attempts: e.attempts[index],
			Status:   status,
		})
	}

	result.Statistics.Clear()
	e.AddDetailedStatistics(&result.Statistics)
}

// AddDetailedStatistics sums the engine's current layout into stats. Every gap between allocated
// segments in [0, MemorySize] counts as one unused range.
func (e *Engine) AddDetailedStatistics(stats *segment.DetailedStatistics) {
	stats.SegmentCount += len(e.segments)
	stats.MemoryBytes += e.memorySize

	var ranges []segment.Range
	for _, seg := range e.segments {
		if seg.Allocated() {
			ranges = append(ranges, seg.Range())
			stats.AddAllocation(seg.Size())
		}
	}

	slices.SortFunc(ranges, func(left, right segment.Range) bool {
		return left.Base < right.Base
	})

	cursor := 0
	for _, r := range ranges {
		if r.Base > cursor {
			stats.AddUnusedRange(r.Base - cursor)
		}
		if r.End > cursor {
			cursor = r.End
		}
	}

	if cursor < e.memorySize {
		stats.AddUnusedRange(e.memorySize - cursor)
	}
}

// Validate performs consistency checks on the current layout: every allocated segment must lie
// within memory with end - base equal to its size, and no two allocated segments may overlap.
func (e *Engine) Validate() error {
	for index, seg := range e.segments {
		if !seg.Allocated() {
			if seg.Base() != segment.Unset || seg.End() != segment.Unset {
				return errors.Newf("segment %d (%s) is unallocated but has a partial range %s", index, seg.Name(), seg.Range())
			}
			continue
		}

		if !seg.Within(e.memorySize) {
			return errors.Newf("segment %d (%s) has range %s outside of memory of size %d", index, seg.Name(), seg.Range(), e.memorySize)
		}

		if seg.End()-seg.Base() != seg.Size() {
			return errors.Newf("segment %d (%s) has range %s, which does not match its size %d", index, seg.Name(), seg.Range(), seg.Size())
		}

		for otherIndex := index + 1; otherIndex < len(e.segments); otherIndex++ {
			other := e.segments[otherIndex]
			if other.Allocated() && seg.Overlaps(other) {
				return errors.Newf("segment %d (%s) at %s overlaps segment %d (%s) at %s",
					index, seg.Name(), seg.Range(), otherIndex, other.Name(), other.Range())
			}
		}
	}

	return nil
}
