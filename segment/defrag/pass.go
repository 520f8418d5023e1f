package defrag

import (
	"github.com/vkngwrapper/segsim/segment"
	"golang.org/x/exp/slices"
)

// Move records the effect of a compaction pass on one segment
type Move struct {
	Segment   *segment.Segment
	Src       segment.Range
	Dst       segment.Range
	Operation MoveOperation
}

// PassContext tracks a single compaction pass. A zero PassContext is ready to use.
type PassContext struct {
	// MemorySize is the size of the address space that segments are packed into
	MemorySize int
	// Stats contains statistics for the most recent pass
	Stats Stats

	moves  []Move
	cursor int
}

// Compact pushes every allocated segment to the left of the address space, in slice order, starting
// at address 0. A segment that no longer fits behind the previous one is cleared. Unallocated segments
// are skipped. The pass never reorders or splits segments, and running it on an already packed layout
// changes nothing.
func Compact(memorySize int, segments []*segment.Segment) Stats {
	pass := PassContext{MemorySize: memorySize}
	pass.Run(segments)
	return pass.Stats
}

// Run performs the pass over segments and records one Move per allocated segment
func (p *PassContext) Run(segments []*segment.Segment) {
	p.moves = p.moves[:0]
	p.cursor = 0
	p.Stats = Stats{Passes: 1}

	for _, seg := range segments {
		if !seg.Allocated() {
			continue
		}

		src := seg.Range()
		if seg.Size() > p.MemorySize-p.cursor {
			seg.Clear()
			p.record(seg, src, segment.UnsetRange, MoveEvict)
			continue
		}

		seg.Place(p.cursor)
		p.cursor += seg.Size()

		dst := seg.Range()
		if dst == src {
			p.record(seg, src, dst, MoveNone)
		} else {
			p.record(seg, src, dst, MoveRelocate)
		}
	}
}

func (p *PassContext) record(seg *segment.Segment, src, dst segment.Range, op MoveOperation) {
	switch op {
	case MoveRelocate:
		p.Stats.BytesMoved += seg.Size()
		p.Stats.SegmentsMoved++
	case MoveEvict:
		p.Stats.BytesEvicted += seg.Size()
		p.Stats.SegmentsEvicted++
	}

	p.moves = append(p.moves, Move{
		Segment:   seg,
		Src:       src,
		Dst:       dst,
		Operation: op,
	})
}

// Moves returns a copy of the moves recorded by the most recent Run
func (p *PassContext) Moves() []Move {
	return slices.Clone(p.moves)
}

// Cursor returns the first free address behind the packed segments after the most recent Run
func (p *PassContext) Cursor() int {
	return p.cursor
}
