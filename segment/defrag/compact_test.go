package defrag_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/segsim/segment"
	"github.com/vkngwrapper/segsim/segment/defrag"
)

type Seg struct {
	Name string
	Size int
	// Base is the starting placement; segment.Unset leaves the segment unallocated
	Base int
}

func buildSegments(t *testing.T, segs []Seg) []*segment.Segment {
	built := make([]*segment.Segment, 0, len(segs))
	for _, s := range segs {
		seg, err := segment.New(s.Name, s.Size)
		require.NoError(t, err)
		if s.Base != segment.Unset {
			seg.Place(s.Base)
		}
		built = append(built, seg)
	}
	return built
}

func ranges(segments []*segment.Segment) []segment.Range {
	result := make([]segment.Range, 0, len(segments))
	for _, seg := range segments {
		result = append(result, seg.Range())
	}
	return result
}

var testCases = map[string]struct {
	MemorySize int
	Segments   []Seg
	Expected   []segment.Range
	Stats      defrag.Stats
}{
	"PacksInInsertionOrder": {
		MemorySize: 100,
		Segments: []Seg{
			{"A", 20, 60},
			{"B", 30, 10},
			{"C", 10, 90},
		},
		Expected: []segment.Range{
			{Base: 0, End: 20},
			{Base: 20, End: 50},
			{Base: 50, End: 60},
		},
		Stats: defrag.Stats{Passes: 1, BytesMoved: 60, SegmentsMoved: 3},
	},
	"AlreadyPacked": {
		MemorySize: 100,
		Segments: []Seg{
			{"A", 20, 0},
			{"B", 30, 20},
		},
		Expected: []segment.Range{
			{Base: 0, End: 20},
			{Base: 20, End: 50},
		},
		Stats: defrag.Stats{Passes: 1},
	},
	"EvictsOverflow": {
		MemorySize: 100,
		Segments: []Seg{
			{"A", 40, 50},
			{"B", 30, 0},
			{"C", 40, 10},
		},
		Expected: []segment.Range{
			{Base: 0, End: 40},
			{Base: 40, End: 70},
			segment.UnsetRange,
		},
		Stats: defrag.Stats{Passes: 1, BytesMoved: 70, SegmentsMoved: 2, BytesEvicted: 40, SegmentsEvicted: 1},
	},
	"EvictionDoesNotStopPacking": {
		MemorySize: 50,
		Segments: []Seg{
			{"A", 30, 20},
			{"B", 30, 0},
			{"C", 20, 10},
		},
		Expected: []segment.Range{
			{Base: 0, End: 30},
			segment.UnsetRange,
			{Base: 30, End: 50},
		},
		Stats: defrag.Stats{Passes: 1, BytesMoved: 50, SegmentsMoved: 2, BytesEvicted: 30, SegmentsEvicted: 1},
	},
	"SkipsUnallocated": {
		MemorySize: 100,
		Segments: []Seg{
			{"A", 20, segment.Unset},
			{"B", 30, 70},
			{"C", 200, segment.Unset},
		},
		Expected: []segment.Range{
			segment.UnsetRange,
			{Base: 0, End: 30},
			segment.UnsetRange,
		},
		Stats: defrag.Stats{Passes: 1, BytesMoved: 30, SegmentsMoved: 1},
	},
	"Empty": {
		MemorySize: 10,
		Stats:      defrag.Stats{Passes: 1},
	},
	"HugeMemoryEvictsWithoutOverflow": {
		MemorySize: math.MaxInt,
		Segments: []Seg{
			{"A", math.MaxInt - 100, 50},
			{"B", math.MaxInt - 100, 0},
		},
		Expected: []segment.Range{
			{Base: 0, End: math.MaxInt - 100},
			segment.UnsetRange,
		},
		Stats: defrag.Stats{
			Passes:          1,
			BytesMoved:      math.MaxInt - 100,
			SegmentsMoved:   1,
			BytesEvicted:    math.MaxInt - 100,
			SegmentsEvicted: 1,
		},
	},
}

func TestCompact(t *testing.T) {
	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			segments := buildSegments(t, testCase.Segments)

			stats := defrag.Compact(testCase.MemorySize, segments)
			require.Equal(t, testCase.Stats, stats)
			if testCase.Expected == nil {
				require.Empty(t, segments)
			} else {
				require.Equal(t, testCase.Expected, ranges(segments))
			}
		})
	}
}

func TestCompactIsIdempotent(t *testing.T) {
	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			segments := buildSegments(t, testCase.Segments)

			defrag.Compact(testCase.MemorySize, segments)
			first := ranges(segments)

			stats := defrag.Compact(testCase.MemorySize, segments)
			require.Equal(t, first, ranges(segments))
			require.Equal(t, defrag.Stats{Passes: 1}, stats)
		})
	}
}

func TestCompactPreservesOrderWithoutGaps(t *testing.T) {
	segments := buildSegments(t, []Seg{
		{"A", 5, 80},
		{"B", 15, 50},
		{"C", 10, 20},
		{"D", 25, 0},
	})

	defrag.Compact(100, segments)

	cursor := 0
	for _, seg := range segments {
		require.Equal(t, cursor, seg.Base())
		require.Equal(t, seg.Base()+seg.Size(), seg.End())
		cursor = seg.End()
	}
	require.Equal(t, 55, cursor)
}

func TestPassContextMoves(t *testing.T) {
	segments := buildSegments(t, []Seg{
		{"A", 40, 0},
		{"B", 30, 60},
		{"C", 40, 20},
		{"D", 10, segment.Unset},
	})

	pass := defrag.PassContext{MemorySize: 100}
	pass.Run(segments)

	moves := pass.Moves()
	require.Len(t, moves, 3)

	require.Equal(t, defrag.Move{
		Segment:   segments[0],
		Src:       segment.Range{Base: 0, End: 40},
		Dst:       segment.Range{Base: 0, End: 40},
		Operation: defrag.MoveNone,
	}, moves[0])
	require.Equal(t, defrag.Move{
		Segment:   segments[1],
		Src:       segment.Range{Base: 60, End: 90},
		Dst:       segment.Range{Base: 40, End: 70},
		Operation: defrag.MoveRelocate,
	}, moves[1])
	require.Equal(t, defrag.Move{
		Segment:   segments[2],
		Src:       segment.Range{Base: 20, End: 60},
		Dst:       segment.UnsetRange,
		Operation: defrag.MoveEvict,
	}, moves[2])

	require.Equal(t, 70, pass.Cursor())
	require.Equal(t, defrag.Stats{
		Passes:          1,
		BytesMoved:      30,
		SegmentsMoved:   1,
		BytesEvicted:    40,
		SegmentsEvicted: 1,
	}, pass.Stats)
	require.Equal(t, "MoveEvict", defrag.MoveEvict.String())
}

func TestPassContextMovesSurviveNextRun(t *testing.T) {
	segments := buildSegments(t, []Seg{
		{"A", 10, 30},
		{"B", 10, 60},
	})

	pass := defrag.PassContext{MemorySize: 100}
	pass.Run(segments)
	moves := pass.Moves()

	pass.Run(segments[1:])
	require.Len(t, pass.Moves(), 1)

	require.Len(t, moves, 2)
	require.Equal(t, segments[0], moves[0].Segment)
	require.Equal(t, defrag.MoveRelocate, moves[0].Operation)
	require.Equal(t, segment.Range{Base: 60, End: 70}, moves[1].Src)
}

func TestStatsAdd(t *testing.T) {
	stats := defrag.Stats{Passes: 1, BytesMoved: 10, SegmentsMoved: 1}
	stats.Add(defrag.Stats{Passes: 1, BytesMoved: 5, SegmentsMoved: 1, BytesEvicted: 7, SegmentsEvicted: 1})

	require.Equal(t, defrag.Stats{
		Passes:          2,
		BytesMoved:      15,
		SegmentsMoved:   2,
		BytesEvicted:    7,
		SegmentsEvicted: 1,
	}, stats)
}
