package report

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/segsim/engine"
	"github.com/vkngwrapper/segsim/segment"
	"github.com/vkngwrapper/segsim/segment/defrag"
)

// WriteJSON writes the result of an allocation run as a single json object. Unallocated segments
// have null Base and End.
func WriteJSON(writer *jwriter.Writer, result *engine.Result) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("MemorySize").Int(result.MemorySize)

	stats := obj.Name("Statistics").Object()
	writeStatistics(stats, &result.Statistics)
	stats.End()

	compaction := obj.Name("Compaction").Object()
	writeDefragStats(compaction, result.Defrag)
	compaction.End()

	segments := obj.Name("Segments").Array()
	for _, placement := range result.Placements {
		segObj := segments.Object()
		writePlacement(segObj, placement)
		segObj.End()
	}
	segments.End()

	failures := obj.Name("Failures").Array()
	for _, failure := range result.Failures {
		failures.String(failure.Error())
	}
	failures.End()
}

// JSON renders the result with WriteJSON and returns the encoded bytes
func JSON(result *engine.Result) ([]byte, error) {
	writer := jwriter.NewWriter()
	WriteJSON(&writer, result)

	if err := writer.Error(); err != nil {
		return nil, err
	}
	return writer.Bytes(), nil
}

func writeStatistics(json jwriter.ObjectState, stats *segment.DetailedStatistics) {
	json.Name("Segments").Int(stats.SegmentCount)
	json.Name("Allocations").Int(stats.AllocationCount)
	json.Name("TotalBytes").Int(stats.MemoryBytes)
	json.Name("AllocatedBytes").Int(stats.AllocationBytes)
	json.Name("UnusedBytes").Int(stats.MemoryBytes - stats.AllocationBytes)
	json.Name("UnusedRanges").Int(stats.UnusedRangeCount)

	if stats.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
	if stats.UnusedRangeCount > 0 {
		json.Name("UnusedRangeSizeMin").Int(stats.UnusedRangeSizeMin)
		json.Name("UnusedRangeSizeMax").Int(stats.UnusedRangeSizeMax)
	}
}

func writeDefragStats(json jwriter.ObjectState, stats defrag.Stats) {
	json.Name("Passes").Int(stats.Passes)
	json.Name("SegmentsMoved").Int(stats.SegmentsMoved)
	json.Name("BytesMoved").Int(stats.BytesMoved)
	json.Name("SegmentsEvicted").Int(stats.SegmentsEvicted)
	json.Name("BytesEvicted").Int(stats.BytesEvicted)
}

func writePlacement(json jwriter.ObjectState, placement engine.Placement) {
	json.Name("Name").String(placement.Name)
	json.Name("Size").Int(placement.Size)

	if placement.Allocated() {
		json.Name("Base").Int(placement.Range.Base)
		json.Name("End").Int(placement.Range.End)
	} else {
		json.Name("Base").Null()
		json.Name("End").Null()
	}

	json.Name("Status").String(placement.Status.String())
	json.Name("Attempts").Int(placement.Attempts)
}
