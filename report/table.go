package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/vkngwrapper/segsim/engine"
)

// Unallocated is printed in place of addresses for segments without a placement
const Unallocated = "Unallocated"

// WriteTable prints one row per placement, in registration order
func WriteTable(w io.Writer, placements []engine.Placement) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "Segment\tSize\tBase\tEnd\tStatus")
	for _, placement := range placements {
		base, end := Unallocated, Unallocated
		if placement.Allocated() {
			base = strconv.Itoa(placement.Range.Base)
			end = strconv.Itoa(placement.Range.End)
		}

		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", placement.Name, placement.Size, base, end, placement.Status)
	}

	return tw.Flush()
}

// WriteSummary prints the totals of a run followed by every failure
func WriteSummary(w io.Writer, result *engine.Result) error {
	stats := result.Statistics

	_, err := fmt.Fprintf(w, "Allocated %d of %d segments, %d of %d addresses in use (%.1f%%), %d free ranges, %d compaction passes\n",
		stats.AllocationCount, stats.SegmentCount,
		stats.AllocationBytes, stats.MemoryBytes, stats.Utilization()*100,
		stats.UnusedRangeCount, result.Defrag.Passes)
	if err != nil {
		return err
	}

	if unallocated := stats.UnallocatedCount(); unallocated > 0 {
		if _, err := fmt.Fprintf(w, "Unallocated: %d\n", unallocated); err != nil {
			return err
		}
	}

	for _, failure := range result.Failures {
		if _, err := fmt.Fprintf(w, "Error: %v\n", failure); err != nil {
			return err
		}
	}

	return nil
}
