package report

import (
	"fmt"
	"io"
	"math/bits"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/segsim/engine"
)

// DefaultChartWidth is the number of columns used for the address axis when none is requested
const DefaultChartWidth = 60

// WriteChart draws one horizontal bar per allocated segment along an axis running from 0 to
// memorySize, in registration order. Each column of the axis covers memorySize/width addresses;
// a segment gets at least one column.
func WriteChart(w io.Writer, memorySize int, placements []engine.Placement, width int) error {
	if memorySize <= 0 {
		return errors.Newf("cannot chart memory of size %d", memorySize)
	}
	if width <= 0 {
		width = DefaultChartWidth
	}

	labelWidth := 0
	for _, placement := range placements {
		if placement.Allocated() && len(placement.Name) > labelWidth {
			labelWidth = len(placement.Name)
		}
	}

	for _, placement := range placements {
		if !placement.Allocated() {
			continue
		}

		start := column(placement.Range.Base, memorySize, width)
		end := column(placement.Range.End, memorySize, width)
		if end <= start {
			end = start + 1
		}
		if end > width {
			start, end = width-1, width
		}

		bar := strings.Repeat(" ", start) + strings.Repeat("#", end-start) + strings.Repeat(" ", width-end)
		_, err := fmt.Fprintf(w, "%-*s |%s| [%d, %d)\n", labelWidth, placement.Name, bar, placement.Range.Base, placement.Range.End)
		if err != nil {
			return err
		}
	}

	axis := fmt.Sprintf("%d", memorySize)
	padding := width + 2 - len(axis) - 1
	if padding < 1 {
		padding = 1
	}
	_, err := fmt.Fprintf(w, "%-*s 0%s%s\n", labelWidth, "", strings.Repeat(" ", padding), axis)
	return err
}

// column maps an address in [0, memorySize] to a column in [0, width]. The product is taken in 128
// bits so that large address spaces do not overflow.
func column(address, memorySize, width int) int {
	if address <= 0 {
		return 0
	}
	if address >= memorySize {
		return width
	}

	hi, lo := bits.Mul64(uint64(address), uint64(width))
	quo, _ := bits.Div64(hi, lo, uint64(memorySize))
	return int(quo)
}
