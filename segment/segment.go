package segment

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	// Unset is the address value held by both Base and End of a segment that has not been placed
	// (or whose placement was cleared).
	Unset int = -1
)

// Range is an immutable [Base, End) address pair. Ranges are used as a snapshot of segment
// placements so that overlap tests never read segments that are being mutated.
type Range struct {
	Base int
	End  int
}

// UnsetRange is the Range of a segment that is not allocated
var UnsetRange = Range{Base: Unset, End: Unset}

// IsSet returns true if neither address of the range holds the Unset sentinel
func (r Range) IsSet() bool {
	return r.Base != Unset && r.End != Unset
}

// Overlaps returns true if the two ranges intersect. The test is evaluated in both directions;
// the two clauses are equivalent.
func (r Range) Overlaps(other Range) bool {
	return (r.Base < other.End && r.End > other.Base) ||
		(other.Base < r.End && other.End > r.Base)
}

// Within returns true if both addresses of the range lie in [0, memorySize]
func (r Range) Within(memorySize int) bool {
	return 0 <= r.Base && r.Base <= memorySize && 0 <= r.End && r.End <= memorySize
}

func (r Range) String() string {
	if !r.IsSet() {
		return "[unset]"
	}
	return fmt.Sprintf("[%d:%d)", r.Base, r.End)
}

// Segment is a named request for a contiguous address range of a fixed size. The size never
// changes after creation, while the placement is assigned and cleared by the allocation engine.
type Segment struct {
	name string
	size int
	base int
	end  int
}

// New creates an unplaced segment. The name must contain at least one non-space character and
// the size must be positive.
func New(name string, size int) (*Segment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Wrapf(ErrInvalidName, "segment name %q", name)
	}
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "segment %q has size %d", name, size)
	}

	return &Segment{
		name: name,
		size: size,
		base: Unset,
		end:  Unset,
	}, nil
}

func (s *Segment) Name() string { return s.name }
func (s *Segment) Size() int    { return s.size }

// Base returns the first address of the segment, or Unset
func (s *Segment) Base() int { return s.base }

// End returns the address one past the last address of the segment, or Unset
func (s *Segment) End() int { return s.end }

// Range returns a copy of the current placement
func (s *Segment) Range() Range {
	return Range{Base: s.base, End: s.end}
}

// Allocated returns true if both base and end have been assigned
func (s *Segment) Allocated() bool {
	return s.Range().IsSet()
}

// Within returns true if the current placement lies inside an address space of memorySize
func (s *Segment) Within(memorySize int) bool {
	return s.Range().Within(memorySize)
}

// Overlaps tests the current placements of two segments against each other. Neither segment
// should be unallocated.
func (s *Segment) Overlaps(other *Segment) bool {
	return s.Range().Overlaps(other.Range())
}

// Place assigns the range [base, base+size) to the segment
func (s *Segment) Place(base int) {
	s.base = base
	s.end = base + s.size
}

// Assign sets both addresses verbatim, without deriving end from the segment's size.
func (s *Segment) Assign(r Range) {
	s.base = r.Base
	s.end = r.End
}

// Clear returns the segment to the unallocated state
func (s *Segment) Clear() {
	s.base = Unset
	s.end = Unset
}

func (s *Segment) String() string {
	return fmt.Sprintf("%s(%d)%s", s.name, s.size, s.Range())
}
