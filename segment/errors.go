package segment

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidName is returned when a segment is registered with an empty name
	ErrInvalidName = errors.New("segment name must not be empty")
	// ErrInvalidSize is returned when a segment is registered with a size that is not positive
	ErrInvalidSize = errors.New("segment size must be positive")
	// ErrInvalidMemorySize is returned when an address space is created with a size that is not positive
	ErrInvalidMemorySize = errors.New("memory size must be positive")
	// ErrUnallocated marks a segment that ended an allocation run without a placement
	ErrUnallocated = errors.New("segment could not be allocated")
)

// CheckMemorySize returns ErrInvalidMemorySize, wrapped with the offending value, if
// memorySize is not positive.
func CheckMemorySize(memorySize int) error {
	if memorySize <= 0 {
		return errors.Wrapf(ErrInvalidMemorySize, "memory size is %d", memorySize)
	}
	return nil
}
