package engine

import (
	"math/rand"
	"time"

	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/segsim/segment"
	"golang.org/x/exp/slog"
)

//go:generate mockgen -source engine_create.go -destination ./mocks/rand_source.go -package mock_engine

// RandSource supplies the random base addresses drawn during the randomized placement pass.
// *rand.Rand satisfies this interface.
type RandSource interface {
	// Intn returns a uniformly distributed integer in [0, n). n is always positive.
	Intn(n int) int
}

// CreateOptions contains optional settings when creating an Engine
type CreateOptions struct {
	// Seed seeds the engine's private random generator. When Seed is 0, the generator is seeded from
	// the clock. Ignored when RandSource is set.
	Seed int64
	// RandSource replaces the engine's private random generator. Tests use it to script the exact
	// sequence of draws.
	RandSource RandSource
}

// New creates an Engine managing an address space of memorySize addresses. Segments are registered
// afterward with AddSegment. If logger is nil, slog.Default() is used.
func New(logger *slog.Logger, memorySize int, options CreateOptions) (*Engine, error) {
	err := segment.CheckMemorySize(memorySize)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	source := options.RandSource
	if source == nil {
		seed := options.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		source = rand.New(rand.NewSource(seed))
	}

	logger.Debug("Engine::New", slog.Int("MemorySize", memorySize), slog.Int64("Seed", options.Seed))

	return &Engine{
		logger:     logger,
		memorySize: memorySize,
		rand:       source,
		byName:     swiss.NewMap[string, []int](16),
	}, nil
}
