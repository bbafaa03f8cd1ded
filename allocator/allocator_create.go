package allocator

import (
	"io"
	"strings"

	"github.com/vkngwrapper/buddy/internal/utils"
	"github.com/vkngwrapper/buddy/memutils/metadata"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

const (
	// CreateExternallySynchronized ensures that this allocator will not be synchronized internally.
	// The consumer must guarantee it is used from only one goroutine at a time or is synchronized
	// by some other mechanism.
	CreateExternallySynchronized CreateFlags = 1 << iota
	// CreateValidateOperations runs a full consistency check of the buddy tree after every
	// successful Allocate and Free. This is expensive and intended for diagnostics.
	CreateValidateOperations
)

var createFlagsMapping = []struct {
	flag CreateFlags
	str  string
}{
	{CreateExternallySynchronized, "CreateExternallySynchronized"},
	{CreateValidateOperations, "CreateValidateOperations"},
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for _, mapping := range createFlagsMapping {
		if f&mapping.flag != 0 {
			names = append(names, mapping.str)
			f &^= mapping.flag
		}
	}

	if f != 0 {
		names = append(names, "Unknown")
	}

	return strings.Join(names, "|")
}

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// Strategy selects where new allocations are placed. The zero value uses
	// metadata.AllocationStrategyMinOffset.
	Strategy metadata.AllocationStrategy
	// Events is an optional handler that is told about every split, merge, allocation and free
	// performed by the allocator. It is called while the allocator's lock is held, so it must not
	// call back into the allocator.
	Events metadata.EventHandler
}

// New creates a new Allocator managing totalSize bytes, which must be a positive power of two.
//
// logger - Receives debug records for every operation and error records for allocations that
// are still live when the allocator is reset. It may be nil.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, totalSize int, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	strategy := options.Strategy
	if strategy == 0 {
		strategy = metadata.AllocationStrategyMinOffset
	}

	md := metadata.NewBuddyBlockMetadata(options.Events)
	err := md.Init(totalSize)
	if err != nil {
		return nil, err
	}

	return &Allocator{
		logger:      logger,
		mutex:       utils.NewOptionalRWMutex(options.Flags&CreateExternallySynchronized == 0),
		createFlags: options.Flags,
		strategy:    strategy,
		metadata:    md,
	}, nil
}
