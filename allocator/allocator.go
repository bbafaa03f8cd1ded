package allocator

import (
	"context"
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/buddy/internal/utils"
	"github.com/vkngwrapper/buddy/memutils"
	"github.com/vkngwrapper/buddy/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Allocator hands out power-of-two blocks from a single fixed-size address range. Unless it was
// created with CreateExternallySynchronized, every method is safe for concurrent use: each
// Allocate and Free runs as one critical section covering the split, the registry update, and
// any coalescing.
type Allocator struct {
	logger      *slog.Logger
	mutex       *utils.OptionalRWMutex
	createFlags CreateFlags
	strategy    metadata.AllocationStrategy

	metadata *metadata.BuddyBlockMetadata
}

// Size returns the number of bytes managed by the allocator
func (a *Allocator) Size() int {
	return a.metadata.Size()
}

// Strategy returns the placement strategy used for new allocations
func (a *Allocator) Strategy() metadata.AllocationStrategy {
	return a.strategy
}

// Flags returns the flags the allocator was created with
func (a *Allocator) Flags() CreateFlags {
	return a.createFlags
}

// Allocate reserves at least size bytes and returns the address of the reservation. The reservation
// is rounded up to the next power of two.
func (a *Allocator) Allocate(size int) (int, error) {
	return a.AllocateWithUserData(size, nil)
}

// AllocateWithUserData behaves like Allocate, and attaches userData to the new allocation. The
// value can be retrieved later with AllocationUserData and is included in diagnostic output.
func (a *Allocator) AllocateWithUserData(size int, userData any) (int, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	offset, err := a.metadata.Allocate(size, a.strategy, userData)
	if err != nil {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Allocate failed",
			slog.Int("RequestedSize", size),
			slog.String("Strategy", a.strategy.String()),
			slog.Any("error", err),
		)
		return 0, err
	}

	blockSize, err := a.metadata.AllocationSize(offset)
	if err != nil {
		panic(errors.Wrap(err, "allocation vanished from the registry"))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Allocate",
		slog.Int("Offset", offset),
		slog.Int("Size", blockSize),
		slog.Int("RequestedSize", size),
	)

	err = a.validateOperation()
	if err != nil {
		return 0, err
	}

	return offset, nil
}

// Free releases the allocation that starts at address. Freeing an address that is not the start
// of a live allocation returns an error wrapping NotAllocatedError and changes nothing.
func (a *Allocator) Free(address int) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	size, err := a.metadata.AllocationSize(address)
	if err == nil {
		err = a.metadata.Free(address)
	}
	if err != nil {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Free failed",
			slog.Int("Offset", address),
			slog.Any("error", err),
		)
		return err
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Free",
		slog.Int("Offset", address),
		slog.Int("Size", size),
		slog.Int("FreeRegions", a.metadata.FreeRegionsCount()),
	)

	return a.validateOperation()
}

func (a *Allocator) validateOperation() error {
	if a.createFlags&CreateValidateOperations == 0 {
		return nil
	}

	err := a.metadata.Validate()
	if err != nil {
		a.logger.LogAttrs(context.Background(), slog.LevelError, "buddy tree failed validation", slog.Any("error", err))
		return errors.Wrap(err, "buddy tree failed validation")
	}

	return nil
}

// AllocationSize returns the number of bytes actually reserved for the allocation at address
func (a *Allocator) AllocationSize(address int) (int, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.metadata.AllocationSize(address)
}

// AllocationUserData returns the value attached to the allocation at address
func (a *Allocator) AllocationUserData(address int) (any, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.metadata.AllocationUserData(address)
}

// SetAllocationUserData replaces the value attached to the allocation at address
func (a *Allocator) SetAllocationUserData(address int, userData any) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.SetAllocationUserData(address, userData)
}

// ListAllocations returns every live allocation, ordered by address
func (a *Allocator) ListAllocations() []metadata.Region {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.metadata.ListAllocations()
}

// Tree returns a pre-order traversal of every block in the buddy tree: each block is followed by
// its left subtree and then its right subtree. The traversal is lazy and each call starts a new
// one. The read lock is held until the loop over the sequence ends, so the loop body must not
// call Allocate, Free, or Reset.
func (a *Allocator) Tree() iter.Seq[metadata.Region] {
	return func(yield func(metadata.Region) bool) {
		a.mutex.RLock()
		defer a.mutex.RUnlock()

		for region := range a.metadata.Tree() {
			if !yield(region) {
				return
			}
		}
	}
}

// Statistics returns usage and fragmentation figures for the allocator
func (a *Allocator) Statistics() memutils.DetailedStatistics {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	var stats memutils.DetailedStatistics
	stats.Clear()
	a.metadata.AddDetailedStatistics(&stats)

	return stats
}

// LargestFreeRegion returns the largest request that would currently succeed, in bytes
func (a *Allocator) LargestFreeRegion() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.metadata.LargestFreeRegion()
}

// IsEmpty returns true if no allocations are live
func (a *Allocator) IsEmpty() bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.metadata.IsEmpty()
}

// Validate checks the internal consistency of the buddy tree. It should never fail.
func (a *Allocator) Validate() error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.metadata.Validate()
}

// Reset frees every allocation at once. Allocations that were still live are logged at error
// level first, and their count is returned.
func (a *Allocator) Reset() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	count := a.metadata.AllocationCount()
	if count > 0 {
		a.metadata.DebugLogAllAllocations(a.logger, logUnreleasedMemory)
	}

	a.metadata.Clear()
	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Reset", slog.Int("DroppedAllocations", count))

	return count
}

func logUnreleasedMemory(logger *slog.Logger, offset, size int, userData any) {
	logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation",
		slog.Int("offset", offset),
		slog.Int("size", size),
		slog.Any("userData", userData),
	)
}
