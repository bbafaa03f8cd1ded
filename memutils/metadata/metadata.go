package metadata

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/buddy/memutils"
)

// BlockMetadata represents a single fixed-size region of address space. It manages allocations
// within the region, allowing allocations to be requested and freed, as well as enumerated and
// queried. No bytes are ever touched: the implementation only tracks which offsets belong to which
// allocation.
type BlockMetadata interface {
	// Init must be called before the BlockMetadata is used. It gives the implementation an opportunity
	// to ensure that metadata structures are prepared for allocations, as well as allows the consumer
	// to inform the implementation of the size in bytes of the region it will be managing,
	// via the size parameter. Implementations may refuse sizes they cannot represent.
	Init(size int) error
	// Size retrieves the size in bytes that the region was initialized with
	Size() int

	// Validate performs internal consistency checks on the metadata. These checks may be expensive, depending
	// on the implementation. When the implementation is functioning correctly, it should not be possible
	// for this method to return an error, but this may assist in diagnosing issues with the implementation.
	Validate() error
	// AllocationCount returns the number of allocations currently live in the implementation. This number
	// should generally be the number of successful allocations minus the number of successful frees.
	AllocationCount() int
	// FreeRegionsCount returns the number of unique regions of free memory in the region.
	FreeRegionsCount() int
	// SumFreeSize returns the number of free bytes in the region.
	SumFreeSize() int
	// MayHaveFreeBlock should return a heuristic indicating whether the region could possibly support a new
	// allocation of the provided size. The most important requirement for the implementation
	// is that this method be fast and not produce false negatives. False positives are ok.
	MayHaveFreeBlock(size int) bool

	// IsEmpty will return true if this region has no live allocations
	IsEmpty() bool

	// VisitAllRegions will call the provided callback once for each allocation and free region in
	// address order. Iteration stops at the first error returned by the callback, and that error is
	// returned.
	VisitAllRegions(handleBlock func(offset int, size int, userData any, free bool) error) error

	// AllocationSize accepts the offset of a live allocation and returns the number of bytes the
	// allocation actually holds, which may be larger than the number of bytes requested.
	AllocationSize(offset int) (int, error)
	// AllocationUserData accepts the offset of a live allocation and returns the userdata value provided
	// by the consumer for that allocation.
	AllocationUserData(offset int) (any, error)
	// SetAllocationUserData accepts the offset of a live allocation and a userData value. The allocation's
	// userData is changed to the provided userData.
	SetAllocationUserData(offset int, userData any) error

	// AddDetailedStatistics sums this region's allocation statistics into the statistics currently present
	// in the provided memutils.DetailedStatistics object.
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	// AddStatistics sums this region's allocation statistics into the statistics currently present in the
	// provided memutils.Statistics object.
	AddStatistics(stats *memutils.Statistics)

	// Clear instantly frees all allocations and returns the region to its initial state
	Clear()
	// BlockJsonData populates a json object with information about this region
	BlockJsonData(json *jwriter.ObjectState)

	// Allocate reserves space for requestedSize bytes and returns the offset of the new allocation.
	// The strategy chooses between candidate locations when more than one could serve the request.
	Allocate(requestedSize int, strategy AllocationStrategy, userData any) (int, error)
	// Free releases the allocation that starts at offset.
	Free(offset int) error
}

// BlockMetadataBase is a simple struct that provides a few shared utilities for BlockMetadata
// implementations in the memutils module.
type BlockMetadataBase struct {
	size   int
	events EventHandler
}

// NewBlockMetadata creates a new BlockMetadataBase that reports structural changes to the provided
// EventHandler. A nil handler is replaced with NoopEventHandler.
func NewBlockMetadata(events EventHandler) BlockMetadataBase {
	if events == nil {
		events = NoopEventHandler{}
	}

	return BlockMetadataBase{
		size:   0,
		events: events,
	}
}

// Init sizes the region in bytes based on the parameter size.
func (m *BlockMetadataBase) Init(size int) {
	m.size = size
}

// Size returns the size of the region in bytes
func (m *BlockMetadataBase) Size() int { return m.size }

// BlockJsonData populates a json object with information about this region
func (m *BlockMetadataBase) BlockJsonData(json *jwriter.ObjectState, unusedBytes, allocationCount, unusedRangeCount int) {
	json.Name("TotalBytes").Int(m.Size())
	json.Name("UnusedBytes").Int(unusedBytes)
	json.Name("Allocations").Int(allocationCount)
	json.Name("UnusedRanges").Int(unusedRangeCount)
}
