package metadata

import (
	"fmt"
	"iter"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/buddy/memutils"
	"golang.org/x/exp/slog"
)

type walkEntry struct {
	index int
	depth int
}

// walk visits every live block in pre-order: parent first, then the left subtree, then the right.
// Leaves are therefore visited in address order.
func (m *BuddyBlockMetadata) walk(visit func(index, depth int) bool) {
	if len(m.blocks) == 0 {
		return
	}

	stack := make([]walkEntry, 1, memutils.Log2(m.size)+2)
	stack[0] = walkEntry{index: rootBlock}

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(entry.index, entry.depth) {
			return
		}

		block := &m.blocks[entry.index]
		if block.status == BlockSplit {
			stack = append(stack,
				walkEntry{index: block.children + 1, depth: entry.depth + 1},
				walkEntry{index: block.children, depth: entry.depth + 1},
			)
		}
	}
}

func (m *BuddyBlockMetadata) walkLeaves(visit func(block *buddyBlock, depth int) bool) {
	m.walk(func(index, depth int) bool {
		block := &m.blocks[index]
		if !block.IsLeaf() {
			return true
		}

		return visit(block, depth)
	})
}

func (m *BuddyBlockMetadata) region(block *buddyBlock, depth int) Region {
	return Region{
		Offset:        block.offset,
		Size:          block.size,
		Depth:         depth,
		Status:        block.status,
		RequestedSize: block.requestedSize,
		UserData:      block.userData,
	}
}

// Tree returns a lazy pre-order traversal of every block in the tree, split blocks included. Each
// call to Tree starts a fresh traversal. The tree must not be modified while a traversal is in
// progress.
func (m *BuddyBlockMetadata) Tree() iter.Seq[Region] {
	return func(yield func(Region) bool) {
		m.walk(func(index, depth int) bool {
			return yield(m.region(&m.blocks[index], depth))
		})
	}
}

// ListAllocations returns every live allocation ordered by offset
func (m *BuddyBlockMetadata) ListAllocations() []Region {
	allocations := make([]Region, 0, m.allocCount)
	m.walkLeaves(func(block *buddyBlock, depth int) bool {
		if block.status == BlockAllocated {
			allocations = append(allocations, m.region(block, depth))
		}
		return true
	})

	return allocations
}

func (m *BuddyBlockMetadata) VisitAllRegions(handleBlock func(offset int, size int, userData any, free bool) error) error {
	var err error
	m.walkLeaves(func(block *buddyBlock, depth int) bool {
		err = handleBlock(block.offset, block.size, block.userData, block.IsFree())
		return err == nil
	})

	return err
}

func (m *BuddyBlockMetadata) AllocationCount() int {
	return m.allocCount
}

func (m *BuddyBlockMetadata) FreeRegionsCount() int {
	return m.freeCount
}

func (m *BuddyBlockMetadata) SumFreeSize() int {
	return m.sumFreeSize
}

// RequestedBytes returns the sum of the sizes that consumers asked for across all live allocations
func (m *BuddyBlockMetadata) RequestedBytes() int {
	return m.requestedBytes
}

// SplitBlockCount returns the number of interior blocks currently in the tree
func (m *BuddyBlockMetadata) SplitBlockCount() int {
	return m.splitCount
}

func (m *BuddyBlockMetadata) IsEmpty() bool {
	return m.allocCount == 0
}

func (m *BuddyBlockMetadata) MayHaveFreeBlock(size int) bool {
	if size > m.sumFreeSize {
		return false
	}

	return memutils.NextPow2(size) <= m.sumFreeSize
}

// LargestFreeRegion returns the size of the largest free leaf, which is the largest request that
// could currently succeed. It returns 0 when the region is full.
func (m *BuddyBlockMetadata) LargestFreeRegion() int {
	largest := 0
	m.walkLeaves(func(block *buddyBlock, depth int) bool {
		if block.IsFree() && block.size > largest {
			largest = block.size
		}
		return largest < m.size
	})

	return largest
}

func (m *BuddyBlockMetadata) AllocationSize(offset int) (int, error) {
	index, err := m.allocationIndex(offset)
	if err != nil {
		return 0, err
	}

	return m.blocks[index].size, nil
}

func (m *BuddyBlockMetadata) AllocationUserData(offset int) (any, error) {
	index, err := m.allocationIndex(offset)
	if err != nil {
		return nil, err
	}

	return m.blocks[index].userData, nil
}

func (m *BuddyBlockMetadata) SetAllocationUserData(offset int, userData any) error {
	index, err := m.allocationIndex(offset)
	if err != nil {
		return err
	}

	m.blocks[index].userData = userData
	return nil
}

func (m *BuddyBlockMetadata) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockBytes += m.size
	stats.SplitBlockCount += m.splitCount

	m.walkLeaves(func(block *buddyBlock, depth int) bool {
		if block.IsFree() {
			stats.AddUnusedRange(block.size)
		} else {
			stats.AddAllocation(block.size, block.requestedSize)
		}
		return true
	})
}

func (m *BuddyBlockMetadata) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.AllocationCount += m.allocCount
	stats.BlockBytes += m.size
	stats.AllocationBytes += m.size - m.sumFreeSize
	stats.RequestedBytes += m.requestedBytes
}

func (m *BuddyBlockMetadata) BlockJsonData(json *jwriter.ObjectState) {
	m.BlockMetadataBase.BlockJsonData(json, m.sumFreeSize, m.allocCount, m.freeCount)
	json.Name("RequestedBytes").Int(m.requestedBytes)
	json.Name("SplitBlocks").Int(m.splitCount)
}

// PrintDetailedMap writes the region header followed by a Regions array holding one entry per
// leaf, in address order.
func (m *BuddyBlockMetadata) PrintDetailedMap(json *jwriter.ObjectState) {
	m.BlockJsonData(json)

	regions := json.Name("Regions").Array()
	defer regions.End()

	m.walkLeaves(func(block *buddyBlock, depth int) bool {
		obj := regions.Object()
		defer obj.End()

		printRegionFields(&obj, m.region(block, depth))
		return true
	})
}

// PrintTree writes the whole tree as nested objects. Split blocks carry Left and Right members.
func (m *BuddyBlockMetadata) PrintTree(json *jwriter.ObjectState) {
	if len(m.blocks) == 0 {
		return
	}

	m.printTreeBlock(json, rootBlock, 0)
}

func (m *BuddyBlockMetadata) printTreeBlock(json *jwriter.ObjectState, index, depth int) {
	block := &m.blocks[index]
	printRegionFields(json, m.region(block, depth))

	if block.status != BlockSplit {
		return
	}

	children := block.children
	left := json.Name("Left").Object()
	m.printTreeBlock(&left, children, depth+1)
	left.End()

	right := json.Name("Right").Object()
	m.printTreeBlock(&right, children+1, depth+1)
	right.End()
}

func printRegionFields(json *jwriter.ObjectState, region Region) {
	json.Name("Offset").Int(region.Offset)
	json.Name("Type").String(region.Status.String())
	json.Name("Size").Int(region.Size)

	if region.Status == BlockAllocated {
		json.Name("RequestedSize").Int(region.RequestedSize)
		if region.UserData != nil {
			json.Name("UserData").String(fmt.Sprint(region.UserData))
		}
	}
}

// DebugLogAllAllocations passes every live allocation to logFunc, in address order
func (m *BuddyBlockMetadata) DebugLogAllAllocations(logger *slog.Logger, logFunc func(log *slog.Logger, offset int, size int, userData any)) {
	m.walkLeaves(func(block *buddyBlock, depth int) bool {
		if block.status == BlockAllocated {
			logFunc(logger, block.offset, block.size, block.userData)
		}
		return true
	})
}
