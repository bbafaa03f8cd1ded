package metadata

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/buddy/memutils"
)

const (
	noBlock   = -1
	rootBlock = 0
)

type buddyBlock struct {
	offset int
	size   int
	status BlockStatus

	parent int
	// children is the index of the left child. The right child always lives at children+1.
	children int

	requestedSize int
	userData      any
}

func (b *buddyBlock) IsFree() bool {
	return b.status == BlockFree
}

func (b *buddyBlock) IsLeaf() bool {
	return b.status != BlockSplit
}

// BuddyBlockMetadata is a BlockMetadata implementation that manages a power-of-two region as a
// binary tree of power-of-two blocks. Requests are rounded up to a power of two and served by
// splitting larger free blocks in half. Freed blocks are coalesced with their buddy as soon as both
// halves are free.
//
// Blocks live in a single arena slice and refer to one another by index. Children are always
// created as an adjacent pair so that a block's buddy can be found without any extra bookkeeping,
// and pairs released by a merge are reused by later splits.
//
// BuddyBlockMetadata is not safe for concurrent use.
type BuddyBlockMetadata struct {
	BlockMetadataBase

	blocks     []buddyBlock
	spareSlots []int
	registry   *swiss.Map[int, int]

	allocCount     int
	freeCount      int
	splitCount     int
	sumFreeSize    int
	requestedBytes int
}

var _ BlockMetadata = &BuddyBlockMetadata{}

// NewBuddyBlockMetadata creates an uninitialized buddy tree. Init must be called before use.
func NewBuddyBlockMetadata(events EventHandler) *BuddyBlockMetadata {
	return &BuddyBlockMetadata{
		BlockMetadataBase: NewBlockMetadata(events),
	}
}

// Init prepares the tree to manage size bytes. size must be a positive power of two. Calling Init
// on a tree that is already in use discards every allocation.
func (m *BuddyBlockMetadata) Init(size int) error {
	if !memutils.IsPow2(size) {
		return cerrors.Wrapf(memutils.InvalidSizeError, "size %d is not a positive power of two", size)
	}

	m.BlockMetadataBase.Init(size)
	m.registry = swiss.NewMap[int, int](42)
	m.reset()

	return nil
}

func (m *BuddyBlockMetadata) reset() {
	m.blocks = append(m.blocks[:0], buddyBlock{
		offset:   0,
		size:     m.size,
		status:   BlockFree,
		parent:   noBlock,
		children: noBlock,
	})
	m.spareSlots = m.spareSlots[:0]
	m.registry.Clear()

	m.allocCount = 0
	m.freeCount = 1
	m.splitCount = 0
	m.sumFreeSize = m.size
	m.requestedBytes = 0
}

func (m *BuddyBlockMetadata) allocatePair() int {
	if len(m.spareSlots) > 0 {
		last := len(m.spareSlots) - 1
		index := m.spareSlots[last]
		m.spareSlots = m.spareSlots[:last]
		return index
	}

	index := len(m.blocks)
	m.blocks = append(m.blocks, buddyBlock{}, buddyBlock{})
	return index
}

func (m *BuddyBlockMetadata) releasePair(index int) {
	m.blocks[index] = buddyBlock{}
	m.blocks[index+1] = buddyBlock{}
	m.spareSlots = append(m.spareSlots, index)
}

// split divides the free leaf at index into two free buddies. allocatePair may grow the arena,
// so no pointer into m.blocks may be held across this call.
func (m *BuddyBlockMetadata) split(index int) {
	children := m.allocatePair()

	block := &m.blocks[index]
	if block.status != BlockFree {
		panic("attempted to split a block that is not a free leaf")
	}

	half := block.size / 2
	memutils.DebugCheckPow2(half, "split size")
	m.blocks[children] = buddyBlock{
		offset:   block.offset,
		size:     half,
		status:   BlockFree,
		parent:   index,
		children: noBlock,
	}
	m.blocks[children+1] = buddyBlock{
		offset:   block.offset + half,
		size:     half,
		status:   BlockFree,
		parent:   index,
		children: noBlock,
	}

	block.status = BlockSplit
	block.children = children

	m.freeCount++
	m.splitCount++
	m.events.BlockSplit(block.offset, block.size)
}

func (m *BuddyBlockMetadata) merge(index int) {
	block := &m.blocks[index]
	m.releasePair(block.children)

	block.status = BlockFree
	block.children = noBlock

	m.freeCount--
	m.splitCount--
	m.events.BlocksMerged(block.offset, block.size)
}

// findAndSplit returns the leftmost free leaf of exactly required bytes in the subtree at index,
// splitting free blocks along the way. A free leaf larger than required can always be split down
// to size, so every split made here ends in a successful allocation.
func (m *BuddyBlockMetadata) findAndSplit(index, required int) int {
	block := &m.blocks[index]
	if block.size < required || block.status == BlockAllocated {
		return noBlock
	}

	if block.size == required {
		if block.IsFree() {
			return index
		}
		return noBlock
	}

	if block.IsFree() {
		m.split(index)
	}

	children := m.blocks[index].children
	found := m.findAndSplit(children, required)
	if found != noBlock {
		return found
	}

	return m.findAndSplit(children+1, required)
}

// findBestFit returns the smallest free leaf of at least required bytes, preferring the lowest
// offset among equals. Nothing is split.
func (m *BuddyBlockMetadata) findBestFit(required int) int {
	best := noBlock
	stack := []int{rootBlock}

	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		block := &m.blocks[index]
		if block.size < required {
			continue
		}

		switch block.status {
		case BlockFree:
			if best == noBlock || block.size < m.blocks[best].size {
				best = index
				if block.size == required {
					return best
				}
			}
		case BlockSplit:
			stack = append(stack, block.children+1, block.children)
		}
	}

	return best
}

func (m *BuddyBlockMetadata) splitDown(index, required int) int {
	for m.blocks[index].size > required {
		m.split(index)
		index = m.blocks[index].children
	}

	return index
}

// Allocate rounds requestedSize up to a power of two and hands out a free block of that size,
// splitting larger blocks as needed. The returned value is the block's offset within the region.
//
// On failure the tree is left exactly as it was. Errors wrap memutils.InvalidRequestError,
// memutils.OutOfRangeError, or memutils.NoSpaceAvailableError.
func (m *BuddyBlockMetadata) Allocate(requestedSize int, strategy AllocationStrategy, userData any) (int, error) {
	if m.registry == nil {
		return 0, errors.New("the metadata has not been initialized")
	}

	if requestedSize <= 0 {
		return 0, cerrors.Wrapf(memutils.InvalidRequestError, "requested size %d must be positive", requestedSize)
	}

	if requestedSize > m.size {
		return 0, cerrors.Wrapf(memutils.OutOfRangeError, "requested size %d is larger than the region size %d", requestedSize, m.size)
	}

	required := memutils.NextPow2(requestedSize)
	memutils.DebugValidate(m)

	index := noBlock
	if required <= m.sumFreeSize {
		switch strategy {
		case AllocationStrategyMinMemory:
			index = m.findBestFit(required)
			if index != noBlock {
				index = m.splitDown(index, required)
			}
		default:
			index = m.findAndSplit(rootBlock, required)
		}
	}

	if index == noBlock {
		return 0, cerrors.Wrapf(memutils.NoSpaceAvailableError, "no free block of %d bytes for a request of %d bytes (%d bytes free)", required, requestedSize, m.sumFreeSize)
	}

	block := &m.blocks[index]
	block.status = BlockAllocated
	block.requestedSize = requestedSize
	block.userData = userData
	m.registry.Put(block.offset, index)

	m.allocCount++
	m.freeCount--
	m.sumFreeSize -= block.size
	m.requestedBytes += requestedSize
	m.events.BlockAllocated(block.offset, block.size, requestedSize)

	memutils.DebugValidate(m)
	return block.offset, nil
}

// Free releases the allocation at offset and coalesces the freed block with its buddy, repeating
// upward for as long as both halves of the parent are free. Errors wrap memutils.NotAllocatedError
// when offset is not the start of a live allocation, and the tree is left unchanged.
func (m *BuddyBlockMetadata) Free(offset int) error {
	index, err := m.allocationIndex(offset)
	if err != nil {
		return err
	}

	memutils.DebugValidate(m)
	m.registry.Delete(offset)

	block := &m.blocks[index]
	m.allocCount--
	m.freeCount++
	m.sumFreeSize += block.size
	m.requestedBytes -= block.requestedSize

	block.status = BlockFree
	block.requestedSize = 0
	block.userData = nil
	m.events.BlockFreed(block.offset, block.size)

	m.coalesce(block.parent)

	memutils.DebugValidate(m)
	return nil
}

func (m *BuddyBlockMetadata) coalesce(index int) {
	for index != noBlock {
		children := m.blocks[index].children
		if !m.blocks[children].IsFree() || !m.blocks[children+1].IsFree() {
			return
		}

		m.merge(index)
		index = m.blocks[index].parent
	}
}

func (m *BuddyBlockMetadata) allocationIndex(offset int) (int, error) {
	if m.registry == nil {
		return noBlock, cerrors.Wrapf(memutils.NotAllocatedError, "offset %d", offset)
	}

	index, ok := m.registry.Get(offset)
	if !ok {
		return noBlock, cerrors.Wrapf(memutils.NotAllocatedError, "offset %d", offset)
	}

	return index, nil
}

// Clear instantly frees all allocations and returns the tree to a single free root block.
// No events are raised.
func (m *BuddyBlockMetadata) Clear() {
	if m.registry == nil {
		return
	}

	m.reset()
}

// Validate walks the entire tree and checks every structural invariant: block geometry, parent
// and child links, the absence of mergeable buddies, the exact tiling of the region by leaves,
// and agreement between the registry, the counters, and the tree.
func (m *BuddyBlockMetadata) Validate() error {
	if m.registry == nil {
		return errors.New("the metadata has not been initialized")
	}

	if len(m.blocks) == 0 {
		return errors.New("the block arena is empty")
	}

	root := &m.blocks[rootBlock]
	if root.offset != 0 || root.size != m.size || root.parent != noBlock {
		return errors.Errorf("root block has offset %d, size %d and parent %d, but the region size is %d", root.offset, root.size, root.parent, m.size)
	}

	var allocCount, freeCount, splitCount, freeSize, requestedBytes int
	nextOffset := 0

	var err error
	m.walk(func(index, depth int) bool {
		block := &m.blocks[index]

		if !memutils.IsPow2(block.size) {
			err = errors.Errorf("block at offset %d has size %d, which is not a power of two", block.offset, block.size)
			return false
		}

		if block.offset%block.size != 0 {
			err = errors.Errorf("block at offset %d is not aligned to its size %d", block.offset, block.size)
			return false
		}

		if block.size != m.size>>depth {
			err = errors.Errorf("block at offset %d has size %d but sits at depth %d", block.offset, block.size, depth)
			return false
		}

		switch block.status {
		case BlockSplit:
			err = m.validateSplitBlock(index)
			if err != nil {
				return false
			}
			splitCount++
			return true
		case BlockFree:
			if block.requestedSize != 0 || block.userData != nil {
				err = errors.Errorf("free block at offset %d still carries allocation data", block.offset)
				return false
			}
			freeCount++
			freeSize += block.size
		case BlockAllocated:
			if memutils.NextPow2(block.requestedSize) != block.size {
				err = errors.Errorf("block at offset %d has size %d, but holds a request of %d bytes", block.offset, block.size, block.requestedSize)
				return false
			}

			registered, ok := m.registry.Get(block.offset)
			if !ok || registered != index {
				err = errors.Errorf("allocated block at offset %d is missing from the allocation registry", block.offset)
				return false
			}
			allocCount++
			requestedBytes += block.requestedSize
		default:
			err = errors.Errorf("block at offset %d has unknown status %d", block.offset, block.status)
			return false
		}

		if block.children != noBlock {
			err = errors.Errorf("leaf block at offset %d has children", block.offset)
			return false
		}

		if block.offset != nextOffset {
			err = errors.Errorf("leaf block at offset %d does not start where the previous leaf ended, at offset %d", block.offset, nextOffset)
			return false
		}
		nextOffset += block.size

		return true
	})
	if err != nil {
		return err
	}

	if nextOffset != m.size {
		return errors.Errorf("the full size of the region is %d, but the leaves only added up to %d", m.size, nextOffset)
	}

	if allocCount != m.allocCount {
		return errors.Errorf("the allocation count of the metadata is %d, but the allocated leaves only added up to %d", m.allocCount, allocCount)
	}

	if m.registry.Count() != m.allocCount {
		return errors.Errorf("the allocation count of the metadata is %d, but the registry holds %d entries", m.allocCount, m.registry.Count())
	}

	if freeCount != m.freeCount {
		return errors.Errorf("the free block count of the metadata is %d, but there were %d free leaves", m.freeCount, freeCount)
	}

	if freeSize != m.sumFreeSize {
		return errors.Errorf("the free size of the metadata is %d, but the free leaves added up to %d", m.sumFreeSize, freeSize)
	}

	if splitCount != m.splitCount {
		return errors.Errorf("the split block count of the metadata is %d, but there were %d split blocks", m.splitCount, splitCount)
	}

	if requestedBytes != m.requestedBytes {
		return errors.Errorf("the requested byte count of the metadata is %d, but the allocations requested %d", m.requestedBytes, requestedBytes)
	}

	if len(m.blocks) != 1+2*(m.splitCount+len(m.spareSlots)) {
		return errors.Errorf("the block arena holds %d records, but %d split blocks and %d spare pairs were expected", len(m.blocks), m.splitCount, len(m.spareSlots))
	}

	for _, spare := range m.spareSlots {
		if m.blocks[spare].size != 0 || m.blocks[spare+1].size != 0 {
			return errors.Errorf("spare arena slot %d is still in use", spare)
		}
	}

	return nil
}

func (m *BuddyBlockMetadata) validateSplitBlock(index int) error {
	block := &m.blocks[index]
	children := block.children
	if children <= rootBlock || children+1 >= len(m.blocks) {
		return errors.Errorf("split block at offset %d has an invalid child index %d", block.offset, children)
	}

	left := &m.blocks[children]
	right := &m.blocks[children+1]
	half := block.size / 2

	if left.parent != index || right.parent != index {
		return errors.Errorf("split block at offset %d lists children whose parent reference is broken", block.offset)
	}

	if left.size != half || right.size != half {
		return errors.Errorf("split block at offset %d has size %d, but its children have sizes %d and %d", block.offset, block.size, left.size, right.size)
	}

	if left.offset != block.offset || right.offset != block.offset+half {
		return errors.Errorf("split block at offset %d has children at offsets %d and %d", block.offset, left.offset, right.offset)
	}

	if left.IsFree() && right.IsFree() {
		return errors.Errorf("split block at offset %d has two free children that should have been merged", block.offset)
	}

	return nil
}
