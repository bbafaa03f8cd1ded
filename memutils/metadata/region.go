package metadata

// BlockStatus is the state of a single block in the buddy tree
type BlockStatus uint8

const (
	// BlockFree is a leaf that holds no allocation
	BlockFree BlockStatus = iota
	// BlockSplit is an interior block that has been divided into two half-size buddies. It holds
	// no allocation of its own.
	BlockSplit
	// BlockAllocated is a leaf that holds exactly one allocation
	BlockAllocated
)

var blockStatusMapping = map[BlockStatus]string{
	BlockFree:      "FREE",
	BlockSplit:     "SPLIT",
	BlockAllocated: "ALLOCATED",
}

func (s BlockStatus) String() string {
	str, ok := blockStatusMapping[s]
	if !ok {
		return "UNKNOWN"
	}

	return str
}

// Region is a read-only snapshot of one block, as produced by the query methods of BuddyBlockMetadata
type Region struct {
	Offset int
	Size   int
	// Depth is the distance from the root block. The root has depth 0.
	Depth  int
	Status BlockStatus
	// RequestedSize is the number of bytes the consumer asked for. It is 0 unless Status is BlockAllocated.
	RequestedSize int
	UserData      any
}

// End returns the first offset past the region
func (r Region) End() int {
	return r.Offset + r.Size
}

// IsLeaf returns true if the region is a free or allocated leaf
func (r Region) IsLeaf() bool {
	return r.Status != BlockSplit
}

// Waste returns the bytes lost to rounding the request up to the block size
func (r Region) Waste() int {
	if r.Status != BlockAllocated {
		return 0
	}

	return r.Size - r.RequestedSize
}
