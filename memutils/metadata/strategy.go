package metadata

import "strings"

// AllocationStrategy exposes several options for choosing the location of a new allocation.
// If none is chosen, AllocationStrategyMinOffset is used.
type AllocationStrategy uint32

const (
	// AllocationStrategyMinMemory selects the allocation strategy that chooses the smallest free block
	// able to hold the allocation, anywhere in the region, to keep large free blocks intact. Ties are
	// broken by lowest offset. This is a deliberate departure from the classic leftmost descent.
	AllocationStrategyMinMemory AllocationStrategy = 1 << iota
	// AllocationStrategyMinTime selects the allocation strategy that chooses the first suitable free
	// block found. For a buddy tree this is the same walk as AllocationStrategyMinOffset.
	AllocationStrategyMinTime
	// AllocationStrategyMinOffset selects the allocation strategy that descends the tree left first,
	// splitting only along the path taken, and returns the lowest offset that can hold the allocation.
	AllocationStrategyMinOffset
)

var allocationStrategyMapping = map[AllocationStrategy]string{
	AllocationStrategyMinMemory: "min-memory",
	AllocationStrategyMinTime:   "min-time",
	AllocationStrategyMinOffset: "min-offset",
}

func (s AllocationStrategy) String() string {
	if s == 0 {
		return "default"
	}

	str, ok := allocationStrategyMapping[s]
	if !ok {
		return "unknown"
	}

	return str
}

// ParseAllocationStrategy maps a strategy name, as produced by AllocationStrategy.String, back to
// the strategy. Matching is case-insensitive.
func ParseAllocationStrategy(name string) (AllocationStrategy, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "default" {
		return AllocationStrategyMinOffset, true
	}

	for strategy, str := range allocationStrategyMapping {
		if str == name {
			return strategy, true
		}
	}

	return 0, false
}
