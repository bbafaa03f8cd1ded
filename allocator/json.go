package allocator

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// PrintDetailedMap writes a JSON object describing the allocator followed by every free and
// allocated region in address order.
func (a *Allocator) PrintDetailedMap(writer *jwriter.Writer) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	obj := writer.Object()
	defer obj.End()

	obj.Name("Strategy").String(a.strategy.String())
	obj.Name("LargestFreeRegion").Int(a.metadata.LargestFreeRegion())
	a.metadata.PrintDetailedMap(&obj)
}

// PrintTree writes the whole buddy tree as nested JSON objects. Split blocks carry Left and Right
// members.
func (a *Allocator) PrintTree(writer *jwriter.Writer) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	obj := writer.Object()
	defer obj.End()

	a.metadata.PrintTree(&obj)
}

// PrintStatistics writes the allocator's statistics as a JSON object
func (a *Allocator) PrintStatistics(writer *jwriter.Writer) {
	stats := a.Statistics()

	obj := writer.Object()
	defer obj.End()

	obj.Name("TotalBytes").Int(stats.BlockBytes)
	obj.Name("AllocatedBytes").Int(stats.AllocationBytes)
	obj.Name("RequestedBytes").Int(stats.RequestedBytes)
	obj.Name("UnusedBytes").Int(stats.UnusedBytes())
	obj.Name("InternalFragmentation").Int(stats.InternalFragmentation())
	obj.Name("Allocations").Int(stats.AllocationCount)
	obj.Name("UnusedRanges").Int(stats.UnusedRangeCount)
	obj.Name("SplitBlocks").Int(stats.SplitBlockCount)
	obj.Name("LargestFreeRegion").Int(a.LargestFreeRegion())

	if stats.AllocationCount > 0 {
		obj.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		obj.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}

	if stats.UnusedRangeCount > 0 {
		obj.Name("UnusedRangeSizeMin").Int(stats.UnusedRangeSizeMin)
		obj.Name("UnusedRangeSizeMax").Int(stats.UnusedRangeSizeMax)
	}
}
