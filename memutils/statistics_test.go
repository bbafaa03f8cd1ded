package memutils_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/buddy/memutils"
)

func TestDetailedStatisticsClear(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()

	require.Equal(t, memutils.DetailedStatistics{
		AllocationSizeMin:  math.MaxInt,
		UnusedRangeSizeMin: math.MaxInt,
	}, stats)
}

func TestDetailedStatisticsAdd(t *testing.T) {
	var first memutils.DetailedStatistics
	first.Clear()
	first.BlockCount = 1
	first.BlockBytes = 1024
	first.AddAllocation(64, 50)
	first.AddAllocation(16, 12)
	first.AddUnusedRange(16)
	first.AddUnusedRange(128)

	require.Equal(t, 2, first.AllocationCount)
	require.Equal(t, 80, first.AllocationBytes)
	require.Equal(t, 62, first.RequestedBytes)
	require.Equal(t, 18, first.InternalFragmentation())
	require.Equal(t, 944, first.UnusedBytes())

	var second memutils.DetailedStatistics
	second.Clear()
	second.BlockCount = 1
	second.BlockBytes = 256
	second.SplitBlockCount = 1
	second.AddAllocation(256, 256)

	var total memutils.DetailedStatistics
	total.Clear()
	total.AddDetailedStatistics(&first)
	total.AddDetailedStatistics(&second)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      2,
			AllocationCount: 3,
			BlockBytes:      1280,
			AllocationBytes: 336,
			RequestedBytes:  318,
		},
		UnusedRangeCount:   2,
		SplitBlockCount:    1,
		AllocationSizeMin:  16,
		AllocationSizeMax:  256,
		UnusedRangeSizeMin: 16,
		UnusedRangeSizeMax: 128,
	}, total)
}
