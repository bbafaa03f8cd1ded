package metadata_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/buddy/memutils"
	"github.com/vkngwrapper/buddy/memutils/metadata"
)

func requirePartition(t *testing.T, md *metadata.BuddyBlockMetadata) {
	t.Helper()

	next := 0
	for _, region := range leaves(md) {
		require.Equal(t, next, region.Offset, "gap or overlap at offset %d", next)
		require.True(t, memutils.IsPow2(region.Size))
		next = region.End()
	}
	require.Equal(t, md.Size(), next)
}

func requireNoOverlap(t *testing.T, md *metadata.BuddyBlockMetadata) {
	t.Helper()

	allocations := md.ListAllocations()
	require.Len(t, allocations, md.AllocationCount())
	for i := 1; i < len(allocations); i++ {
		require.LessOrEqual(t, allocations[i-1].End(), allocations[i].Offset)
	}
}

func TestBuddyRandomOperations(t *testing.T) {
	for _, strategy := range []metadata.AllocationStrategy{metadata.AllocationStrategyMinOffset, metadata.AllocationStrategyMinMemory} {
		t.Run(strategy.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(1337))
			md := newBuddy(t, 1<<12)
			live := map[int]int{}

			for op := 0; op < 3000; op++ {
				if len(live) == 0 || rng.Intn(3) != 0 {
					requested := 1 + rng.Intn(300)
					offset, err := md.Allocate(requested, strategy, op)
					if err != nil {
						require.True(t, errors.Is(err, memutils.NoSpaceAvailableError), err.Error())
						require.Less(t, md.LargestFreeRegion(), memutils.NextPow2(requested))
						continue
					}

					_, exists := live[offset]
					require.False(t, exists, "offset %d handed out twice", offset)
					require.Zero(t, offset%memutils.NextPow2(requested))
					live[offset] = requested
				} else {
					offsets := make([]int, 0, len(live))
					for offset := range live {
						offsets = append(offsets, offset)
					}
					slices.Sort(offsets)

					offset := offsets[rng.Intn(len(offsets))]
					require.NoError(t, md.Free(offset))
					delete(live, offset)
				}

				require.NoError(t, md.Validate())
				requirePartition(t, md)
				requireNoOverlap(t, md)
			}

			requested := 0
			for _, size := range live {
				requested += size
			}
			require.Equal(t, requested, md.RequestedBytes())
		})
	}
}

func TestBuddyRoundTripAnyOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 25; round++ {
		md := newBuddy(t, 1<<10)

		var offsets []int
		for {
			offset, err := md.Allocate(1+rng.Intn(90), 0, nil)
			if err != nil {
				require.True(t, errors.Is(err, memutils.NoSpaceAvailableError))
				break
			}
			offsets = append(offsets, offset)
		}

		rng.Shuffle(len(offsets), func(i, j int) {
			offsets[i], offsets[j] = offsets[j], offsets[i]
		})

		for i, offset := range offsets {
			require.NoError(t, md.Free(offset))
			require.NoError(t, md.Validate())

			// The root only comes back once the last allocation is gone
			regions := slices.Collect(md.Tree())
			if i < len(offsets)-1 {
				require.Greater(t, len(regions), 1)
			} else {
				require.Equal(t, []metadata.Region{
					{Offset: 0, Size: 1 << 10, Status: metadata.BlockFree},
				}, regions)
			}
		}

		require.True(t, md.IsEmpty())
		require.Equal(t, 1<<10, md.SumFreeSize())
		require.Equal(t, 0, md.SplitBlockCount())
	}
}
