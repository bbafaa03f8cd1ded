package memutils_test

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/buddy/memutils"
)

func TestIsPow2(t *testing.T) {
	for _, value := range []int{1, 2, 4, 64, 1024, 1 << 40} {
		require.True(t, memutils.IsPow2(value), "value=%d", value)
	}

	for _, value := range []int{0, -1, -2, 3, 6, 1000, 1<<40 + 1} {
		require.False(t, memutils.IsPow2(value), "value=%d", value)
	}

	require.True(t, memutils.IsPow2(uint32(1<<31)))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(4096, "size"))

	err := memutils.CheckPow2(1000, "size")
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.Contains(t, err.Error(), "size is 1000")

	err = memutils.CheckPow2(0, "size")
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
}

func TestNextPow2(t *testing.T) {
	tests := []struct {
		value int
		want  int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{7, 8},
		{8, 8},
		{12, 16},
		{50, 64},
		{64, 64},
		{65, 128},
		{1023, 1024},
		{1025, 2048},
	}

	for _, test := range tests {
		require.Equal(t, test.want, memutils.NextPow2(test.value), "NextPow2(%d)", test.value)
	}
}

func TestNextPow2Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	prev := memutils.NextPow2(0)
	for value := 0; value < 5000; value++ {
		rounded := memutils.NextPow2(value)

		require.True(t, memutils.IsPow2(rounded))
		require.Equal(t, rounded, memutils.NextPow2(rounded), "not idempotent at %d", value)
		require.GreaterOrEqual(t, rounded, value)
		require.Less(t, rounded, 2*max(value, 1))
		require.GreaterOrEqual(t, rounded, prev, "not monotonic at %d", value)
		prev = rounded
	}

	for i := 0; i < 1000; i++ {
		value := rng.Intn(1 << 40)
		rounded := memutils.NextPow2(value)
		require.GreaterOrEqual(t, rounded, value)
		require.Less(t, rounded, 2*max(value, 1))
		require.Equal(t, rounded, memutils.NextPow2(rounded))
	}
}

func TestLog2(t *testing.T) {
	require.Equal(t, 0, memutils.Log2(1))
	require.Equal(t, 1, memutils.Log2(2))
	require.Equal(t, 1, memutils.Log2(3))
	require.Equal(t, 10, memutils.Log2(1024))
	require.Equal(t, 10, memutils.Log2(2047))
}
