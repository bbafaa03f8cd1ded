package utils_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/buddy/internal/utils"
)

func TestOptionalRWMutexExcludesWriters(t *testing.T) {
	mutex := utils.NewOptionalRWMutex(true)
	require.True(t, mutex.Enabled())

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mutex.Write(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var read int
	mutex.Read(func() { read = counter })
	require.Equal(t, 16000, read)
}

func TestOptionalRWMutexDisabled(t *testing.T) {
	var mutex utils.OptionalRWMutex
	require.False(t, mutex.Enabled())

	// A disabled lock never blocks, even when taken twice
	mutex.Lock()
	mutex.Lock()
	mutex.RLock()
	mutex.RUnlock()
	mutex.Unlock()
	mutex.Unlock()
}
