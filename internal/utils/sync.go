package utils

import (
	"sync"
)

// OptionalRWMutex is a sync.RWMutex that can be switched off for consumers that synchronize
// externally. The zero value does not lock.
type OptionalRWMutex struct {
	mutex    sync.RWMutex
	useMutex bool
}

// NewOptionalRWMutex creates a lock that is active when useMutex is true
func NewOptionalRWMutex(useMutex bool) *OptionalRWMutex {
	return &OptionalRWMutex{useMutex: useMutex}
}

// Enabled returns true if the lock actually excludes other callers
func (m *OptionalRWMutex) Enabled() bool {
	return m.useMutex
}

func (m *OptionalRWMutex) Lock() {
	if m.useMutex {
		m.mutex.Lock()
	}
}

func (m *OptionalRWMutex) Unlock() {
	if m.useMutex {
		m.mutex.Unlock()
	}
}

func (m *OptionalRWMutex) RLock() {
	if m.useMutex {
		m.mutex.RLock()
	}
}

func (m *OptionalRWMutex) RUnlock() {
	if m.useMutex {
		m.mutex.RUnlock()
	}
}

// Write runs f while holding the exclusive lock
func (m *OptionalRWMutex) Write(f func()) {
	m.Lock()
	defer m.Unlock()

	f()
}

// Read runs f while holding the shared lock
func (m *OptionalRWMutex) Read(f func()) {
	m.RLock()
	defer m.RUnlock()

	f()
}
