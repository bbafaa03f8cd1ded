package metadata

//go:generate mockgen -source events.go -destination ./mocks/events.go

// EventHandler receives a synchronous notification for every structural change made to a buddy
// tree. Implementations must not call back into the metadata that raised the event.
type EventHandler interface {
	// BlockSplit is called after the free block at offset was divided into two buddies of size/2
	BlockSplit(offset, size int)
	// BlocksMerged is called after two free buddies were coalesced into the block at offset
	BlocksMerged(offset, size int)
	// BlockAllocated is called after the block at offset was handed out for a request of requestedSize bytes
	BlockAllocated(offset, size, requestedSize int)
	// BlockFreed is called after the allocation at offset was released, before any coalescing
	BlockFreed(offset, size int)
}

// NoopEventHandler is an EventHandler that ignores every event
type NoopEventHandler struct{}

var _ EventHandler = NoopEventHandler{}

func (h NoopEventHandler) BlockSplit(offset, size int)                    {}
func (h NoopEventHandler) BlocksMerged(offset, size int)                  {}
func (h NoopEventHandler) BlockAllocated(offset, size, requestedSize int) {}
func (h NoopEventHandler) BlockFreed(offset, size int)                    {}
