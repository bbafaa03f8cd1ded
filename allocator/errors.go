package allocator

import "github.com/vkngwrapper/buddy/memutils"

// These are the errors returned by Allocator, wrapped with context. Use errors.Is to test for them.
var (
	InvalidSizeError      = memutils.InvalidSizeError
	InvalidRequestError   = memutils.InvalidRequestError
	OutOfRangeError       = memutils.OutOfRangeError
	NoSpaceAvailableError = memutils.NoSpaceAvailableError
	NotAllocatedError     = memutils.NotAllocatedError
)
