package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// InvalidSizeError is returned when a region is created with a total size that is not a positive power of two
var InvalidSizeError error = errors.New("invalid region size")

// InvalidRequestError is returned when an allocation is requested with a size of zero or less
var InvalidRequestError error = errors.New("invalid allocation request")

// OutOfRangeError is returned when a request, once rounded up to a power of two, is larger than
// the entire region. No sequence of frees could make such a request succeed.
var OutOfRangeError error = errors.New("request exceeds region size")

// NoSpaceAvailableError is returned when a request could fit in the region, but no free block of
// sufficient size currently exists, either because the region is exhausted or because free space is
// fragmented across smaller blocks.
var NoSpaceAvailableError error = errors.New("no space available")

// NotAllocatedError is returned when a free is requested for an address that is not the start of a live
// allocation. This includes double frees.
var NotAllocatedError error = errors.New("address is not allocated")
