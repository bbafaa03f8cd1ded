package memutils

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// IsPow2 returns true if the provided number is a positive power of two
func IsPow2[T constraints.Integer](number T) bool {
	return number > 0 && number&(number-1) == 0
}

// CheckPow2 returns an error wrapping PowerOfTwoError if the provided number is not a positive
// power of two. The name parameter is used to identify the value in the error message.
func CheckPow2[T constraints.Integer](number T, name string) error {
	if !IsPow2(number) {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// NextPow2 returns the smallest power of two that is greater than or equal to value. Values of 1 or less,
// including 0, round up to 1. The result is only meaningful for values no larger than 1 << 62.
func NextPow2(value int) int {
	if value <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(value-1))
}

// Log2 returns the floor of the base 2 logarithm of value, which must be positive
func Log2(value int) int {
	return bits.Len(uint(value)) - 1
}
