// Package bitint holds the power-of-two helpers used to size transforms.
// Radix-2 plans are only available for power-of-two lengths, so these
// decide which transform library runs.
package bitint

import "math/bits"

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has one bit set, so clearing the lowest set bit leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
// Subtracting one first keeps exact powers of two unchanged.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Log2 returns the exponent of a power of two, or -1 for anything else.
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	return bits.TrailingZeros(uint(n))
}
