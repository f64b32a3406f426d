// SPDX-License-Identifier: MIT
/*
Package bitint holds the power-of-two helpers used to validate and round
audio buffer sizes. Everything here is allocation free and O(1).

	frames := bitint.NextPowerOfTwo(500) // 512
	ok := bitint.IsPowerOfTwo(frames)    // true
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Non-positive
// sizes round up to 1.
//
// size-1 is taken first so that exact powers of two are preserved:
// bits.Len(7) = 3 gives 1<<3 = 8 for an input of 8, where bits.Len(8)
// would have doubled it.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has a single bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
