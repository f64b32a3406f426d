// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"accelerometer/internal/audio"
)

// Stats summarises the amplitude of a block.
type Stats struct {
	Peak    float64 // largest absolute sample value
	Average float64 // mean absolute sample value
}

// Measure computes Stats over all samples of a block in a single pass. An
// empty block yields zero Stats. Values are float64 so the magnitude of the
// most negative integer sample is representable.
func Measure[T audio.Sample](samples []T) Stats {
	if len(samples) == 0 {
		return Stats{}
	}
	var peak, sum float64
	for _, s := range samples {
		v := math.Abs(float64(s))
		sum += v
		if v > peak {
			peak = v
		}
	}
	return Stats{Peak: peak, Average: sum / float64(len(samples))}
}
