// SPDX-License-Identifier: MIT

// Package analysis turns a captured block into statistics and a spectrum.
package analysis

import "math"

// Hamming window coefficients.
const (
	hammingAlpha = 0.54
	hammingBeta  = 0.46
)

// Window holds per-sample coefficients applied before the transform.
type Window []float64

// NewWindow returns the periodic Hamming window of length n,
// w[i] = 0.54 - 0.46·cos(2πi/n). The first coefficient is 0.08 and the
// peak of 1 is at n/2.
func NewWindow(n int) Window {
	if n <= 0 {
		return nil
	}
	w := make(Window, n)
	for i := range n {
		w[i] = hammingAlpha - hammingBeta*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}
