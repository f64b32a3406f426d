// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"accelerometer/internal/audio"
)

// ErrSize is returned for an analyzer that cannot be built for the
// requested length or channel.
var ErrSize = errors.New("invalid analysis size")

// SpectralAnalyzer computes the forward real transform of one channel of a
// block. The transform plan, window and scratch buffers are allocated once
// at construction; PrepareFrame and Transform do not allocate.
type SpectralAnalyzer[T audio.Sample] struct {
	n       int
	channel int
	scale   float64

	window   Window
	windowed bool

	plan  *fourier.FFT
	in    []float64    // scaled, optionally windowed real input
	half  []complex128 // n/2+1 independent bins
	frame []complex128 // full conjugate-symmetric spectrum
}

// NewSpectralAnalyzer plans a transform of length n over the given channel
// (0-based) of interleaved blocks. Scaling starts at 1 and the window is
// disabled.
func NewSpectralAnalyzer[T audio.Sample](n, channel int) (*SpectralAnalyzer[T], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: length %d", ErrSize, n)
	}
	if channel < 0 {
		return nil, fmt.Errorf("%w: channel %d", ErrSize, channel)
	}
	return &SpectralAnalyzer[T]{
		n:       n,
		channel: channel,
		scale:   1,
		window:  NewWindow(n),
		plan:    fourier.NewFFT(n),
		in:      make([]float64, n),
		half:    make([]complex128, n/2+1),
		frame:   make([]complex128, n),
	}, nil
}

// Size returns the transform length N.
func (a *SpectralAnalyzer[T]) Size() int { return a.n }

// Channel returns the analysed channel.
func (a *SpectralAnalyzer[T]) Channel() int { return a.channel }

// Scale returns the factor applied to every sample.
func (a *SpectralAnalyzer[T]) Scale() float64 { return a.scale }

// SetScale replaces the factor applied to every sample.
func (a *SpectralAnalyzer[T]) SetScale(scale float64) { a.scale = scale }

// EnableWindow applies the Hamming window in PrepareFrame.
func (a *SpectralAnalyzer[T]) EnableWindow() { a.windowed = true }

// DisableWindow leaves the input unwindowed.
func (a *SpectralAnalyzer[T]) DisableWindow() { a.windowed = false }

// WindowEnabled reports whether PrepareFrame applies the window.
func (a *SpectralAnalyzer[T]) WindowEnabled() bool { return a.windowed }

// Window returns the coefficients applied when the window is enabled.
func (a *SpectralAnalyzer[T]) Window() Window { return a.window }

// Input returns the prepared transform input.
func (a *SpectralAnalyzer[T]) Input() []float64 { return a.in }

// Frame returns the spectrum of the last Transform.
func (a *SpectralAnalyzer[T]) Frame() []complex128 { return a.frame }

// PrepareFrame loads sample i·stride+channel into position i of the
// transform input, applying the scale and, when enabled, the window. The
// input is zeroed first so a short block is zero-padded. A stride below 1
// reads consecutive samples.
func (a *SpectralAnalyzer[T]) PrepareFrame(samples []T, stride int) {
	clear(a.in)
	stride = max(stride, 1)
	for i := range a.n {
		idx := i*stride + a.channel
		if idx >= len(samples) {
			break
		}
		v := a.scale * float64(samples[idx])
		if a.windowed {
			v *= a.window[i]
		}
		a.in[i] = v
	}
}

// Transform runs the planned transform on the prepared input and returns the
// frame, which is overwritten by the next call. Bins above N/2 are the
// complex conjugates of their mirror bins.
func (a *SpectralAnalyzer[T]) Transform() []complex128 {
	a.plan.Coefficients(a.half, a.in)
	copy(a.frame, a.half)
	for k := len(a.half); k < a.n; k++ {
		a.frame[k] = cmplx.Conj(a.frame[a.n-k])
	}
	return a.frame
}

// Magnitudes writes the magnitude of bins 0..N/2 into dst, growing it when
// it is too short, and returns it.
func (a *SpectralAnalyzer[T]) Magnitudes(dst []float64) []float64 {
	if cap(dst) < len(a.half) {
		dst = make([]float64, len(a.half))
	}
	dst = dst[:len(a.half)]
	for k := range dst {
		dst[k] = cmplx.Abs(a.frame[k])
	}
	return dst
}

// PeakBin returns the bin in 1..N/2 with the largest magnitude, or 0 when the
// frame carries no energy outside DC.
func (a *SpectralAnalyzer[T]) PeakBin() int {
	peak, best := 0, 0.0
	for k := 1; k < len(a.half); k++ {
		if m := cmplx.Abs(a.frame[k]); m > best {
			peak, best = k, m
		}
	}
	return peak
}

// FrequencyForBin returns the centre frequency of bin k in Hz.
func (a *SpectralAnalyzer[T]) FrequencyForBin(k int, sampleRate float64) float64 {
	if k < 0 || k >= a.n {
		return 0
	}
	return float64(k) * sampleRate / float64(a.n)
}
