// SPDX-License-Identifier: MIT

// Package utils holds signal generators and fakes shared by tests.
package utils

import (
	"math"
	"sync"

	"accelerometer/internal/audio"
	"accelerometer/internal/transport"
)

// MockTransport records every spectrum it is sent. Err, when set, is
// returned from Send after recording.
type MockTransport struct {
	mu     sync.Mutex
	Last   transport.Spectrum
	Calls  int
	Closed bool
	Err    error
}

var _ transport.Transport = (*MockTransport)(nil)

// Send stores a copy of s for later inspection instead of transmitting.
func (m *MockTransport) Send(s transport.Spectrum) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Magnitudes = append([]float64(nil), s.Magnitudes...)
	m.Last = s
	m.Calls++
	return m.Err
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Sent returns the number of Send calls and the last spectrum.
func (m *MockTransport) Sent() (int, transport.Spectrum) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls, m.Last
}

// GenerateSineWave returns size samples of a sine at frequency Hz with the
// given peak amplitude, rounded to T.
func GenerateSineWave[T audio.Sample](size int, sampleRate, frequency, amplitude float64) []T {
	buffer := make([]T, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = toSample[T](amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return buffer
}

// GenerateComplexWave returns a 440 Hz fundamental with its second and third
// harmonics, peaking at amplitude.
func GenerateComplexWave[T audio.Sample](size int, sampleRate, amplitude float64) []T {
	buffer := make([]T, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = toSample[T](signal * amplitude)
	}
	return buffer
}

// Interleave merges equally long channels into one interleaved block.
func Interleave[T audio.Sample](channels ...[]T) []T {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]T, frames*len(channels))
	for c, ch := range channels {
		for i := range frames {
			out[i*len(channels)+c] = ch[i]
		}
	}
	return out
}

func toSample[T audio.Sample](v float64) T {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return T(v)
	}
	return T(math.Round(v))
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	startBin = max(startBin, 0)
	endBin = min(endBin, len(magnitudes)-1)

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}
