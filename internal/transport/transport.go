// SPDX-License-Identifier: MIT

// Package transport publishes the analysis result of each cycle to
// observers outside the process.
package transport

import (
	"errors"
	"time"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport closed")

// Spectrum is the per-cycle analysis result sent to observers.
type Spectrum struct {
	Cycle      int       `json:"cycle"`
	Time       time.Time `json:"time"`
	SampleRate float64   `json:"sample_rate"`
	Size       int       `json:"size"`
	Channel    int       `json:"channel"`
	Peak       float64   `json:"peak"`
	Average    float64   `json:"average"`
	PeakBin    int       `json:"peak_bin"`
	PeakHz     float64   `json:"peak_hz"`
	Magnitudes []float64 `json:"magnitudes"` // bins 0..N/2
}

// Transport delivers spectra. Implementations must be safe for concurrent
// use and must not retain Magnitudes past Send unless they copy it.
type Transport interface {
	Send(s Spectrum) error
	Close() error
}
