// SPDX-License-Identifier: MIT
package transport

import (
	"accelerometer/internal/log"
)

// LoggingTransport reports a one-line summary of every spectrum at debug level.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	log.Debug("Transport: using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the summary of s. It never fails.
func (lt *LoggingTransport) Send(s Spectrum) error {
	log.Debugf("Transport: cycle %d peak bin %d (%.2f Hz) of %d, amplitude peak %.0f avg %.2f",
		s.Cycle, s.PeakBin, s.PeakHz, s.Size, s.Peak, s.Average)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error { return nil }

var _ Transport = (*LoggingTransport)(nil)
