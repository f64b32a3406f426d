// SPDX-License-Identifier: MIT
/*
Package audio captures and plays back fixed-length sample blocks.

A block lives in a SampleBuffer that is filled by the real-time callback of
an input stream (CaptureEngine) and later drained by the callback of an
output stream (PlaybackEngine). The callbacks only copy samples and move the
atomic cursor: no allocation, no locks, no I/O. The controlling goroutine
polls for completion and reads the buffer only after the stream has been
stopped, which is the single point where ownership changes hands.

The device layer is abstracted behind Host so that the engines do not depend
on PortAudio directly.
*/
package audio

// Sample is the set of sample formats a stream can carry.
type Sample interface {
	int8 | int16 | int32 | float32
}

// Silence returns the value written when no input is available.
func Silence[T Sample]() T {
	var zero T
	return zero
}

// FormatName returns the configuration name of the sample format T.
func FormatName[T Sample]() string {
	var zero T
	switch any(zero).(type) {
	case int8:
		return "int8"
	case int16:
		return "int16"
	case int32:
		return "int32"
	default:
		return "float32"
	}
}
