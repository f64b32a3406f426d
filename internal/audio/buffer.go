// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"sync/atomic"
)

// MaxSamples bounds the capacity of a single SampleBuffer.
const MaxSamples = 1 << 28

// SampleBuffer is a fixed-capacity block of interleaved samples with a frame
// cursor. The cursor is advanced by exactly one stream callback at a time;
// it is atomic so the controller can report progress while the stream runs.
type SampleBuffer[T Sample] struct {
	samples       []T
	frameIndex    atomic.Int64
	maxFrameIndex int
	channels      int
}

// NewSampleBuffer allocates a buffer of frames × channels samples. Sizes that
// are not positive or exceed MaxSamples return ErrAllocation.
func NewSampleBuffer[T Sample](frames, channels int) (*SampleBuffer[T], error) {
	if frames <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d frames x %d channels", ErrAllocation, frames, channels)
	}
	if frames > MaxSamples/channels {
		return nil, fmt.Errorf("%w: %d frames x %d channels exceeds %d samples", ErrAllocation, frames, channels, MaxSamples)
	}
	return &SampleBuffer[T]{
		samples:       make([]T, frames*channels),
		maxFrameIndex: frames,
		channels:      channels,
	}, nil
}

// FrameIndex returns the current write (capture) or read (playback) cursor.
func (b *SampleBuffer[T]) FrameIndex() int { return int(b.frameIndex.Load()) }

// MaxFrameIndex returns the capacity in frames.
func (b *SampleBuffer[T]) MaxFrameIndex() int { return b.maxFrameIndex }

// Channels returns the number of interleaved channels.
func (b *SampleBuffer[T]) Channels() int { return b.channels }

// Len returns the capacity in samples.
func (b *SampleBuffer[T]) Len() int { return len(b.samples) }

// Full reports whether the cursor reached the end of the buffer.
func (b *SampleBuffer[T]) Full() bool { return b.FrameIndex() == b.maxFrameIndex }

// Samples returns the backing interleaved samples. The slice must not be
// read while a stream bound to the buffer is running.
func (b *SampleBuffer[T]) Samples() []T { return b.samples }

// Reset zeroes the samples and the cursor before the buffer is reused for a
// new capture.
func (b *SampleBuffer[T]) Reset() {
	clear(b.samples)
	b.frameIndex.Store(0)
}

// Rewind moves the cursor back to the first frame without touching the data.
func (b *SampleBuffer[T]) Rewind() {
	b.frameIndex.Store(0)
}

// advance moves the cursor by n frames and reports whether the end was reached.
func (b *SampleBuffer[T]) advance(n int) bool {
	idx := b.frameIndex.Add(int64(n))
	return int(idx) >= b.maxFrameIndex
}
