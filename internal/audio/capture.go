// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"accelerometer/internal/log"
)

// CaptureEngine fills a SampleBuffer from an input stream.
type CaptureEngine[T Sample] struct {
	host Host[T]
	poll time.Duration
	stop *atomic.Bool

	// Set by Record before the stream opens, read by the callback.
	buf             *SampleBuffer[T]
	framesPerBuffer int
	done            atomic.Bool
}

// NewCaptureEngine returns an engine polling for completion every poll. A
// non-nil stop flag cancels a running capture when set.
func NewCaptureEngine[T Sample](host Host[T], poll time.Duration, stop *atomic.Bool) *CaptureEngine[T] {
	return &CaptureEngine[T]{host: host, poll: poll, stop: stop}
}

// Record captures until buf is full. It returns ErrDeviceOpen or
// ErrDeviceStart when the stream cannot be brought up, ErrStream when it
// fails to stop cleanly and ErrCancelled when ctx or the stop flag ended the
// wait early. After a cancelled capture buf is only partially filled and
// must not be used as data.
func (c *CaptureEngine[T]) Record(ctx context.Context, p DeviceParameters, buf *SampleBuffer[T]) error {
	if buf.Channels() != p.Channels {
		return fmt.Errorf("%w: buffer has %d channels, stream %d", ErrFormatUnsupported, buf.Channels(), p.Channels)
	}
	if p.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: frames per buffer must be positive, got %d", ErrFormatUnsupported, p.FramesPerBuffer)
	}

	c.buf = buf
	c.framesPerBuffer = p.FramesPerBuffer
	c.done.Store(buf.Full())

	stream, err := c.host.OpenInputStream(p, c.process)
	if err != nil {
		return fmt.Errorf("%w: device %d: %w", ErrDeviceOpen, p.Device, err)
	}
	log.Infof("Capture: recording %d frames from device %d (%d ch @ %.0f Hz)",
		buf.MaxFrameIndex(), p.Device, p.Channels, p.SampleRate)

	return runStream(ctx, stream, &c.done, c.stop, c.poll, func() {
		log.Debugf("Capture: index = %d/%d", buf.FrameIndex(), buf.MaxFrameIndex())
	})
}

// process is the input stream callback. A nil chunk means the device had no
// input for the period; it is committed as silence so the cursor keeps pace
// with the stream.
func (c *CaptureEngine[T]) process(in []T) {
	if c.done.Load() {
		return
	}
	buf := c.buf
	ch := buf.channels

	frames := c.framesPerBuffer
	if in != nil {
		frames = len(in) / ch
	}
	idx := buf.FrameIndex()
	n := min(frames, buf.maxFrameIndex-idx)

	dst := buf.samples[idx*ch : (idx+n)*ch]
	if in == nil {
		clear(dst)
	} else {
		copy(dst, in[:n*ch])
	}

	if buf.advance(n) {
		c.done.Store(true)
	}
}
