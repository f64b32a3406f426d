// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"accelerometer/internal/log"
)

// PlaybackEngine drains a filled SampleBuffer to an output stream.
type PlaybackEngine[T Sample] struct {
	host Host[T]
	poll time.Duration

	buf  *SampleBuffer[T]
	done atomic.Bool
}

// NewPlaybackEngine returns an engine polling for completion every poll.
// Playback is not interrupted by the session stop flag, only by ctx.
func NewPlaybackEngine[T Sample](host Host[T], poll time.Duration) *PlaybackEngine[T] {
	return &PlaybackEngine[T]{host: host, poll: poll}
}

// Play rewinds buf and plays it from the first frame. The buffer must not be
// bound to any other running stream.
func (p *PlaybackEngine[T]) Play(ctx context.Context, params DeviceParameters, buf *SampleBuffer[T]) error {
	if buf.Channels() != params.Channels {
		return fmt.Errorf("%w: buffer has %d channels, stream %d", ErrFormatUnsupported, buf.Channels(), params.Channels)
	}

	buf.Rewind()
	p.buf = buf
	p.done.Store(buf.MaxFrameIndex() == 0)

	stream, err := p.host.OpenOutputStream(params, p.process)
	if err != nil {
		return fmt.Errorf("%w: device %d: %w", ErrDeviceOpen, params.Device, err)
	}
	log.Infof("Playback: playing %d frames on device %d", buf.MaxFrameIndex(), params.Device)

	if err := runStream(ctx, stream, &p.done, nil, p.poll, nil); err != nil {
		return err
	}
	log.Info("Playback: done")
	return nil
}

// process is the output stream callback. The chunk holding the last frame is
// zero-padded so the stream always completes a whole buffer period; chunks
// after completion are silence.
func (p *PlaybackEngine[T]) process(out []T) {
	if p.done.Load() {
		clear(out)
		return
	}
	buf := p.buf
	ch := buf.channels

	frames := len(out) / ch
	idx := buf.FrameIndex()
	left := buf.maxFrameIndex - idx

	if left <= frames {
		n := copy(out, buf.samples[idx*ch:buf.maxFrameIndex*ch])
		clear(out[n:])
		buf.advance(left)
		p.done.Store(true)
		return
	}

	copy(out, buf.samples[idx*ch:(idx+frames)*ch])
	buf.advance(frames)
}
