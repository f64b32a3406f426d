// SPDX-License-Identifier: MIT

// Package audiotest provides an in-memory audio.Host. Streams invoke their
// callback from a separate goroutine, like a real audio thread, until Stop.
package audiotest

import (
	"errors"
	"sync"
	"time"

	"accelerometer/internal/audio"
)

// DefaultPeriod is the pause between two callbacks of a fake stream.
const DefaultPeriod = 100 * time.Microsecond

// Host is a fake audio.Host with a single duplex device (id 0) unless
// Devices is replaced. Error fields make the matching operation fail.
type Host[T audio.Sample] struct {
	DeviceList []audio.DeviceInfo
	DefaultIn  int
	DefaultOut int
	Period     time.Duration

	DevicesErr    error
	FormatErr     error
	OpenInputErr  error
	OpenOutputErr error
	StartErr      error
	StopErr       error

	// Signal supplies captured samples by absolute stream frame and channel.
	// A nil Signal yields zeros.
	Signal func(frame, channel int) T
	// Underrun reports chunks (counted from 0) that deliver no input.
	Underrun func(chunk int) bool

	mu          sync.Mutex
	played      []T
	inputOpens  int
	outputOpens int
	lastInput   audio.DeviceParameters
	lastOutput  audio.DeviceParameters
}

var _ audio.Host[int16] = (*Host[int16])(nil)

// NewHost returns a host with one device of the given channel count.
func NewHost[T audio.Sample](channels int) *Host[T] {
	return &Host[T]{
		DeviceList: []audio.DeviceInfo{{
			ID:                      0,
			Name:                    "fake duplex",
			MaxInputChannels:        channels,
			MaxOutputChannels:       channels,
			DefaultSampleRate:       8000,
			DefaultLowInputLatency:  5 * time.Millisecond,
			DefaultHighInputLatency: 50 * time.Millisecond,
			DefaultLowOutputLatency: 5 * time.Millisecond,
		}},
		Period: DefaultPeriod,
	}
}

func (h *Host[T]) Devices() ([]audio.DeviceInfo, error) {
	if h.DevicesErr != nil {
		return nil, h.DevicesErr
	}
	return h.DeviceList, nil
}

func (h *Host[T]) DefaultInputDevice() (int, error)  { return h.DefaultIn, nil }
func (h *Host[T]) DefaultOutputDevice() (int, error) { return h.DefaultOut, nil }

func (h *Host[T]) IsFormatSupported(in, out *audio.DeviceParameters) error {
	return h.FormatErr
}

func (h *Host[T]) OpenInputStream(p audio.DeviceParameters, callback func(in []T)) (audio.Stream, error) {
	if h.OpenInputErr != nil {
		return nil, h.OpenInputErr
	}
	h.mu.Lock()
	h.inputOpens++
	h.lastInput = p
	h.mu.Unlock()

	chunk := make([]T, p.FramesPerBuffer*p.Channels)
	n := 0
	return h.newStream(func() {
		if h.Underrun != nil && h.Underrun(n) {
			callback(nil)
		} else {
			for i := range chunk {
				frame := n*p.FramesPerBuffer + i/p.Channels
				if h.Signal != nil {
					chunk[i] = h.Signal(frame, i%p.Channels)
				}
			}
			callback(chunk)
		}
		n++
	}), nil
}

func (h *Host[T]) OpenOutputStream(p audio.DeviceParameters, callback func(out []T)) (audio.Stream, error) {
	if h.OpenOutputErr != nil {
		return nil, h.OpenOutputErr
	}
	h.mu.Lock()
	h.outputOpens++
	h.lastOutput = p
	h.played = h.played[:0]
	h.mu.Unlock()

	chunk := make([]T, p.FramesPerBuffer*p.Channels)
	return h.newStream(func() {
		callback(chunk)
		h.mu.Lock()
		h.played = append(h.played, chunk...)
		h.mu.Unlock()
	}), nil
}

// Played returns everything written to the last output stream, including the
// silence delivered after the buffer was drained.
func (h *Host[T]) Played() []T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]T(nil), h.played...)
}

// Opens returns how many input and output streams were opened.
func (h *Host[T]) Opens() (input, output int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inputOpens, h.outputOpens
}

// LastParameters returns the parameters of the last opened input and output streams.
func (h *Host[T]) LastParameters() (input, output audio.DeviceParameters) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastInput, h.lastOutput
}

func (h *Host[T]) newStream(tick func()) *Stream {
	period := h.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Stream{tick: tick, period: period, startErr: h.StartErr, stopErr: h.StopErr}
}

// Stream is a fake stream driving its callback from a goroutine.
type Stream struct {
	tick     func()
	period   time.Duration
	startErr error
	stopErr  error

	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
	closed  bool
}

var errClosed = errors.New("stream closed")

func (s *Stream) Start() error {
	if s.closed {
		return errClosed
	}
	if s.startErr != nil {
		return s.startErr
	}
	s.stop = make(chan struct{})
	s.running = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.stop:
				return
			default:
			}
			s.tick()
			time.Sleep(s.period)
		}
	}()
	return nil
}

// Stop returns once the callback goroutine has exited.
func (s *Stream) Stop() error {
	if s.running {
		close(s.stop)
		s.wg.Wait()
		s.running = false
	}
	return s.stopErr
}

func (s *Stream) Close() error {
	if s.running {
		_ = s.Stop()
	}
	s.closed = true
	return nil
}
