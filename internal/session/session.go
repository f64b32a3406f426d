// SPDX-License-Identifier: MIT

// Package session sequences acquisition cycles: capture a block, measure
// it, play it back, persist it to the rotating raw log, analyse its
// spectrum and check whether the log is due for rotation.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"accelerometer/internal/analysis"
	"accelerometer/internal/audio"
	"accelerometer/internal/config"
	"accelerometer/internal/log"
	"accelerometer/internal/logfile"
	"accelerometer/internal/transport"
)

// retryDelay is the minimum pause after a failed cycle before Run retries.
const retryDelay = time.Second

// Option customises a Session.
type Option func(*settings)

type settings struct {
	now       func() time.Time
	transport transport.Transport
	retry     time.Duration
}

// WithClock replaces time.Now for file stamps and rotation checks.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithTransport publishes every analysed spectrum to t. The session closes
// t on Close.
func WithTransport(t transport.Transport) Option {
	return func(s *settings) { s.transport = t }
}

// WithRetryDelay sets the pause after a failed cycle.
func WithRetryDelay(d time.Duration) Option {
	return func(s *settings) { s.retry = d }
}

// Session owns every resource of one acquisition run: the sample buffer,
// both engines, the analyzer and the raw log. It is built once and driven
// by Run or RunCycle from a single goroutine; State, Stats, Err, Code and
// Stop may be called from any goroutine.
type Session[T audio.Sample] struct {
	cfg       *config.Config
	host      audio.Host[T]
	now       func() time.Time
	transport transport.Transport
	retry     time.Duration

	id       uuid.UUID
	input    audio.DeviceParameters
	output   audio.DeviceParameters
	buf      *audio.SampleBuffer[T]
	capture  *audio.CaptureEngine[T]
	playback *audio.PlaybackEngine[T]
	analyzer *analysis.SpectralAnalyzer[T]
	logs     *logfile.Manager
	mags     []float64
	wavDir   string // empty when WAV export is off

	stop     atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	mu           sync.Mutex
	state        State
	err          *Error
	stats        analysis.Stats
	cycles       int
	onTransition func(from, to State)
}

// New resolves the configured devices, allocates the block buffer and the
// analyzer and opens the first log file. Device resolution failures carry
// CodeNoDevice and allocation failures CodeNoMem. A log file that cannot be
// opened only disables persistence.
func New[T audio.Sample](cfg *config.Config, host audio.Host[T], opts ...Option) (*Session[T], error) {
	st := settings{now: time.Now, retry: retryDelay}
	for _, opt := range opts {
		opt(&st)
	}
	if st.transport == nil {
		st.transport = transport.NewLoggingTransport()
	}

	s := &Session[T]{
		cfg:       cfg,
		host:      host,
		now:       st.now,
		transport: st.transport,
		retry:     st.retry,
		id:        uuid.New(),
		stopCh:    make(chan struct{}),
	}

	inputDevice, outputDevice := cfg.Audio.InputDevice, cfg.Audio.OutputDevice
	if cfg.Audio.DefaultIO {
		inputDevice, outputDevice = config.MinDeviceID, config.MinDeviceID
	}

	var err error
	s.input, err = audio.InputParameters(host, audio.StreamConfig{
		Device:          inputDevice,
		Channels:        cfg.Audio.InputChannels,
		SampleRate:      float64(cfg.Audio.SampleRate),
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		LowLatency:      cfg.Audio.LowLatency,
	})
	if err != nil {
		return nil, &Error{Code: CodeNoDevice, Op: "resolve input device", Err: err}
	}

	s.output = audio.DeviceParameters{Device: outputDevice, Channels: s.input.Channels}
	if cfg.Audio.Playback {
		s.output, err = audio.OutputParameters(host, audio.StreamConfig{
			Device:          outputDevice,
			Channels:        s.input.Channels,
			SampleRate:      float64(cfg.Audio.SampleRate),
			FramesPerBuffer: cfg.Audio.FramesPerBuffer,
			LowLatency:      cfg.Audio.LowLatency,
		})
		if err != nil {
			return nil, &Error{Code: CodeNoDevice, Op: "resolve output device", Err: err}
		}
	}

	s.buf, err = audio.NewSampleBuffer[T](cfg.TotalFrames(), s.input.Channels)
	if err != nil {
		return nil, &Error{Code: CodeNoMem, Op: "allocate sample buffer", Err: err}
	}

	if cfg.Analysis.Channel >= s.input.Channels {
		return nil, &Error{Code: CodeNoDevice, Op: "configure analysis", Err: fmt.Errorf(
			"%w: channel %d of %d", audio.ErrFormatUnsupported, cfg.Analysis.Channel, s.input.Channels)}
	}
	s.analyzer, err = analysis.NewSpectralAnalyzer[T](cfg.TotalFrames(), cfg.Analysis.Channel)
	if err != nil {
		return nil, &Error{Code: CodeNoMem, Op: "plan transform", Err: err}
	}
	s.analyzer.SetScale(cfg.Analysis.Scale)
	if cfg.Analysis.Window {
		s.analyzer.EnableWindow()
	}
	s.mags = make([]float64, s.analyzer.Size()/2+1)

	s.capture = audio.NewCaptureEngine(host, cfg.Session.CapturePoll, &s.stop)
	s.playback = audio.NewPlaybackEngine(host, cfg.Session.PlaybackPoll)

	if cfg.Audio.Volume != config.DefaultVolume {
		log.Warnf("Session: volume %d requested, volume control is not implemented", cfg.Audio.Volume)
	}

	if cfg.Recording.WAVExport {
		if err := os.MkdirAll(cfg.Recording.WAVDir, 0o755); err != nil {
			log.Warnf("Session: WAV export disabled: %v", err)
		} else {
			s.wavDir = cfg.Recording.WAVDir
		}
	}

	s.logs = logfile.NewManager(logfile.Options{
		Enabled: cfg.Logging.Enabled,
		Namer: logfile.Namer{
			Dir:  cfg.Logging.Dir,
			Base: cfg.Logging.BaseName,
			Ext:  cfg.Logging.Extension,
		},
		Policy: logfile.Policy{
			Interval:   cfg.Logging.RotationInterval,
			AlignToDay: cfg.Logging.AlignToDay,
		},
		Metadata: logfile.Metadata{
			Session:         s.id.String(),
			InputDevice:     s.input.Device,
			OutputDevice:    s.output.Device,
			FramesPerBuffer: cfg.Audio.FramesPerBuffer,
			SampleRate:      cfg.Audio.SampleRate,
			Channels:        s.input.Channels,
			Volume:          cfg.Audio.Volume,
			Format:          audio.FormatName[T](),
			Note:            cfg.Session.Note,
		},
	})
	if s.logs.Enabled() {
		if err := s.logs.Open(s.now()); err != nil {
			s.setError(&Error{Code: CodeNoLogfile, Op: "open log file", Err: err})
		}
	}

	log.Infof("Session %s: %d frames x %d ch (%s) at %d Hz, input %d, output %d",
		s.id, s.buf.MaxFrameIndex(), s.input.Channels, audio.FormatName[T](),
		cfg.Audio.SampleRate, s.input.Device, s.output.Device)
	return s, nil
}

// ID returns the session identifier written into every log header.
func (s *Session[T]) ID() uuid.UUID { return s.id }

// Buffer returns the block buffer. Its contents are only valid while no
// cycle is running.
func (s *Session[T]) Buffer() *audio.SampleBuffer[T] { return s.buf }

// Analyzer returns the spectral analyzer holding the last spectrum.
func (s *Session[T]) Analyzer() *analysis.SpectralAnalyzer[T] { return s.analyzer }

// Logs returns the raw log manager.
func (s *Session[T]) Logs() *logfile.Manager { return s.logs }

// InputParameters returns the resolved capture stream parameters.
func (s *Session[T]) InputParameters() audio.DeviceParameters { return s.input }

// OnTransition registers fn to be called on every state change, from the
// goroutine running the cycle. It must be set before Run.
func (s *Session[T]) OnTransition(fn func(from, to State)) {
	s.mu.Lock()
	s.onTransition = fn
	s.mu.Unlock()
}

// Stop asks the session to finish. A capture in progress is abandoned at the
// next poll; playback runs to completion.
func (s *Session[T]) Stop() {
	s.stop.Store(true)
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Stopped reports whether Stop was called.
func (s *Session[T]) Stopped() bool { return s.stop.Load() }

func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns the statistics of the last completed capture.
func (s *Session[T]) Stats() analysis.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Cycles returns the number of cycles run so far, failed ones included.
func (s *Session[T]) Cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// Err returns the last recorded failure, or nil.
func (s *Session[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return nil
	}
	return s.err
}

// Code returns the code of the last recorded failure.
func (s *Session[T]) Code() Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return CodeNone
	}
	return s.err.Code
}

func (s *Session[T]) setError(e *Error) {
	s.mu.Lock()
	s.err = e
	s.mu.Unlock()
}

func (s *Session[T]) transition(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	fn := s.onTransition
	s.mu.Unlock()

	log.Debugf("Session: %s -> %s", from, to)
	if fn != nil {
		fn(from, to)
	}
}

// Run repeats cycles until Stop, ctx cancellation or the configured number of
// cycles. A failed cycle is followed by a pause of at least the retry delay.
// Run returns ctx.Err() when cancelled and otherwise the error of the last
// cycle, so a stopped session returns nil.
func (s *Session[T]) Run(ctx context.Context) error {
	for n := 0; s.cfg.Session.Cycles == 0 || n < s.cfg.Session.Cycles; n++ {
		if s.stop.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.RunCycle(ctx)
		switch {
		case errors.Is(err, audio.ErrCancelled):
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return nil
		case err != nil && s.cfg.Session.Cycles != 0 && n == s.cfg.Session.Cycles-1:
			return err
		}

		pause := s.cfg.Session.CycleInterval
		if err != nil {
			pause = max(pause, s.retry)
		}
		if pause > 0 && !s.sleep(ctx, pause) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return nil
		}
	}
	return nil
}

// sleep waits for d and reports false when interrupted by ctx or Stop.
func (s *Session[T]) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-s.stopCh:
		return false
	}
}

// RunCycle performs one cycle and clears the failure of the previous one. A
// device failure moves the session to Failed, skips the data stages and
// returns a *Error; a capture cancelled by Stop or ctx returns an error
// wrapping audio.ErrCancelled. Both still run the rotation check before
// returning to Idle.
func (s *Session[T]) RunCycle(ctx context.Context) error {
	s.setError(nil)
	defer func() {
		s.rotationCheck()
		s.mu.Lock()
		s.cycles++
		s.mu.Unlock()
		s.transition(Idle)
	}()

	if err := s.host.IsFormatSupported(&s.input, nil); err != nil {
		return s.fail(&Error{Code: CodeNoDevice, Op: "check capture format", Err: err})
	}

	s.buf.Reset()
	s.transition(Capturing)
	if err := s.capture.Record(ctx, s.input, s.buf); err != nil {
		if errors.Is(err, audio.ErrCancelled) {
			log.Infof("Session: capture cancelled at frame %d/%d", s.buf.FrameIndex(), s.buf.MaxFrameIndex())
			return err
		}
		return s.fail(&Error{Code: deviceCode(err, true), Op: "capture", Err: err})
	}
	s.transition(Complete)

	stats := analysis.Measure(s.buf.Samples())
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	log.Infof("Session: sample max amplitude = %.0f, sample average = %f", stats.Peak, stats.Average)

	if s.cfg.Audio.Playback {
		s.transition(Playing)
		if err := s.playback.Play(ctx, s.output, s.buf); err != nil {
			if errors.Is(err, audio.ErrCancelled) {
				log.Info("Session: playback cancelled")
				return err
			}
			return s.fail(&Error{Code: deviceCode(err, false), Op: "playback", Err: err})
		}
	}

	s.transition(Persisting)
	s.persist()

	s.transition(Analyzing)
	s.analyze()
	return nil
}

func (s *Session[T]) fail(e *Error) error {
	log.Errorf("Session: %v", e)
	s.setError(e)
	s.transition(Failed)
	return e
}

// persist appends the block to the raw log and, when enabled, exports it as
// WAV. Failures are logged and never fail the cycle.
func (s *Session[T]) persist() {
	if s.logs.Enabled() {
		err := logfile.WriteSamples(s.logs, s.buf.Samples())
		if err == nil {
			err = s.logs.Flush()
		}
		if err != nil {
			s.setError(&Error{Code: CodeNoLogfile, Op: "write log file", Err: err})
		}
	}

	if s.wavDir != "" {
		name := fmt.Sprintf("%s_%s_%d.wav", s.cfg.Logging.BaseName,
			s.now().UTC().Format("20060102_150405"), s.Cycles()+1)
		path := filepath.Join(s.wavDir, name)
		if err := audio.ExportWAV(path, s.buf, s.cfg.Audio.SampleRate); err != nil {
			log.Warnf("Session: WAV export failed: %v", err)
		} else {
			log.Infof("Session: block saved to %s", path)
		}
	}
}

// analyze transforms the block, then dumps and publishes the spectrum.
func (s *Session[T]) analyze() {
	s.analyzer.PrepareFrame(s.buf.Samples(), s.buf.Channels())
	frame := s.analyzer.Transform()
	s.mags = s.analyzer.Magnitudes(s.mags)

	sampleRate := float64(s.cfg.Audio.SampleRate)
	peak := s.analyzer.PeakBin()
	peakHz := s.analyzer.FrequencyForBin(peak, sampleRate)
	log.Infof("Session: spectral peak at bin %d (%.2f Hz)", peak, peakHz)

	if path := s.cfg.Analysis.DumpFile; path != "" {
		if err := analysis.DumpFile(path, frame); err != nil {
			log.Warnf("Session: spectrum dump failed: %v", err)
		}
	}

	stats := s.Stats()
	err := s.transport.Send(transport.Spectrum{
		Cycle:      s.Cycles() + 1,
		Time:       s.now().UTC(),
		SampleRate: sampleRate,
		Size:       s.analyzer.Size(),
		Channel:    s.analyzer.Channel(),
		Peak:       stats.Peak,
		Average:    stats.Average,
		PeakBin:    peak,
		PeakHz:     peakHz,
		Magnitudes: s.mags,
	})
	if err != nil {
		log.Warnf("Session: publishing spectrum failed: %v", err)
	}
}

func (s *Session[T]) rotationCheck() {
	s.transition(RotationCheck)
	if !s.logs.Enabled() {
		return
	}
	if _, err := s.logs.CheckRotation(s.now()); err != nil {
		s.setError(&Error{Code: CodeNoLogfile, Op: "rotate log file", Err: err})
	}
}

// Close flushes and closes the raw log and the transport.
func (s *Session[T]) Close() error {
	return errors.Join(s.logs.Close(), s.transport.Close())
}
