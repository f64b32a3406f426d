// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"slices"

	"accelerometer/pkg/bitint"
)

// Validate checks the configuration against the hardware and processing limits.
func (c *Config) Validate() error {
	a := c.Audio
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %d out of range [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(a.FramesPerBuffer) || a.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d must be a power of two no larger than %d (try %d)",
			a.FramesPerBuffer, MaxBufferFrames, min(bitint.NextPowerOfTwo(a.FramesPerBuffer), MaxBufferFrames))
	}
	if a.DurationSeconds <= 0 || a.DurationSeconds > MaxDuration {
		return fmt.Errorf("audio.duration_seconds %d out of range [1, %d]", a.DurationSeconds, MaxDuration)
	}
	if a.InputDevice < MinDeviceID || a.OutputDevice < MinDeviceID {
		return fmt.Errorf("audio device ids must be >= %d", MinDeviceID)
	}
	if a.InputChannels < 0 {
		return fmt.Errorf("audio.input_channels must not be negative, got %d", a.InputChannels)
	}
	if !slices.Contains(SampleFormats, a.SampleFormat) {
		return fmt.Errorf("audio.sample_format %q not one of %v", a.SampleFormat, SampleFormats)
	}

	if c.Logging.Enabled {
		if c.Logging.RotationInterval <= 0 {
			return fmt.Errorf("logging.rotation_interval must be positive, got %s", c.Logging.RotationInterval)
		}
		if c.Logging.BaseName == "" {
			return fmt.Errorf("logging.base_name must be set when logging is enabled")
		}
	}

	if c.Analysis.Channel < 0 {
		return fmt.Errorf("analysis.channel must not be negative, got %d", c.Analysis.Channel)
	}
	if c.Session.Cycles < 0 {
		return fmt.Errorf("session.cycles must not be negative, got %d", c.Session.Cycles)
	}
	if c.Session.CapturePoll <= 0 || c.Session.PlaybackPoll <= 0 {
		return fmt.Errorf("session poll intervals must be positive")
	}
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddr == "" {
		return fmt.Errorf("transport.websocket_addr must be set when the websocket transport is enabled")
	}
	return nil
}
