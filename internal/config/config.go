// SPDX-License-Identifier: MIT

// Package config loads the instrument settings from YAML, applies .env and
// environment overrides and validates the result.
package config

import (
	"time"
)

// Core configuration constants that define the boundaries and defaults
// of an acquisition session.
const (
	DefaultConfigFile      = "Accelerometer.yaml"
	DefaultSampleRate      = 44100 // Hz
	DefaultFramesPerBuffer = 512
	DefaultDuration        = 5 // seconds per block
	DefaultDeviceID        = MinDeviceID
	DefaultVolume          = 50
	DefaultSampleFormat    = "int16"
	DefaultBaseName        = "Accelerometer"
	DefaultExtension       = "acc"
	DefaultRotation        = 24 * time.Hour
	DefaultCapturePoll     = time.Second
	DefaultPlaybackPoll    = 100 * time.Millisecond
	DefaultWebSocketAddr   = ":8080"

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents the system default device
	MinSampleRate   = 8000   // Hz
	MaxSampleRate   = 192000 // Hz
	MaxBufferFrames = 8192   // power of two
	MaxDuration     = 3600   // seconds
)

// SampleFormats lists the accepted audio.sample_format values.
var SampleFormats = []string{"int8", "int16", "int32", "float32"}

// Config is the complete runtime configuration, loaded from YAML.
type Config struct {
	Debug     int             `yaml:"debug"`     // Debug level; any positive value enables debug logging.
	LogLevel  string          `yaml:"log_level"` // Logging level ("debug", "info", "warn", "error").
	Audio     AudioConfig     `yaml:"audio"`
	Logging   LoggingConfig   `yaml:"logging"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Session   SessionConfig   `yaml:"session"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds the device and block acquisition settings.
type AudioConfig struct {
	SampleRate      int    `yaml:"sample_rate"`       // Sample rate in Hz.
	FramesPerBuffer int    `yaml:"frames_per_buffer"` // Frames handed to each callback invocation.
	DurationSeconds int    `yaml:"duration_seconds"`  // Length of one captured block.
	InputDevice     int    `yaml:"input_device"`      // PortAudio device index (-1 for default).
	OutputDevice    int    `yaml:"output_device"`     // PortAudio device index (-1 for default).
	DefaultIO       bool   `yaml:"default_io"`        // Force the system default input and output.
	InputChannels   int    `yaml:"input_channels"`    // 0 selects the device maximum.
	LowLatency      bool   `yaml:"low_latency"`       // Request the device's low latency.
	Volume          int    `yaml:"volume"`            // Input volume; recorded only.
	SampleFormat    string `yaml:"sample_format"`     // int8, int16, int32 or float32.
	Playback        bool   `yaml:"playback"`          // Play each block back after capture.
}

// LoggingConfig controls the rotating raw sample log.
type LoggingConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Dir              string        `yaml:"dir"`
	BaseName         string        `yaml:"base_name"`
	Extension        string        `yaml:"extension"`
	RotationInterval time.Duration `yaml:"rotation_interval"`
	AlignToDay       bool          `yaml:"align_to_day"` // Rotate on interval boundaries (midnight UTC for 24h).
}

// AnalysisConfig controls the spectral analysis of each block.
type AnalysisConfig struct {
	Scale    float64 `yaml:"scale"`     // Linear scale applied to raw counts.
	Window   bool    `yaml:"window"`    // Apply the Hamming window.
	Channel  int     `yaml:"channel"`   // Channel analysed in interleaved input.
	DumpFile string  `yaml:"dump_file"` // Write the spectrum here after each cycle when set.
}

// SessionConfig controls how cycles are sequenced.
type SessionConfig struct {
	Cycles        int           `yaml:"cycles"` // 0 repeats until stopped.
	CycleInterval time.Duration `yaml:"cycle_interval"`
	CapturePoll   time.Duration `yaml:"capture_poll"`
	PlaybackPoll  time.Duration `yaml:"playback_poll"`
	Note          string        `yaml:"note"` // Written into every log header.
}

// RecordingConfig controls the optional WAV snapshot of each block.
type RecordingConfig struct {
	WAVExport bool   `yaml:"wav_export"`
	WAVDir    string `yaml:"wav_dir"`
}

// TransportConfig controls publication of the spectrum to live clients.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddr    string `yaml:"websocket_addr"`
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Debug:    0,
		LogLevel: "info",
		Audio: AudioConfig{
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			DurationSeconds: DefaultDuration,
			InputDevice:     DefaultDeviceID,
			OutputDevice:    DefaultDeviceID,
			LowLatency:      true,
			Volume:          DefaultVolume,
			SampleFormat:    DefaultSampleFormat,
			Playback:        true,
		},
		Logging: LoggingConfig{
			Enabled:          true,
			Dir:              ".",
			BaseName:         DefaultBaseName,
			Extension:        DefaultExtension,
			RotationInterval: DefaultRotation,
			AlignToDay:       true,
		},
		Analysis: AnalysisConfig{
			Scale: 1.0,
		},
		Session: SessionConfig{
			Cycles:       1,
			CapturePoll:  DefaultCapturePoll,
			PlaybackPoll: DefaultPlaybackPoll,
		},
		Recording: RecordingConfig{
			WAVDir: "./recordings",
		},
		Transport: TransportConfig{
			WebSocketAddr: DefaultWebSocketAddr,
		},
	}
}

// TotalFrames returns the number of frames in one captured block.
func (c *Config) TotalFrames() int {
	return c.Audio.DurationSeconds * c.Audio.SampleRate
}
