// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAllocation        = errors.New("sample buffer allocation failed")
	ErrNoDevice          = errors.New("no such audio device")
	ErrFormatUnsupported = errors.New("stream format not supported")
	ErrDeviceOpen        = errors.New("could not open stream")
	ErrDeviceStart       = errors.New("could not start stream")
	ErrStream            = errors.New("stream error")
	ErrCancelled         = errors.New("stream cancelled")
)

// DeviceInfo describes the capabilities of one audio device.
type DeviceInfo struct {
	ID                       int
	Name                     string
	MaxInputChannels         int
	MaxOutputChannels        int
	DefaultSampleRate        float64
	DefaultLowInputLatency   time.Duration
	DefaultHighInputLatency  time.Duration
	DefaultLowOutputLatency  time.Duration
	DefaultHighOutputLatency time.Duration
}

// DeviceParameters fully determine one stream.
type DeviceParameters struct {
	Device          int
	Channels        int
	SampleRate      float64
	FramesPerBuffer int
	Latency         time.Duration
}

// Stream is an opened audio stream bound to a callback.
type Stream interface {
	Start() error
	// Stop returns after the last pending callback has completed.
	Stop() error
	Close() error
}

// Host is the audio subsystem the engines run on. OpenInputStream callbacks
// receive a nil slice when the device delivered no input for the period.
type Host[T Sample] interface {
	Devices() ([]DeviceInfo, error)
	DefaultInputDevice() (int, error)
	DefaultOutputDevice() (int, error)
	// IsFormatSupported checks the input and/or output parameters; either
	// may be nil.
	IsFormatSupported(in, out *DeviceParameters) error
	OpenInputStream(p DeviceParameters, callback func(in []T)) (Stream, error)
	OpenOutputStream(p DeviceParameters, callback func(out []T)) (Stream, error)
}

// StreamConfig is the configured side of a stream before the device has
// been queried.
type StreamConfig struct {
	Device          int // -1 selects the default device
	Channels        int // 0 selects the device maximum
	SampleRate      float64
	FramesPerBuffer int
	LowLatency      bool
}

// LookupDevice returns the device with the given id.
func LookupDevice(devices []DeviceInfo, id int) (DeviceInfo, error) {
	for _, d := range devices {
		if d.ID == id {
			return d, nil
		}
	}
	return DeviceInfo{}, fmt.Errorf("%w: %d", ErrNoDevice, id)
}

// InputParameters resolves c against the capabilities of the input device.
func InputParameters[T Sample](h Host[T], c StreamConfig) (DeviceParameters, error) {
	id := c.Device
	if id < 0 {
		def, err := h.DefaultInputDevice()
		if err != nil {
			return DeviceParameters{}, fmt.Errorf("%w: default input: %w", ErrNoDevice, err)
		}
		id = def
	}
	info, err := deviceInfo(h, id)
	if err != nil {
		return DeviceParameters{}, err
	}
	if info.MaxInputChannels == 0 {
		return DeviceParameters{}, fmt.Errorf("%w: device %d (%s) has no input channels", ErrNoDevice, id, info.Name)
	}

	channels := c.Channels
	if channels == 0 {
		channels = info.MaxInputChannels
	}
	if channels > info.MaxInputChannels {
		return DeviceParameters{}, fmt.Errorf("%w: %d input channels requested, device %d has %d",
			ErrFormatUnsupported, channels, id, info.MaxInputChannels)
	}

	latency := info.DefaultHighInputLatency
	if c.LowLatency {
		latency = info.DefaultLowInputLatency
	}
	return DeviceParameters{
		Device:          id,
		Channels:        channels,
		SampleRate:      c.SampleRate,
		FramesPerBuffer: c.FramesPerBuffer,
		Latency:         latency,
	}, nil
}

// OutputParameters resolves c against the capabilities of the output device.
// The channel count must be given: playback uses the layout of the captured
// buffer.
func OutputParameters[T Sample](h Host[T], c StreamConfig) (DeviceParameters, error) {
	id := c.Device
	if id < 0 {
		def, err := h.DefaultOutputDevice()
		if err != nil {
			return DeviceParameters{}, fmt.Errorf("%w: default output: %w", ErrNoDevice, err)
		}
		id = def
	}
	info, err := deviceInfo(h, id)
	if err != nil {
		return DeviceParameters{}, err
	}
	if c.Channels <= 0 || c.Channels > info.MaxOutputChannels {
		return DeviceParameters{}, fmt.Errorf("%w: %d output channels requested, device %d has %d",
			ErrFormatUnsupported, c.Channels, id, info.MaxOutputChannels)
	}

	latency := info.DefaultHighOutputLatency
	if c.LowLatency {
		latency = info.DefaultLowOutputLatency
	}
	return DeviceParameters{
		Device:          id,
		Channels:        c.Channels,
		SampleRate:      c.SampleRate,
		FramesPerBuffer: c.FramesPerBuffer,
		Latency:         latency,
	}, nil
}

func deviceInfo[T Sample](h Host[T], id int) (DeviceInfo, error) {
	devices, err := h.Devices()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	return LookupDevice(devices, id)
}
