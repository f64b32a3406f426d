// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with a Terminate() call.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// paDevicesFunc is swapped in tests.
var paDevicesFunc = portaudio.Devices

// PortAudioHost runs streams of sample format T on PortAudio. Initialize
// must have been called.
type PortAudioHost[T Sample] struct{}

// NewPortAudioHost returns a Host backed by PortAudio.
func NewPortAudioHost[T Sample]() *PortAudioHost[T] {
	return &PortAudioHost[T]{}
}

var _ Host[int16] = (*PortAudioHost[int16])(nil)

func (h *PortAudioHost[T]) Devices() ([]DeviceInfo, error) {
	devices, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}
	infos := make([]DeviceInfo, len(devices))
	for i, d := range devices {
		infos[i] = DeviceInfo{
			ID:                       i,
			Name:                     d.Name,
			MaxInputChannels:         d.MaxInputChannels,
			MaxOutputChannels:        d.MaxOutputChannels,
			DefaultSampleRate:        d.DefaultSampleRate,
			DefaultLowInputLatency:   d.DefaultLowInputLatency,
			DefaultHighInputLatency:  d.DefaultHighInputLatency,
			DefaultLowOutputLatency:  d.DefaultLowOutputLatency,
			DefaultHighOutputLatency: d.DefaultHighOutputLatency,
		}
	}
	return infos, nil
}

func (h *PortAudioHost[T]) DefaultInputDevice() (int, error) {
	return h.indexOf(portaudio.DefaultInputDevice)
}

func (h *PortAudioHost[T]) DefaultOutputDevice() (int, error) {
	return h.indexOf(portaudio.DefaultOutputDevice)
}

// indexOf maps a PortAudio device to its position in the device list, which
// is the id used throughout the configuration.
func (h *PortAudioHost[T]) indexOf(lookup func() (*portaudio.DeviceInfo, error)) (int, error) {
	want, err := lookup()
	if err != nil {
		return 0, err
	}
	devices, err := paDevicesFunc()
	if err != nil {
		return 0, err
	}
	for i, d := range devices {
		if d == want {
			return i, nil
		}
	}
	for i, d := range devices {
		if d.Name == want.Name && d.HostApi == want.HostApi {
			return i, nil
		}
	}
	return 0, fmt.Errorf("device %q not in device list", want.Name)
}

func (h *PortAudioHost[T]) device(id int) (*portaudio.DeviceInfo, error) {
	devices, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}
	if id < 0 || id >= len(devices) {
		return nil, fmt.Errorf("%w: %d", ErrNoDevice, id)
	}
	return devices[id], nil
}

func (h *PortAudioHost[T]) streamParameters(in, out *DeviceParameters) (portaudio.StreamParameters, error) {
	var sp portaudio.StreamParameters
	sp.Flags = portaudio.ClipOff
	for _, side := range []struct {
		p   *DeviceParameters
		dst *portaudio.StreamDeviceParameters
	}{{in, &sp.Input}, {out, &sp.Output}} {
		if side.p == nil {
			continue
		}
		dev, err := h.device(side.p.Device)
		if err != nil {
			return sp, err
		}
		*side.dst = portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: side.p.Channels,
			Latency:  side.p.Latency,
		}
		sp.SampleRate = side.p.SampleRate
		sp.FramesPerBuffer = side.p.FramesPerBuffer
	}
	return sp, nil
}

func (h *PortAudioHost[T]) IsFormatSupported(in, out *DeviceParameters) error {
	sp, err := h.streamParameters(in, out)
	if err != nil {
		return err
	}
	// The callback only tells PortAudio the sample format.
	var probe any
	switch {
	case in != nil && out != nil:
		probe = func(in, out []T) {}
	default:
		probe = func(buf []T) {}
	}
	if err := portaudio.IsFormatSupported(sp, probe); err != nil {
		return fmt.Errorf("%w: %w", ErrFormatUnsupported, err)
	}
	return nil
}

func (h *PortAudioHost[T]) OpenInputStream(p DeviceParameters, callback func(in []T)) (Stream, error) {
	sp, err := h.streamParameters(&p, nil)
	if err != nil {
		return nil, err
	}
	return openStream(sp, func(in []T, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		if flags&portaudio.InputUnderflow != 0 {
			callback(nil)
			return
		}
		callback(in)
	})
}

func (h *PortAudioHost[T]) OpenOutputStream(p DeviceParameters, callback func(out []T)) (Stream, error) {
	sp, err := h.streamParameters(nil, &p)
	if err != nil {
		return nil, err
	}
	return openStream(sp, callback)
}

func openStream(sp portaudio.StreamParameters, callback any) (Stream, error) {
	stream, err := portaudio.OpenStream(sp, callback)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
