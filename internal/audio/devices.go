// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.FgGreen, color.Bold)
	deviceColor  = color.New(color.FgCyan)
)

// ListDevices prints the default devices and, for every device, its id,
// name, channel counts, default sample rate and latency range.
func ListDevices[T Sample](w io.Writer, h Host[T]) error {
	devices, err := h.Devices()
	if err != nil {
		return err
	}

	headingColor.Fprintf(w, "\nAvailable Audio Devices\n\n")

	if id, err := h.DefaultInputDevice(); err == nil {
		fmt.Fprintf(w, "Default input device: %d\n", id)
	} else {
		fmt.Fprintf(w, "Default input device: none (%v)\n", err)
	}
	if id, err := h.DefaultOutputDevice(); err == nil {
		fmt.Fprintf(w, "Default output device: %d\n", id)
	} else {
		fmt.Fprintf(w, "Default output device: none (%v)\n", err)
	}
	fmt.Fprintf(w, "Number of available devices: %d\n\n", len(devices))

	for _, d := range devices {
		deviceColor.Fprintf(w, "[%d] %s (%s)\n", d.ID, d.Name, deviceKind(d))
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n", d.DefaultSampleRate)
		fmt.Fprintf(w, "    Latency: Low=%.2fms, High=%.2fms\n",
			d.DefaultLowInputLatency.Seconds()*1000,
			d.DefaultHighInputLatency.Seconds()*1000)
		fmt.Fprintln(w)
	}
	return nil
}

func deviceKind(d DeviceInfo) string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	default:
		return "Unavailable"
	}
}
