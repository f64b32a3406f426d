// SPDX-License-Identifier: MIT
package audio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"accelerometer/internal/audio"
)

func TestListDevices(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	if err := audio.ListDevices[int16](&out, testHost()); err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Available Audio Devices",
		"Default input device: 1",
		"Default output device: 2",
		"Number of available devices: 3",
		"[0] fake duplex (Input/Output)",
		"[1] mic (Input)",
		"[2] speaker (Output)",
		"Input channels: 1, Output channels: 0",
		"Latency: Low=2.00ms, High=20.00ms",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}
