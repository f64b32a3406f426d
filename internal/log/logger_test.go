// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GetLevel()
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   LogLevel
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{" Info ", LevelInfo, true},
		{"WARNING", LevelWarn, true},
		{"error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"loud", LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLevelFromDebug(t *testing.T) {
	if got := LevelFromDebug(0, LevelWarn); got != LevelWarn {
		t.Errorf("LevelFromDebug(0) = %v, want fallback WARN", got)
	}
	if got := LevelFromDebug(3, LevelWarn); got != LevelDebug {
		t.Errorf("LevelFromDebug(3) = %v, want DEBUG", got)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, LevelWarn)

	Debugf("cursor at %d", 10)
	Infof("capture started")
	Warnf("logging disabled: %s", "permission denied")
	Error("stream failed")

	out := buf.String()
	if strings.Contains(out, "cursor at") || strings.Contains(out, "capture started") {
		t.Errorf("messages below WARN were written: %q", out)
	}
	if !strings.Contains(out, "[WARN]  logging disabled: permission denied") {
		t.Errorf("missing warning line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] stream failed") {
		t.Errorf("missing error line in %q", out)
	}
}
