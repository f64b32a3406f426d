// SPDX-License-Identifier: MIT
package audio

import (
	"testing"
)

func newTestCapture[T Sample](t *testing.T, frames, channels, framesPerBuffer int) (*CaptureEngine[T], *SampleBuffer[T]) {
	t.Helper()
	buf, err := NewSampleBuffer[T](frames, channels)
	if err != nil {
		t.Fatal(err)
	}
	c := &CaptureEngine[T]{buf: buf, framesPerBuffer: framesPerBuffer}
	return c, buf
}

func TestCaptureCursorBounds(t *testing.T) {
	const (
		frames          = 1000
		channels        = 2
		framesPerBuffer = 64
	)
	c, buf := newTestCapture[int16](t, frames, channels, framesPerBuffer)

	chunk := make([]int16, framesPerBuffer*channels)
	calls := 0
	for !c.done.Load() {
		for i := range chunk {
			chunk[i] = int16(calls*len(chunk) + i)
		}
		c.process(chunk)
		calls++

		idx := buf.FrameIndex()
		if idx < 0 || idx > buf.MaxFrameIndex() {
			t.Fatalf("call %d: frameIndex %d outside [0, %d]", calls, idx, buf.MaxFrameIndex())
		}
		if calls > frames {
			t.Fatal("capture never completed")
		}
	}

	// ceil(1000 / 64) callbacks, the last one partial.
	if calls != 16 {
		t.Errorf("completed after %d callbacks, want 16", calls)
	}
	if buf.FrameIndex() != frames {
		t.Errorf("FrameIndex() = %d, want %d", buf.FrameIndex(), frames)
	}
	for i, s := range buf.Samples() {
		if s != int16(i) {
			t.Fatalf("sample %d = %d, want %d", i, s, i)
		}
	}

	// Callbacks after completion leave the buffer alone.
	c.process(chunk)
	if buf.FrameIndex() != frames {
		t.Errorf("callback after completion moved the cursor to %d", buf.FrameIndex())
	}
}

func TestCaptureNilInputWritesSilence(t *testing.T) {
	const framesPerBuffer = 32
	c, buf := newTestCapture[int16](t, 100, 1, framesPerBuffer)

	// Pre-fill with garbage so silence is observable.
	for i := range buf.Samples() {
		buf.Samples()[i] = 999
	}

	chunk := make([]int16, framesPerBuffer)
	for i := range chunk {
		chunk[i] = 7
	}

	c.process(chunk) // frames 0..31
	c.process(nil)   // frames 32..63 silent
	c.process(chunk) // frames 64..95
	c.process(nil)   // frames 96..99 silent, completes

	if !c.done.Load() || buf.FrameIndex() != 100 {
		t.Fatalf("capture not complete: index %d", buf.FrameIndex())
	}
	for i, s := range buf.Samples() {
		silent := (i >= 32 && i < 64) || i >= 96
		if silent && s != Silence[int16]() {
			t.Errorf("sample %d = %d, want silence", i, s)
		}
		if !silent && s != 7 {
			t.Errorf("sample %d = %d, want 7", i, s)
		}
	}
}

func TestCaptureAllNilInput(t *testing.T) {
	c, buf := newTestCapture[float32](t, 256, 2, 100)
	for !c.done.Load() {
		c.process(nil)
	}
	if buf.FrameIndex() != 256 {
		t.Errorf("FrameIndex() = %d, want 256", buf.FrameIndex())
	}
	for i, s := range buf.Samples() {
		if s != 0 {
			t.Fatalf("sample %d = %v, want 0", i, s)
		}
	}
}

// TestCaptureCallbackNoAllocs verifies the input callback never allocates.
func TestCaptureCallbackNoAllocs(t *testing.T) {
	c, buf := newTestCapture[int16](t, 1<<20, 1, 512)
	chunk := make([]int16, 512)

	allocs := testing.AllocsPerRun(100, func() {
		c.process(chunk)
		c.process(nil)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in capture callback, got %.1f", allocs)
	}
	if buf.FrameIndex() == 0 {
		t.Error("callback did not advance the cursor")
	}
}

func BenchmarkCaptureCallback(b *testing.B) {
	buf, _ := NewSampleBuffer[int16](512, 2)
	c := &CaptureEngine[int16]{buf: buf, framesPerBuffer: 512}
	chunk := make([]int16, 1024)

	b.ReportAllocs()
	for b.Loop() {
		buf.Rewind()
		c.done.Store(false)
		c.process(chunk)
	}
}
