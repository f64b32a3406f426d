// SPDX-License-Identifier: MIT
package audio

import (
	"testing"
)

func filledBuffer(t *testing.T, frames, channels int) *SampleBuffer[int16] {
	t.Helper()
	buf, err := NewSampleBuffer[int16](frames, channels)
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf.Samples() {
		buf.Samples()[i] = int16(i + 1)
	}
	return buf
}

func TestPlaybackZeroPadsFinalChunk(t *testing.T) {
	const framesPerBuffer = 8
	buf := filledBuffer(t, 20, 2)
	p := &PlaybackEngine[int16]{buf: buf}

	var played []int16
	out := make([]int16, framesPerBuffer*2)
	calls := 0
	for !p.done.Load() {
		for i := range out {
			out[i] = -1 // stale device memory
		}
		p.process(out)
		played = append(played, out...)
		calls++
		if calls > 10 {
			t.Fatal("playback never completed")
		}
	}

	if calls != 3 {
		t.Errorf("completed after %d callbacks, want 3", calls)
	}
	if len(played) != 3*framesPerBuffer*2 {
		t.Fatalf("played %d samples, want a whole number of periods", len(played))
	}
	for i, s := range played {
		want := int16(0)
		if i < buf.Len() {
			want = int16(i + 1)
		}
		if s != want {
			t.Errorf("played[%d] = %d, want %d", i, s, want)
		}
	}
	if buf.FrameIndex() != buf.MaxFrameIndex() {
		t.Errorf("FrameIndex() = %d, want %d", buf.FrameIndex(), buf.MaxFrameIndex())
	}

	// After completion the device only gets silence.
	p.process(out)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("post-completion out[%d] = %d, want 0", i, s)
		}
	}
}

func TestPlaybackExactMultiple(t *testing.T) {
	buf := filledBuffer(t, 16, 1)
	p := &PlaybackEngine[int16]{buf: buf}
	out := make([]int16, 8)

	p.process(out)
	if p.done.Load() {
		t.Fatal("done after first of two periods")
	}
	p.process(out)
	if !p.done.Load() {
		t.Fatal("not done after the last full period")
	}
	if out[7] != 16 {
		t.Errorf("last sample = %d, want 16", out[7])
	}
}

func TestPlaybackCallbackNoAllocs(t *testing.T) {
	buf := filledBuffer(t, 1<<16, 1)
	p := &PlaybackEngine[int16]{buf: buf}
	out := make([]int16, 256)

	allocs := testing.AllocsPerRun(100, func() {
		p.process(out)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in playback callback, got %.1f", allocs)
	}
}
