// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func decodeWAV(t *testing.T, path string) *wav.Decoder {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		t.Fatalf("%s is not a valid WAV file", path)
	}
	return d
}

func TestExportWAVInt16(t *testing.T) {
	buf, _ := NewSampleBuffer[int16](50, 2)
	for i := range buf.Samples() {
		buf.Samples()[i] = int16(i*100 - 2500)
	}

	path := filepath.Join(t.TempDir(), "block.wav")
	if err := ExportWAV(path, buf, 8000); err != nil {
		t.Fatalf("ExportWAV() error = %v", err)
	}

	d := decodeWAV(t, path)
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if d.SampleRate != 8000 || d.NumChans != 2 || d.BitDepth != 16 {
		t.Errorf("header = %d Hz, %d ch, %d bit", d.SampleRate, d.NumChans, d.BitDepth)
	}
	if len(pcm.Data) != buf.Len() {
		t.Fatalf("decoded %d samples, want %d", len(pcm.Data), buf.Len())
	}
	for i, s := range pcm.Data {
		if s != int(buf.Samples()[i]) {
			t.Fatalf("sample %d = %d, want %d", i, s, buf.Samples()[i])
		}
	}
}

func TestWAVSampleConversion(t *testing.T) {
	if got := wavSample[int8](-128); got != -32768 {
		t.Errorf("int8 min = %d, want -32768", got)
	}
	if got := wavSample[float32](2); got != math.MaxInt16 {
		t.Errorf("float32 overrange = %d, want clamp to %d", got, math.MaxInt16)
	}
	if got := wavSample[float32](-0.5); got != -16384 {
		t.Errorf("float32 -0.5 = %d, want -16384", got)
	}
	if wavBitDepth[int32]() != 32 || wavBitDepth[int8]() != 16 || wavBitDepth[float32]() != 16 {
		t.Error("unexpected export bit depth")
	}
}

func TestExportWAVBadPath(t *testing.T) {
	buf, _ := NewSampleBuffer[int16](10, 1)
	path := filepath.Join(t.TempDir(), "missing", "block.wav")
	if err := ExportWAV(path, buf, 8000); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
