// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavBitDepth returns the PCM depth a block of T is exported at. 8-bit WAV
// is unsigned and float WAV is not supported by the encoder, so int8 and
// float32 blocks are widened to 16 bits.
func wavBitDepth[T Sample]() int {
	if FormatName[T]() == "int32" {
		return 32
	}
	return 16
}

func wavSample[T Sample](s T) int {
	switch v := any(s).(type) {
	case int8:
		return int(v) << 8
	case int16:
		return int(v)
	case int32:
		return int(v)
	case float32:
		f := math.Max(-1, math.Min(1, float64(v)))
		return int(math.Round(f * math.MaxInt16))
	}
	return 0
}

// ExportWAV writes the whole block in buf to a PCM WAV file at path.
func ExportWAV[T Sample](path string, buf *SampleBuffer[T], sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	depth := wavBitDepth[T]()
	encoder := wav.NewEncoder(file, sampleRate, depth, buf.Channels(), 1)

	pcm := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: buf.Channels(),
			SampleRate:  sampleRate,
		},
		Data:           make([]int, buf.Len()),
		SourceBitDepth: depth,
	}
	for i, s := range buf.Samples() {
		pcm.Data[i] = wavSample(s)
	}

	if err := encoder.Write(pcm); err != nil {
		file.Close()
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return file.Close()
}
