// SPDX-License-Identifier: MIT
package analysis

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WriteSpectrum writes every bin of frame as a little-endian float64 pair
// (real, imaginary) with no header.
func WriteSpectrum(w io.Writer, frame []complex128) error {
	var pair [16]byte
	for _, c := range frame {
		binary.LittleEndian.PutUint64(pair[:8], math.Float64bits(real(c)))
		binary.LittleEndian.PutUint64(pair[8:], math.Float64bits(imag(c)))
		if _, err := w.Write(pair[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadSpectrum decodes a stream written by WriteSpectrum.
func ReadSpectrum(r io.Reader) ([]complex128, error) {
	var frame []complex128
	var pair [16]byte
	for {
		if _, err := io.ReadFull(r, pair[:]); err != nil {
			if err == io.EOF {
				return frame, nil
			}
			return frame, fmt.Errorf("truncated spectrum: %w", err)
		}
		re := math.Float64frombits(binary.LittleEndian.Uint64(pair[:8]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(pair[8:]))
		frame = append(frame, complex(re, im))
	}
}

// DumpFile replaces the file at path with the spectrum of frame.
func DumpFile(path string, frame []complex128) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := WriteSpectrum(w, frame); err != nil {
		f.Close()
		return fmt.Errorf("failed to write spectrum: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write spectrum: %w", err)
	}
	return f.Close()
}
