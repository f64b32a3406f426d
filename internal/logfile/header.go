// SPDX-License-Identifier: MIT
package logfile

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// HeaderSize is the fixed length of the text header at the start of
	// every log file.
	HeaderSize = 256
	// MaxNoteLen bounds the free-text note carried in the header.
	MaxNoteLen = 64

	createdLayout = "2006-01-02 15:04:05"
)

// Metadata describes the acquisition setup recorded in each header.
type Metadata struct {
	Created         time.Time
	Session         string
	InputDevice     int
	OutputDevice    int
	FramesPerBuffer int
	SampleRate      int
	Channels        int
	Volume          int
	Format          string
	Note            string
}

// String renders the metadata as one "Key: value" line per field.
func (m Metadata) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Created: %s\n", m.Created.UTC().Format(createdLayout))
	fmt.Fprintf(&b, "Session: %s\n", m.Session)
	fmt.Fprintf(&b, "Input: %d\n", m.InputDevice)
	fmt.Fprintf(&b, "Output: %d\n", m.OutputDevice)
	fmt.Fprintf(&b, "FramesPerBuffer: %d\n", m.FramesPerBuffer)
	fmt.Fprintf(&b, "SampleRate: %d\n", m.SampleRate)
	fmt.Fprintf(&b, "NChannels: %d\n", m.Channels)
	fmt.Fprintf(&b, "Volume: %d\n", m.Volume)
	fmt.Fprintf(&b, "Format: %s\n", m.Format)
	fmt.Fprintf(&b, "Note: %s\n", truncate(m.Note, MaxNoteLen))
	return b.String()
}

// EncodeHeader lays the rendered metadata out in a HeaderSize block padded
// with zero bytes. Text that does not fit is cut off.
func EncodeHeader(m Metadata) [HeaderSize]byte {
	var h [HeaderSize]byte
	copy(h[:], m.String())
	return h
}

// ParseHeader returns the key/value lines of an encoded header.
func ParseHeader(h []byte) map[string]string {
	if i := bytes.IndexByte(h, 0); i >= 0 {
		h = h[:i]
	}
	fields := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(h))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ": ")
		if ok {
			fields[key] = value
		}
	}
	return fields
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
