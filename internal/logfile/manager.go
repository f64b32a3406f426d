// SPDX-License-Identifier: MIT
package logfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"accelerometer/internal/audio"
	"accelerometer/internal/log"
)

var (
	ErrNoActiveFile = errors.New("no active log file")
	ErrDisabled     = errors.New("raw sample logging disabled")
)

// Options configure a Manager.
type Options struct {
	Enabled  bool
	Namer    Namer
	Policy   Policy
	Metadata Metadata // Created is set on every open
}

// Manager owns the active log file. Exactly one file is open at a time; on
// rotation the old file is flushed and closed before its successor is
// created. A Manager is not safe for concurrent use.
//
// Persistence is lenient: when a file cannot be created or written the
// manager logs a warning and disables itself for the rest of the session.
// Enabled and Err report that state.
type Manager struct {
	namer  Namer
	policy Policy
	meta   Metadata

	enabled   bool
	err       error
	file      *os.File
	w         *bufio.Writer
	active    string
	due       time.Time
	rotations int
}

// NewManager returns a manager with no file open.
func NewManager(opts Options) *Manager {
	return &Manager{
		namer:   opts.Namer,
		policy:  opts.Policy,
		meta:    opts.Metadata,
		enabled: opts.Enabled,
	}
}

// Open creates a new uniquely named file stamped with now, writes its header
// and schedules the next rotation. An already open file is closed first.
func (m *Manager) Open(now time.Time) error {
	if !m.enabled {
		return ErrDisabled
	}
	if m.file != nil {
		if err := m.closeActive(); err != nil {
			return m.disable(err)
		}
	}

	path, err := m.namer.Unique(now)
	if err != nil {
		return m.disable(err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return m.disable(err)
	}

	meta := m.meta
	meta.Created = now
	header := EncodeHeader(meta)
	w := bufio.NewWriter(file)
	if _, err := w.Write(header[:]); err != nil {
		file.Close()
		return m.disable(err)
	}
	// The header reaches disk before the file is reported active.
	if err := w.Flush(); err != nil {
		file.Close()
		return m.disable(err)
	}

	m.file, m.w, m.active = file, w, path
	m.due = m.policy.Next(now)
	log.Infof("Logfile: opened %s, next rotation at %s", path, m.due.Format(time.RFC3339))
	return nil
}

// Write appends p to the active file.
func (m *Manager) Write(p []byte) (int, error) {
	if !m.enabled {
		return 0, ErrDisabled
	}
	if m.file == nil {
		return 0, ErrNoActiveFile
	}
	n, err := m.w.Write(p)
	if err != nil {
		return n, m.disable(err)
	}
	return n, nil
}

// Flush pushes buffered data to the active file.
func (m *Manager) Flush() error {
	if m.w == nil {
		return nil
	}
	if err := m.w.Flush(); err != nil {
		return m.disable(err)
	}
	return nil
}

// CheckRotation rotates when now has reached the due time and reports
// whether it did. However many intervals have elapsed, a late check rotates
// once and the next due time is computed from now.
func (m *Manager) CheckRotation(now time.Time) (bool, error) {
	if !m.enabled {
		return false, nil
	}
	if m.file == nil {
		return false, ErrNoActiveFile
	}
	if now.Before(m.due) {
		return false, nil
	}

	old := m.active
	if err := m.Open(now); err != nil {
		return false, err
	}
	m.rotations++
	log.Infof("Logfile: rotated %s -> %s", old, m.active)
	return true, nil
}

// Close flushes and closes the active file. It is safe to call repeatedly.
func (m *Manager) Close() error {
	if m.file == nil {
		return nil
	}
	return m.closeActive()
}

func (m *Manager) closeActive() error {
	flushErr := m.w.Flush()
	closeErr := m.file.Close()
	m.file, m.w = nil, nil
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", m.active, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", m.active, closeErr)
	}
	return nil
}

// disable turns persistence off for the session after err. Whatever file is
// still open is closed.
func (m *Manager) disable(err error) error {
	if m.file != nil {
		_ = m.file.Close()
		m.file, m.w = nil, nil
	}
	m.enabled = false
	m.err = err
	log.Warnf("Logfile: raw sample logging disabled: %v", err)
	return fmt.Errorf("%w: %w", ErrDisabled, err)
}

// Active returns the path of the open file, or of the last one after Close.
func (m *Manager) Active() string { return m.active }

func (m *Manager) Enabled() bool { return m.enabled }

// Err returns the failure that disabled persistence, if any.
func (m *Manager) Err() error { return m.err }

// Rotations counts files opened by CheckRotation.
func (m *Manager) Rotations() int { return m.rotations }

// Due returns the time of the next rotation.
func (m *Manager) Due() time.Time { return m.due }

// WriteSamples appends a block of interleaved samples to w in little-endian
// order with no framing.
func WriteSamples[T audio.Sample](w io.Writer, samples []T) error {
	return binary.Write(w, binary.LittleEndian, samples)
}
