// SPDX-License-Identifier: MIT
package session

import (
	"errors"
	"fmt"

	"accelerometer/internal/audio"
)

// Code classifies the failures a session reports.
type Code int

const (
	CodeNone Code = iota
	CodeNoFile
	CodeConfigRead
	CodeConfigWrite
	CodeNoMem
	CodeNoDevice
	CodeNoStream
	CodeNoRecord
	CodeNoLogfile
)

var codeNames = [...]string{
	CodeNone:        "none",
	CodeNoFile:      "no file",
	CodeConfigRead:  "config read failed",
	CodeConfigWrite: "config write failed",
	CodeNoMem:       "no memory",
	CodeNoDevice:    "no device",
	CodeNoStream:    "no stream",
	CodeNoRecord:    "no record",
	CodeNoLogfile:   "no log file",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("code(%d)", int(c))
	}
	return codeNames[c]
}

// Error is a failure of one session operation.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the code carried by err, CodeNone for nil and
// CodeNoStream for errors that are not a *Error.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeNoStream
}

// deviceCode maps an audio engine error to its code. A stream that could
// not be started is a failed recording on the capture side.
func deviceCode(err error, capture bool) Code {
	switch {
	case errors.Is(err, audio.ErrAllocation):
		return CodeNoMem
	case errors.Is(err, audio.ErrNoDevice), errors.Is(err, audio.ErrFormatUnsupported):
		return CodeNoDevice
	case errors.Is(err, audio.ErrDeviceStart) && capture:
		return CodeNoRecord
	default:
		return CodeNoStream
	}
}
