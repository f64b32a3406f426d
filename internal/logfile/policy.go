// SPDX-License-Identifier: MIT

// Package logfile persists captured blocks to a raw binary log that is
// rotated on a time policy. Every file starts with a fixed-size text header
// followed by the interleaved little-endian samples of each block.
package logfile

import "time"

// DefaultInterval rotates once per calendar day.
const DefaultInterval = 24 * time.Hour

// Policy decides when the active file is due for rotation.
type Policy struct {
	Interval time.Duration
	// AlignToDay places due times on multiples of Interval counted from
	// midnight UTC. Intervals shorter than a day never cross midnight, so
	// when Interval does not divide 24h the last slot of each day is short.
	// Longer intervals count whole days from the current midnight.
	AlignToDay bool
}

// DefaultPolicy rotates at every UTC midnight.
func DefaultPolicy() Policy {
	return Policy{Interval: DefaultInterval, AlignToDay: true}
}

// Next returns the first due time strictly after t.
func (p Policy) Next(t time.Time) time.Time {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	t = t.UTC()
	if !p.AlignToDay {
		return t.Add(interval)
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if interval >= DefaultInterval {
		return day.Add(interval)
	}
	next := day.Add((t.Sub(day)/interval + 1) * interval)
	if midnight := day.AddDate(0, 0, 1); next.After(midnight) {
		return midnight
	}
	return next
}
