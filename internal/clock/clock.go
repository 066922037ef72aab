// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package clock abstracts time.Now so runs can be replayed at a fixed instant.
package clock

import "time"

// Clock provides an abstraction over time.Now for testability.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock.
func System() Clock { return systemClock{} }

// Fixed is a Clock frozen at a single instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// At parses an RFC 3339 timestamp into a Fixed clock.
func At(ts string) (Fixed, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Fixed{}, err
	}
	return Fixed(t), nil
}
