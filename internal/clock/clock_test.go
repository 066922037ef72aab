// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	c, err := At("2026-03-01T12:00:00Z")
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if !c.Now().Equal(want) {
		t.Fatalf("Now() = %v, want %v", c.Now(), want)
	}
	if _, err := At("yesterday"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSystem(t *testing.T) {
	before := time.Now()
	got := System().Now()
	if got.Before(before) {
		t.Fatalf("system clock went backwards: %v < %v", got, before)
	}
}
