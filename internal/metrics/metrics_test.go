// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRun_Counters(t *testing.T) {
	r := NewRun()
	r.UserProcessed()
	r.UserProcessed()
	r.UserDeactivated()
	r.SourceError()
	r.KeyWarned()
	r.KeyRemoved()
	r.KeyRemoved()
	r.Escalated(true)
	r.Escalated(false)
	r.Escalated(false)
	r.GroupChanged("add")
	r.GroupChanged("remove")
	r.GroupCreated()

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"users processed", testutil.ToFloat64(r.UsersProcessed), 2},
		{"users deactivated", testutil.ToFloat64(r.UsersDeactivated), 1},
		{"source errors", testutil.ToFloat64(r.SourceErrors), 1},
		{"keys warned", testutil.ToFloat64(r.KeysWarned), 1},
		{"keys removed", testutil.ToFloat64(r.KeysRemoved), 2},
		{"escalations superior", testutil.ToFloat64(r.Escalations.WithLabelValues("superior")), 1},
		{"escalations report", testutil.ToFloat64(r.Escalations.WithLabelValues("report")), 2},
		{"group adds", testutil.ToFloat64(r.GroupChanges.WithLabelValues("add")), 1},
		{"group removes", testutil.ToFloat64(r.GroupChanges.WithLabelValues("remove")), 1},
		{"groups created", testutil.ToFloat64(r.GroupsCreated), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestRun_Finish(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	r := NewRun()
	r.Finish(1500*time.Millisecond, nil, now)
	if got := testutil.ToFloat64(r.RunDuration); got != 1.5 {
		t.Fatalf("duration = %v", got)
	}
	if testutil.ToFloat64(r.RunSuccess) != 1 || testutil.ToFloat64(r.LastSuccess) != float64(now.Unix()) {
		t.Fatalf("success not recorded")
	}

	failed := NewRun()
	failed.Finish(time.Second, errors.New("boom"), now)
	if testutil.ToFloat64(failed.RunSuccess) != 0 || testutil.ToFloat64(failed.LastSuccess) != 0 {
		t.Fatalf("failed run must not set last success")
	}
}

func TestRun_NilIsNoop(t *testing.T) {
	var r *Run
	r.UserProcessed()
	r.Escalated(true)
	r.GroupChanged("add")
	r.Finish(time.Second, nil, time.Now())
	if r.Registry() != nil {
		t.Fatalf("nil run must not expose a registry")
	}
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil WriteTextfile returned error: %v", err)
	}
}

func TestRun_WriteTextfile(t *testing.T) {
	r := NewRun()
	r.KeyRemoved()
	path := filepath.Join(t.TempDir(), "keysync.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "keysync_keys_removed_total 1") {
		t.Fatalf("textfile missing counter:\n%s", data)
	}
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(`
# HELP keysync_keys_removed_total Number of expired public keys deleted
# TYPE keysync_keys_removed_total counter
keysync_keys_removed_total 1
`), "keysync_keys_removed_total"); err != nil {
		t.Fatalf("unexpected metric output: %v", err)
	}
}

func TestSummary(t *testing.T) {
	r := NewRun()
	r.UserProcessed()
	r.UserProcessed()
	r.UserDeactivated()
	r.KeyWarned()
	r.KeyRemoved()
	r.KeyRemoved()

	got := r.Summary()
	want := Summary{UsersProcessed: 2, UsersDeactivated: 1, KeysWarned: 1, KeysRemoved: 2}
	if got != want {
		t.Fatalf("summary = %+v, want %+v", got, want)
	}

	var nilRun *Run
	if s := nilRun.Summary(); s != (Summary{}) {
		t.Fatalf("nil run summary = %+v", s)
	}
}
