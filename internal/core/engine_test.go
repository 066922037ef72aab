// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"testing"
	"time"

	"github.com/toeirei/keysync/internal/clock"
	"github.com/toeirei/keysync/internal/metrics"
	"github.com/toeirei/keysync/internal/model"
	"github.com/toeirei/keysync/internal/testutil"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	return Policy{
		SourceEnabled:           true,
		FullGroupSync:           true,
		AdminGroupName:          "keys-admins",
		TracksSuperior:          true,
		DeactivateOnSourceError: true,
		KeyExpirationEnabled:    true,
		KeyExpirationDays:       365,
		AdminAddress:            "keys@example.com",
		AdminName:               "Key Admins",
		ReportAddress:           "report@example.com",
		ReportName:              "Reports",
	}
}

type fixture struct {
	dir      *testutil.MemDirectory
	source   *testutil.FakeIdentitySource
	notifier *testutil.RecordingNotifier
	metrics  *metrics.Run
	policy   Policy
}

func newFixture() *fixture {
	return &fixture{
		dir:      testutil.NewMemDirectory(),
		source:   testutil.NewFakeIdentitySource(),
		notifier: &testutil.RecordingNotifier{},
		metrics:  metrics.NewRun(),
		policy:   testPolicy(),
	}
}

func (f *fixture) engine() *Engine {
	return NewEngine(f.dir, f.source, f.notifier, f.policy,
		WithClock(clock.Fixed(testNow)),
		WithMetrics(f.metrics),
	)
}

// ldapUser stores an LDAP-realm user and returns a copy carrying its id.
func (f *fixture) ldapUser(uid string, active, admin bool, superior string) *model.User {
	u := model.User{
		UID:         uid,
		Name:        uid,
		Email:       uid + "@example.com",
		AuthRealm:   model.RealmLDAP,
		Active:      active,
		Admin:       admin,
		SuperiorUID: superior,
	}
	u.ID = f.dir.PutUser(u)
	return &u
}

// identity registers uid in the source with the given state.
func (f *fixture) identity(uid string, active, admin bool, groups ...string) {
	f.source.Identities[uid] = model.Identity{
		UID:    uid,
		Name:   uid,
		Email:  uid + "@example.com",
		Active: active,
		Admin:  admin,
	}
	f.source.Groups[uid] = groups
}

// uploadedWithRemaining returns an upload date that leaves days until expiry
// under the default 365 day window.
func uploadedWithRemaining(days int) time.Time {
	return testNow.Add(time.Duration(days-365) * 24 * time.Hour)
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(testutil.NewMemDirectory(), nil, &testutil.RecordingNotifier{}, testPolicy())
	if e.clock == nil || e.log == nil {
		t.Fatalf("expected default clock and logger")
	}
	if e.metrics != nil {
		t.Fatalf("metrics are optional and off by default")
	}
}
