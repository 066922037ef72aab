// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"

	"github.com/toeirei/keysync/internal/model"
)

// newTestStore opens a migrated in-memory sqlite store private to the test.
func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	dsn := "file:test_" + t.Name() + "?mode=memory&cache=shared"
	s, err := NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustAddUser(t *testing.T, s *BunStore, uid string, active bool) *model.User {
	t.Helper()
	u := &model.User{UID: uid, Name: uid, Email: uid + "@example.com", AuthRealm: model.RealmLDAP, Active: active}
	if err := s.AddUser(context.Background(), u); err != nil {
		t.Fatalf("AddUser(%s) failed: %v", uid, err)
	}
	return u
}

func mustAddGroup(t *testing.T, s *BunStore, name string) *model.Group {
	t.Helper()
	g := &model.Group{Name: name}
	if err := s.AddGroup(context.Background(), g); err != nil {
		t.Fatalf("AddGroup(%s) failed: %v", name, err)
	}
	return g
}

func mustAddServer(t *testing.T, s *BunStore, hostname string) *model.Server {
	t.Helper()
	srv := &model.Server{Hostname: hostname}
	if err := s.AddServer(context.Background(), srv); err != nil {
		t.Fatalf("AddServer(%s) failed: %v", hostname, err)
	}
	return srv
}
