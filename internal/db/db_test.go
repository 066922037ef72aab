// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

func TestNewStoreFromDSN_MigrationsApplied(t *testing.T) {
	dsn := "file:test_" + t.Name() + "?mode=memory&cache=shared"
	s, err := NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open sql.DB for inspection: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	var version string
	if err := sqlDB.QueryRow("SELECT version FROM schema_migrations").Scan(&version); err != nil {
		t.Fatalf("expected one applied migration: %v", err)
	}
	if version != "0001_directory" {
		t.Fatalf("unexpected migration version %q", version)
	}

	for _, table := range []string{"users", "user_groups", "group_members", "servers", "server_admins", "accounts", "public_keys"} {
		var name string
		err := sqlDB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dsn := "file:test_" + t.Name() + "?mode=memory&cache=shared"
	s, err := NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := RunMigrations(s.bun.DB, "sqlite"); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
}

func TestNewStoreFromDSN_UnsupportedType(t *testing.T) {
	if _, err := NewStoreFromDSN("oracle", "whatever"); err == nil {
		t.Fatalf("expected error for unsupported database type")
	}
}

func TestNewStoreFromDSN_OpenError(t *testing.T) {
	prev := sqlOpenFunc
	sqlOpenFunc = func(string, string) (*sql.DB, error) { return nil, errors.New("boom") }
	defer func() { sqlOpenFunc = prev }()

	if _, err := NewStoreFromDSN("sqlite", ":memory:"); err == nil {
		t.Fatalf("expected open error to propagate")
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n  CREATE TABLE b (y INT);\n")
	if len(got) != 2 || got[0] != "CREATE TABLE a (x INT)" || got[1] != "CREATE TABLE b (y INT)" {
		t.Fatalf("unexpected statements: %q", got)
	}
}

func TestMapDBError(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatalf("nil should map to nil")
	}
	if !errors.Is(MapDBError(sql.ErrNoRows), ErrNotFound) {
		t.Fatalf("sql.ErrNoRows should map to ErrNotFound")
	}
	if !errors.Is(MapDBError(errors.New("UNIQUE constraint failed: users.uid")), ErrDuplicate) {
		t.Fatalf("unique violation should map to ErrDuplicate")
	}
	if !errors.Is(MapDBError(fmt.Errorf("Error 1062: Duplicate entry")), ErrDuplicate) {
		t.Fatalf("mysql duplicate should map to ErrDuplicate")
	}
	other := errors.New("connection reset")
	if MapDBError(other) != other {
		t.Fatalf("unrelated errors must pass through")
	}
}
