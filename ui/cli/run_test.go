// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/keysync/internal/backup"
	"github.com/toeirei/keysync/internal/core"
	"github.com/toeirei/keysync/internal/db"
	"github.com/toeirei/keysync/internal/ldap"
)

// writeTestConfig writes a minimal configuration backed by a sqlite file in
// a temporary directory and isolates the user config location.
func writeTestConfig(t *testing.T) (cfgPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))

	cfgPath = filepath.Join(dir, "keysync.yaml")
	content := fmt.Sprintf(`database:
  type: sqlite
  dsn: %s
language: en
ldap:
  enabled: false
general:
  key_expiration_enabled: true
  key_expiration_days: 365
email:
  transport: log
  admin_address: admins@example.com
metrics:
  textfile: %s
`, filepath.Join(dir, "keysync.db"), filepath.Join(dir, "keysync.prom"))
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, dir
}

func TestRunAndBackup_EndToEnd(t *testing.T) {
	cfgPath, dir := writeTestConfig(t)

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "run"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	prom, err := os.ReadFile(filepath.Join(dir, "keysync.prom"))
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	if !strings.Contains(string(prom), "keysync_run_success 1") {
		t.Fatalf("expected successful run in metrics, got:\n%s", prom)
	}

	out := filepath.Join(dir, "snapshot.json")
	var stdout bytes.Buffer
	cmd = NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--config", cfgPath, "backup", out})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if !strings.Contains(stdout.String(), out+".zst") {
		t.Fatalf("expected backup path in output, got %q", stdout.String())
	}

	snap, err := backup.ReadFile(out + ".zst")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	found := false
	for _, u := range snap.Users {
		if u.UID == core.SyncUserUID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sync user %q in backup, got %+v", core.SyncUserUID, snap.Users)
	}
}

func TestRun_UnknownTransportFails(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	data = bytes.Replace(data, []byte("transport: log"), []byte("transport: carrier"), 1)
	if err := os.WriteFile(cfgPath, data, 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for unknown transport")
	}
}

func TestConfigFlag_MissingFile(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "run"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing --config file")
	}
}

func TestRun_LDAPDialFailureLeavesDirectoryUntouched(t *testing.T) {
	cfgPath, dir := writeTestConfig(t)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	data = bytes.Replace(data, []byte("enabled: false"), []byte("enabled: true"), 1)
	if err := os.WriteFile(cfgPath, data, 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	orig := dialLDAP
	defer func() { dialLDAP = orig }()
	dialLDAP = func(ldap.Config) (*ldap.Source, error) { return nil, ldap.ErrUnavailable }

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "run"})
	if err := cmd.Execute(); !errors.Is(err, ldap.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "keysync.prom")); !os.IsNotExist(err) {
		t.Fatalf("no metrics expected when the run did not start, stat err=%v", err)
	}
	store, err := db.NewStoreFromDSN("sqlite", filepath.Join(dir, "keysync.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()
	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no directory changes, got users %+v", users)
	}
}
