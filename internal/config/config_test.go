// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cfg "github.com/toeirei/keysync/internal/config"
)

func TestLoadConfig_MissingFile_ReportsNotFound(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	wd, _ := os.Getwd()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() { _ = os.Chdir(wd) }()

	_, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if err == nil {
		t.Fatalf("expected ConfigFileNotFoundError, got nil")
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	c := cfg.Config{}
	c.Database.Type = "sqlite"
	c.Database.Dsn = "./keysync.db"
	c.Language = "en"

	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file at %s, stat error: %v", path, err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := t.TempDir()
	yaml := `database:
  type: postgres
  dsn: postgresql://user@/db
language: de
ldap:
  enabled: true
  admin_group_cn: ops-admins
  user_superior: manager
  user_active_true: ["active", "yes"]
general:
  key_expiration_enabled: true
  key_expiration_days: 30
email:
  report_address: reports@example.com
`
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Database.Type != "postgres" {
		t.Fatalf("expected postgres, got %q", got.Database.Type)
	}
	if got.Language != "de" {
		t.Fatalf("expected de, got %q", got.Language)
	}
	if !got.LDAP.Enabled || got.LDAP.AdminGroupCN != "ops-admins" || got.LDAP.UserSuperior != "manager" {
		t.Fatalf("unexpected ldap section: %+v", got.LDAP)
	}
	if len(got.LDAP.UserActiveTrue) != 2 {
		t.Fatalf("expected two active values, got %v", got.LDAP.UserActiveTrue)
	}
	// Defaults fill keys the file leaves out.
	if got.LDAP.UserID != "uid" || !got.LDAP.DeactivateOnError {
		t.Fatalf("defaults not applied: %+v", got.LDAP)
	}
	if !got.General.KeyExpirationEnabled || got.General.KeyExpirationDays != 30 {
		t.Fatalf("unexpected general section: %+v", got.General)
	}
	if got.Email.ReportAddress != "reports@example.com" || got.Email.Transport != "log" {
		t.Fatalf("unexpected email section: %+v", got.Email)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte("general:\n  key_expiration_days: 30\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("KEYSYNC_GENERAL_KEY_EXPIRATION_DAYS", "90")

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.General.KeyExpirationDays != 90 {
		t.Fatalf("expected env override 90, got %d", got.General.KeyExpirationDays)
	}
}

func TestLoadDefaults_UsesFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("database.dsn", "./keysync.db", "")
	if err := cmd.Flags().Set("database.dsn", "/tmp/other.db"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	got, err := cfg.LoadDefaults[cfg.Config](cmd, cfg.Defaults())
	if err != nil {
		t.Fatalf("LoadDefaults returned error: %v", err)
	}
	if got.Database.Dsn != "/tmp/other.db" {
		t.Fatalf("expected flag value, got %q", got.Database.Dsn)
	}
	if got.Database.Type != "sqlite" {
		t.Fatalf("expected default type, got %q", got.Database.Type)
	}
}
