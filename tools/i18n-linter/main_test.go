// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func fixture(t *testing.T, en, de string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "internal", "core", "notify.go"), `package core
func f() {
	_ = i18n.T("key.removed.subject", nil)
	_ = i18n.T("orphan.subject")
}`)
	// Sources in skipped trees do not count as usage.
	writeFile(t, filepath.Join(root, "_examples", "x.go"), `package x
func g() { _ = i18n.T("ignored.key") }`)
	writeFile(t, filepath.Join(root, "internal", "core", "notify_test.go"), `package core
func h() { _ = i18n.T("test.only") }`)
	writeFile(t, filepath.Join(root, localesDir, "en.yaml"), en)
	writeFile(t, filepath.Join(root, localesDir, "de.yaml"), de)
	return root
}

func TestLint_Consistent(t *testing.T) {
	root := fixture(t,
		"key.removed.subject: \"{{.Label}}: removed\"\norphan.subject: \"Server {{.Hostname}} orphaned\"\n",
		"key.removed.subject: \"{{.Label}}: entfernt\"\norphan.subject: \"Server {{ .Hostname }} verwaist\"\n")
	r, err := lint(root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if r.failed() {
		t.Fatalf("expected clean report, got %+v", r)
	}
	if len(r.Orphaned) != 0 {
		t.Fatalf("unexpected orphans %v", r.Orphaned)
	}
}

func TestLint_ReportsProblems(t *testing.T) {
	root := fixture(t,
		"key.removed.subject: \"{{.Label}}: removed\"\nunused.key: \"x\"\n",
		"key.removed.subject: \"entfernt\"\n")
	r, err := lint(root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(r.Undefined) != 1 || r.Undefined[0] != "orphan.subject" {
		t.Fatalf("undefined = %v", r.Undefined)
	}
	if got := r.Missing["de.yaml"]; len(got) != 1 || got[0] != "unused.key" {
		t.Fatalf("missing = %v", r.Missing)
	}
	if got := r.Mismatched["de.yaml"]; len(got) != 1 || got[0] != "key.removed.subject" {
		t.Fatalf("mismatched = %v", r.Mismatched)
	}
	if len(r.Orphaned) != 1 || r.Orphaned[0] != "unused.key" {
		t.Fatalf("orphaned = %v", r.Orphaned)
	}

	var buf bytes.Buffer
	writeReport(&buf, r)
	if !strings.Contains(buf.String(), "i18n: FAILED") {
		t.Fatalf("expected failure line, got:\n%s", buf.String())
	}
}

func TestLoadLocale_Nested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested.yaml")
	writeFile(t, path, "key:\n  removed:\n    subject: \"x\"\nflat.key: \"y\"\n")
	got, err := loadLocale(path)
	if err != nil {
		t.Fatalf("loadLocale: %v", err)
	}
	if got["key.removed.subject"] != "x" || got["flat.key"] != "y" {
		t.Fatalf("unexpected flattening %v", got)
	}
}
