// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"strings"
	"testing"
)

func TestAvailableLocales(t *testing.T) {
	got := GetAvailableLocales()
	if len(got) != 2 || got[0] != "de" || got[1] != "en" {
		t.Fatalf("unexpected locales: %v", got)
	}
}

func TestT_TemplateData(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}
	got := T("key.expiring.subject", map[string]any{"Label": "alice", "Days": 21})
	if got != "alice: Public key expires in 21 days" {
		t.Fatalf("unexpected subject: %q", got)
	}
	body := T("orphan.body", map[string]any{"Name": "Alice", "UID": "alice", "Hostname": "web-01", "AdminAddress": "keys@example.com"})
	if !strings.HasPrefix(body, "Alice (alice) was an administrator for web-01,") || !strings.Contains(body, "\n\nPlease find a replacement owner") {
		t.Fatalf("unexpected orphan body: %q", body)
	}
}

func TestT_FormattingAndFallback(t *testing.T) {
	Init("en")
	if got := T("run.summary", 3, 1, 2, 0); got != "Run finished: 3 users, 1 deactivated, 2 keys warned, 0 keys removed" {
		t.Fatalf("unexpected formatted translation: %q", got)
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("unknown ids must be returned unchanged, got %q", got)
	}
}

func TestSetLang_German(t *testing.T) {
	SetLang("de")
	defer Init("en")
	if GetLang() != "de" {
		t.Fatalf("expected lang 'de', got %q", GetLang())
	}
	if got := T("sync_user.name"); got != "Synchronisationsskript" {
		t.Fatalf("expected German text, got %q", got)
	}
}

func TestInit_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	Init("xx")
	defer Init("en")
	if got := T("key.removed.body"); got != "Public key expired and was removed from the system." {
		t.Fatalf("expected English fallback, got %q", got)
	}
}
