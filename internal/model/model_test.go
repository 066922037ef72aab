// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestAccountString(t *testing.T) {
	a := Account{Name: "deploy", Hostname: "web-01"}
	if got := a.String(); got != "deploy@web-01" {
		t.Errorf("unexpected Account.String(): %q", got)
	}
}

func TestAddressString(t *testing.T) {
	if got := (Address{Email: "ops@example.com"}).String(); got != "ops@example.com" {
		t.Errorf("unexpected bare address: %q", got)
	}
	a := Address{Email: "ops@example.com", Name: "Ops Team"}
	if got := a.String(); got != "Ops Team <ops@example.com>" {
		t.Errorf("unexpected named address: %q", got)
	}
}

func TestUserIsExternal(t *testing.T) {
	if !(User{AuthRealm: RealmLDAP}).IsExternal() {
		t.Errorf("LDAP realm user should be external")
	}
	if (User{AuthRealm: RealmLocal}).IsExternal() {
		t.Errorf("local realm user should not be external")
	}
}
