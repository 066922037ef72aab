// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the directory entities keysync reconciles. They are
// plain structs shared by the store, the identity source and the engine.
package model // import "github.com/toeirei/keysync/internal/model"

import (
	"fmt"
	"time"
)

// Authentication realms a user can belong to.
const (
	// RealmLDAP marks users whose attributes are owned by the external directory.
	RealmLDAP = "LDAP"
	// RealmLocal marks users managed inside keysync only.
	RealmLocal = "local"
)

// User is a person (or automation identity) known to the directory.
type User struct {
	ID        int64  `json:"id"`
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AuthRealm string `json:"auth_realm"`
	Active    bool   `json:"active"`
	Admin     bool   `json:"admin"`
	Developer bool   `json:"developer"`
	// SuperiorUID references the user's manager by UID. Empty means no
	// superior is known. The referenced user may be inactive or missing.
	SuperiorUID string `json:"superior_uid,omitempty"`

	// GroupClaims holds the group names the external directory reported for
	// this user during the current sync. It is never persisted.
	GroupClaims []string `json:"-"`
}

// IsExternal reports whether the user's attributes come from the external directory.
func (u User) IsExternal() bool {
	return u.AuthRealm == RealmLDAP
}

// Address returns the user's mail address as a message recipient.
func (u User) Address() Address {
	return Address{Email: u.Email, Name: u.Name}
}

// Group is a named set of users.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// System is set on groups created by reconciliation rather than by an administrator.
	System bool `json:"system"`
}

// Server is a managed host.
type Server struct {
	ID       int64  `json:"id"`
	Hostname string `json:"hostname"`
}

// Account represents a user on a specific host (e.g., deploy@server-01).
type Account struct {
	ID       int64  `json:"id"`
	ServerID int64  `json:"server_id"`
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
}

// String returns the user@host representation.
func (a Account) String() string {
	return fmt.Sprintf("%s@%s", a.Name, a.Hostname)
}

// PublicKey is an SSH public key owned by either a user or a server account.
type PublicKey struct {
	ID             int64     `json:"id"`
	OwnerUserID    int64     `json:"owner_user_id,omitempty"`
	OwnerAccountID int64     `json:"owner_account_id,omitempty"`
	KeyData        string    `json:"key_data"`
	UploadDate     time.Time `json:"upload_date"`
}

// Identity carries the authoritative attributes of a user as reported by the
// external directory.
type Identity struct {
	UID       string
	Name      string
	Email     string
	Active    bool
	Admin     bool
	Developer bool
}

// Address is a mail address with an optional display name.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// String renders the address in "Name <email>" form.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Message is a single notification to be delivered.
type Message struct {
	Subject    string
	Body       string
	Recipients []Address
	CC         []Address
	ReplyTo    Address
}
