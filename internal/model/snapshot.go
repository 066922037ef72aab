// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "time"

// Snapshot is a container for all directory data exported for a backup.
type Snapshot struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`

	Users        []User        `json:"users"`
	Groups       []Group       `json:"groups"`
	GroupMembers []GroupMember `json:"group_members"`
	Servers      []Server      `json:"servers"`
	ServerAdmins []ServerAdmin `json:"server_admins"`
	Accounts     []Account     `json:"accounts"`
	PublicKeys   []PublicKey   `json:"public_keys"`
}

// GroupMember represents the many-to-many relationship between groups and users.
type GroupMember struct {
	GroupID int64 `json:"group_id"`
	UserID  int64 `json:"user_id"`
}

// ServerAdmin designates an owner of a server: either a user or a group.
// Exactly one of UserID and GroupID is non-zero.
type ServerAdmin struct {
	ServerID int64 `json:"server_id"`
	UserID   int64 `json:"user_id,omitempty"`
	GroupID  int64 `json:"group_id,omitempty"`
}
