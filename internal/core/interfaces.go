// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core reconciles the local directory against the external identity
// source and enforces the public key lifecycle. It only talks to its
// collaborators through the small interfaces below.
package core

import (
	"context"
	"time"

	"github.com/toeirei/keysync/internal/model"
)

// Directory is the subset of the directory store the engine mutates and
// reads. FindUser and FindGroup report absence through found=false.
type Directory interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	FindUser(ctx context.Context, uid string) (*model.User, bool, error)
	AddUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, u *model.User) error

	FindGroup(ctx context.Context, name string) (*model.Group, bool, error)
	AddGroup(ctx context.Context, g *model.Group) error
	GroupMemberships(ctx context.Context, userID int64) ([]model.Group, error)
	IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error)
	AddGroupMember(ctx context.Context, groupID, userID int64) error
	DeleteGroupMember(ctx context.Context, groupID, userID int64) error

	ListServers(ctx context.Context) ([]model.Server, error)
	ListAccounts(ctx context.Context, serverID int64) ([]model.Account, error)
	AdministeredServers(ctx context.Context, userID int64) ([]model.Server, error)
	EffectiveAdmins(ctx context.Context, serverID int64) ([]model.User, error)

	UserPublicKeys(ctx context.Context, userID int64) ([]model.PublicKey, error)
	AccountPublicKeys(ctx context.Context, accountID int64) ([]model.PublicKey, error)
	DeletePublicKey(ctx context.Context, keyID int64) error
}

// IdentitySource is the authoritative external directory.
type IdentitySource interface {
	// FetchAttributes returns found=false when the source has no entry for uid.
	FetchAttributes(ctx context.Context, uid string) (*model.Identity, bool, error)
	// FetchSuperior returns the uid of the user's superior, found=false if none.
	FetchSuperior(ctx context.Context, uid string) (string, bool, error)
	// FetchGroupClaims returns the names of the groups uid belongs to.
	FetchGroupClaims(ctx context.Context, uid string) ([]string, error)
}

// Notifier delivers a composed message.
type Notifier interface {
	Send(ctx context.Context, msg model.Message) error
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// KeyOwner is the entity a batch of public keys belongs to.
type KeyOwner interface {
	// Label identifies the owner in notification subjects.
	Label() string
	// Recipient is where notices about the owner's keys go.
	Recipient() model.Address
	DeletePublicKey(ctx context.Context, key model.PublicKey) error
}

// Policy is the read-only configuration of a run.
type Policy struct {
	SourceEnabled           bool
	FullGroupSync           bool
	AdminGroupName          string
	TracksSuperior          bool
	DeactivateOnSourceError bool

	KeyExpirationEnabled bool
	KeyExpirationDays    int

	AdminAddress  string
	AdminName     string
	ReportAddress string
	ReportName    string
}

// Admin is the address of the key administrators.
func (p Policy) Admin() model.Address {
	return model.Address{Email: p.AdminAddress, Name: p.AdminName}
}

// Report is the address orphan notices fall back to.
func (p Policy) Report() model.Address {
	return model.Address{Email: p.ReportAddress, Name: p.ReportName}
}
