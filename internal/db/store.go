// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/keysync/internal/model"
	"github.com/uptrace/bun"
)

// Store defines every directory operation keysync performs. The
// reconciliation engine only depends on a subset of it; the remaining
// methods serve provisioning, backups and tests.
type Store interface {
	// User methods
	ListUsers(ctx context.Context) ([]model.User, error)
	FindUser(ctx context.Context, uid string) (*model.User, bool, error)
	AddUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, u *model.User) error

	// Group methods
	ListGroups(ctx context.Context) ([]model.Group, error)
	FindGroup(ctx context.Context, name string) (*model.Group, bool, error)
	AddGroup(ctx context.Context, g *model.Group) error
	GroupMemberships(ctx context.Context, userID int64) ([]model.Group, error)
	GroupMembers(ctx context.Context, groupID int64) ([]model.User, error)
	IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error)
	AddGroupMember(ctx context.Context, groupID, userID int64) error
	DeleteGroupMember(ctx context.Context, groupID, userID int64) error

	// Server methods
	ListServers(ctx context.Context) ([]model.Server, error)
	AddServer(ctx context.Context, s *model.Server) error
	AddServerAdminUser(ctx context.Context, serverID, userID int64) error
	AddServerAdminGroup(ctx context.Context, serverID, groupID int64) error
	AdministeredServers(ctx context.Context, userID int64) ([]model.Server, error)
	EffectiveAdmins(ctx context.Context, serverID int64) ([]model.User, error)

	// Account methods
	ListAccounts(ctx context.Context, serverID int64) ([]model.Account, error)
	AddAccount(ctx context.Context, a *model.Account) error

	// Public key methods
	UserPublicKeys(ctx context.Context, userID int64) ([]model.PublicKey, error)
	AccountPublicKeys(ctx context.Context, accountID int64) ([]model.PublicKey, error)
	AddPublicKey(ctx context.Context, k *model.PublicKey) error
	DeletePublicKey(ctx context.Context, keyID int64) error

	// Backup
	ExportSnapshot(ctx context.Context) (*model.Snapshot, error)

	Close() error
}

// BunStore is the Bun-backed Store shared by all SQL dialects.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

var _ Store = (*BunStore)(nil)

// Type returns the configured database type ("sqlite", "postgres", "mysql").
func (s *BunStore) Type() string {
	return s.dbType
}

// Close releases the underlying database handle.
func (s *BunStore) Close() error {
	return s.bun.Close()
}
