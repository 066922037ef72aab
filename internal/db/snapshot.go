// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/toeirei/keysync/internal/model"
	"github.com/uptrace/bun"
)

// SnapshotSchemaVersion is bumped whenever the Snapshot layout changes.
const SnapshotSchemaVersion = 1

// ExportSnapshot exports all directory tables inside a single transaction.
func (s *BunStore) ExportSnapshot(ctx context.Context) (*model.Snapshot, error) {
	var snap *model.Snapshot
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		snap = &model.Snapshot{SchemaVersion: SnapshotSchemaVersion, CreatedAt: time.Now().UTC()}

		var users []UserModel
		if err := tx.NewSelect().Model(&users).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		snap.Users = usersToModels(users)

		var groups []GroupModel
		if err := tx.NewSelect().Model(&groups).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		snap.Groups = groupsToModels(groups)

		var members []GroupMemberModel
		if err := tx.NewSelect().Model(&members).OrderExpr("group_id, user_id").Scan(ctx); err != nil {
			return err
		}
		for _, m := range members {
			snap.GroupMembers = append(snap.GroupMembers, model.GroupMember{GroupID: m.GroupID, UserID: m.UserID})
		}

		var servers []ServerModel
		if err := tx.NewSelect().Model(&servers).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		snap.Servers = serversToModels(servers)

		var admins []ServerAdminModel
		if err := tx.NewSelect().Model(&admins).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		for _, a := range admins {
			snap.ServerAdmins = append(snap.ServerAdmins, model.ServerAdmin{
				ServerID: a.ServerID,
				UserID:   a.UserID.Int64,
				GroupID:  a.GroupID.Int64,
			})
		}

		var accounts []AccountModel
		if err := tx.NewSelect().Model(&accounts).
			ColumnExpr("a.id, a.server_id, a.name").
			ColumnExpr("s.hostname AS hostname").
			Join("JOIN servers AS s ON s.id = a.server_id").
			OrderExpr("a.id").
			Scan(ctx); err != nil {
			return err
		}
		for _, a := range accounts {
			snap.Accounts = append(snap.Accounts, accountModelToModel(a))
		}

		var keys []PublicKeyModel
		if err := tx.NewSelect().Model(&keys).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		snap.PublicKeys = keysToModels(keys)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return snap, nil
}
