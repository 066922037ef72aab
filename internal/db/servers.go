// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/keysync/internal/model"
)

// ListServers returns all servers ordered by hostname.
func (s *BunStore) ListServers(ctx context.Context) ([]model.Server, error) {
	var sm []ServerModel
	if err := s.bun.NewSelect().Model(&sm).OrderExpr("hostname").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	return serversToModels(sm), nil
}

// AddServer inserts srv and stores the assigned id back into it.
func (s *BunStore) AddServer(ctx context.Context, srv *model.Server) error {
	sm := &ServerModel{Hostname: srv.Hostname}
	if _, err := s.bun.NewInsert().Model(sm).ExcludeColumn("id").Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("add server %q: %w", srv.Hostname, MapDBError(err))
	}
	srv.ID = sm.ID
	return nil
}

// AddServerAdminUser designates userID as a direct administrator of serverID.
func (s *BunStore) AddServerAdminUser(ctx context.Context, serverID, userID int64) error {
	sa := &ServerAdminModel{ServerID: serverID, UserID: nullInt64(userID)}
	if _, err := s.bun.NewInsert().Model(sa).ExcludeColumn("id").Exec(ctx); err != nil {
		return fmt.Errorf("add admin user %d to server %d: %w", userID, serverID, MapDBError(err))
	}
	return nil
}

// AddServerAdminGroup designates every member of groupID as an administrator of serverID.
func (s *BunStore) AddServerAdminGroup(ctx context.Context, serverID, groupID int64) error {
	sa := &ServerAdminModel{ServerID: serverID, GroupID: nullInt64(groupID)}
	if _, err := s.bun.NewInsert().Model(sa).ExcludeColumn("id").Exec(ctx); err != nil {
		return fmt.Errorf("add admin group %d to server %d: %w", groupID, serverID, MapDBError(err))
	}
	return nil
}

// AdministeredServers returns the servers userID administers, directly or
// through membership of an administering group.
func (s *BunStore) AdministeredServers(ctx context.Context, userID int64) ([]model.Server, error) {
	var sm []ServerModel
	err := QueryRawInto(ctx, s.bun, &sm, `
		SELECT s.id, s.hostname FROM servers AS s
		WHERE s.id IN (
			SELECT sa.server_id FROM server_admins AS sa WHERE sa.user_id = ?
			UNION
			SELECT sa.server_id FROM server_admins AS sa
			JOIN group_members AS gm ON gm.group_id = sa.group_id
			WHERE gm.user_id = ?
		)
		ORDER BY s.hostname`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list servers administered by user %d: %w", userID, err)
	}
	return serversToModels(sm), nil
}

// EffectiveAdmins returns every user administering serverID, directly or
// through group membership, regardless of their active flag.
func (s *BunStore) EffectiveAdmins(ctx context.Context, serverID int64) ([]model.User, error) {
	var um []UserModel
	err := QueryRawInto(ctx, s.bun, &um, `
		SELECT u.id, u.uid, u.name, u.email, u.auth_realm, u.active, u.admin, u.developer, u.superior_uid
		FROM users AS u
		WHERE u.id IN (
			SELECT sa.user_id FROM server_admins AS sa
			WHERE sa.server_id = ? AND sa.user_id IS NOT NULL
			UNION
			SELECT gm.user_id FROM server_admins AS sa
			JOIN group_members AS gm ON gm.group_id = sa.group_id
			WHERE sa.server_id = ?
		)
		ORDER BY u.uid`, serverID, serverID)
	if err != nil {
		return nil, fmt.Errorf("list admins of server %d: %w", serverID, err)
	}
	return usersToModels(um), nil
}

// ListAccounts returns the accounts of serverID with their hostname filled in.
func (s *BunStore) ListAccounts(ctx context.Context, serverID int64) ([]model.Account, error) {
	var am []AccountModel
	err := s.bun.NewSelect().Model(&am).
		ColumnExpr("a.id, a.server_id, a.name").
		ColumnExpr("s.hostname AS hostname").
		Join("JOIN servers AS s ON s.id = a.server_id").
		Where("a.server_id = ?", serverID).
		OrderExpr("a.name").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts of server %d: %w", serverID, err)
	}
	out := make([]model.Account, 0, len(am))
	for _, a := range am {
		out = append(out, accountModelToModel(a))
	}
	return out, nil
}

// AddAccount inserts a and stores the assigned id back into it.
func (s *BunStore) AddAccount(ctx context.Context, a *model.Account) error {
	am := &AccountModel{ServerID: a.ServerID, Name: a.Name}
	if _, err := s.bun.NewInsert().Model(am).ExcludeColumn("id").Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("add account %q: %w", a.Name, MapDBError(err))
	}
	a.ID = am.ID
	return nil
}
