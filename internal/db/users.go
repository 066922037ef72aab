// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/keysync/internal/model"
)

// ListUsers returns all users ordered by uid.
func (s *BunStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var um []UserModel
	if err := s.bun.NewSelect().Model(&um).OrderExpr("uid").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return usersToModels(um), nil
}

// FindUser looks a user up by uid. found is false when no such user exists.
func (s *BunStore) FindUser(ctx context.Context, uid string) (*model.User, bool, error) {
	var um UserModel
	err := s.bun.NewSelect().Model(&um).Where("uid = ?", uid).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(MapDBError(err), ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find user %q: %w", uid, err)
	}
	u := userModelToModel(um)
	return &u, true, nil
}

// AddUser inserts u and stores the assigned id back into it.
func (s *BunStore) AddUser(ctx context.Context, u *model.User) error {
	um := userModelFromModel(u)
	if _, err := s.bun.NewInsert().Model(um).ExcludeColumn("id").Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("add user %q: %w", u.UID, MapDBError(err))
	}
	u.ID = um.ID
	dbLogf("db: added user %s (id=%d)", u.UID, u.ID)
	return nil
}

// UpdateUser overwrites the stored attributes of u, addressed by id.
func (s *BunStore) UpdateUser(ctx context.Context, u *model.User) error {
	um := userModelFromModel(u)
	res, err := s.bun.NewUpdate().Model(um).
		Column("uid", "name", "email", "auth_realm", "active", "admin", "developer", "superior_uid").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user %q: %w", u.UID, MapDBError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports zero affected rows for unchanged values, so only
		// treat a missing row as an error after checking it exists.
		var count int
		if err := QueryRawInto(ctx, s.bun, &count, "SELECT COUNT(*) FROM users WHERE id = ?", u.ID); err != nil {
			return fmt.Errorf("update user %q: %w", u.UID, err)
		}
		if count == 0 {
			return fmt.Errorf("update user %q: %w", u.UID, ErrNotFound)
		}
	}
	return nil
}
