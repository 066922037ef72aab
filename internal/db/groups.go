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

// ListGroups returns all groups ordered by name.
func (s *BunStore) ListGroups(ctx context.Context) ([]model.Group, error) {
	var gm []GroupModel
	if err := s.bun.NewSelect().Model(&gm).OrderExpr("name").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groupsToModels(gm), nil
}

// FindGroup looks a group up by name. found is false when no such group exists.
func (s *BunStore) FindGroup(ctx context.Context, name string) (*model.Group, bool, error) {
	var gm GroupModel
	err := s.bun.NewSelect().Model(&gm).Where("name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(MapDBError(err), ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find group %q: %w", name, err)
	}
	g := groupModelToModel(gm)
	return &g, true, nil
}

// AddGroup inserts g and stores the assigned id back into it.
func (s *BunStore) AddGroup(ctx context.Context, g *model.Group) error {
	gm := &GroupModel{Name: g.Name, System: g.System}
	if _, err := s.bun.NewInsert().Model(gm).ExcludeColumn("id").Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("add group %q: %w", g.Name, MapDBError(err))
	}
	g.ID = gm.ID
	dbLogf("db: added group %s (id=%d, system=%t)", g.Name, g.ID, g.System)
	return nil
}

// GroupMemberships returns the groups userID belongs to, ordered by name.
func (s *BunStore) GroupMemberships(ctx context.Context, userID int64) ([]model.Group, error) {
	var gm []GroupModel
	err := s.bun.NewSelect().Model(&gm).
		Join("JOIN group_members AS gm ON gm.group_id = g.id").
		Where("gm.user_id = ?", userID).
		OrderExpr("g.name").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list memberships of user %d: %w", userID, err)
	}
	return groupsToModels(gm), nil
}

// GroupMembers returns the users in groupID, ordered by uid.
func (s *BunStore) GroupMembers(ctx context.Context, groupID int64) ([]model.User, error) {
	var um []UserModel
	err := s.bun.NewSelect().Model(&um).
		Join("JOIN group_members AS gm ON gm.user_id = u.id").
		Where("gm.group_id = ?", groupID).
		OrderExpr("u.uid").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members of group %d: %w", groupID, err)
	}
	return usersToModels(um), nil
}

// IsGroupMember reports whether userID is a member of groupID.
func (s *BunStore) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	ok, err := s.bun.NewSelect().Model((*GroupMemberModel)(nil)).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check membership of user %d in group %d: %w", userID, groupID, err)
	}
	return ok, nil
}

// AddGroupMember adds userID to groupID. Adding an existing member is a no-op.
func (s *BunStore) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	_, err := s.bun.NewInsert().Model(&GroupMemberModel{GroupID: groupID, UserID: userID}).Exec(ctx)
	if err := MapDBError(err); err != nil && !errors.Is(err, ErrDuplicate) {
		return fmt.Errorf("add user %d to group %d: %w", userID, groupID, err)
	}
	return nil
}

// DeleteGroupMember removes userID from groupID. Removing a non-member is a no-op.
func (s *BunStore) DeleteGroupMember(ctx context.Context, groupID, userID int64) error {
	_, err := s.bun.NewDelete().Model((*GroupMemberModel)(nil)).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove user %d from group %d: %w", userID, groupID, err)
	}
	return nil
}
