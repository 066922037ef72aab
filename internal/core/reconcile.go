// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/toeirei/keysync/internal/model"
)

// ReconcileUser brings u in line with the identity source. Only users of the
// LDAP realm are touched. Attribute changes from a successful fetch are
// persisted here; a deactivation caused by a missing entry is left for the
// caller's final UpdateUser.
func (e *Engine) ReconcileUser(ctx context.Context, u *model.User) error {
	if !u.IsExternal() {
		return nil
	}
	if !e.policy.SourceEnabled {
		u.Active = false
		return nil
	}

	wasActive := u.Active
	fetched, err := e.refresh(ctx, u)
	if err != nil {
		e.metrics.SourceError()
		if !e.policy.DeactivateOnSourceError {
			e.log.Warn("identity source failed, leaving user unchanged", "uid", u.UID, "err", err)
			return nil
		}
		e.log.Warn("identity source failed, deactivating user", "uid", u.UID, "err", err)
		u.Active = false
	}
	if fetched {
		if err := e.dir.UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("update user %s: %w", u.UID, err)
		}
	}

	if fetched && e.policy.FullGroupSync {
		if err := e.syncGroups(ctx, u); err != nil {
			return err
		}
	}

	if wasActive && !u.Active {
		e.metrics.UserDeactivated()
		e.log.Info("user deactivated", "uid", u.UID)
		servers, err := e.dir.AdministeredServers(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("list servers of %s: %w", u.UID, err)
		}
		for _, srv := range servers {
			if err := e.EscalateOrphan(ctx, srv, u); err != nil {
				return err
			}
		}
	}

	return e.syncAdminGroup(ctx, u)
}

// refresh copies the authoritative attributes onto u. fetched is false when
// the source has no entry for u, in which case u is marked inactive. On error
// u is left as it was.
func (e *Engine) refresh(ctx context.Context, u *model.User) (fetched bool, err error) {
	id, found, err := e.source.FetchAttributes(ctx, u.UID)
	if err != nil {
		return false, fmt.Errorf("fetch attributes of %s: %w", u.UID, err)
	}
	if !found {
		e.log.Info("user not found in identity source", "uid", u.UID)
		u.Active = false
		return false, nil
	}

	claims, err := e.source.FetchGroupClaims(ctx, u.UID)
	if err != nil {
		return false, fmt.Errorf("fetch groups of %s: %w", u.UID, err)
	}
	superior := u.SuperiorUID
	if e.policy.TracksSuperior {
		uid, ok, err := e.source.FetchSuperior(ctx, u.UID)
		if err != nil {
			return false, fmt.Errorf("fetch superior of %s: %w", u.UID, err)
		}
		superior = ""
		if ok {
			superior = uid
		}
	}

	u.Name = id.Name
	u.Email = id.Email
	u.Active = id.Active
	u.Admin = id.Admin
	u.Developer = id.Developer
	u.GroupClaims = claims
	u.SuperiorUID = superior
	return true, nil
}

// syncGroups mirrors u.GroupClaims onto the directory. The admin group is
// derived from user state instead and left alone here.
func (e *Engine) syncGroups(ctx context.Context, u *model.User) error {
	groups, err := e.dir.GroupMemberships(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("list groups of %s: %w", u.UID, err)
	}
	current := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Name != e.policy.AdminGroupName {
			current = append(current, g.Name)
		}
	}
	claims := make([]string, 0, len(u.GroupClaims))
	for _, name := range u.GroupClaims {
		if name != e.policy.AdminGroupName {
			claims = append(claims, name)
		}
	}

	toAdd, toRemove := Diff(current, claims)
	for _, name := range toAdd {
		g, err := e.resolveGroup(ctx, name)
		if err != nil {
			return err
		}
		if err := e.dir.AddGroupMember(ctx, g.ID, u.ID); err != nil {
			return fmt.Errorf("add %s to %s: %w", u.UID, name, err)
		}
		e.metrics.GroupChanged("add")
		e.log.Info("added to group", "uid", u.UID, "group", name)
	}
	for _, name := range toRemove {
		g, err := e.resolveGroup(ctx, name)
		if err != nil {
			return err
		}
		if err := e.dir.DeleteGroupMember(ctx, g.ID, u.ID); err != nil {
			return fmt.Errorf("remove %s from %s: %w", u.UID, name, err)
		}
		e.metrics.GroupChanged("remove")
		e.log.Info("removed from group", "uid", u.UID, "group", name)
	}
	return nil
}

// syncAdminGroup keeps u in the admin group exactly while it is an active
// admin.
func (e *Engine) syncAdminGroup(ctx context.Context, u *model.User) error {
	if e.policy.AdminGroupName == "" {
		return nil
	}
	g, err := e.resolveGroup(ctx, e.policy.AdminGroupName)
	if err != nil {
		return err
	}
	member, err := e.dir.IsGroupMember(ctx, g.ID, u.ID)
	if err != nil {
		return fmt.Errorf("check admin group membership of %s: %w", u.UID, err)
	}
	want := u.Admin && u.Active
	switch {
	case want && !member:
		if err := e.dir.AddGroupMember(ctx, g.ID, u.ID); err != nil {
			return fmt.Errorf("add %s to admin group: %w", u.UID, err)
		}
		e.metrics.GroupChanged("add")
		e.log.Info("added to admin group", "uid", u.UID)
	case !want && member:
		if err := e.dir.DeleteGroupMember(ctx, g.ID, u.ID); err != nil {
			return fmt.Errorf("remove %s from admin group: %w", u.UID, err)
		}
		e.metrics.GroupChanged("remove")
		e.log.Info("removed from admin group", "uid", u.UID)
	}
	return nil
}
