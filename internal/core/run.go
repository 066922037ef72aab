// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/toeirei/keysync/internal/i18n"
	"github.com/toeirei/keysync/internal/model"
)

// Run performs one full reconciliation pass: it makes sure the sync user and
// the admin group exist, expires server account keys, then reconciles every
// user, expires their keys and persists them. The first directory or notifier
// error aborts the run.
func (e *Engine) Run(ctx context.Context) (err error) {
	start := e.clock.Now()
	base := e.log
	e.log = base.With("run", uuid.NewString())
	defer func() {
		e.metrics.Finish(e.clock.Now().Sub(start), err, e.clock.Now())
		if err != nil {
			e.log.Error("run failed", "err", err)
		} else {
			e.log.Info("run finished", "duration", e.clock.Now().Sub(start))
		}
		e.log = base
	}()

	e.log.Info("run started", "source", e.policy.SourceEnabled, "key_expiration", e.policy.KeyExpirationEnabled)

	if err := e.ensureSyncUser(ctx); err != nil {
		return err
	}
	if e.policy.SourceEnabled && e.policy.AdminGroupName != "" {
		if _, err := e.resolveGroup(ctx, e.policy.AdminGroupName); err != nil {
			return err
		}
	}
	if err := e.expireAccountKeys(ctx); err != nil {
		return err
	}

	users, err := e.dir.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.processUser(ctx, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) processUser(ctx context.Context, u *model.User) error {
	if err := e.ReconcileUser(ctx, u); err != nil {
		return err
	}
	keys, err := e.dir.UserPublicKeys(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("list keys of %s: %w", u.UID, err)
	}
	if err := e.ExpireKeys(ctx, keys, UserKeyOwner(e.dir, u)); err != nil {
		return err
	}
	if err := e.dir.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("update user %s: %w", u.UID, err)
	}
	e.metrics.UserProcessed()
	return nil
}

func (e *Engine) expireAccountKeys(ctx context.Context) error {
	servers, err := e.dir.ListServers(ctx)
	if err != nil {
		return fmt.Errorf("list servers: %w", err)
	}
	admin := e.policy.Admin()
	for _, srv := range servers {
		accounts, err := e.dir.ListAccounts(ctx, srv.ID)
		if err != nil {
			return fmt.Errorf("list accounts of %s: %w", srv.Hostname, err)
		}
		for _, a := range accounts {
			keys, err := e.dir.AccountPublicKeys(ctx, a.ID)
			if err != nil {
				return fmt.Errorf("list keys of %s: %w", a, err)
			}
			if err := e.ExpireKeys(ctx, keys, AccountKeyOwner(e.dir, a, admin)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ensureSyncUser creates the local system user keysync acts as.
func (e *Engine) ensureSyncUser(ctx context.Context) error {
	_, found, err := e.dir.FindUser(ctx, SyncUserUID)
	if err != nil {
		return fmt.Errorf("find sync user: %w", err)
	}
	if found {
		return nil
	}
	u := &model.User{
		UID:       SyncUserUID,
		Name:      i18n.T("sync_user.name"),
		AuthRealm: model.RealmLocal,
		Active:    true,
		Admin:     true,
	}
	if err := e.dir.AddUser(ctx, u); err != nil {
		return fmt.Errorf("create sync user: %w", err)
	}
	e.log.Info("created sync user", "uid", SyncUserUID)
	return nil
}
