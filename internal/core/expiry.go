// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/toeirei/keysync/internal/i18n"
	"github.com/toeirei/keysync/internal/model"
	"github.com/toeirei/keysync/internal/sshkey"
)

// Notice stages, in days before expiry. At or below finalNotice every run
// warns until the key is removed.
const (
	firstNotice  = 21
	secondNotice = 14
	finalNotice  = 7
)

// DaysRemaining returns the whole days until a key uploaded at upload
// expires, rounded half away from zero. Negative values mean the key is
// overdue.
func DaysRemaining(upload time.Time, windowDays int, now time.Time) int {
	expires := upload.Add(time.Duration(windowDays) * 24 * time.Hour)
	return int(math.Round(expires.Sub(now).Hours() / 24))
}

// ExpireKeys applies the expiry policy to keys belonging to owner. Overdue
// keys are deleted before the removal notice is sent. A key gets at most one
// message and one deletion per call.
func (e *Engine) ExpireKeys(ctx context.Context, keys []model.PublicKey, owner KeyOwner) error {
	if !e.policy.KeyExpirationEnabled {
		return nil
	}
	now := e.clock.Now()
	for _, key := range keys {
		days := DaysRemaining(key.UploadDate, e.policy.KeyExpirationDays, now)
		switch {
		case days == firstNotice, days == secondNotice:
		case days <= 0:
			if err := owner.DeletePublicKey(ctx, key); err != nil {
				return fmt.Errorf("remove expired key %d of %s: %w", key.ID, owner.Label(), err)
			}
			e.metrics.KeyRemoved()
			e.log.Info("removed expired key", "owner", owner.Label(), "key", key.ID, "days", days)
			if err := e.notifyKey(ctx, owner, key, "key.removed", days); err != nil {
				return err
			}
			continue
		case days <= finalNotice:
		default:
			continue
		}

		e.metrics.KeyWarned()
		e.log.Info("key expires soon", "owner", owner.Label(), "key", key.ID, "days", days)
		if err := e.notifyKey(ctx, owner, key, "key.expiring", days); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) notifyKey(ctx context.Context, owner KeyOwner, key model.PublicKey, stage string, days int) error {
	to := owner.Recipient()
	if to.Email == "" {
		e.log.Warn("no address to notify about key", "owner", owner.Label(), "key", key.ID)
		return nil
	}
	body := i18n.T(stage + ".body")
	if fp, err := sshkey.Fingerprint(key.KeyData); err == nil {
		body += "\n\n" + i18n.T("key.fingerprint", map[string]any{"Fingerprint": fp})
	}
	return e.send(ctx, model.Message{
		Subject:    i18n.T(stage+".subject", map[string]any{"Label": owner.Label(), "Days": days}),
		Body:       body,
		Recipients: []model.Address{to},
	})
}

type userKeyOwner struct {
	dir  Directory
	user *model.User
}

// UserKeyOwner returns the KeyOwner for keys uploaded by u. Notices go to the
// user's own address.
func UserKeyOwner(dir Directory, u *model.User) KeyOwner {
	return userKeyOwner{dir: dir, user: u}
}

func (o userKeyOwner) Label() string            { return o.user.UID }
func (o userKeyOwner) Recipient() model.Address { return o.user.Address() }
func (o userKeyOwner) DeletePublicKey(ctx context.Context, key model.PublicKey) error {
	return o.dir.DeletePublicKey(ctx, key.ID)
}

type accountKeyOwner struct {
	dir     Directory
	account model.Account
	admin   model.Address
}

// AccountKeyOwner returns the KeyOwner for keys held by a server account.
// Nobody owns those personally, so notices go to admin.
func AccountKeyOwner(dir Directory, a model.Account, admin model.Address) KeyOwner {
	return accountKeyOwner{dir: dir, account: a, admin: admin}
}

func (o accountKeyOwner) Label() string            { return o.account.String() }
func (o accountKeyOwner) Recipient() model.Address { return o.admin }
func (o accountKeyOwner) DeletePublicKey(ctx context.Context, key model.PublicKey) error {
	return o.dir.DeletePublicKey(ctx, key.ID)
}
