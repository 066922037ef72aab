// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/toeirei/keysync/internal/i18n"
	"github.com/toeirei/keysync/internal/model"
)

// EscalateOrphan sends exactly one notice when departed was the last active
// administrator of server. The notice goes to the nearest active superior of
// departed with the report address in CC, or to the report address alone if
// superiors are not tracked or the reporting chain has no active member. It
// never changes the directory.
func (e *Engine) EscalateOrphan(ctx context.Context, server model.Server, departed *model.User) error {
	admins, err := e.dir.EffectiveAdmins(ctx, server.ID)
	if err != nil {
		return fmt.Errorf("list admins of %s: %w", server.Hostname, err)
	}
	for _, a := range admins {
		// departed may still be stored as active until the run persists it.
		if a.ID != departed.ID && a.Active {
			return nil
		}
	}

	// A stored superior is stale when the source does not track it.
	var superior *model.User
	if e.policy.TracksSuperior {
		superior, err = e.activeSuperior(ctx, departed)
		if err != nil {
			return err
		}
	}

	data := map[string]any{
		"Name":         departed.Name,
		"UID":          departed.UID,
		"Hostname":     server.Hostname,
		"AdminAddress": e.policy.AdminAddress,
	}
	msg := model.Message{
		Subject: i18n.T("orphan.subject", data),
		Body:    i18n.T("orphan.body", data),
	}
	if superior != nil {
		msg.Recipients = []model.Address{superior.Address()}
		msg.CC = []model.Address{e.policy.Report()}
	} else {
		msg.Subject += i18n.T("orphan.subject.no_superior")
		msg.Body += "\n\n" + i18n.T("orphan.body.no_superior")
		msg.Recipients = []model.Address{e.policy.Report()}
	}

	e.metrics.Escalated(superior != nil)
	e.log.Warn("server orphaned", "server", server.Hostname, "departed", departed.UID, "superior_found", superior != nil)
	return e.send(ctx, msg)
}

// activeSuperior walks the reporting chain upwards from u and returns the
// first active user, or nil when the chain ends, breaks or loops.
func (e *Engine) activeSuperior(ctx context.Context, u *model.User) (*model.User, error) {
	seen := map[string]bool{u.UID: true}
	uid := u.SuperiorUID
	for uid != "" && !seen[uid] {
		seen[uid] = true
		s, found, err := e.dir.FindUser(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("find superior %s of %s: %w", uid, u.UID, err)
		}
		if !found {
			return nil, nil
		}
		if s.Active {
			return s, nil
		}
		uid = s.SuperiorUID
	}
	return nil, nil
}
