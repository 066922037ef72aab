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

// UserPublicKeys returns the keys owned by userID, oldest first.
func (s *BunStore) UserPublicKeys(ctx context.Context, userID int64) ([]model.PublicKey, error) {
	var pks []PublicKeyModel
	err := s.bun.NewSelect().Model(&pks).
		Where("owner_user_id = ?", userID).
		OrderExpr("upload_date, id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys of user %d: %w", userID, err)
	}
	return keysToModels(pks), nil
}

// AccountPublicKeys returns the keys deployed for accountID, oldest first.
func (s *BunStore) AccountPublicKeys(ctx context.Context, accountID int64) ([]model.PublicKey, error) {
	var pks []PublicKeyModel
	err := s.bun.NewSelect().Model(&pks).
		Where("owner_account_id = ?", accountID).
		OrderExpr("upload_date, id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys of account %d: %w", accountID, err)
	}
	return keysToModels(pks), nil
}

// AddPublicKey inserts k and stores the assigned id back into it. Exactly
// one owner must be set.
func (s *BunStore) AddPublicKey(ctx context.Context, k *model.PublicKey) error {
	if (k.OwnerUserID == 0) == (k.OwnerAccountID == 0) {
		return errors.New("add public key: exactly one of user or account owner must be set")
	}
	pm := &PublicKeyModel{
		OwnerUserID:    nullInt64(k.OwnerUserID),
		OwnerAccountID: nullInt64(k.OwnerAccountID),
		KeyData:        k.KeyData,
		UploadDate:     k.UploadDate.UTC(),
	}
	if _, err := s.bun.NewInsert().Model(pm).ExcludeColumn("id").Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("add public key: %w", MapDBError(err))
	}
	k.ID = pm.ID
	return nil
}

// DeletePublicKey removes a key by id.
func (s *BunStore) DeletePublicKey(ctx context.Context, keyID int64) error {
	res, err := s.bun.NewDelete().Model((*PublicKeyModel)(nil)).Where("id = ?", keyID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete public key %d: %w", keyID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete public key %d: %w", keyID, ErrNotFound)
	}
	dbLogf("db: deleted public key %d", keyID)
	return nil
}
