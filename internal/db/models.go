// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"time"

	"github.com/toeirei/keysync/internal/model"
	"github.com/uptrace/bun"
)

// UserModel maps the `users` table for Bun queries.
type UserModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int64          `bun:"id,pk,autoincrement"`
	UID           string         `bun:"uid"`
	Name          string         `bun:"name"`
	Email         string         `bun:"email"`
	AuthRealm     string         `bun:"auth_realm"`
	Active        bool           `bun:"active"`
	Admin         bool           `bun:"admin"`
	Developer     bool           `bun:"developer"`
	SuperiorUID   sql.NullString `bun:"superior_uid"`
}

// GroupModel maps the `user_groups` table.
type GroupModel struct {
	bun.BaseModel `bun:"table:user_groups,alias:g"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Name          string `bun:"name"`
	System        bool   `bun:"system"`
}

// GroupMemberModel maps the `group_members` join table.
type GroupMemberModel struct {
	bun.BaseModel `bun:"table:group_members,alias:gm"`
	GroupID       int64 `bun:"group_id,pk"`
	UserID        int64 `bun:"user_id,pk"`
}

// ServerModel maps the `servers` table.
type ServerModel struct {
	bun.BaseModel `bun:"table:servers,alias:s"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Hostname      string `bun:"hostname"`
}

// ServerAdminModel maps `server_admins`; exactly one of UserID/GroupID is set.
type ServerAdminModel struct {
	bun.BaseModel `bun:"table:server_admins,alias:sa"`
	ID            int64         `bun:"id,pk,autoincrement"`
	ServerID      int64         `bun:"server_id"`
	UserID        sql.NullInt64 `bun:"user_id"`
	GroupID       sql.NullInt64 `bun:"group_id"`
}

// AccountModel maps the `accounts` table. Hostname is filled by joins only.
type AccountModel struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`
	ID            int64  `bun:"id,pk,autoincrement"`
	ServerID      int64  `bun:"server_id"`
	Name          string `bun:"name"`
	Hostname      string `bun:"hostname,scanonly"`
}

// PublicKeyModel maps the `public_keys` table.
type PublicKeyModel struct {
	bun.BaseModel  `bun:"table:public_keys,alias:pk"`
	ID             int64         `bun:"id,pk,autoincrement"`
	OwnerUserID    sql.NullInt64 `bun:"owner_user_id"`
	OwnerAccountID sql.NullInt64 `bun:"owner_account_id"`
	KeyData        string        `bun:"key_data"`
	UploadDate     time.Time     `bun:"upload_date"`
}

// --- Mapping helpers (centralized conversions) ---

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

func userModelToModel(m UserModel) model.User {
	u := model.User{
		ID:        m.ID,
		UID:       m.UID,
		Name:      m.Name,
		Email:     m.Email,
		AuthRealm: m.AuthRealm,
		Active:    m.Active,
		Admin:     m.Admin,
		Developer: m.Developer,
	}
	if m.SuperiorUID.Valid {
		u.SuperiorUID = m.SuperiorUID.String
	}
	return u
}

func userModelFromModel(u *model.User) *UserModel {
	return &UserModel{
		ID:          u.ID,
		UID:         u.UID,
		Name:        u.Name,
		Email:       u.Email,
		AuthRealm:   u.AuthRealm,
		Active:      u.Active,
		Admin:       u.Admin,
		Developer:   u.Developer,
		SuperiorUID: nullString(u.SuperiorUID),
	}
}

func groupModelToModel(m GroupModel) model.Group {
	return model.Group{ID: m.ID, Name: m.Name, System: m.System}
}

func serverModelToModel(m ServerModel) model.Server {
	return model.Server{ID: m.ID, Hostname: m.Hostname}
}

func accountModelToModel(m AccountModel) model.Account {
	return model.Account{ID: m.ID, ServerID: m.ServerID, Name: m.Name, Hostname: m.Hostname}
}

func publicKeyModelToModel(m PublicKeyModel) model.PublicKey {
	return model.PublicKey{
		ID:             m.ID,
		OwnerUserID:    m.OwnerUserID.Int64,
		OwnerAccountID: m.OwnerAccountID.Int64,
		KeyData:        m.KeyData,
		UploadDate:     m.UploadDate,
	}
}

func usersToModels(ms []UserModel) []model.User {
	out := make([]model.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, userModelToModel(m))
	}
	return out
}

func groupsToModels(ms []GroupModel) []model.Group {
	out := make([]model.Group, 0, len(ms))
	for _, m := range ms {
		out = append(out, groupModelToModel(m))
	}
	return out
}

func serversToModels(ms []ServerModel) []model.Server {
	out := make([]model.Server, 0, len(ms))
	for _, m := range ms {
		out = append(out, serverModelToModel(m))
	}
	return out
}

func keysToModels(ms []PublicKeyModel) []model.PublicKey {
	out := make([]model.PublicKey, 0, len(ms))
	for _, m := range ms {
		out = append(out, publicKeyModelToModel(m))
	}
	return out
}
