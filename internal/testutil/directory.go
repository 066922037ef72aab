// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil provides in-memory collaborators for engine tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/toeirei/keysync/internal/model"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("injected failure")

// MemDirectory is an in-memory directory. Ids are assigned sequentially.
// Fail* fields make the matching method return ErrInjected.
type MemDirectory struct {
	Users        map[int64]*model.User
	Groups       map[int64]*model.Group
	Members      map[int64]map[int64]bool // group id -> user ids
	Servers      map[int64]*model.Server
	AdminUsers   map[int64][]int64 // server id -> user ids
	AdminGroups  map[int64][]int64 // server id -> group ids
	Accounts     map[int64]*model.Account
	Keys         map[int64]*model.PublicKey
	DeletedKeys  []int64
	UpdatedUsers []string

	FailUpdateUser bool
	FailDeleteKey  bool

	nextID int64
}

// NewMemDirectory returns an empty directory.
func NewMemDirectory() *MemDirectory {
	return &MemDirectory{
		Users:       map[int64]*model.User{},
		Groups:      map[int64]*model.Group{},
		Members:     map[int64]map[int64]bool{},
		Servers:     map[int64]*model.Server{},
		AdminUsers:  map[int64][]int64{},
		AdminGroups: map[int64][]int64{},
		Accounts:    map[int64]*model.Account{},
		Keys:        map[int64]*model.PublicKey{},
	}
}

func (d *MemDirectory) id() int64 {
	d.nextID++
	return d.nextID
}

// PutUser stores a copy of u and returns its id.
func (d *MemDirectory) PutUser(u model.User) int64 {
	u.ID = d.id()
	d.Users[u.ID] = &u
	return u.ID
}

// PutGroup creates a group and adds the given users to it.
func (d *MemDirectory) PutGroup(name string, userIDs ...int64) int64 {
	g := &model.Group{ID: d.id(), Name: name}
	d.Groups[g.ID] = g
	d.Members[g.ID] = map[int64]bool{}
	for _, uid := range userIDs {
		d.Members[g.ID][uid] = true
	}
	return g.ID
}

// PutServer creates a server administered by the given users.
func (d *MemDirectory) PutServer(hostname string, adminUserIDs ...int64) int64 {
	s := &model.Server{ID: d.id(), Hostname: hostname}
	d.Servers[s.ID] = s
	d.AdminUsers[s.ID] = append(d.AdminUsers[s.ID], adminUserIDs...)
	return s.ID
}

// PutAccount creates an account on serverID.
func (d *MemDirectory) PutAccount(serverID int64, name string) int64 {
	a := &model.Account{ID: d.id(), ServerID: serverID, Name: name, Hostname: d.Servers[serverID].Hostname}
	d.Accounts[a.ID] = a
	return a.ID
}

// PutKey stores a copy of k and returns its id.
func (d *MemDirectory) PutKey(k model.PublicKey) int64 {
	k.ID = d.id()
	d.Keys[k.ID] = &k
	return k.ID
}

// User returns the stored user with uid, or nil.
func (d *MemDirectory) User(uid string) *model.User {
	for _, u := range d.Users {
		if u.UID == uid {
			return u
		}
	}
	return nil
}

// GroupID returns the id of the named group, or 0.
func (d *MemDirectory) GroupID(name string) int64 {
	for _, g := range d.Groups {
		if g.Name == name {
			return g.ID
		}
	}
	return 0
}

// InGroup reports whether uid is a member of the named group.
func (d *MemDirectory) InGroup(name, uid string) bool {
	g, u := d.GroupID(name), d.User(uid)
	if g == 0 || u == nil {
		return false
	}
	return d.Members[g][u.ID]
}

func (d *MemDirectory) ListUsers(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(d.Users))
	for _, u := range d.Users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (d *MemDirectory) FindUser(ctx context.Context, uid string) (*model.User, bool, error) {
	if u := d.User(uid); u != nil {
		c := *u
		return &c, true, nil
	}
	return nil, false, nil
}

func (d *MemDirectory) AddUser(ctx context.Context, u *model.User) error {
	if d.User(u.UID) != nil {
		return fmt.Errorf("user %s exists", u.UID)
	}
	u.ID = d.PutUser(*u)
	return nil
}

func (d *MemDirectory) UpdateUser(ctx context.Context, u *model.User) error {
	if d.FailUpdateUser {
		return ErrInjected
	}
	if _, ok := d.Users[u.ID]; !ok {
		return fmt.Errorf("user %d not found", u.ID)
	}
	c := *u
	c.GroupClaims = nil
	d.Users[u.ID] = &c
	d.UpdatedUsers = append(d.UpdatedUsers, u.UID)
	return nil
}

func (d *MemDirectory) FindGroup(ctx context.Context, name string) (*model.Group, bool, error) {
	if id := d.GroupID(name); id != 0 {
		c := *d.Groups[id]
		return &c, true, nil
	}
	return nil, false, nil
}

func (d *MemDirectory) AddGroup(ctx context.Context, g *model.Group) error {
	if d.GroupID(g.Name) != 0 {
		return fmt.Errorf("group %s exists", g.Name)
	}
	g.ID = d.id()
	c := *g
	d.Groups[g.ID] = &c
	d.Members[g.ID] = map[int64]bool{}
	return nil
}

func (d *MemDirectory) GroupMemberships(ctx context.Context, userID int64) ([]model.Group, error) {
	var out []model.Group
	for gid, members := range d.Members {
		if members[userID] {
			out = append(out, *d.Groups[gid])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *MemDirectory) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return d.Members[groupID][userID], nil
}

func (d *MemDirectory) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	if _, ok := d.Groups[groupID]; !ok {
		return fmt.Errorf("group %d not found", groupID)
	}
	d.Members[groupID][userID] = true
	return nil
}

func (d *MemDirectory) DeleteGroupMember(ctx context.Context, groupID, userID int64) error {
	delete(d.Members[groupID], userID)
	return nil
}

func (d *MemDirectory) ListServers(ctx context.Context) ([]model.Server, error) {
	out := make([]model.Server, 0, len(d.Servers))
	for _, s := range d.Servers {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hostname < out[j].Hostname })
	return out, nil
}

func (d *MemDirectory) ListAccounts(ctx context.Context, serverID int64) ([]model.Account, error) {
	var out []model.Account
	for _, a := range d.Accounts {
		if a.ServerID == serverID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *MemDirectory) adminIDs(serverID int64) map[int64]bool {
	ids := map[int64]bool{}
	for _, uid := range d.AdminUsers[serverID] {
		ids[uid] = true
	}
	for _, gid := range d.AdminGroups[serverID] {
		for uid := range d.Members[gid] {
			ids[uid] = true
		}
	}
	return ids
}

func (d *MemDirectory) AdministeredServers(ctx context.Context, userID int64) ([]model.Server, error) {
	var out []model.Server
	for sid, s := range d.Servers {
		if d.adminIDs(sid)[userID] {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hostname < out[j].Hostname })
	return out, nil
}

func (d *MemDirectory) EffectiveAdmins(ctx context.Context, serverID int64) ([]model.User, error) {
	var out []model.User
	for uid := range d.adminIDs(serverID) {
		if u, ok := d.Users[uid]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (d *MemDirectory) keys(match func(*model.PublicKey) bool) []model.PublicKey {
	var out []model.PublicKey
	for _, k := range d.Keys {
		if match(k) {
			out = append(out, *k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *MemDirectory) UserPublicKeys(ctx context.Context, userID int64) ([]model.PublicKey, error) {
	return d.keys(func(k *model.PublicKey) bool { return k.OwnerUserID == userID }), nil
}

func (d *MemDirectory) AccountPublicKeys(ctx context.Context, accountID int64) ([]model.PublicKey, error) {
	return d.keys(func(k *model.PublicKey) bool { return k.OwnerAccountID == accountID }), nil
}

func (d *MemDirectory) DeletePublicKey(ctx context.Context, keyID int64) error {
	if d.FailDeleteKey {
		return ErrInjected
	}
	if _, ok := d.Keys[keyID]; !ok {
		return fmt.Errorf("key %d not found", keyID)
	}
	delete(d.Keys, keyID)
	d.DeletedKeys = append(d.DeletedKeys, keyID)
	return nil
}
