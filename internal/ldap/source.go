// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ldap reads user identities, superiors and group memberships from an
// LDAP directory.
package ldap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"slices"

	goldap "github.com/go-ldap/ldap/v3"
	"github.com/toeirei/keysync/internal/logging"
	"github.com/toeirei/keysync/internal/model"
)

// ErrUnavailable wraps connection and search failures.
var ErrUnavailable = errors.New("ldap unavailable")

// Config maps directory attributes onto keysync users.
type Config struct {
	URL          string
	StartTLS     bool
	BindDN       string
	BindPassword string

	UserDN  string
	GroupDN string

	UserID         string
	UserName       string
	UserEmail      string
	UserActive     string   // empty: every entry found is active
	UserActiveTrue []string // values of UserActive meaning active
	UserSuperior   string   // empty: superiors are not tracked

	GroupMember      string // member attribute on group entries
	GroupMemberValue string // "dn" or "uid": what GroupMember holds
	AdminGroupCN     string
	DeveloperGroupCN string
}

// Searcher is the part of *ldap.Conn the source needs.
type Searcher interface {
	Search(req *goldap.SearchRequest) (*goldap.SearchResult, error)
}

// Source is an identity source backed by LDAP. It is not safe for
// concurrent use.
type Source struct {
	cfg   Config
	conn  Searcher
	close func()
}

// Dial connects and binds to cfg.URL.
func Dial(cfg Config) (*Source, error) {
	conn, err := goldap.DialURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, cfg.URL, err)
	}
	if cfg.StartTLS {
		u, _ := url.Parse(cfg.URL)
		if err := conn.StartTLS(&tls.Config{ServerName: u.Hostname()}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: starttls: %v", ErrUnavailable, err)
		}
	}
	if cfg.BindDN != "" {
		if err := conn.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: bind as %s: %v", ErrUnavailable, cfg.BindDN, err)
		}
	}
	logging.Debugf("ldap: connected to %s", cfg.URL)
	s := New(cfg, conn)
	s.close = func() { conn.Close() }
	return s, nil
}

// New returns a Source searching through conn.
func New(cfg Config, conn Searcher) *Source {
	return &Source{cfg: cfg, conn: conn}
}

// TracksSuperior reports whether a superior attribute is configured.
func (s *Source) TracksSuperior() bool { return s.cfg.UserSuperior != "" }

// Close releases the connection opened by Dial.
func (s *Source) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

func (s *Source) search(base string, scope int, filter string, attrs []string) ([]*goldap.Entry, error) {
	req := goldap.NewSearchRequest(base, scope, goldap.NeverDerefAliases, 0, 0, false, filter, attrs, nil)
	res, err := s.conn.Search(req)
	if err != nil {
		if goldap.IsErrorWithCode(err, goldap.LDAPResultNoSuchObject) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: search %s %s: %v", ErrUnavailable, base, filter, err)
	}
	return res.Entries, nil
}

// findUser returns the single user entry for uid, or nil.
func (s *Source) findUser(uid string) (*goldap.Entry, error) {
	attrs := []string{s.cfg.UserID, s.cfg.UserName, s.cfg.UserEmail}
	if s.cfg.UserActive != "" {
		attrs = append(attrs, s.cfg.UserActive)
	}
	if s.cfg.UserSuperior != "" {
		attrs = append(attrs, s.cfg.UserSuperior)
	}
	filter := fmt.Sprintf("(%s=%s)", s.cfg.UserID, goldap.EscapeFilter(uid))
	entries, err := s.search(s.cfg.UserDN, goldap.ScopeWholeSubtree, filter, attrs)
	if err != nil {
		return nil, err
	}
	switch len(entries) {
	case 0:
		return nil, nil
	case 1:
		return entries[0], nil
	default:
		return nil, fmt.Errorf("ldap: %d entries match %s", len(entries), filter)
	}
}

// groupsOf returns the cn of every group entry listing the user as member.
func (s *Source) groupsOf(entry *goldap.Entry, uid string) ([]string, error) {
	value := entry.DN
	if s.cfg.GroupMemberValue == "uid" {
		value = uid
	}
	filter := fmt.Sprintf("(%s=%s)", s.cfg.GroupMember, goldap.EscapeFilter(value))
	entries, err := s.search(s.cfg.GroupDN, goldap.ScopeWholeSubtree, filter, []string{"cn"})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if cn := e.GetAttributeValue("cn"); cn != "" {
			out = append(out, cn)
		}
	}
	return out, nil
}

// FetchAttributes looks uid up and derives the admin and developer flags from
// group membership.
func (s *Source) FetchAttributes(ctx context.Context, uid string) (*model.Identity, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	entry, err := s.findUser(uid)
	if err != nil || entry == nil {
		return nil, false, err
	}
	groups, err := s.groupsOf(entry, uid)
	if err != nil {
		return nil, false, err
	}

	id := &model.Identity{
		UID:    uid,
		Name:   entry.GetAttributeValue(s.cfg.UserName),
		Email:  entry.GetAttributeValue(s.cfg.UserEmail),
		Active: true,
	}
	if s.cfg.UserActive != "" {
		id.Active = false
		for _, v := range entry.GetAttributeValues(s.cfg.UserActive) {
			if slices.Contains(s.cfg.UserActiveTrue, v) {
				id.Active = true
				break
			}
		}
	}
	id.Admin = s.cfg.AdminGroupCN != "" && slices.Contains(groups, s.cfg.AdminGroupCN)
	id.Developer = s.cfg.DeveloperGroupCN != "" && slices.Contains(groups, s.cfg.DeveloperGroupCN)
	return id, true, nil
}

// FetchGroupClaims returns the cn of every group uid is a member of.
func (s *Source) FetchGroupClaims(ctx context.Context, uid string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, err := s.findUser(uid)
	if err != nil || entry == nil {
		return nil, err
	}
	return s.groupsOf(entry, uid)
}

// FetchSuperior returns the uid of uid's superior. The superior attribute may
// hold either a DN or a plain uid.
func (s *Source) FetchSuperior(ctx context.Context, uid string) (string, bool, error) {
	if s.cfg.UserSuperior == "" {
		return "", false, nil
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	entry, err := s.findUser(uid)
	if err != nil || entry == nil {
		return "", false, err
	}
	ref := entry.GetAttributeValue(s.cfg.UserSuperior)
	if ref == "" {
		return "", false, nil
	}
	if _, err := goldap.ParseDN(ref); err != nil {
		return ref, true, nil
	}

	entries, err := s.search(ref, goldap.ScopeBaseObject, "(objectClass=*)", []string{s.cfg.UserID})
	if err != nil {
		return "", false, err
	}
	if len(entries) == 0 {
		return "", false, nil
	}
	sup := entries[0].GetAttributeValue(s.cfg.UserID)
	return sup, sup != "", nil
}
