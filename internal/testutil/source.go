// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package testutil

import (
	"context"

	"github.com/toeirei/keysync/internal/model"
)

// FakeIdentitySource serves identities from maps. Uids listed in Errors fail
// every lookup with the mapped error.
type FakeIdentitySource struct {
	Identities map[string]model.Identity
	Superiors  map[string]string
	Groups     map[string][]string
	Errors     map[string]error

	Calls int
}

// NewFakeIdentitySource returns an empty source.
func NewFakeIdentitySource() *FakeIdentitySource {
	return &FakeIdentitySource{
		Identities: map[string]model.Identity{},
		Superiors:  map[string]string{},
		Groups:     map[string][]string{},
		Errors:     map[string]error{},
	}
}

func (s *FakeIdentitySource) FetchAttributes(ctx context.Context, uid string) (*model.Identity, bool, error) {
	s.Calls++
	if err := s.Errors[uid]; err != nil {
		return nil, false, err
	}
	id, ok := s.Identities[uid]
	if !ok {
		return nil, false, nil
	}
	return &id, true, nil
}

func (s *FakeIdentitySource) FetchSuperior(ctx context.Context, uid string) (string, bool, error) {
	if err := s.Errors[uid]; err != nil {
		return "", false, err
	}
	sup, ok := s.Superiors[uid]
	return sup, ok, nil
}

func (s *FakeIdentitySource) FetchGroupClaims(ctx context.Context, uid string) ([]string, error) {
	if err := s.Errors[uid]; err != nil {
		return nil, err
	}
	return s.Groups[uid], nil
}
