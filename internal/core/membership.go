// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import "sort"

// Diff compares the current group names of a user with the authoritative
// ones. Both results are duplicate-free and sorted.
func Diff(current, authoritative []string) (toAdd, toRemove []string) {
	have := make(map[string]struct{}, len(current))
	for _, g := range current {
		have[g] = struct{}{}
	}
	want := make(map[string]struct{}, len(authoritative))
	for _, g := range authoritative {
		want[g] = struct{}{}
	}
	for g := range want {
		if _, ok := have[g]; !ok {
			toAdd = append(toAdd, g)
		}
	}
	for g := range have {
		if _, ok := want[g]; !ok {
			toRemove = append(toRemove, g)
		}
	}
	sort.Strings(toAdd)
	sort.Strings(toRemove)
	return toAdd, toRemove
}
