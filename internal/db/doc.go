// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains the directory store used by keysync.
//
// The store keeps users, groups, servers, server accounts and public keys in
// a SQL database through Bun. SQLite, PostgreSQL and MySQL are supported;
// each dialect has its own embedded migrations under migrations/<type>.
//
// Lookups that may legitimately miss (FindUser, FindGroup) report absence
// through a boolean instead of an error so callers can branch on presence.
// Every other failure is returned wrapped and is treated as fatal by the
// reconciliation run.
//
// Testing notes
//   - Use NewStoreFromDSN("sqlite", "file:<name>?mode=memory&cache=shared")
//     for tests that need real DB semantics and migrations.
//   - MySQL DSNs need parseTime=true so upload dates scan into time.Time.
package db
