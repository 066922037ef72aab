// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for keysync using Cobra.
// It loads configuration, wires the store, identity source and notifier and
// hands control to the reconciliation engine in internal/core.
package cli
