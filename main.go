// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for keysync.
//
// Usage:
//
//	go run . [flags]
//	./keysync [flags] [run|backup|version]
//
// Without a subcommand a single reconciliation run is performed, which is
// what a cron job or systemd timer should invoke.
package main

import (
	"os"

	"github.com/toeirei/keysync/internal/logging"
	"github.com/toeirei/keysync/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("keysync: %v", err)
		os.Exit(1)
	}
}
