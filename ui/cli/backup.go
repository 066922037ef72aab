// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/keysync/internal/backup"
	"github.com/toeirei/keysync/internal/db"
	"github.com/toeirei/keysync/internal/i18n"
)

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Create a compressed (zstd) JSON backup of the directory",
		Long: `Dumps users, groups, memberships, servers, administrators, accounts and
public keys into a single Zstandard-compressed JSON file.

If an output file is specified, '.zst' will be appended to the name if it's not already present.
If no output file is specified, 'keysync-backup-YYYY-MM-DD.json.zst' is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFile := fmt.Sprintf("keysync-backup-%s.json.zst", time.Now().Format("2006-01-02"))
			if len(args) == 1 {
				outputFile = args[0]
				if !strings.HasSuffix(outputFile, ".zst") {
					outputFile += ".zst"
				}
			}

			store, err := db.NewStoreFromDSN(appConfig.Database.Type, appConfig.Database.Dsn)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := store.ExportSnapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("export directory: %w", err)
			}
			if err := backup.WriteFile(outputFile, snap); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), fmt.Sprintf(i18n.T("cli.backup_written"), outputFile))
			return nil
		},
	}
}
