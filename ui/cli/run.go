// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/toeirei/keysync/internal/core"
	"github.com/toeirei/keysync/internal/db"
	"github.com/toeirei/keysync/internal/i18n"
	"github.com/toeirei/keysync/internal/ldap"
	"github.com/toeirei/keysync/internal/logging"
	"github.com/toeirei/keysync/internal/metrics"
)

// dialLDAP allows tests to replace the directory connection.
var dialLDAP = func(cfg ldap.Config) (*ldap.Source, error) { return ldap.Dial(cfg) }

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Perform one reconciliation run",
		Long: `Runs the reconciliation once: LDAP users are refreshed, group memberships
mirrored, orphaned servers reported, the admin group re-derived and expiring
public keys warned about or removed.

The process exits non-zero when a database write or a notification fails.`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := appConfig

	store, err := db.NewStoreFromDSN(cfg.Database.Type, cfg.Database.Dsn)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	notifier, err := notifierFromConfig(cfg)
	if err != nil {
		return err
	}

	var source core.IdentitySource
	// An unreachable source aborts before the engine runs so an outage
	// cannot deactivate every LDAP user.
	if cfg.LDAP.Enabled {
		src, err := dialLDAP(ldapConfigFromConfig(cfg))
		if err != nil {
			return err
		}
		defer src.Close()
		source = src
	}

	m := metrics.NewRun()
	engine := core.NewEngine(store, source, notifier, policyFromConfig(cfg), core.WithMetrics(m))
	runErr := engine.Run(cmd.Context())
	if runErr == nil {
		s := m.Summary()
		logging.Infof(i18n.T("run.summary"), s.UsersProcessed, s.UsersDeactivated, s.KeysWarned, s.KeysRemoved)
	}

	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logging.Warnf("could not write metrics textfile %s: %v", cfg.Metrics.Textfile, err)
	}
	return runErr
}
