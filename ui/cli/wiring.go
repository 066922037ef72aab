// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/toeirei/keysync/internal/config"
	"github.com/toeirei/keysync/internal/core"
	"github.com/toeirei/keysync/internal/i18n"
	"github.com/toeirei/keysync/internal/ldap"
	"github.com/toeirei/keysync/internal/mail"
	"github.com/toeirei/keysync/internal/model"
)

// policyFromConfig maps the configuration onto the engine policy.
func policyFromConfig(cfg config.Config) core.Policy {
	p := core.Policy{
		SourceEnabled:           cfg.LDAP.Enabled,
		FullGroupSync:           cfg.LDAP.FullGroupSync,
		AdminGroupName:          cfg.LDAP.AdminGroupCN,
		TracksSuperior:          cfg.LDAP.UserSuperior != "",
		DeactivateOnSourceError: cfg.LDAP.DeactivateOnError,
		KeyExpirationEnabled:    cfg.General.KeyExpirationEnabled,
		KeyExpirationDays:       cfg.General.KeyExpirationDays,
		AdminAddress:            cfg.Email.AdminAddress,
		AdminName:               cfg.Email.AdminName,
		ReportAddress:           cfg.Email.ReportAddress,
		ReportName:              cfg.Email.ReportName,
	}
	if p.ReportAddress == "" {
		p.ReportAddress, p.ReportName = p.AdminAddress, p.AdminName
	}
	return p
}

func ldapConfigFromConfig(cfg config.Config) ldap.Config {
	l := cfg.LDAP
	return ldap.Config{
		URL:              l.URL,
		StartTLS:         l.StartTLS,
		BindDN:           l.BindDN,
		BindPassword:     l.BindPassword,
		UserDN:           l.DNUser,
		GroupDN:          l.DNGroup,
		UserID:           l.UserID,
		UserName:         l.UserName,
		UserEmail:        l.UserEmail,
		UserActive:       l.UserActive,
		UserActiveTrue:   l.UserActiveTrue,
		UserSuperior:     l.UserSuperior,
		GroupMember:      l.GroupMember,
		GroupMemberValue: l.GroupMemberValue,
		AdminGroupCN:     l.AdminGroupCN,
		DeveloperGroupCN: l.DeveloperGroupCN,
	}
}

func notifierFromConfig(cfg config.Config) (core.Notifier, error) {
	e := cfg.Email
	switch e.Transport {
	case "", "log":
		return mail.LogNotifier{}, nil
	case "smtp":
		from := model.Address{Email: e.FromAddress, Name: e.FromName}
		if from.Email == "" {
			from = model.Address{Email: e.AdminAddress, Name: e.AdminName}
		}
		return mail.NewSMTP(mail.SMTPConfig{
			Host:     e.SMTPHost,
			Port:     e.SMTPPort,
			Username: e.SMTPUsername,
			Password: e.SMTPPassword,
			From:     from,
		}), nil
	default:
		return nil, fmt.Errorf(i18n.T("cli.unknown_transport"), e.Transport)
	}
}
