// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package config

// Config is the on-disk configuration of keysync.
type Config struct {
	Database Database `mapstructure:"database" yaml:"database"`
	Language string   `mapstructure:"language" yaml:"language"`
	LDAP     LDAP     `mapstructure:"ldap" yaml:"ldap"`
	General  General  `mapstructure:"general" yaml:"general"`
	Email    Email    `mapstructure:"email" yaml:"email"`
	Metrics  Metrics  `mapstructure:"metrics" yaml:"metrics"`
}

// Database selects the directory store backend.
type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// LDAP configures the external identity source and how its attributes map
// onto directory users.
type LDAP struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	URL          string `mapstructure:"url" yaml:"url"`
	StartTLS     bool   `mapstructure:"start_tls" yaml:"start_tls"`
	BindDN       string `mapstructure:"bind_dn" yaml:"bind_dn"`
	BindPassword string `mapstructure:"bind_password" yaml:"bind_password"`

	DNUser  string `mapstructure:"dn_user" yaml:"dn_user"`
	DNGroup string `mapstructure:"dn_group" yaml:"dn_group"`

	UserID    string `mapstructure:"user_id" yaml:"user_id"`
	UserName  string `mapstructure:"user_name" yaml:"user_name"`
	UserEmail string `mapstructure:"user_email" yaml:"user_email"`
	// UserActive names an attribute whose value decides whether the user is
	// active. Empty means every user found in the directory is active.
	UserActive     string   `mapstructure:"user_active" yaml:"user_active"`
	UserActiveTrue []string `mapstructure:"user_active_true" yaml:"user_active_true"`
	// UserSuperior names the manager attribute. Empty disables superior tracking.
	UserSuperior string `mapstructure:"user_superior" yaml:"user_superior"`

	GroupMember      string `mapstructure:"group_member" yaml:"group_member"`
	GroupMemberValue string `mapstructure:"group_member_value" yaml:"group_member_value"`
	AdminGroupCN     string `mapstructure:"admin_group_cn" yaml:"admin_group_cn"`
	DeveloperGroupCN string `mapstructure:"developer_group_cn" yaml:"developer_group_cn"`

	FullGroupSync     bool `mapstructure:"full_group_sync" yaml:"full_group_sync"`
	DeactivateOnError bool `mapstructure:"deactivate_on_error" yaml:"deactivate_on_error"`
}

// General holds the key lifecycle policy.
type General struct {
	KeyExpirationEnabled bool `mapstructure:"key_expiration_enabled" yaml:"key_expiration_enabled"`
	KeyExpirationDays    int  `mapstructure:"key_expiration_days" yaml:"key_expiration_days"`
}

// Email configures notification addressing and delivery.
type Email struct {
	// Transport is "smtp" or "log".
	Transport     string `mapstructure:"transport" yaml:"transport"`
	FromAddress   string `mapstructure:"from_address" yaml:"from_address"`
	FromName      string `mapstructure:"from_name" yaml:"from_name"`
	AdminAddress  string `mapstructure:"admin_address" yaml:"admin_address"`
	AdminName     string `mapstructure:"admin_name" yaml:"admin_name"`
	ReportAddress string `mapstructure:"report_address" yaml:"report_address"`
	ReportName    string `mapstructure:"report_name" yaml:"report_name"`
	SMTPHost      string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort      int    `mapstructure:"smtp_port" yaml:"smtp_port"`
	SMTPUsername  string `mapstructure:"smtp_username" yaml:"smtp_username"`
	SMTPPassword  string `mapstructure:"smtp_password" yaml:"smtp_password"`
}

// Metrics configures the optional run metrics output.
type Metrics struct {
	// Textfile is a path for the node-exporter textfile collector. Empty disables it.
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Defaults returns the default values for every configuration key.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":                  "sqlite",
		"database.dsn":                   "./keysync.db",
		"language":                       "en",
		"ldap.enabled":                   false,
		"ldap.url":                       "ldap://localhost:389",
		"ldap.user_id":                   "uid",
		"ldap.user_name":                 "cn",
		"ldap.user_email":                "mail",
		"ldap.group_member":              "member",
		"ldap.group_member_value":        "dn",
		"ldap.admin_group_cn":            "keys-admins",
		"ldap.full_group_sync":           false,
		"ldap.deactivate_on_error":       true,
		"general.key_expiration_enabled": false,
		"general.key_expiration_days":    365,
		"email.transport":                "log",
		"email.smtp_port":                25,
	}
}
