// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package mail delivers keysync notifications.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	netmail "net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/keysync/internal/logging"
	"github.com/toeirei/keysync/internal/model"
)

// sendMailFunc allows tests to capture outgoing mail.
var sendMailFunc = smtp.SendMail

// SMTPConfig describes the relay and the sender address.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     model.Address
}

// SMTPNotifier sends messages through an SMTP relay.
type SMTPNotifier struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTP returns a notifier for cfg.
func NewSMTP(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Port == 0 {
		cfg.Port = 25
	}
	return &SMTPNotifier{cfg: cfg, now: time.Now}
}

// Send delivers msg to its recipients and CC addresses.
func (n *SMTPNotifier) Send(ctx context.Context, msg model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var rcpt []string
	for _, a := range append(append([]model.Address{}, msg.Recipients...), msg.CC...) {
		if a.Email != "" {
			rcpt = append(rcpt, a.Email)
		}
	}
	if len(rcpt) == 0 {
		return fmt.Errorf("mail %q has no recipients", msg.Subject)
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	if err := sendMailFunc(addr, auth, n.cfg.From.Email, rcpt, Compose(n.cfg.From, msg, n.now())); err != nil {
		return fmt.Errorf("smtp %s: %w", addr, err)
	}
	logging.Debugf("mail: sent %q to %s", msg.Subject, strings.Join(rcpt, ", "))
	return nil
}

// Compose renders msg as an RFC 5322 plain text message.
func Compose(from model.Address, msg model.Message, date time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\r\n", k, v)
		}
	}
	header("From", formatAddress(from))
	header("To", formatAddresses(msg.Recipients))
	header("Cc", formatAddresses(msg.CC))
	if msg.ReplyTo.Email != "" {
		header("Reply-To", formatAddress(msg.ReplyTo))
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=utf-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

func formatAddress(a model.Address) string {
	return (&netmail.Address{Name: a.Name, Address: a.Email}).String()
}

func formatAddresses(as []model.Address) string {
	parts := make([]string, 0, len(as))
	for _, a := range as {
		if a.Email != "" {
			parts = append(parts, formatAddress(a))
		}
	}
	return strings.Join(parts, ", ")
}

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, msg model.Message) error {
	to := make([]string, 0, len(msg.Recipients))
	for _, a := range msg.Recipients {
		to = append(to, a.String())
	}
	cc := make([]string, 0, len(msg.CC))
	for _, a := range msg.CC {
		cc = append(cc, a.String())
	}
	logging.L.Info("mail", "subject", msg.Subject, "to", strings.Join(to, ", "), "cc", strings.Join(cc, ", "))
	logging.L.Debug("mail body", "subject", msg.Subject, "body", msg.Body)
	return nil
}
