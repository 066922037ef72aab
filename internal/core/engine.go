// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/toeirei/keysync/internal/clock"
	"github.com/toeirei/keysync/internal/logging"
	"github.com/toeirei/keysync/internal/metrics"
	"github.com/toeirei/keysync/internal/model"
)

// SyncUserUID is the uid of the local system user keysync acts as.
const SyncUserUID = "keys-sync"

// Engine runs the reconciliation. It is not safe for concurrent use.
type Engine struct {
	dir      Directory
	source   IdentitySource
	notifier Notifier
	policy   Policy
	clock    Clock
	metrics  *metrics.Run
	log      *log.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithMetrics records the run into m.
func WithMetrics(m *metrics.Run) Option { return func(e *Engine) { e.metrics = m } }

// WithLogger replaces the package logger.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.log = l } }

// NewEngine wires an Engine. source may be nil when policy.SourceEnabled is
// false.
func NewEngine(dir Directory, source IdentitySource, notifier Notifier, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		dir:      dir,
		source:   source,
		notifier: notifier,
		policy:   policy,
		clock:    clock.System(),
		log:      logging.L,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// send delivers msg with the admin address as reply-to.
func (e *Engine) send(ctx context.Context, msg model.Message) error {
	msg.ReplyTo = e.policy.Admin()
	if err := e.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %q: %w", msg.Subject, err)
	}
	e.log.Debug("notification sent", "subject", msg.Subject, "to", len(msg.Recipients), "cc", len(msg.CC))
	return nil
}

// resolveGroup looks name up and creates it as a system group when absent.
func (e *Engine) resolveGroup(ctx context.Context, name string) (*model.Group, error) {
	g, found, err := e.dir.FindGroup(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find group %q: %w", name, err)
	}
	if found {
		return g, nil
	}
	g = &model.Group{Name: name, System: true}
	if err := e.dir.AddGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("create group %q: %w", name, err)
	}
	e.metrics.GroupCreated()
	e.log.Info("created group", "group", name)
	return g, nil
}
