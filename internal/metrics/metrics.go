// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package metrics counts what a reconciliation run did and writes the result
// as a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Run holds the Prometheus metrics of a single keysync run. A nil *Run is
// valid and records nothing.
type Run struct {
	registry *prometheus.Registry

	UsersProcessed   prometheus.Counter
	UsersDeactivated prometheus.Counter
	SourceErrors     prometheus.Counter
	KeysWarned       prometheus.Counter
	KeysRemoved      prometheus.Counter
	Escalations      *prometheus.CounterVec
	GroupChanges     *prometheus.CounterVec
	GroupsCreated    prometheus.Counter
	RunDuration      prometheus.Gauge
	RunSuccess       prometheus.Gauge
	LastSuccess      prometheus.Gauge
}

// NewRun creates and registers all run metrics on a private registry.
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		UsersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keysync_users_processed_total",
			Help: "Number of users visited by the run",
		}),
		UsersDeactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keysync_users_deactivated_total",
			Help: "Number of users that went from active to inactive",
		}),
		SourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keysync_source_errors_total",
			Help: "Number of identity source lookups that failed",
		}),
		KeysWarned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keysync_keys_warned_total",
			Help: "Number of expiry warnings sent",
		}),
		KeysRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keysync_keys_removed_total",
			Help: "Number of expired public keys deleted",
		}),
		Escalations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keysync_orphan_escalations_total",
				Help: "Number of orphaned server notices by recipient kind",
			},
			[]string{"recipient"},
		),
		GroupChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keysync_group_changes_total",
				Help: "Number of group membership changes by operation",
			},
			[]string{"op"},
		),
		GroupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keysync_groups_created_total",
			Help: "Number of groups created on demand",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keysync_run_duration_seconds",
			Help: "Wall time of the run in seconds",
		}),
		RunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keysync_run_success",
			Help: "1 if the run completed without error, 0 otherwise",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keysync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}

	r.registry.MustRegister(
		r.UsersProcessed,
		r.UsersDeactivated,
		r.SourceErrors,
		r.KeysWarned,
		r.KeysRemoved,
		r.Escalations,
		r.GroupChanges,
		r.GroupsCreated,
		r.RunDuration,
		r.RunSuccess,
		r.LastSuccess,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Run) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Run) UserProcessed() {
	if r != nil {
		r.UsersProcessed.Inc()
	}
}

func (r *Run) UserDeactivated() {
	if r != nil {
		r.UsersDeactivated.Inc()
	}
}

func (r *Run) SourceError() {
	if r != nil {
		r.SourceErrors.Inc()
	}
}

func (r *Run) KeyWarned() {
	if r != nil {
		r.KeysWarned.Inc()
	}
}

func (r *Run) KeyRemoved() {
	if r != nil {
		r.KeysRemoved.Inc()
	}
}

// Escalated records an orphan notice; toSuperior tells whether a superior
// was found or the report address was used.
func (r *Run) Escalated(toSuperior bool) {
	if r == nil {
		return
	}
	if toSuperior {
		r.Escalations.WithLabelValues("superior").Inc()
	} else {
		r.Escalations.WithLabelValues("report").Inc()
	}
}

// GroupChanged records a membership change, op is "add" or "remove".
func (r *Run) GroupChanged(op string) {
	if r != nil {
		r.GroupChanges.WithLabelValues(op).Inc()
	}
}

func (r *Run) GroupCreated() {
	if r != nil {
		r.GroupsCreated.Inc()
	}
}

// Finish records the outcome of the run.
func (r *Run) Finish(d time.Duration, err error, now time.Time) {
	if r == nil {
		return
	}
	r.RunDuration.Set(d.Seconds())
	if err != nil {
		r.RunSuccess.Set(0)
		return
	}
	r.RunSuccess.Set(1)
	r.LastSuccess.Set(float64(now.Unix()))
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is written atomically.
func (r *Run) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// Summary is a plain snapshot of the headline counters of a run.
type Summary struct {
	UsersProcessed   int
	UsersDeactivated int
	KeysWarned       int
	KeysRemoved      int
}

// Summary reads the current counter values.
func (r *Run) Summary() Summary {
	if r == nil {
		return Summary{}
	}
	return Summary{
		UsersProcessed:   counterValue(r.UsersProcessed),
		UsersDeactivated: counterValue(r.UsersDeactivated),
		KeysWarned:       counterValue(r.KeysWarned),
		KeysRemoved:      counterValue(r.KeysRemoved),
	}
}

func counterValue(c prometheus.Counter) int {
	var m dto.Metric
	if err := c.Write(&m); err != nil || m.Counter == nil {
		return 0
	}
	return int(m.Counter.GetValue())
}
