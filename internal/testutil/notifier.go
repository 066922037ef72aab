// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

package testutil

import (
	"context"

	"github.com/toeirei/keysync/internal/model"
)

// RecordingNotifier keeps every message it is asked to send. Err, when set,
// is returned instead.
type RecordingNotifier struct {
	Sent []model.Message
	Err  error
}

func (n *RecordingNotifier) Send(ctx context.Context, msg model.Message) error {
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, msg)
	return nil
}

// Subjects returns the subjects of all sent messages in order.
func (n *RecordingNotifier) Subjects() []string {
	out := make([]string, 0, len(n.Sent))
	for _, m := range n.Sent {
		out = append(out, m.Subject)
	}
	return out
}
