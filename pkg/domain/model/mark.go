package model

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

// Mark is a source message flagged for the next analysis batch. Once a
// session claims it (SessionID set) the record is append-only: removing
// the flag afterwards is a no-op.
type Mark struct {
	ID        types.MarkID    `json:"id" firestore:"id"`
	Scope     types.ScopeID   `json:"scope" firestore:"scope"`
	MessageTS string          `json:"message_ts" firestore:"message_ts"`
	ThreadTS  string          `json:"thread_ts,omitempty" firestore:"thread_ts"`
	Text      string          `json:"text" firestore:"text"`
	MarkedBy  string          `json:"marked_by" firestore:"marked_by"`
	MarkedAt  time.Time       `json:"marked_at" firestore:"marked_at"`
	SessionID types.SessionID `json:"session_id,omitempty" firestore:"session_id"`
}

// Key returns the unique (scope, message) identity of the mark.
func (m *Mark) Key() string {
	return fmt.Sprintf("%s:%s", m.Scope, m.MessageTS)
}

// Processed reports whether a session has consumed this mark.
func (m *Mark) Processed() bool {
	return m.SessionID != ""
}

// Validate checks required mark fields.
func (m *Mark) Validate() error {
	if err := m.Scope.Validate(); err != nil {
		return goerr.Wrap(err, "invalid mark")
	}
	if m.MessageTS == "" {
		return goerr.New("mark message_ts is required", goerr.V("scope", m.Scope))
	}
	if m.MarkedBy == "" {
		return goerr.New("mark marked_by is required", goerr.V("scope", m.Scope))
	}
	return nil
}
