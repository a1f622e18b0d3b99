package model

import (
	"time"

	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

// Session is one analysis-to-execution run over a snapshot of marked
// messages (or the latest document in document-only mode).
type Session struct {
	ID       types.SessionID     `json:"id" firestore:"id"`
	Scope    types.ScopeID       `json:"scope" firestore:"scope"`
	TenantID types.TenantID      `json:"tenant_id" firestore:"tenant_id"`
	Mode     types.SessionMode   `json:"mode" firestore:"mode"`
	Status   types.SessionStatus `json:"status" firestore:"status"`

	// MarkIDs is the snapshot of marks consumed at open. Fixed thereafter.
	MarkIDs []types.MarkID `json:"mark_ids" firestore:"mark_ids"`

	Summary        string `json:"summary,omitempty" firestore:"summary"`
	Error          string `json:"error,omitempty" firestore:"error"`
	TotalProposals int    `json:"total_proposals" firestore:"total_proposals"`

	CreatedAt   time.Time  `json:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" firestore:"completed_at"`
}

// NewSession builds a session in the collecting state.
func NewSession(scope types.ScopeID, tenantID types.TenantID, mode types.SessionMode) *Session {
	return &Session{
		ID:       types.NewSessionID(),
		Scope:    scope,
		TenantID: tenantID,
		Mode:     mode,
		Status:   types.SessionStatusCollecting,
	}
}
