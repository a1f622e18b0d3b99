package interfaces

import (
	"context"
	"time"

	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

// Repository defines the interface for data persistence. All records must
// survive process restart when backed by Firestore; the memory backend is
// for development and tests.
type Repository interface {
	Tenant() TenantRepository
	Mark() MarkRepository
	Session() SessionRepository
	Proposal() ProposalRepository

	Close() error
}

// TenantRepository persists tenant configuration records.
type TenantRepository interface {
	// Put writes the whole tenant record. Create and update both go
	// through Put; merge logic lives in the use case layer.
	Put(ctx context.Context, tenant *model.Tenant) error
	Get(ctx context.Context, id types.TenantID) (*model.Tenant, error)
	// ListEnabled returns all enabled tenants. Re-read every scheduler
	// pass; never cached across passes.
	ListEnabled(ctx context.Context) ([]*model.Tenant, error)
	SetEnabled(ctx context.Context, id types.TenantID, enabled bool) error
	// SetWatermark replaces the watermark whole (last-write-wins).
	SetWatermark(ctx context.Context, id types.TenantID, w model.Watermark) error
}

// MarkRepository persists marked messages.
type MarkRepository interface {
	// Put stores a mark. Re-marking an existing (scope, message) pair is
	// a no-op and returns false.
	Put(ctx context.Context, mark *model.Mark) (bool, error)
	// Delete removes an unprocessed mark. Returns false when the mark is
	// absent or already consumed by a session.
	Delete(ctx context.Context, scope types.ScopeID, messageTS string) (bool, error)
	ListUnprocessed(ctx context.Context, scope types.ScopeID) ([]*model.Mark, error)
	// Claim atomically assigns every unprocessed mark in scope to the
	// session. Concurrent claims on the same scope partition the mark set
	// disjointly.
	Claim(ctx context.Context, scope types.ScopeID, sessionID types.SessionID) ([]*model.Mark, error)
}

// SessionRepository persists sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id types.SessionID) (*model.Session, error)
	// Transition performs a conditional status update: it succeeds only
	// when the stored status equals from and from -> to is in the
	// transition table. A stale from yields ErrStaleStatus, making the
	// first caller the single winner under races.
	Transition(ctx context.Context, id types.SessionID, from, to types.SessionStatus) error
	// SetOutcome records the summary/error and proposal count.
	SetOutcome(ctx context.Context, id types.SessionID, summary, errMsg string, totalProposals int) error
}

// ProposalRepository persists proposals and their decision state.
type ProposalRepository interface {
	// BulkCreate assigns within-session sequential identifiers and stores
	// the batch. A second call for the same session fails with
	// ErrAlreadyExists.
	BulkCreate(ctx context.Context, sessionID types.SessionID, proposals []*model.Proposal) ([]*model.Proposal, error)
	ListBySession(ctx context.Context, sessionID types.SessionID) ([]*model.Proposal, error)
	Get(ctx context.Context, sessionID types.SessionID, id types.ProposalID) (*model.Proposal, error)
	// RecordDecision sets the decision write-once and returns the number
	// of proposals still pending in the session after the write. A
	// non-pending proposal yields ErrAlreadyDecided.
	RecordDecision(ctx context.Context, sessionID types.SessionID, id types.ProposalID, decision types.Decision, decidedBy string, decidedAt time.Time) (int, error)
	// SetResult records the execution outcome exactly once.
	SetResult(ctx context.Context, sessionID types.SessionID, id types.ProposalID, result model.ExecutionResult) error
}
