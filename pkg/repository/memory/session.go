package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
)

type sessionRepository struct {
	mu       sync.Mutex
	sessions map[types.SessionID]*model.Session
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[types.SessionID]*model.Session),
	}
}

func copySession(s *model.Session) *model.Session {
	copied := *s
	if s.MarkIDs != nil {
		copied.MarkIDs = make([]types.MarkID, len(s.MarkIDs))
		copy(copied.MarkIDs, s.MarkIDs)
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		copied.CompletedAt = &t
	}
	return &copied
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "session already exists", goerr.V("id", session.ID))
	}

	stored := copySession(session)
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.sessions[session.ID] = stored

	session.CreatedAt = now
	session.UpdatedAt = now
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id types.SessionID) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, goerr.Wrap(repository.ErrNotFound, "session not found", goerr.V("id", id))
	}
	return copySession(session), nil
}

func (r *sessionRepository) Transition(ctx context.Context, id types.SessionID, from, to types.SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return goerr.Wrap(repository.ErrNotFound, "session not found", goerr.V("id", id))
	}

	if !from.CanTransitionTo(to) {
		return goerr.Wrap(repository.ErrInvalidTransition, "transition not in table",
			goerr.V("id", id), goerr.V("from", from), goerr.V("to", to))
	}
	if session.Status != from {
		return goerr.Wrap(repository.ErrStaleStatus, "session status does not match",
			goerr.V("id", id), goerr.V("expected", from), goerr.V("actual", session.Status))
	}

	now := time.Now().UTC()
	session.Status = to
	session.UpdatedAt = now
	if to.IsTerminal() {
		session.CompletedAt = &now
	}
	return nil
}

func (r *sessionRepository) SetOutcome(ctx context.Context, id types.SessionID, summary, errMsg string, totalProposals int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return goerr.Wrap(repository.ErrNotFound, "session not found", goerr.V("id", id))
	}

	session.Summary = summary
	session.Error = errMsg
	session.TotalProposals = totalProposals
	session.UpdatedAt = time.Now().UTC()
	return nil
}
