package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
)

type proposalRepository struct {
	mu sync.Mutex
	// bySession keeps creation order; the slice is fixed after BulkCreate,
	// only decision/result fields of its elements mutate.
	bySession map[types.SessionID][]*model.Proposal
}

func newProposalRepository() *proposalRepository {
	return &proposalRepository{
		bySession: make(map[types.SessionID][]*model.Proposal),
	}
}

func copyProposal(p *model.Proposal) *model.Proposal {
	copied := *p
	if p.DecidedAt != nil {
		t := *p.DecidedAt
		copied.DecidedAt = &t
	}
	if p.Result != nil {
		res := *p.Result
		copied.Result = &res
	}
	if p.Proposed.Issue != nil {
		issue := *p.Proposed.Issue
		if issue.Labels != nil {
			issue.Labels = append([]string(nil), issue.Labels...)
		}
		copied.Proposed.Issue = &issue
	}
	return &copied
}

func (r *proposalRepository) BulkCreate(ctx context.Context, sessionID types.SessionID, proposals []*model.Proposal) ([]*model.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySession[sessionID]; exists {
		return nil, goerr.Wrap(repository.ErrAlreadyExists, "proposals already created for session",
			goerr.V("session_id", sessionID))
	}

	now := time.Now().UTC()
	stored := make([]*model.Proposal, len(proposals))
	result := make([]*model.Proposal, len(proposals))
	for i, p := range proposals {
		s := copyProposal(p)
		s.ID = types.ProposalID(fmt.Sprintf("p-%03d", i+1))
		s.SessionID = sessionID
		s.Decision = types.DecisionPending
		s.CreatedAt = now
		stored[i] = s
		result[i] = copyProposal(s)
	}

	r.bySession[sessionID] = stored
	return result, nil
}

func (r *proposalRepository) ListBySession(ctx context.Context, sessionID types.SessionID) ([]*model.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.bySession[sessionID]
	result := make([]*model.Proposal, len(stored))
	for i, p := range stored {
		result[i] = copyProposal(p)
	}
	return result, nil
}

func (r *proposalRepository) Get(ctx context.Context, sessionID types.SessionID, id types.ProposalID) (*model.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findLocked(sessionID, id)
	if p == nil {
		return nil, goerr.Wrap(repository.ErrNotFound, "proposal not found",
			goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
	}
	return copyProposal(p), nil
}

func (r *proposalRepository) RecordDecision(ctx context.Context, sessionID types.SessionID, id types.ProposalID, decision types.Decision, decidedBy string, decidedAt time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findLocked(sessionID, id)
	if p == nil {
		return 0, goerr.Wrap(repository.ErrNotFound, "proposal not found",
			goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
	}
	if p.Decision != types.DecisionPending {
		return 0, goerr.Wrap(repository.ErrAlreadyDecided, "decision is write-once",
			goerr.V("session_id", sessionID), goerr.V("proposal_id", id),
			goerr.V("decision", p.Decision))
	}
	if !decision.IsDecided() {
		return 0, goerr.New("decision must be approved or rejected",
			goerr.V("decision", decision))
	}

	p.Decision = decision
	p.DecidedBy = decidedBy
	p.DecidedAt = &decidedAt

	remaining := 0
	for _, other := range r.bySession[sessionID] {
		if other.Decision == types.DecisionPending {
			remaining++
		}
	}
	return remaining, nil
}

func (r *proposalRepository) SetResult(ctx context.Context, sessionID types.SessionID, id types.ProposalID, result model.ExecutionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findLocked(sessionID, id)
	if p == nil {
		return goerr.Wrap(repository.ErrNotFound, "proposal not found",
			goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
	}
	if p.Result != nil {
		return goerr.Wrap(repository.ErrAlreadyExists, "execution result already recorded",
			goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
	}

	res := result
	p.Result = &res
	return nil
}

func (r *proposalRepository) findLocked(sessionID types.SessionID, id types.ProposalID) *model.Proposal {
	for _, p := range r.bySession[sessionID] {
		if p.ID == id {
			return p
		}
	}
	return nil
}
