package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
)

// RecordDecision stores one approve/reject and, when it was the last
// pending decision, moves the session to executing and runs the batch.
// The status transition is conditional, so with concurrent last deciders
// exactly one caller executes; the others return with nothing to do.
func (u *UseCases) RecordDecision(ctx context.Context, sessionID types.SessionID, proposalID types.ProposalID, decision types.Decision, decidedBy string) error {
	session, err := u.repo.Session().Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != types.SessionStatusAwaitingDecisions {
		return goerr.Wrap(ErrSessionNotOpen, "session is not awaiting decisions",
			goerr.V("session_id", sessionID), goerr.V("status", session.Status))
	}

	remaining, err := u.repo.Proposal().RecordDecision(ctx, sessionID, proposalID, decision, decidedBy, time.Now().UTC())
	if err != nil {
		return err
	}

	logging.From(ctx).Info("decision recorded",
		"session_id", sessionID,
		"proposal_id", proposalID,
		"decision", decision,
		"decided_by", decidedBy,
		"remaining", remaining,
	)

	if remaining > 0 {
		return nil
	}

	if err := u.repo.Session().Transition(ctx, sessionID, types.SessionStatusAwaitingDecisions, types.SessionStatusExecuting); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			// Another decider won the race and owns the execution.
			return nil
		}
		return err
	}

	_, err = u.ExecuteSession(ctx, sessionID)
	return err
}
