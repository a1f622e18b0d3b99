package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type proposalRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProposalRepository(client *firestore.Client) *proposalRepository {
	return &proposalRepository{client: client}
}

func (r *proposalRepository) sessionDoc(sessionID types.SessionID) *firestore.DocumentRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "sessions")).Doc(sessionID.String())
}

// Proposals live in a subcollection of their session so a session's batch
// is one collection scan.
func (r *proposalRepository) proposals(sessionID types.SessionID) *firestore.CollectionRef {
	return r.sessionDoc(sessionID).Collection("proposals")
}

// BulkCreate stores the whole batch in one transaction. A marker on the
// session document rejects a second batch even when the first one was
// empty.
func (r *proposalRepository) BulkCreate(ctx context.Context, sessionID types.SessionID, proposals []*model.Proposal) ([]*model.Proposal, error) {
	now := time.Now().UTC()
	stored := make([]*model.Proposal, len(proposals))
	for i, p := range proposals {
		s := *p
		s.ID = types.ProposalID(fmt.Sprintf("p-%03d", i+1))
		s.SessionID = sessionID
		s.Decision = types.DecisionPending
		s.CreatedAt = now
		stored[i] = &s
	}

	sessionRef := r.sessionDoc(sessionID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(sessionRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(repository.ErrNotFound, "session not found", goerr.V("session_id", sessionID))
			}
			return err
		}

		if created, _ := doc.DataAt("proposals_created"); created == true {
			return goerr.Wrap(repository.ErrAlreadyExists, "proposals already created for session",
				goerr.V("session_id", sessionID))
		}

		for _, s := range stored {
			if err := tx.Create(r.proposals(sessionID).Doc(s.ID.String()), s); err != nil {
				return err
			}
		}
		return tx.Update(sessionRef, []firestore.Update{
			{Path: "proposals_created", Value: true},
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to bulk create proposals", goerr.V("session_id", sessionID))
	}
	return stored, nil
}

func (r *proposalRepository) ListBySession(ctx context.Context, sessionID types.SessionID) ([]*model.Proposal, error) {
	// proposal_id is zero-padded so lexicographic order is creation order.
	iter := r.proposals(sessionID).OrderBy("proposal_id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	proposals := make([]*model.Proposal, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list proposals", goerr.V("session_id", sessionID))
		}

		var p model.Proposal
		if err := doc.DataTo(&p); err != nil {
			return nil, goerr.Wrap(err, "failed to decode proposal", goerr.V("doc", doc.Ref.ID))
		}
		proposals = append(proposals, &p)
	}
	return proposals, nil
}

func (r *proposalRepository) Get(ctx context.Context, sessionID types.SessionID, id types.ProposalID) (*model.Proposal, error) {
	doc, err := r.proposals(sessionID).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "proposal not found",
				goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get proposal",
			goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
	}

	var p model.Proposal
	if err := doc.DataTo(&p); err != nil {
		return nil, goerr.Wrap(err, "failed to decode proposal", goerr.V("proposal_id", id))
	}
	return &p, nil
}

// RecordDecision writes the decision once and reports how many proposals
// of the session are still pending, so the caller can detect the last
// decision without a follow-up read.
func (r *proposalRepository) RecordDecision(ctx context.Context, sessionID types.SessionID, id types.ProposalID, decision types.Decision, decidedBy string, decidedAt time.Time) (int, error) {
	if !decision.IsDecided() {
		return 0, goerr.New("decision must be approved or rejected", goerr.V("decision", decision))
	}

	docRef := r.proposals(sessionID).Doc(id.String())
	remaining := 0
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(repository.ErrNotFound, "proposal not found",
					goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
			}
			return err
		}

		var p model.Proposal
		if err := doc.DataTo(&p); err != nil {
			return err
		}
		if p.Decision != types.DecisionPending {
			return goerr.Wrap(repository.ErrAlreadyDecided, "decision is write-once",
				goerr.V("session_id", sessionID), goerr.V("proposal_id", id),
				goerr.V("decision", p.Decision))
		}

		pendingQuery := r.proposals(sessionID).
			Where("decision", "==", types.DecisionPending.String())
		iter := tx.Documents(pendingQuery)
		defer iter.Stop()

		pending := 0
		for {
			if _, err := iter.Next(); err == iterator.Done {
				break
			} else if err != nil {
				return err
			}
			pending++
		}
		// The proposal being decided is still pending in this snapshot.
		remaining = pending - 1

		return tx.Update(docRef, []firestore.Update{
			{Path: "decision", Value: decision.String()},
			{Path: "decided_by", Value: decidedBy},
			{Path: "decided_at", Value: decidedAt},
		})
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to record decision",
			goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
	}
	return remaining, nil
}

func (r *proposalRepository) SetResult(ctx context.Context, sessionID types.SessionID, id types.ProposalID, result model.ExecutionResult) error {
	docRef := r.proposals(sessionID).Doc(id.String())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(repository.ErrNotFound, "proposal not found",
					goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
			}
			return err
		}

		var p model.Proposal
		if err := doc.DataTo(&p); err != nil {
			return err
		}
		if p.Result != nil {
			return goerr.Wrap(repository.ErrAlreadyExists, "execution result already recorded",
				goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "result", Value: result},
		})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to set execution result",
			goerr.V("session_id", sessionID), goerr.V("proposal_id", id))
	}
	return nil
}
