package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) collection() string {
	return collectionName(r.collectionPrefix, "sessions")
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	now := time.Now().UTC()
	stored := *session
	stored.CreatedAt = now
	stored.UpdatedAt = now

	docRef := r.client.Collection(r.collection()).Doc(session.ID.String())
	if _, err := docRef.Create(ctx, &stored); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(repository.ErrAlreadyExists, "session already exists", goerr.V("id", session.ID))
		}
		return goerr.Wrap(err, "failed to create session", goerr.V("id", session.ID))
	}

	session.CreatedAt = now
	session.UpdatedAt = now
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id types.SessionID) (*model.Session, error) {
	doc, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "session not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("id", id))
	}

	var session model.Session
	if err := doc.DataTo(&session); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session", goerr.V("id", id))
	}
	return &session, nil
}

// Transition moves the session from one status to another only if the
// stored status still matches. Losers of a race get ErrStaleStatus.
func (r *sessionRepository) Transition(ctx context.Context, id types.SessionID, from, to types.SessionStatus) error {
	if !from.CanTransitionTo(to) {
		return goerr.Wrap(repository.ErrInvalidTransition, "transition not in table",
			goerr.V("id", id), goerr.V("from", from), goerr.V("to", to))
	}

	docRef := r.client.Collection(r.collection()).Doc(id.String())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(repository.ErrNotFound, "session not found", goerr.V("id", id))
			}
			return err
		}

		var session model.Session
		if err := doc.DataTo(&session); err != nil {
			return err
		}
		if session.Status != from {
			return goerr.Wrap(repository.ErrStaleStatus, "session status does not match",
				goerr.V("id", id), goerr.V("expected", from), goerr.V("actual", session.Status))
		}

		now := time.Now().UTC()
		updates := []firestore.Update{
			{Path: "status", Value: to.String()},
			{Path: "updated_at", Value: now},
		}
		if to.IsTerminal() {
			updates = append(updates, firestore.Update{Path: "completed_at", Value: now})
		}
		return tx.Update(docRef, updates)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to transition session",
			goerr.V("id", id), goerr.V("from", from), goerr.V("to", to))
	}
	return nil
}

func (r *sessionRepository) SetOutcome(ctx context.Context, id types.SessionID, summary, errMsg string, totalProposals int) error {
	docRef := r.client.Collection(r.collection()).Doc(id.String())
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "summary", Value: summary},
		{Path: "error", Value: errMsg},
		{Path: "total_proposals", Value: totalProposals},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(repository.ErrNotFound, "session not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to set session outcome", goerr.V("id", id))
	}
	return nil
}
