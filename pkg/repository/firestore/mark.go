package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type markRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMarkRepository(client *firestore.Client) *markRepository {
	return &markRepository{client: client}
}

func (r *markRepository) collection() string {
	return collectionName(r.collectionPrefix, "marks")
}

// docID is the (scope, message_ts) identity, making Put naturally
// idempotent.
func markDocID(scope types.ScopeID, messageTS string) string {
	return string(scope) + ":" + messageTS
}

func (r *markRepository) Put(ctx context.Context, mark *model.Mark) (bool, error) {
	stored := *mark
	if stored.ID == "" {
		stored.ID = types.NewMarkID()
	}
	if stored.MarkedAt.IsZero() {
		stored.MarkedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.collection()).Doc(markDocID(mark.Scope, mark.MessageTS))
	if _, err := docRef.Create(ctx, &stored); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to put mark",
			goerr.V("scope", mark.Scope), goerr.V("message_ts", mark.MessageTS))
	}
	return true, nil
}

func (r *markRepository) Delete(ctx context.Context, scope types.ScopeID, messageTS string) (bool, error) {
	docRef := r.client.Collection(r.collection()).Doc(markDocID(scope, messageTS))

	deleted := false
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}

		var mark model.Mark
		if err := doc.DataTo(&mark); err != nil {
			return err
		}
		if mark.Processed() {
			// Unmarking after a session claimed it is a no-op.
			return nil
		}

		if err := tx.Delete(docRef); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to delete mark",
			goerr.V("scope", scope), goerr.V("message_ts", messageTS))
	}
	return deleted, nil
}

func (r *markRepository) ListUnprocessed(ctx context.Context, scope types.ScopeID) ([]*model.Mark, error) {
	iter := r.unprocessedQuery(scope).Documents(ctx)
	defer iter.Stop()

	marks, err := collectMarks(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list unprocessed marks", goerr.V("scope", scope))
	}
	return marks, nil
}

// Claim atomically assigns every unprocessed mark in the scope to the
// session. Concurrent claims see disjoint sets.
func (r *markRepository) Claim(ctx context.Context, scope types.ScopeID, sessionID types.SessionID) ([]*model.Mark, error) {
	var claimed []*model.Mark
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(r.unprocessedQuery(scope))
		defer iter.Stop()

		marks, err := collectMarks(iter)
		if err != nil {
			return err
		}

		for _, m := range marks {
			docRef := r.client.Collection(r.collection()).Doc(markDocID(m.Scope, m.MessageTS))
			if err := tx.Update(docRef, []firestore.Update{
				{Path: "session_id", Value: sessionID},
			}); err != nil {
				return err
			}
			m.SessionID = sessionID
		}

		claimed = marks
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to claim marks",
			goerr.V("scope", scope), goerr.V("session_id", sessionID))
	}
	return claimed, nil
}

func (r *markRepository) unprocessedQuery(scope types.ScopeID) firestore.Query {
	return r.client.Collection(r.collection()).
		Where("scope", "==", scope.String()).
		Where("session_id", "==", "").
		OrderBy("message_ts", firestore.Asc)
}

func collectMarks(iter *firestore.DocumentIterator) ([]*model.Mark, error) {
	marks := make([]*model.Mark, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var mark model.Mark
		if err := doc.DataTo(&mark); err != nil {
			return nil, goerr.Wrap(err, "failed to decode mark", goerr.V("doc", doc.Ref.ID))
		}
		marks = append(marks, &mark)
	}
	return marks, nil
}
