package usecase

import (
	"context"

	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
)

// MarkMessage flags a message for the next analysis batch. Marking the
// same message twice is a no-op (returns false).
func (u *UseCases) MarkMessage(ctx context.Context, mark *model.Mark) (bool, error) {
	if err := mark.Validate(); err != nil {
		return false, err
	}

	created, err := u.repo.Mark().Put(ctx, mark)
	if err != nil {
		return false, err
	}
	if created {
		logging.From(ctx).Info("message marked",
			"scope", mark.Scope,
			"message_ts", mark.MessageTS,
			"marked_by", mark.MarkedBy,
		)
	}
	return created, nil
}

// UnmarkMessage removes an unprocessed mark. Marks already consumed by a
// session stay consumed (returns false).
func (u *UseCases) UnmarkMessage(ctx context.Context, scope types.ScopeID, messageTS string) (bool, error) {
	deleted, err := u.repo.Mark().Delete(ctx, scope, messageTS)
	if err != nil {
		return false, err
	}
	if deleted {
		logging.From(ctx).Info("message unmarked", "scope", scope, "message_ts", messageTS)
	}
	return deleted, nil
}

// ListUnprocessedMarks returns the marks the next interactive session in
// the scope would consume, ordered by message timestamp.
func (u *UseCases) ListUnprocessedMarks(ctx context.Context, scope types.ScopeID) ([]*model.Mark, error) {
	return u.repo.Mark().ListUnprocessed(ctx, scope)
}
