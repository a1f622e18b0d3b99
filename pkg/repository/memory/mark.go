package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

type markRepository struct {
	mu sync.Mutex
	// marks is keyed by (scope, message_ts) so re-marking is naturally
	// idempotent.
	marks map[string]*model.Mark
}

func newMarkRepository() *markRepository {
	return &markRepository{
		marks: make(map[string]*model.Mark),
	}
}

func copyMark(m *model.Mark) *model.Mark {
	copied := *m
	return &copied
}

func (r *markRepository) Put(ctx context.Context, mark *model.Mark) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.marks[mark.Key()]; exists {
		return false, nil
	}

	stored := copyMark(mark)
	if stored.ID == "" {
		stored.ID = types.NewMarkID()
	}
	if stored.MarkedAt.IsZero() {
		stored.MarkedAt = time.Now().UTC()
	}
	r.marks[stored.Key()] = stored
	return true, nil
}

func (r *markRepository) Delete(ctx context.Context, scope types.ScopeID, messageTS string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := string(scope) + ":" + messageTS
	mark, exists := r.marks[key]
	if !exists || mark.Processed() {
		// Unmarking after processing is a no-op: the item already belongs
		// to a session.
		return false, nil
	}

	delete(r.marks, key)
	return true, nil
}

func (r *markRepository) ListUnprocessed(ctx context.Context, scope types.ScopeID) ([]*model.Mark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.unprocessedLocked(scope), nil
}

func (r *markRepository) Claim(ctx context.Context, scope types.ScopeID, sessionID types.SessionID) ([]*model.Mark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claimed := r.unprocessedLocked(scope)
	for _, m := range claimed {
		r.marks[m.Key()].SessionID = sessionID
		m.SessionID = sessionID
	}
	return claimed, nil
}

func (r *markRepository) unprocessedLocked(scope types.ScopeID) []*model.Mark {
	result := make([]*model.Mark, 0)
	for _, m := range r.marks {
		if m.Scope == scope && !m.Processed() {
			result = append(result, copyMark(m))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].MessageTS < result[j].MessageTS
	})

	return result
}
