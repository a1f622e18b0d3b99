package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
	"github.com/pmsync-dev/pmsync/pkg/repository/memory"
)

func newProposals(n int) []*model.Proposal {
	proposals := make([]*model.Proposal, n)
	for i := range proposals {
		proposals[i] = &model.Proposal{
			TicketKey: "PROJ-1",
			Kind:      types.ChangeKindAddComment,
			Proposed:  model.ProposedValue{Scalar: "comment body"},
		}
	}
	return proposals
}

func setupSessionWithProposals(t *testing.T, repo interfaces.Repository, n int) (*model.Session, []*model.Proposal) {
	t.Helper()
	ctx := context.Background()

	session := model.NewSession("C01", "U001", types.SessionModeInteractive)
	gt.NoError(t, repo.Session().Create(ctx, session)).Required()

	stored, err := repo.Proposal().BulkCreate(ctx, session.ID, newProposals(n))
	gt.NoError(t, err).Required()
	return session, stored
}

func runProposalRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("BulkCreate assigns sequential IDs and pending decisions", func(t *testing.T) {
		repo := newRepo(t)

		session, stored := setupSessionWithProposals(t, repo, 3)
		gt.Array(t, stored).Length(3)
		gt.Value(t, stored[0].ID).Equal(types.ProposalID("p-001"))
		gt.Value(t, stored[1].ID).Equal(types.ProposalID("p-002"))
		gt.Value(t, stored[2].ID).Equal(types.ProposalID("p-003"))
		for _, p := range stored {
			gt.Value(t, p.SessionID).Equal(session.ID)
			gt.Value(t, p.Decision).Equal(types.DecisionPending)
			gt.Bool(t, p.CreatedAt.IsZero()).False()
		}
	})

	t.Run("BulkCreate is once per session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, _ := setupSessionWithProposals(t, repo, 2)

		_, err := repo.Proposal().BulkCreate(ctx, session.ID, newProposals(1))
		gt.Bool(t, errors.Is(err, repository.ErrAlreadyExists)).True()

		// The original batch is intact.
		proposals, err := repo.Proposal().ListBySession(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, proposals).Length(2)
	})

	t.Run("ListBySession returns creation order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, _ := setupSessionWithProposals(t, repo, 5)

		proposals, err := repo.Proposal().ListBySession(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, proposals).Length(5)
		for i, p := range proposals {
			gt.Value(t, int(p.ID[len(p.ID)-1]-'0')).Equal(i + 1)
		}
	})

	t.Run("Get returns ErrNotFound for unknown proposal", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, _ := setupSessionWithProposals(t, repo, 1)

		_, err := repo.Proposal().Get(ctx, session.ID, "p-999")
		gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()
	})

	t.Run("RecordDecision counts down remaining pending", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, stored := setupSessionWithProposals(t, repo, 3)
		now := time.Now().UTC()

		remaining, err := repo.Proposal().RecordDecision(ctx, session.ID, stored[0].ID,
			types.DecisionApproved, "U002", now)
		gt.NoError(t, err).Required()
		gt.Value(t, remaining).Equal(2)

		remaining, err = repo.Proposal().RecordDecision(ctx, session.ID, stored[1].ID,
			types.DecisionRejected, "U003", now)
		gt.NoError(t, err).Required()
		gt.Value(t, remaining).Equal(1)

		remaining, err = repo.Proposal().RecordDecision(ctx, session.ID, stored[2].ID,
			types.DecisionApproved, "U002", now)
		gt.NoError(t, err).Required()
		gt.Value(t, remaining).Equal(0)

		got, err := repo.Proposal().Get(ctx, session.ID, stored[1].ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Decision).Equal(types.DecisionRejected)
		gt.Value(t, got.DecidedBy).Equal("U003")
		gt.Value(t, got.DecidedAt).NotNil()
	})

	t.Run("RecordDecision is write-once", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, stored := setupSessionWithProposals(t, repo, 1)
		now := time.Now().UTC()

		_, err := repo.Proposal().RecordDecision(ctx, session.ID, stored[0].ID,
			types.DecisionApproved, "U002", now)
		gt.NoError(t, err).Required()

		_, err = repo.Proposal().RecordDecision(ctx, session.ID, stored[0].ID,
			types.DecisionRejected, "U003", now)
		gt.Bool(t, errors.Is(err, repository.ErrAlreadyDecided)).True()

		// The first decision stands.
		got, err := repo.Proposal().Get(ctx, session.ID, stored[0].ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Decision).Equal(types.DecisionApproved)
		gt.Value(t, got.DecidedBy).Equal("U002")
	})

	t.Run("RecordDecision rejects pending as a verdict", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, stored := setupSessionWithProposals(t, repo, 1)

		_, err := repo.Proposal().RecordDecision(ctx, session.ID, stored[0].ID,
			types.DecisionPending, "U002", time.Now().UTC())
		gt.Value(t, err).NotNil()
	})

	t.Run("concurrent deciders on one proposal have one winner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, stored := setupSessionWithProposals(t, repo, 1)

		const racers = 8
		errs := make([]error, racers)
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = repo.Proposal().RecordDecision(ctx, session.ID, stored[0].ID,
					types.DecisionApproved, "U002", time.Now().UTC())
			}()
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				gt.Bool(t, errors.Is(err, repository.ErrAlreadyDecided)).True()
			}
		}
		gt.Value(t, winners).Equal(1)
	})

	t.Run("SetResult records the outcome exactly once", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, stored := setupSessionWithProposals(t, repo, 1)

		result := model.ExecutionResult{
			Status:     model.ExecutionSucceeded,
			Detail:     "comment added",
			ExecutedAt: time.Now().UTC(),
		}
		gt.NoError(t, repo.Proposal().SetResult(ctx, session.ID, stored[0].ID, result)).Required()

		err := repo.Proposal().SetResult(ctx, session.ID, stored[0].ID, model.ExecutionResult{
			Status: model.ExecutionFailed,
		})
		gt.Bool(t, errors.Is(err, repository.ErrAlreadyExists)).True()

		got, err := repo.Proposal().Get(ctx, session.ID, stored[0].ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Result).NotNil()
		gt.Value(t, got.Result.Status).Equal(model.ExecutionSucceeded)
		gt.Value(t, got.Result.Detail).Equal("comment added")
	})
}

func TestProposalRepository_Memory(t *testing.T) {
	runProposalRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestProposalRepository_Firestore(t *testing.T) {
	runProposalRepositoryTest(t, newFirestoreRepo)
}
