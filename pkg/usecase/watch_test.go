package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

func TestCheckTenant(t *testing.T) {
	docTime := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	t.Run("new document advances the watermark and notifies", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")

		env.docs.doc = &model.Document{ID: "f1", Name: "PRD v2", ModifiedAt: docTime, Text: "spec"}

		gt.NoError(t, env.uc.CheckTenant(ctx, tenant)).Required()

		stored, err := env.repo.Tenant().Get(ctx, tenant.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Watermark.FileID).Equal("f1")
		gt.Bool(t, stored.Watermark.ModifiedAt.Equal(docTime)).True()
		gt.Value(t, env.notifier.documentCalls).Equal(1)
	})

	t.Run("unchanged document is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")

		env.docs.doc = &model.Document{ID: "f1", Name: "PRD v2", ModifiedAt: docTime}
		gt.NoError(t, env.uc.CheckTenant(ctx, tenant)).Required()

		// Re-check with the advanced watermark.
		stored, err := env.repo.Tenant().Get(ctx, tenant.ID)
		gt.NoError(t, err).Required()
		gt.NoError(t, env.uc.CheckTenant(ctx, stored)).Required()

		gt.Value(t, env.notifier.documentCalls).Equal(1)
	})

	t.Run("empty folder is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")

		env.docs.err = interfaces.ErrNoDocument

		gt.NoError(t, env.uc.CheckTenant(ctx, tenant)).Required()
		gt.Value(t, env.notifier.documentCalls).Equal(0)

		stored, err := env.repo.Tenant().Get(ctx, tenant.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.Watermark.IsZero()).True()
	})

	t.Run("notify failure keeps the watermark advanced", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")

		env.docs.doc = &model.Document{ID: "f1", Name: "PRD v2", ModifiedAt: docTime}
		env.notifier.failNotify = fmt.Errorf("slack down")

		err := env.uc.CheckTenant(ctx, tenant)
		gt.Value(t, err).NotNil()

		// At-most-once: the document is not re-notified on the next pass.
		stored, getErr := env.repo.Tenant().Get(ctx, tenant.ID)
		gt.NoError(t, getErr).Required()
		gt.Value(t, stored.Watermark.FileID).Equal("f1")
	})

	t.Run("document-only tenant auto-opens a session", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")
		tenant.Flow.DocumentOnly = true
		gt.NoError(t, env.repo.Tenant().Put(ctx, tenant)).Required()

		env.docs.doc = &model.Document{ID: "f1", Name: "PRD v2", ModifiedAt: docTime, Text: "the full spec"}
		env.engine.analyze = func(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisOutput, error) {
			return &model.AnalysisOutput{
				Summary: "one change",
				Proposals: []*model.Proposal{
					{
						TicketKey: "PROJ-1",
						Kind:      types.ChangeKindAddComment,
						Proposed:  model.ProposedValue{Scalar: "spec updated"},
					},
				},
			}, nil
		}

		gt.NoError(t, env.uc.CheckTenant(ctx, tenant)).Required()

		// No plain notification; the session goes straight to decisions.
		gt.Value(t, env.notifier.documentCalls).Equal(0)
		gt.Value(t, env.notifier.proposalCalls).Equal(1)

		req := env.engine.lastRequest()
		gt.Value(t, req).NotNil()
		gt.Value(t, req.Mode).Equal(types.SessionModeDocumentOnly)
		gt.Value(t, req.DocumentText).Equal("the full spec")
	})
}

func TestCheckAllTenants(t *testing.T) {
	t.Run("a failing tenant does not abort the pass", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		env.onboardTenant(t, "U001")
		env.onboardTenant(t, "U002")

		disabled := env.onboardTenant(t, "U003")
		gt.NoError(t, env.uc.SetTenantEnabled(ctx, disabled.ID, false)).Required()

		env.docs.doc = &model.Document{
			ID:         "f1",
			Name:       "PRD",
			ModifiedAt: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		}
		env.notifier.failNotify = fmt.Errorf("slack down")

		// Notification fails per tenant, but the pass itself succeeds and
		// only enabled tenants are touched.
		gt.NoError(t, env.uc.CheckAllTenants(ctx)).Required()

		stored, err := env.repo.Tenant().Get(ctx, "U003")
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.Watermark.IsZero()).True()

		for _, id := range []types.TenantID{"U001", "U002"} {
			stored, err := env.repo.Tenant().Get(ctx, id)
			gt.NoError(t, err).Required()
			gt.Value(t, stored.Watermark.FileID).Equal("f1")
		}
	})
}
