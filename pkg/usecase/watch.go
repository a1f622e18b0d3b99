package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/utils/errutil"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentChecks bounds the per-pass fan-out over tenants.
const maxConcurrentChecks = 4

// CheckAllTenants runs one change-detection pass. The enabled tenant list
// is re-read every pass; a failing tenant is logged and skipped, never
// fatal to the pass.
func (u *UseCases) CheckAllTenants(ctx context.Context) error {
	tenants, err := u.repo.Tenant().ListEnabled(ctx)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)
	for _, tenant := range tenants {
		g.Go(func() error {
			if err := u.CheckTenant(ctx, tenant); err != nil {
				errutil.Handle(ctx, err, "document check failed for tenant")
			}
			return nil
		})
	}
	return g.Wait()
}

// CheckTenant compares the tenant's latest document against its
// watermark. On a new document the watermark is advanced first, then the
// tenant is notified (or, for document-only tenants, a session is opened
// directly). A crash between the two loses one notification rather than
// producing duplicates.
func (u *UseCases) CheckTenant(ctx context.Context, tenant *model.Tenant) error {
	cfg := tenant.EffectiveDriveConfig(u.driveDefaults)

	doc, err := u.docSource.LatestDocument(ctx, cfg)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoDocument) {
			logging.From(ctx).Debug("no document in folder", "tenant_id", tenant.ID)
			return nil
		}
		return err
	}

	if !tenant.Watermark.IsNewer(doc.ModifiedAt) {
		return nil
	}

	watermark := model.Watermark{
		FileID:      doc.ID,
		FileName:    doc.Name,
		ModifiedAt:  doc.ModifiedAt,
		ProcessedAt: time.Now().UTC(),
	}
	if err := u.repo.Tenant().SetWatermark(ctx, tenant.ID, watermark); err != nil {
		return err
	}

	logging.From(ctx).Info("new document detected",
		"tenant_id", tenant.ID,
		"file_id", doc.ID,
		"file_name", doc.Name,
		"modified_at", doc.ModifiedAt,
	)

	if tenant.Flow.DocumentOnly {
		scope := types.ScopeID(tenant.NotificationTarget())
		session, marks, err := u.OpenSession(ctx, tenant, scope, types.SessionModeDocumentOnly)
		if err != nil {
			return err
		}
		return u.RunAnalysis(ctx, tenant, session, marks, doc)
	}

	if err := u.notifier.NotifyNewDocument(ctx, tenant.NotificationTarget(), tenant, doc); err != nil {
		return goerr.Wrap(err, "failed to notify new document", goerr.V("tenant_id", tenant.ID))
	}
	return nil
}
