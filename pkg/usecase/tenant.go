package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
)

// OnboardTenant registers a tenant. Onboarding an existing ID replaces
// the record whole; partial edits go through UpdateTenant.
func (u *UseCases) OnboardTenant(ctx context.Context, tenant *model.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return err
	}

	tenant.Enabled = true
	if err := u.repo.Tenant().Put(ctx, tenant); err != nil {
		return goerr.Wrap(err, "failed to onboard tenant", goerr.V("tenant_id", tenant.ID))
	}

	logging.From(ctx).Info("tenant onboarded",
		"tenant_id", tenant.ID,
		"jira_project", tenant.Jira.ProjectKey,
	)
	return nil
}

// UpdateTenant applies a partial update. Empty secrets in the update keep
// the stored credentials.
func (u *UseCases) UpdateTenant(ctx context.Context, id types.TenantID, update model.TenantUpdate) (*model.Tenant, error) {
	tenant, err := u.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	tenant.Apply(update)
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Tenant().Put(ctx, tenant); err != nil {
		return nil, goerr.Wrap(err, "failed to update tenant", goerr.V("tenant_id", id))
	}
	return tenant, nil
}

func (u *UseCases) GetTenant(ctx context.Context, id types.TenantID) (*model.Tenant, error) {
	tenant, err := u.repo.Tenant().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(ErrUnknownTenant, "tenant is not onboarded", goerr.V("tenant_id", id))
		}
		return nil, err
	}
	return tenant, nil
}

// ResolveEnabledTenant loads a tenant and rejects disabled ones. Every
// workflow entry point resolves through here.
func (u *UseCases) ResolveEnabledTenant(ctx context.Context, id types.TenantID) (*model.Tenant, error) {
	tenant, err := u.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tenant.Enabled {
		return nil, goerr.Wrap(ErrTenantDisabled, "tenant is disabled", goerr.V("tenant_id", id))
	}
	return tenant, nil
}

func (u *UseCases) SetTenantEnabled(ctx context.Context, id types.TenantID, enabled bool) error {
	if err := u.repo.Tenant().SetEnabled(ctx, id, enabled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return goerr.Wrap(ErrUnknownTenant, "tenant is not onboarded", goerr.V("tenant_id", id))
		}
		return err
	}

	logging.From(ctx).Info("tenant enabled state changed", "tenant_id", id, "enabled", enabled)
	return nil
}

// EffectiveDriveConfig merges the process-wide document source defaults
// with the tenant's overrides.
func (u *UseCases) EffectiveDriveConfig(tenant *model.Tenant) model.DriveConfig {
	return tenant.EffectiveDriveConfig(u.driveDefaults)
}
