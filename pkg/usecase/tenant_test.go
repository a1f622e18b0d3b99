package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
)

func TestTenantLifecycle(t *testing.T) {
	t.Run("onboard enables the tenant", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")

		got, err := env.uc.ResolveEnabledTenant(ctx, tenant.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Enabled).True()
	})

	t.Run("unknown tenant", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.ResolveEnabledTenant(context.Background(), "U404")
		gt.Bool(t, errors.Is(err, usecase.ErrUnknownTenant)).True()
	})

	t.Run("disabled tenant is rejected by workflow entry points", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")

		gt.NoError(t, env.uc.SetTenantEnabled(ctx, tenant.ID, false)).Required()

		_, err := env.uc.ResolveEnabledTenant(ctx, tenant.ID)
		gt.Bool(t, errors.Is(err, usecase.ErrTenantDisabled)).True()

		// The record survives for re-enabling.
		gt.NoError(t, env.uc.SetTenantEnabled(ctx, tenant.ID, true)).Required()
		_, err = env.uc.ResolveEnabledTenant(ctx, tenant.ID)
		gt.NoError(t, err)
	})

	t.Run("invalid tenant is rejected at onboard", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.uc.OnboardTenant(context.Background(), &model.Tenant{ID: "U001"})
		gt.Value(t, err).NotNil()
	})

	t.Run("update with blank secret keeps the stored token", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")

		updated, err := env.uc.UpdateTenant(ctx, tenant.ID, model.TenantUpdate{
			Jira: &model.JiraConfig{
				BaseURL:    "https://moved.atlassian.net",
				APIToken:   "",
				ProjectKey: "PROJ",
			},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Jira.BaseURL).Equal("https://moved.atlassian.net")
		gt.Value(t, updated.Jira.APIToken).Equal("token")

		stored, err := env.uc.GetTenant(ctx, tenant.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Jira.APIToken).Equal("token")
	})

	t.Run("update that breaks validation is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		tenant := env.onboardTenant(t, "U001")

		_, err := env.uc.UpdateTenant(ctx, tenant.ID, model.TenantUpdate{
			Jira: &model.JiraConfig{BaseURL: "", ProjectKey: ""},
		})
		gt.Value(t, err).NotNil()

		// The stored record is unchanged.
		stored, getErr := env.uc.GetTenant(ctx, tenant.ID)
		gt.NoError(t, getErr).Required()
		gt.Value(t, stored.Jira.BaseURL).Equal("https://example.atlassian.net")
	})
}
