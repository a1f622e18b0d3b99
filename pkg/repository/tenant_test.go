package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
	"github.com/pmsync-dev/pmsync/pkg/repository/firestore"
	"github.com/pmsync-dev/pmsync/pkg/repository/memory"
)

func newFirestoreRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	repo, err := firestore.New(context.Background(), projectID, "",
		firestore.WithCollectionPrefix(fmt.Sprintf("test-%d-", time.Now().UnixNano())))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func newTenant(id string) *model.Tenant {
	return &model.Tenant{
		ID:    types.TenantID(id),
		Email: "pm@example.com",
		Name:  "Test PM",
		Jira: model.JiraConfig{
			BaseURL:    "https://example.atlassian.net",
			Email:      "pm@example.com",
			APIToken:   "token",
			ProjectKey: "PROJ",
		},
		Enabled: true,
	}
}

func runTenantRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get roundtrip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		tenant := newTenant("U001")
		gt.NoError(t, repo.Tenant().Put(ctx, tenant)).Required()

		got, err := repo.Tenant().Get(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(tenant.ID)
		gt.Value(t, got.Jira.ProjectKey).Equal("PROJ")
		gt.Bool(t, got.Enabled).True()
	})

	t.Run("Get returns ErrNotFound for unknown tenant", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Tenant().Get(ctx, "U404")
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()
	})

	t.Run("Put replaces the record whole", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		tenant := newTenant("U002")
		gt.NoError(t, repo.Tenant().Put(ctx, tenant)).Required()

		tenant.Jira.ProjectKey = "OTHER"
		gt.NoError(t, repo.Tenant().Put(ctx, tenant)).Required()

		got, err := repo.Tenant().Get(ctx, "U002")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Jira.ProjectKey).Equal("OTHER")
	})

	t.Run("ListEnabled excludes disabled tenants", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Tenant().Put(ctx, newTenant("U010"))).Required()
		gt.NoError(t, repo.Tenant().Put(ctx, newTenant("U011"))).Required()

		disabled := newTenant("U012")
		disabled.Enabled = false
		gt.NoError(t, repo.Tenant().Put(ctx, disabled)).Required()

		enabled, err := repo.Tenant().ListEnabled(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, enabled).Length(2)
		for _, tn := range enabled {
			gt.Value(t, tn.ID).NotEqual(types.TenantID("U012"))
		}
	})

	t.Run("SetEnabled flips the flag and keeps the record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Tenant().Put(ctx, newTenant("U020"))).Required()
		gt.NoError(t, repo.Tenant().SetEnabled(ctx, "U020", false)).Required()

		got, err := repo.Tenant().Get(ctx, "U020")
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Enabled).False()
		gt.Value(t, got.Jira.ProjectKey).Equal("PROJ")
	})

	t.Run("SetEnabled on unknown tenant returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Tenant().SetEnabled(ctx, "U404", true)
		gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()
	})

	t.Run("SetWatermark replaces the watermark whole", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Tenant().Put(ctx, newTenant("U030"))).Required()

		first := model.Watermark{
			FileID:      "file-1",
			FileName:    "PRD v1",
			ModifiedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			ProcessedAt: time.Now().UTC(),
		}
		gt.NoError(t, repo.Tenant().SetWatermark(ctx, "U030", first)).Required()

		second := model.Watermark{
			FileID:      "file-2",
			FileName:    "PRD v2",
			ModifiedAt:  time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			ProcessedAt: time.Now().UTC(),
		}
		gt.NoError(t, repo.Tenant().SetWatermark(ctx, "U030", second)).Required()

		got, err := repo.Tenant().Get(ctx, "U030")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Watermark.FileID).Equal("file-2")
		gt.Value(t, got.Watermark.FileName).Equal("PRD v2")
		gt.Bool(t, got.Watermark.ModifiedAt.Equal(second.ModifiedAt)).True()
	})
}

func TestTenantRepository_Memory(t *testing.T) {
	runTenantRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestTenantRepository_Firestore(t *testing.T) {
	runTenantRepositoryTest(t, newFirestoreRepo)
}
