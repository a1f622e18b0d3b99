package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
)

type tenantRepository struct {
	mu      sync.RWMutex
	tenants map[types.TenantID]*model.Tenant
}

func newTenantRepository() *tenantRepository {
	return &tenantRepository{
		tenants: make(map[types.TenantID]*model.Tenant),
	}
}

func copyTenant(t *model.Tenant) *model.Tenant {
	copied := *t
	return &copied
}

func (r *tenantRepository) Put(ctx context.Context, tenant *model.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyTenant(tenant)
	stored.UpdatedAt = time.Now().UTC()
	if existing, ok := r.tenants[tenant.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}

	r.tenants[tenant.ID] = stored
	return nil
}

func (r *tenantRepository) Get(ctx context.Context, id types.TenantID) (*model.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, ok := r.tenants[id]
	if !ok {
		return nil, goerr.Wrap(repository.ErrNotFound, "tenant not found", goerr.V("id", id))
	}
	return copyTenant(tenant), nil
}

func (r *tenantRepository) ListEnabled(ctx context.Context) ([]*model.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		if t.Enabled {
			result = append(result, copyTenant(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *tenantRepository) SetEnabled(ctx context.Context, id types.TenantID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, ok := r.tenants[id]
	if !ok {
		return goerr.Wrap(repository.ErrNotFound, "tenant not found", goerr.V("id", id))
	}
	tenant.Enabled = enabled
	tenant.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *tenantRepository) SetWatermark(ctx context.Context, id types.TenantID, w model.Watermark) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, ok := r.tenants[id]
	if !ok {
		return goerr.Wrap(repository.ErrNotFound, "tenant not found", goerr.V("id", id))
	}
	tenant.Watermark = w
	tenant.UpdatedAt = time.Now().UTC()
	return nil
}
