package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type tenantRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTenantRepository(client *firestore.Client) *tenantRepository {
	return &tenantRepository{client: client}
}

func (r *tenantRepository) collection() string {
	return collectionName(r.collectionPrefix, "tenants")
}

func (r *tenantRepository) Put(ctx context.Context, tenant *model.Tenant) error {
	stored := *tenant
	stored.UpdatedAt = time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}

	docRef := r.client.Collection(r.collection()).Doc(tenant.ID.String())
	if _, err := docRef.Set(ctx, &stored); err != nil {
		return goerr.Wrap(err, "failed to put tenant", goerr.V("id", tenant.ID))
	}
	return nil
}

func (r *tenantRepository) Get(ctx context.Context, id types.TenantID) (*model.Tenant, error) {
	doc, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "tenant not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get tenant", goerr.V("id", id))
	}

	var tenant model.Tenant
	if err := doc.DataTo(&tenant); err != nil {
		return nil, goerr.Wrap(err, "failed to decode tenant", goerr.V("id", id))
	}
	return &tenant, nil
}

func (r *tenantRepository) ListEnabled(ctx context.Context) ([]*model.Tenant, error) {
	iter := r.client.Collection(r.collection()).
		Where("enabled", "==", true).
		Documents(ctx)
	defer iter.Stop()

	var tenants []*model.Tenant
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list enabled tenants")
		}

		var tenant model.Tenant
		if err := doc.DataTo(&tenant); err != nil {
			return nil, goerr.Wrap(err, "failed to decode tenant", goerr.V("doc", doc.Ref.ID))
		}
		tenants = append(tenants, &tenant)
	}

	return tenants, nil
}

func (r *tenantRepository) SetEnabled(ctx context.Context, id types.TenantID, enabled bool) error {
	docRef := r.client.Collection(r.collection()).Doc(id.String())
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "enabled", Value: enabled},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(repository.ErrNotFound, "tenant not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to set tenant enabled", goerr.V("id", id))
	}
	return nil
}

func (r *tenantRepository) SetWatermark(ctx context.Context, id types.TenantID, w model.Watermark) error {
	docRef := r.client.Collection(r.collection()).Doc(id.String())
	// Whole-value replace: watermark writes are last-write-wins, never a
	// field merge.
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "watermark", Value: w},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(repository.ErrNotFound, "tenant not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to set tenant watermark", goerr.V("id", id))
	}
	return nil
}
