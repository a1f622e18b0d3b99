// Package firestore is the production repository backend. Conditional
// updates (mark claims, decision write-once, session status CAS) run in
// Firestore transactions so concurrency guarantees hold across instances.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
)

type Firestore struct {
	client   *firestore.Client
	tenant   *tenantRepository
	mark     *markRepository
	session  *sessionRepository
	proposal *proposalRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used by tests sharing a
// project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.tenant.collectionPrefix = prefix
		f.mark.collectionPrefix = prefix
		f.session.collectionPrefix = prefix
		f.proposal.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:   client,
		tenant:   newTenantRepository(client),
		mark:     newMarkRepository(client),
		session:  newSessionRepository(client),
		proposal: newProposalRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Tenant() interfaces.TenantRepository {
	return f.tenant
}

func (f *Firestore) Mark() interfaces.MarkRepository {
	return f.mark
}

func (f *Firestore) Session() interfaces.SessionRepository {
	return f.session
}

func (f *Firestore) Proposal() interfaces.ProposalRepository {
	return f.proposal
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
