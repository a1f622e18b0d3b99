// Package memory is the in-memory repository backend for development and
// tests. All repositories copy on read and write so callers never share
// mutable state with the store.
package memory

import (
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
)

type Memory struct {
	tenant   *tenantRepository
	mark     *markRepository
	session  *sessionRepository
	proposal *proposalRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		tenant:   newTenantRepository(),
		mark:     newMarkRepository(),
		session:  newSessionRepository(),
		proposal: newProposalRepository(),
	}
}

func (m *Memory) Tenant() interfaces.TenantRepository {
	return m.tenant
}

func (m *Memory) Mark() interfaces.MarkRepository {
	return m.mark
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Proposal() interfaces.ProposalRepository {
	return m.proposal
}

func (m *Memory) Close() error {
	return nil
}
