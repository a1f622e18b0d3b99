package interfaces

import (
	"context"
	"encoding/json"

	"github.com/pmsync-dev/pmsync/pkg/domain/model"
)

// TicketService is the per-tenant ticketing collaborator. Each method maps
// to one external write operation; errors carry the external system's
// reason string. ProjectState returns an opaque snapshot for the analysis
// engine to diff against.
type TicketService interface {
	UpdateField(ctx context.Context, ticketKey, field, value string) error
	AddComment(ctx context.Context, ticketKey, text string) error
	TransitionIssue(ctx context.Context, ticketKey, targetStatus string) error
	CreateIssue(ctx context.Context, draft *model.IssueDraft) (string, error)
	AssignIssue(ctx context.Context, ticketKey, assignee string) error
	SetDueDate(ctx context.Context, ticketKey, date string) error

	ProjectState(ctx context.Context, projectKey string) (json.RawMessage, error)
}

// TicketServiceFactory builds a TicketService from a tenant's credentials.
type TicketServiceFactory func(cfg model.JiraConfig) (TicketService, error)
