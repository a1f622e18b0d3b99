package interfaces

import (
	"context"

	"github.com/pmsync-dev/pmsync/pkg/domain/model"
)

// Notifier renders workflow events to the approval channel. Failures are
// logged by callers, never fatal to the workflow: the persisted state is
// the source of truth, the channel is a view.
type Notifier interface {
	// NotifyProposals posts one decision card per proposal plus the
	// "awaiting N decisions" header for the session.
	NotifyProposals(ctx context.Context, target string, session *model.Session, summary string, proposals []*model.Proposal) error
	// NotifyReport posts the execution summary with succeeded/failed/
	// skipped detail.
	NotifyReport(ctx context.Context, target string, session *model.Session, report *model.ExecutionReport) error
	// NotifyNewDocument tells the tenant a new document was detected.
	NotifyNewDocument(ctx context.Context, target string, tenant *model.Tenant, doc *model.Document) error
	// NotifyText posts a plain status message.
	NotifyText(ctx context.Context, target, text string) error
}
