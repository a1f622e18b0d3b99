package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
)

// ExecuteSession runs the decided batch against the ticketing system. The
// caller must have won the awaiting_decisions -> executing transition.
// Approved proposals are dispatched in creation order, rejected ones are
// skipped, and per-proposal failures are recorded without aborting the
// rest. The session always ends completed; the report says what actually
// happened.
func (u *UseCases) ExecuteSession(ctx context.Context, sessionID types.SessionID) (*model.ExecutionReport, error) {
	session, err := u.repo.Session().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	tenant, err := u.GetTenant(ctx, session.TenantID)
	if err != nil {
		return nil, err
	}
	svc, err := u.ticketFactory(tenant.Jira)
	if err != nil {
		return nil, err
	}
	proposals, err := u.repo.Proposal().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report := &model.ExecutionReport{SessionID: sessionID}
	for _, p := range proposals {
		result := u.executeProposal(ctx, svc, p)
		if err := u.repo.Proposal().SetResult(ctx, sessionID, p.ID, result); err != nil {
			logging.From(ctx).Error("failed to record execution result",
				"session_id", sessionID, "proposal_id", p.ID, "error", err)
		}
		report.Add(model.ReportEntry{
			ProposalID: p.ID,
			TicketKey:  p.TicketKey,
			Kind:       p.Kind,
			Status:     result.Status,
			Detail:     result.Detail,
		})
	}

	if err := u.repo.Session().Transition(ctx, sessionID, types.SessionStatusExecuting, types.SessionStatusCompleted); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("session executed",
		"session_id", sessionID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)

	if err := u.notifier.NotifyReport(ctx, tenant.NotificationTarget(), session, report); err != nil {
		logging.From(ctx).Error("failed to notify execution report",
			"session_id", sessionID, "error", err)
	}
	return report, nil
}

func (u *UseCases) executeProposal(ctx context.Context, svc interfaces.TicketService, p *model.Proposal) model.ExecutionResult {
	now := time.Now().UTC()

	if p.Decision != types.DecisionApproved {
		return model.ExecutionResult{
			Status:     model.ExecutionSkipped,
			Detail:     "rejected by operator",
			ExecutedAt: now,
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, u.executionTimeout)
	defer cancel()

	var (
		detail string
		err    error
	)
	switch p.Kind {
	case types.ChangeKindUpdateField:
		err = svc.UpdateField(opCtx, p.TicketKey, p.Field, p.Proposed.Scalar)
	case types.ChangeKindAddComment:
		err = svc.AddComment(opCtx, p.TicketKey, p.Proposed.Scalar)
	case types.ChangeKindTransition:
		err = svc.TransitionIssue(opCtx, p.TicketKey, p.Proposed.Scalar)
	case types.ChangeKindCreateIssue:
		var key string
		key, err = svc.CreateIssue(opCtx, p.Proposed.Issue)
		if err == nil {
			detail = "created " + key
		}
	case types.ChangeKindAssign:
		err = svc.AssignIssue(opCtx, p.TicketKey, p.Proposed.Scalar)
	case types.ChangeKindSetDueDate:
		err = svc.SetDueDate(opCtx, p.TicketKey, p.Proposed.Scalar)
	default:
		err = goerr.New("unsupported change kind", goerr.V("change_type", p.Kind))
	}

	if err != nil {
		logging.From(ctx).Warn("proposal execution failed",
			"session_id", p.SessionID,
			"proposal_id", p.ID,
			"change_type", p.Kind,
			"ticket_key", p.TicketKey,
			"error", err,
		)
		return model.ExecutionResult{
			Status:     model.ExecutionFailed,
			Detail:     err.Error(),
			ExecutedAt: now,
		}
	}
	return model.ExecutionResult{
		Status:     model.ExecutionSucceeded,
		Detail:     detail,
		ExecutedAt: now,
	}
}
