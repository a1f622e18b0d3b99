package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
)

// OpenSession opens an analysis session for the scope and atomically
// claims the unprocessed marks. Opens on the same scope are serialized so
// concurrent triggers consume disjoint mark sets. Interactive sessions
// with nothing to analyze fail with ErrNoMarkedMessages before any state
// is written.
func (u *UseCases) OpenSession(ctx context.Context, tenant *model.Tenant, scope types.ScopeID, mode types.SessionMode) (*model.Session, []*model.Mark, error) {
	if err := scope.Validate(); err != nil {
		return nil, nil, err
	}
	if !mode.IsValid() {
		return nil, nil, goerr.New("invalid session mode", goerr.V("mode", mode))
	}

	unlock := u.scopeLocks.Lock(scope.String())
	defer unlock()

	session := model.NewSession(scope, tenant.ID, mode)

	var marks []*model.Mark
	if mode == types.SessionModeInteractive {
		claimed, err := u.repo.Mark().Claim(ctx, scope, session.ID)
		if err != nil {
			return nil, nil, err
		}
		if len(claimed) == 0 {
			return nil, nil, goerr.Wrap(ErrNoMarkedMessages, "nothing to analyze", goerr.V("scope", scope))
		}
		marks = claimed
		session.MarkIDs = make([]types.MarkID, len(claimed))
		for i, m := range claimed {
			session.MarkIDs[i] = m.ID
		}
	}

	if err := u.repo.Session().Create(ctx, session); err != nil {
		return nil, nil, err
	}

	logging.From(ctx).Info("session opened",
		"session_id", session.ID,
		"scope", scope,
		"tenant_id", tenant.ID,
		"mode", mode,
		"marks", len(marks),
	)
	return session, marks, nil
}

// RunAnalysis drives a freshly opened session through analysis: gather
// inputs, call the engine, persist the proposal batch, and notify. A
// failed analysis moves the session to failed; its claimed marks stay
// consumed.
func (u *UseCases) RunAnalysis(ctx context.Context, tenant *model.Tenant, session *model.Session, marks []*model.Mark, doc *model.Document) error {
	if err := u.repo.Session().Transition(ctx, session.ID, types.SessionStatusCollecting, types.SessionStatusAnalyzing); err != nil {
		return err
	}

	out, err := u.analyze(ctx, tenant, session, marks, doc)
	if err != nil {
		return u.failSession(ctx, tenant, session, err)
	}

	if len(out.Proposals) == 0 {
		if err := u.repo.Session().SetOutcome(ctx, session.ID, out.Summary, "", 0); err != nil {
			return err
		}
		if err := u.repo.Session().Transition(ctx, session.ID, types.SessionStatusAnalyzing, types.SessionStatusCompleted); err != nil {
			return err
		}
		u.notifyText(ctx, tenant.NotificationTarget(), noActionMessage(out))
		return nil
	}

	stored, err := u.repo.Proposal().BulkCreate(ctx, session.ID, out.Proposals)
	if err != nil {
		return u.failSession(ctx, tenant, session, err)
	}
	if err := u.repo.Session().SetOutcome(ctx, session.ID, out.Summary, "", len(stored)); err != nil {
		return err
	}
	if err := u.repo.Session().Transition(ctx, session.ID, types.SessionStatusAnalyzing, types.SessionStatusAwaitingDecisions); err != nil {
		return err
	}

	session.Summary = out.Summary
	session.TotalProposals = len(stored)
	session.Status = types.SessionStatusAwaitingDecisions

	logging.From(ctx).Info("analysis complete",
		"session_id", session.ID,
		"proposals", len(stored),
		"dropped", out.Dropped,
	)

	if err := u.notifier.NotifyProposals(ctx, tenant.NotificationTarget(), session, out.Summary, stored); err != nil {
		logging.From(ctx).Error("failed to notify proposals", "session_id", session.ID, "error", err)
	}
	return nil
}

func (u *UseCases) analyze(ctx context.Context, tenant *model.Tenant, session *model.Session, marks []*model.Mark, doc *model.Document) (*model.AnalysisOutput, error) {
	req := &model.AnalysisRequest{
		TenantID:   tenant.ID,
		Mode:       session.Mode,
		ProjectKey: tenant.Jira.ProjectKey,
	}

	for _, m := range marks {
		req.Messages = append(req.Messages, model.MessageInput{Text: m.Text})
	}

	if session.Mode == types.SessionModeDocumentOnly {
		if doc == nil {
			latest, err := u.docSource.LatestDocument(ctx, tenant.EffectiveDriveConfig(u.driveDefaults))
			if err != nil {
				return nil, goerr.Wrap(err, "failed to load document for analysis",
					goerr.V("tenant_id", tenant.ID))
			}
			doc = latest
		}
		req.DocumentText = doc.Text
	}

	// Ticket state is advisory context; without it the engine still works,
	// it just cannot diff against current values.
	svc, err := u.ticketFactory(tenant.Jira)
	if err != nil {
		return nil, err
	}
	state, err := svc.ProjectState(ctx, tenant.Jira.ProjectKey)
	if err != nil {
		logging.From(ctx).Warn("failed to fetch ticket state, analyzing without it",
			"tenant_id", tenant.ID, "error", err)
	} else {
		req.TicketState = state
	}

	analysisCtx, cancel := context.WithTimeout(ctx, u.analysisTimeout)
	defer cancel()

	out, err := u.engine.Analyze(analysisCtx, req)
	if err != nil {
		return nil, goerr.Wrap(ErrAnalysisFailed, "analysis engine error",
			goerr.V("session_id", session.ID), goerr.V("cause", err.Error()))
	}
	return out, nil
}

// failSession records the failure and moves the session to failed. The
// marks consumed at open stay consumed; the operator re-marks what still
// matters.
func (u *UseCases) failSession(ctx context.Context, tenant *model.Tenant, session *model.Session, cause error) error {
	logging.From(ctx).Error("session failed", "session_id", session.ID, "error", cause)

	if err := u.repo.Session().SetOutcome(ctx, session.ID, "", cause.Error(), 0); err != nil {
		logging.From(ctx).Error("failed to record session outcome", "session_id", session.ID, "error", err)
	}
	if err := u.repo.Session().Transition(ctx, session.ID, types.SessionStatusAnalyzing, types.SessionStatusFailed); err != nil {
		logging.From(ctx).Error("failed to mark session failed", "session_id", session.ID, "error", err)
	}

	u.notifyText(ctx, tenant.NotificationTarget(),
		fmt.Sprintf(":warning: Analysis failed: %s", cause.Error()))
	return cause
}

func (u *UseCases) notifyText(ctx context.Context, target, text string) {
	if err := u.notifier.NotifyText(ctx, target, text); err != nil {
		logging.From(ctx).Error("failed to send notification", "target", target, "error", err)
	}
}

func noActionMessage(out *model.AnalysisOutput) string {
	msg := "No actionable changes found."
	if out.Summary != "" {
		msg += "\n" + out.Summary
	}
	for _, item := range out.NoActionItems {
		msg += fmt.Sprintf("\n• %s: %s", item.Topic, item.Reason)
	}
	return msg
}
