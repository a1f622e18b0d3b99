package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	slacksvc "github.com/pmsync-dev/pmsync/pkg/service/slack"
	"github.com/pmsync-dev/pmsync/pkg/repository"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
	"github.com/pmsync-dev/pmsync/pkg/utils/async"
	"github.com/pmsync-dev/pmsync/pkg/utils/errutil"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// HandleInteraction processes block actions from decision cards and
// document notifications. Slack requires a quick 200; the decision work
// runs in the background.
func (h *SlackHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload := r.FormValue("payload")
	if payload == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("missing interaction payload"), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse interaction payload"), http.StatusBadRequest)
		return
	}

	if callback.Type != slack.InteractionTypeBlockActions {
		logging.From(ctx).Warn("ignoring interaction", "type", callback.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)

	for _, action := range callback.ActionCallback.BlockActions {
		switch action.ActionID {
		case slacksvc.ActionIDApprove:
			h.dispatchDecision(ctx, action.Value, types.DecisionApproved, callback.User.ID)
		case slacksvc.ActionIDReject:
			h.dispatchDecision(ctx, action.Value, types.DecisionRejected, callback.User.ID)
		case slacksvc.ActionIDDocumentSync:
			h.dispatchDocumentSync(ctx, action.Value, callback.Channel.ID)
		default:
			logging.From(ctx).Warn("unknown block action", "action_id", action.ActionID)
		}
	}
}

func (h *SlackHandler) dispatchDecision(ctx context.Context, rawValue string, decision types.Decision, userID string) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		value, err := slacksvc.DecodeDecisionValue(rawValue)
		if err != nil {
			return err
		}

		err = h.uc.RecordDecision(ctx, value.SessionID, value.ProposalID, decision, userID)
		if err != nil {
			// Double clicks and stale cards are routine, not failures.
			if errors.Is(err, repository.ErrAlreadyDecided) || errors.Is(err, usecase.ErrSessionNotOpen) {
				logging.From(ctx).Info("ignoring duplicate decision",
					"session_id", value.SessionID,
					"proposal_id", value.ProposalID,
					"error", err.Error(),
				)
				return nil
			}
			return err
		}
		return nil
	})
}

// dispatchDocumentSync opens a document-only session from the "Analyze
// now" button on a new-document notification.
func (h *SlackHandler) dispatchDocumentSync(ctx context.Context, rawTenantID, channelID string) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		tenant, err := h.uc.ResolveEnabledTenant(ctx, types.TenantID(rawTenantID))
		if err != nil {
			return err
		}

		scope := types.ScopeID(channelID)
		if scope == "" {
			scope = types.ScopeID(tenant.NotificationTarget())
		}

		session, marks, err := h.uc.OpenSession(ctx, tenant, scope, types.SessionModeDocumentOnly)
		if err != nil {
			return err
		}
		return h.uc.RunAnalysis(ctx, tenant, session, marks, nil)
	})
}
