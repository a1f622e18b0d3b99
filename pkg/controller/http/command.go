package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
	"github.com/pmsync-dev/pmsync/pkg/utils/async"
	"github.com/pmsync-dev/pmsync/pkg/utils/errutil"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// HandleCommand processes the slash command. The command acks with an
// ephemeral message and runs the actual work in the background.
//
// Subcommands:
//
//	(none)  open an interactive session over the marked messages
//	doc     open a document-only session
//	status  show how many messages are marked in this channel
func (h *SlackHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	tenantID := types.TenantID(cmd.UserID)
	scope := types.ScopeID(cmd.ChannelID)
	subcommand := strings.ToLower(strings.TrimSpace(cmd.Text))

	switch subcommand {
	case "status":
		marks, err := h.uc.ListUnprocessedMarks(ctx, scope)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}
		respondEphemeral(ctx, w, fmt.Sprintf("%d message(s) marked for the next analysis.", len(marks)))

	case "", "analyze":
		h.startSession(ctx, w, tenantID, scope, types.SessionModeInteractive)

	case "doc", "document":
		h.startSession(ctx, w, tenantID, scope, types.SessionModeDocumentOnly)

	default:
		respondEphemeral(ctx, w, fmt.Sprintf("Unknown subcommand %q. Use `status`, `doc`, or no argument to analyze.", subcommand))
	}
}

func (h *SlackHandler) startSession(ctx context.Context, w http.ResponseWriter, tenantID types.TenantID, scope types.ScopeID, mode types.SessionMode) {
	tenant, err := h.uc.ResolveEnabledTenant(ctx, tenantID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnknownTenant):
			respondEphemeral(ctx, w, "You are not onboarded yet. Ask an admin to register your configuration.")
		case errors.Is(err, usecase.ErrTenantDisabled):
			respondEphemeral(ctx, w, "Your configuration is disabled.")
		default:
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		}
		return
	}

	// Document-only tenants get document mode even from the bare command.
	if tenant.Flow.DocumentOnly {
		mode = types.SessionModeDocumentOnly
	}

	// Pre-check so the user gets an ephemeral error instead of silence.
	// The open itself re-checks under the scope lock.
	if mode == types.SessionModeInteractive {
		marks, err := h.uc.ListUnprocessedMarks(ctx, scope)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}
		if len(marks) == 0 {
			respondEphemeral(ctx, w, "No marked messages in this channel. React to messages first.")
			return
		}
	}

	respondEphemeral(ctx, w, "Starting analysis...")

	async.Dispatch(ctx, func(ctx context.Context) error {
		session, marks, err := h.uc.OpenSession(ctx, tenant, scope, mode)
		if err != nil {
			if errors.Is(err, usecase.ErrNoMarkedMessages) {
				// A concurrent open consumed the marks between the check
				// and the claim.
				logging.From(ctx).Info("session open rejected, no marks left", "scope", scope)
				return nil
			}
			return err
		}
		return h.uc.RunAnalysis(ctx, tenant, session, marks, nil)
	})
}

// respondEphemeral writes the in-channel ephemeral command response.
func respondEphemeral(ctx context.Context, w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := fmt.Sprintf(`{"response_type": "ephemeral", "text": %q}`, text)
	if _, err := w.Write([]byte(resp)); err != nil {
		logging.From(ctx).Error("failed to write command response", "error", err)
	}
}
