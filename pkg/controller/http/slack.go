package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	slacksvc "github.com/pmsync-dev/pmsync/pkg/service/slack"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
	"github.com/pmsync-dev/pmsync/pkg/utils/async"
	"github.com/pmsync-dev/pmsync/pkg/utils/errutil"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
	"github.com/slack-go/slack/slackevents"
)

// DefaultMarkEmoji is the reaction that flags a message for analysis.
const DefaultMarkEmoji = "bookmark"

// MessageFetcher loads message content for reaction events, which carry
// only channel and timestamp.
type MessageFetcher interface {
	FetchMessage(ctx context.Context, channelID, ts string) (*slacksvc.Message, error)
}

// SlackHandler handles the Slack Events API, slash commands, and block
// action interactions.
type SlackHandler struct {
	uc        *usecase.UseCases
	fetcher   MessageFetcher
	markEmoji string
}

type SlackHandlerOption func(*SlackHandler)

// WithMarkEmoji overrides the reaction emoji that marks messages.
func WithMarkEmoji(emoji string) SlackHandlerOption {
	return func(h *SlackHandler) {
		if emoji != "" {
			h.markEmoji = emoji
		}
	}
}

func NewSlackHandler(uc *usecase.UseCases, fetcher MessageFetcher, opts ...SlackHandlerOption) *SlackHandler {
	h := &SlackHandler{
		uc:        uc,
		fetcher:   fetcher,
		markEmoji: DefaultMarkEmoji,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleEvent processes Events API callbacks. Slack expects a 200 within
// 3 seconds, so event work is dispatched to the background.
func (h *SlackHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge.Challenge)); err != nil {
			logging.From(ctx).Error("failed to write challenge response", "error", err)
		}

	case slackevents.CallbackEvent:
		w.WriteHeader(http.StatusOK)

		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.handleCallbackEvent(ctx, &event)
		})

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", event.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *SlackHandler) handleCallbackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.ReactionAddedEvent:
		if ev.Reaction != h.markEmoji {
			return nil
		}
		return h.markFromReaction(ctx, ev)

	case *slackevents.ReactionRemovedEvent:
		if ev.Reaction != h.markEmoji {
			return nil
		}
		_, err := h.uc.UnmarkMessage(ctx, types.ScopeID(ev.Item.Channel), ev.Item.Timestamp)
		return err

	default:
		logging.From(ctx).Debug("ignoring slack event", "type", event.InnerEvent.Type)
		return nil
	}
}

func (h *SlackHandler) markFromReaction(ctx context.Context, ev *slackevents.ReactionAddedEvent) error {
	msg, err := h.fetcher.FetchMessage(ctx, ev.Item.Channel, ev.Item.Timestamp)
	if err != nil {
		return goerr.Wrap(err, "failed to load message for mark")
	}

	mark := &model.Mark{
		Scope:     types.ScopeID(ev.Item.Channel),
		MessageTS: ev.Item.Timestamp,
		ThreadTS:  msg.ThreadTS,
		Text:      msg.Text,
		MarkedBy:  ev.User,
	}
	_, err = h.uc.MarkMessage(ctx, mark)
	return err
}
