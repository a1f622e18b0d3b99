// Package slack renders workflow events into the approval channel and
// defines the interaction payload shared with the HTTP controller.
package slack

import (
	"context"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

type Service struct {
	api *slack.Client

	mu sync.Mutex
	// dmCache maps user IDs to opened DM channel IDs.
	dmCache map[string]string
}

func New(token string) (*Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	return &Service{
		api:     slack.New(token),
		dmCache: make(map[string]string),
	}, nil
}

// resolveTarget maps a notification target to a postable channel ID. User
// IDs are resolved to DM channels; anything else is used as-is.
func (s *Service) resolveTarget(ctx context.Context, target string) (string, error) {
	if !strings.HasPrefix(target, "U") && !strings.HasPrefix(target, "W") {
		return target, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if channelID, ok := s.dmCache[target]; ok {
		return channelID, nil
	}

	channel, _, _, err := s.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{target},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to open DM", goerr.V("user_id", target))
	}

	s.dmCache[target] = channel.ID
	return channel.ID, nil
}

func (s *Service) post(ctx context.Context, target string, opts ...slack.MsgOption) error {
	channelID, err := s.resolveTarget(ctx, target)
	if err != nil {
		return err
	}

	if _, _, err := s.api.PostMessageContext(ctx, channelID, opts...); err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("target", target))
	}
	return nil
}
