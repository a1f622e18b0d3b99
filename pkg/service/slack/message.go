package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Message is the subset of a Slack message the workflow cares about.
type Message struct {
	Channel  string
	TS       string
	ThreadTS string
	UserID   string
	Text     string
}

// FetchMessage loads one message by channel and timestamp. Reaction
// events carry only the coordinates, not the text. Thread replies are
// not returned by conversations.history, so missing messages fall back
// to conversations.replies.
func (s *Service) FetchMessage(ctx context.Context, channelID, ts string) (*Message, error) {
	history, err := s.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    ts,
		Oldest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch message",
			goerr.V("channel", channelID), goerr.V("ts", ts))
	}

	for _, msg := range history.Messages {
		if msg.Timestamp == ts {
			return &Message{
				Channel:  channelID,
				TS:       msg.Timestamp,
				ThreadTS: msg.ThreadTimestamp,
				UserID:   msg.User,
				Text:     msg.Text,
			}, nil
		}
	}

	replies, _, _, err := s.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: ts,
		Limit:     1,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch thread message",
			goerr.V("channel", channelID), goerr.V("ts", ts))
	}
	for _, msg := range replies {
		if msg.Timestamp == ts {
			return &Message{
				Channel:  channelID,
				TS:       msg.Timestamp,
				ThreadTS: msg.ThreadTimestamp,
				UserID:   msg.User,
				Text:     msg.Text,
			}, nil
		}
	}

	return nil, goerr.New("message not found", goerr.V("channel", channelID), goerr.V("ts", ts))
}
