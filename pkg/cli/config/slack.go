package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	slacksvc "github.com/pmsync-dev/pmsync/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken      string
	signingSecret string
	markEmoji     string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("PMSYNC_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("PMSYNC_SLACK_SIGNING_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-mark-emoji",
			Usage:       "Reaction emoji that marks a message for analysis",
			Category:    "Slack",
			Value:       "bookmark",
			Destination: &x.markEmoji,
			Sources:     cli.EnvVars("PMSYNC_SLACK_MARK_EMOJI"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
		slog.String("mark-emoji", x.markEmoji),
	)
}

// Configure builds the Slack service from the bot token.
func (x *Slack) Configure() (*slacksvc.Service, error) {
	if x.botToken == "" {
		return nil, goerr.New("slack-bot-token is required")
	}
	return slacksvc.New(x.botToken)
}

func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

func (x *Slack) MarkEmoji() string {
	return x.markEmoji
}

// IsWebhookConfigured checks if signature verification can be enabled.
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}
