package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/slack-go/slack"
)

var _ interfaces.Notifier = &Service{}

// NotifyProposals posts the session summary and one decision card per
// proposal, each with approve and reject buttons.
func (s *Service) NotifyProposals(ctx context.Context, target string, session *model.Session, summary string, proposals []*model.Proposal) error {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType,
			fmt.Sprintf("Proposed changes (%d)", len(proposals)), false, false)),
	}
	if summary != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, summary, false, false), nil, nil))
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Session `%s` is awaiting %d decisions. Nothing is applied until every proposal is decided.", session.ID, len(proposals)),
			false, false)))

	for _, p := range proposals {
		blocks = append(blocks, proposalBlocks(p)...)
	}

	return s.post(ctx, target, slack.MsgOptionBlocks(blocks...))
}

func proposalBlocks(p *model.Proposal) []slack.Block {
	value := DecisionValue{SessionID: p.SessionID, ProposalID: p.ID}.Encode()

	approve := slack.NewButtonBlockElement(ActionIDApprove, value,
		slack.NewTextBlockObject(slack.PlainTextType, "Approve", false, false))
	approve.Style = slack.StylePrimary
	reject := slack.NewButtonBlockElement(ActionIDReject, value,
		slack.NewTextBlockObject(slack.PlainTextType, "Reject", false, false))
	reject.Style = slack.StyleDanger

	return []slack.Block{
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, proposalText(p), false, false), nil, nil),
		slack.NewActionBlock("decision_"+p.ID.String(), approve, reject),
	}
}

func proposalText(p *model.Proposal) string {
	var b strings.Builder

	switch p.Kind {
	case types.ChangeKindCreateIssue:
		fmt.Fprintf(&b, "*%s · Create issue*\n", p.ID)
		if p.Proposed.Issue != nil {
			fmt.Fprintf(&b, "*%s*: %s\n", p.Proposed.Issue.Project, p.Proposed.Issue.Summary)
			if p.Proposed.Issue.Description != "" {
				fmt.Fprintf(&b, "%s\n", p.Proposed.Issue.Description)
			}
		}
	case types.ChangeKindUpdateField:
		fmt.Fprintf(&b, "*%s · Update %s on %s*\n", p.ID, p.Field, p.TicketKey)
		if p.CurrentValue != "" {
			fmt.Fprintf(&b, "`%s` → `%s`\n", p.CurrentValue, p.Proposed.Scalar)
		} else {
			fmt.Fprintf(&b, "→ `%s`\n", p.Proposed.Scalar)
		}
	default:
		fmt.Fprintf(&b, "*%s · %s on %s*\n", p.ID, p.Kind, p.TicketKey)
		fmt.Fprintf(&b, "→ %s\n", p.Proposed.Scalar)
	}

	if p.SourceExcerpt != "" {
		fmt.Fprintf(&b, "> %s\n", p.SourceExcerpt)
	}
	fmt.Fprintf(&b, "_confidence: %s_", p.Confidence)
	return b.String()
}

// NotifyReport posts the execution summary after a session completes.
func (s *Service) NotifyReport(ctx context.Context, target string, session *model.Session, report *model.ExecutionReport) error {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Execution report", false, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf(":white_check_mark: %d succeeded  :x: %d failed  :fast_forward: %d skipped",
				report.Succeeded, report.Failed, report.Skipped),
			false, false), nil, nil),
	}

	var lines []string
	for _, e := range report.Entries {
		line := fmt.Sprintf("%s %s `%s`", statusEmoji(e.Status), e.Kind, e.ProposalID)
		if e.TicketKey != "" {
			line += " on " + e.TicketKey
		}
		if e.Detail != "" {
			line += ": " + e.Detail
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, strings.Join(lines, "\n"), false, false), nil, nil))
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Session `%s` completed.", session.ID), false, false)))

	return s.post(ctx, target, slack.MsgOptionBlocks(blocks...))
}

func statusEmoji(status model.ExecutionStatus) string {
	switch status {
	case model.ExecutionSucceeded:
		return ":white_check_mark:"
	case model.ExecutionFailed:
		return ":x:"
	default:
		return ":fast_forward:"
	}
}

// NotifyNewDocument tells the tenant a new document version was detected
// and offers to analyze it.
func (s *Service) NotifyNewDocument(ctx context.Context, target string, tenant *model.Tenant, doc *model.Document) error {
	analyze := slack.NewButtonBlockElement(ActionIDDocumentSync, tenant.ID.String(),
		slack.NewTextBlockObject(slack.PlainTextType, "Analyze now", false, false))
	analyze.Style = slack.StylePrimary

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf(":page_facing_up: *%s* was updated (%s).", doc.Name,
				doc.ModifiedAt.Format("2006-01-02 15:04 MST")),
			false, false), nil, nil),
		slack.NewActionBlock("document_"+doc.ID, analyze),
	}

	return s.post(ctx, target, slack.MsgOptionBlocks(blocks...))
}

// NotifyText posts a plain status message.
func (s *Service) NotifyText(ctx context.Context, target, text string) error {
	return s.post(ctx, target, slack.MsgOptionText(text, false))
}
