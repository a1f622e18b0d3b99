package model

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

// MessageInput is one marked message handed to the analysis engine.
type MessageInput struct {
	Text string `json:"text"`
}

// AnalysisRequest is the input batch for one analysis call.
type AnalysisRequest struct {
	TenantID     types.TenantID    `json:"tenant_id"`
	Mode         types.SessionMode `json:"mode"`
	ProjectKey   string            `json:"project_key"`
	Messages     []MessageInput    `json:"messages,omitempty"`
	DocumentText string            `json:"document_text,omitempty"`
	// TicketState is the current-state snapshot of the project's tickets,
	// passed through opaquely so the engine can diff against it.
	TicketState json.RawMessage `json:"ticket_state,omitempty"`
}

// NoActionItem is a topic the engine examined and decided not to act on.
type NoActionItem struct {
	Topic  string `json:"topic"`
	Reason string `json:"reason"`
}

// AnalysisOutput is the materialized result of one analysis call.
// Proposals have passed per-kind validation; Dropped counts the ones that
// did not.
type AnalysisOutput struct {
	Summary       string
	Proposals     []*Proposal
	NoActionItems []NoActionItem
	Dropped       int
}

// proposalWire mirrors the engine's JSON proposal schema. proposed_value
// may be a scalar or, for create_issue, a structured object.
type proposalWire struct {
	TicketKey     string          `json:"ticket_key"`
	TicketSummary string          `json:"ticket_summary"`
	ChangeType    string          `json:"change_type"`
	Field         string          `json:"field"`
	CurrentValue  string          `json:"current_value"`
	ProposedValue json.RawMessage `json:"proposed_value"`
	Source        string          `json:"source"`
	SourceExcerpt string          `json:"source_excerpt"`
	Confidence    string          `json:"confidence"`
}

type outputWire struct {
	AnalysisSummary string         `json:"analysis_summary"`
	Proposals       []proposalWire `json:"proposals"`
	NoActionItems   []NoActionItem `json:"no_action_items"`
}

// ParseAnalysisOutput decodes the engine's raw text into an
// AnalysisOutput. Markdown code fences are tolerated; anything else that
// is not strictly valid JSON (comments, trailing commas, single quotes,
// trailing garbage) is a hard parse failure. Individual proposals that
// fail schema validation are dropped with a diagnostic and do not abort
// the batch.
func ParseAnalysisOutput(logger *slog.Logger, raw string) (*AnalysisOutput, error) {
	content := stripCodeFence(raw)

	dec := json.NewDecoder(strings.NewReader(content))
	var wire outputWire
	if err := dec.Decode(&wire); err != nil {
		return nil, goerr.Wrap(err, "analysis output is not valid JSON")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, goerr.New("analysis output has trailing content after JSON document")
	}

	out := &AnalysisOutput{
		Summary:       wire.AnalysisSummary,
		NoActionItems: wire.NoActionItems,
	}

	for i, w := range wire.Proposals {
		p, err := w.toProposal()
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			out.Dropped++
			if logger != nil {
				logger.Warn("dropping invalid proposal from analysis output",
					"index", i,
					"ticket_key", w.TicketKey,
					"change_type", w.ChangeType,
					"error", err.Error(),
				)
			}
			continue
		}
		out.Proposals = append(out.Proposals, p)
	}

	return out, nil
}

func (w proposalWire) toProposal() (*Proposal, error) {
	kind, err := types.ParseChangeKind(w.ChangeType)
	if err != nil {
		return nil, goerr.Wrap(err, "proposal missing or invalid change_type")
	}

	p := &Proposal{
		TicketKey:     w.TicketKey,
		TicketSummary: w.TicketSummary,
		Kind:          kind,
		Field:         w.Field,
		CurrentValue:  w.CurrentValue,
		Source:        w.Source,
		SourceExcerpt: w.SourceExcerpt,
		Confidence:    types.Confidence(w.Confidence).Normalize(),
		Decision:      types.DecisionPending,
	}

	if len(w.ProposedValue) > 0 {
		if kind == types.ChangeKindCreateIssue {
			var draft IssueDraft
			if err := json.Unmarshal(w.ProposedValue, &draft); err != nil {
				return nil, goerr.Wrap(err, "create_issue proposed_value is not a structured object")
			}
			p.Proposed.Issue = &draft
		} else {
			var scalar string
			if err := json.Unmarshal(w.ProposedValue, &scalar); err != nil {
				return nil, goerr.Wrap(err, "proposed_value is not a scalar",
					goerr.V("change_type", kind))
			}
			p.Proposed.Scalar = scalar
		}
	}

	return p, nil
}

// stripCodeFence removes a surrounding ```json / ``` fence if present.
// LLM backends wrap JSON this way often enough that the original treated
// it as valid output.
func stripCodeFence(s string) string {
	content := strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(content, "```json"); ok {
		content = after
	} else if after, ok := strings.CutPrefix(content, "```"); ok {
		content = after
	}
	if before, ok := strings.CutSuffix(strings.TrimSpace(content), "```"); ok {
		content = before
	}
	return strings.TrimSpace(content)
}
