package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

// IssueDraft is the structured proposed value of a create_issue proposal.
type IssueDraft struct {
	Project     string   `json:"project" firestore:"project"`
	Summary     string   `json:"summary" firestore:"summary"`
	IssueType   string   `json:"issue_type,omitempty" firestore:"issue_type"`
	Description string   `json:"description,omitempty" firestore:"description"`
	Priority    string   `json:"priority,omitempty" firestore:"priority"`
	Assignee    string   `json:"assignee,omitempty" firestore:"assignee"`
	Labels      []string `json:"labels,omitempty" firestore:"labels"`
	DueDate     string   `json:"due_date,omitempty" firestore:"due_date"`
}

// ProposedValue is a tagged union keyed by the proposal's change kind:
// create_issue carries Issue, every other kind carries Scalar.
type ProposedValue struct {
	Scalar string      `json:"scalar,omitempty" firestore:"scalar"`
	Issue  *IssueDraft `json:"issue,omitempty" firestore:"issue"`
}

// ExecutionStatus is the outcome of one dispatched (or skipped) proposal.
type ExecutionStatus string

const (
	ExecutionSucceeded ExecutionStatus = "succeeded"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionSkipped   ExecutionStatus = "skipped"
)

// ExecutionResult is set exactly once per proposal during the executing
// phase.
type ExecutionResult struct {
	Status     ExecutionStatus `json:"status" firestore:"status"`
	Detail     string          `json:"detail,omitempty" firestore:"detail"`
	ExecutedAt time.Time       `json:"executed_at" firestore:"executed_at"`
}

// Proposal is one candidate change to the external ticketing system. The
// proposal set of a session is fixed at bulk-create; only Decision and
// Result fields mutate afterwards.
type Proposal struct {
	ID        types.ProposalID `json:"proposal_id" firestore:"proposal_id"`
	SessionID types.SessionID  `json:"session_id" firestore:"session_id"`

	// TicketKey is empty for create_issue proposals.
	TicketKey     string `json:"ticket_key,omitempty" firestore:"ticket_key"`
	TicketSummary string `json:"ticket_summary,omitempty" firestore:"ticket_summary"`

	Kind         types.ChangeKind `json:"change_type" firestore:"change_type"`
	Field        string           `json:"field,omitempty" firestore:"field"`
	CurrentValue string           `json:"current_value,omitempty" firestore:"current_value"`
	Proposed     ProposedValue    `json:"proposed_value" firestore:"proposed_value"`

	Source        string           `json:"source,omitempty" firestore:"source"`
	SourceExcerpt string           `json:"source_excerpt,omitempty" firestore:"source_excerpt"`
	Confidence    types.Confidence `json:"confidence" firestore:"confidence"`

	Decision  types.Decision `json:"decision" firestore:"decision"`
	DecidedBy string         `json:"decided_by,omitempty" firestore:"decided_by"`
	DecidedAt *time.Time     `json:"decided_at,omitempty" firestore:"decided_at"`

	Result *ExecutionResult `json:"result,omitempty" firestore:"result"`

	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}

// Validate checks the per-kind shape of the proposal. Called before
// persistence; proposals failing validation are dropped from the batch.
func (p *Proposal) Validate() error {
	if !p.Kind.IsValid() {
		return goerr.New("invalid change kind", goerr.V("change_type", p.Kind))
	}

	switch p.Kind {
	case types.ChangeKindCreateIssue:
		if p.TicketKey != "" {
			return goerr.New("create_issue must not reference an existing ticket",
				goerr.V("ticket_key", p.TicketKey))
		}
		if p.Proposed.Issue == nil {
			return goerr.New("create_issue requires a structured proposed value")
		}
		if p.Proposed.Issue.Project == "" || p.Proposed.Issue.Summary == "" {
			return goerr.New("create_issue requires project and summary",
				goerr.V("project", p.Proposed.Issue.Project))
		}

	case types.ChangeKindUpdateField:
		if p.TicketKey == "" {
			return goerr.New("update_field requires a target ticket")
		}
		if !types.IsUpdatableField(p.Field) {
			return goerr.New("update_field targets an unsupported field",
				goerr.V("field", p.Field))
		}
		if p.Proposed.Scalar == "" {
			return goerr.New("update_field requires a proposed value",
				goerr.V("ticket_key", p.TicketKey))
		}

	default:
		if p.TicketKey == "" {
			return goerr.New("proposal requires a target ticket",
				goerr.V("change_type", p.Kind))
		}
		if p.Proposed.Scalar == "" {
			return goerr.New("proposal requires a proposed value",
				goerr.V("change_type", p.Kind), goerr.V("ticket_key", p.TicketKey))
		}
	}

	return nil
}
