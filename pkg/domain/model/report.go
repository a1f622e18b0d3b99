package model

import "github.com/pmsync-dev/pmsync/pkg/domain/types"

// ReportEntry is the per-proposal line of an execution report.
type ReportEntry struct {
	ProposalID types.ProposalID `json:"proposal_id"`
	TicketKey  string           `json:"ticket_key,omitempty"`
	Kind       types.ChangeKind `json:"change_type"`
	Status     ExecutionStatus  `json:"status"`
	Detail     string           `json:"detail,omitempty"`
}

// ExecutionReport aggregates one execution pass over a session. Completion
// means "no more work to do", not "all succeeded".
type ExecutionReport struct {
	SessionID types.SessionID `json:"session_id"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Entries   []ReportEntry   `json:"entries"`
}

// Add records one entry and bumps the matching counter.
func (r *ExecutionReport) Add(entry ReportEntry) {
	r.Entries = append(r.Entries, entry)
	switch entry.Status {
	case ExecutionSucceeded:
		r.Succeeded++
	case ExecutionFailed:
		r.Failed++
	case ExecutionSkipped:
		r.Skipped++
	}
}
