package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

func TestProposalValidate(t *testing.T) {
	t.Run("update_field", func(t *testing.T) {
		p := &model.Proposal{
			TicketKey: "PROJ-1",
			Kind:      types.ChangeKindUpdateField,
			Field:     "summary",
			Proposed:  model.ProposedValue{Scalar: "New summary"},
		}
		gt.NoError(t, p.Validate())

		p.Field = "status"
		gt.Value(t, p.Validate()).NotNil()

		p.Field = "summary"
		p.TicketKey = ""
		gt.Value(t, p.Validate()).NotNil()

		p.TicketKey = "PROJ-1"
		p.Proposed.Scalar = ""
		gt.Value(t, p.Validate()).NotNil()
	})

	t.Run("create_issue", func(t *testing.T) {
		p := &model.Proposal{
			Kind: types.ChangeKindCreateIssue,
			Proposed: model.ProposedValue{
				Issue: &model.IssueDraft{Project: "PROJ", Summary: "New task"},
			},
		}
		gt.NoError(t, p.Validate())

		p.TicketKey = "PROJ-1"
		gt.Value(t, p.Validate()).NotNil()

		p.TicketKey = ""
		p.Proposed.Issue = nil
		gt.Value(t, p.Validate()).NotNil()

		p.Proposed.Issue = &model.IssueDraft{Project: "", Summary: "New task"}
		gt.Value(t, p.Validate()).NotNil()

		p.Proposed.Issue = &model.IssueDraft{Project: "PROJ", Summary: ""}
		gt.Value(t, p.Validate()).NotNil()
	})

	t.Run("scalar kinds require ticket and value", func(t *testing.T) {
		for _, kind := range []types.ChangeKind{
			types.ChangeKindAddComment,
			types.ChangeKindTransition,
			types.ChangeKindAssign,
			types.ChangeKindSetDueDate,
		} {
			p := &model.Proposal{
				TicketKey: "PROJ-2",
				Kind:      kind,
				Proposed:  model.ProposedValue{Scalar: "value"},
			}
			gt.NoError(t, p.Validate())

			p.TicketKey = ""
			gt.Value(t, p.Validate()).NotNil()

			p.TicketKey = "PROJ-2"
			p.Proposed.Scalar = ""
			gt.Value(t, p.Validate()).NotNil()
		}
	})

	t.Run("invalid kind", func(t *testing.T) {
		p := &model.Proposal{Kind: "remove_issue"}
		gt.Value(t, p.Validate()).NotNil()
	})
}

func TestExecutionReportAdd(t *testing.T) {
	report := &model.ExecutionReport{SessionID: "s-1"}

	report.Add(model.ReportEntry{ProposalID: "p-001", Status: model.ExecutionSucceeded})
	report.Add(model.ReportEntry{ProposalID: "p-002", Status: model.ExecutionFailed, Detail: "403"})
	report.Add(model.ReportEntry{ProposalID: "p-003", Status: model.ExecutionSkipped})
	report.Add(model.ReportEntry{ProposalID: "p-004", Status: model.ExecutionSucceeded})

	gt.Value(t, report.Succeeded).Equal(2)
	gt.Value(t, report.Failed).Equal(1)
	gt.Value(t, report.Skipped).Equal(1)
	gt.Array(t, report.Entries).Length(4)
}
