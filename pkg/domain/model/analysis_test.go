package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

func TestParseAnalysisOutput(t *testing.T) {
	t.Run("valid output with mixed proposals", func(t *testing.T) {
		raw := `{
			"analysis_summary": "Two changes discussed in the channel.",
			"proposals": [
				{
					"ticket_key": "PROJ-101",
					"ticket_summary": "Login page timeout",
					"change_type": "update_field",
					"field": "priority",
					"current_value": "Medium",
					"proposed_value": "High",
					"source_excerpt": "this is now blocking the release",
					"confidence": "high"
				},
				{
					"change_type": "create_issue",
					"proposed_value": {
						"project": "PROJ",
						"summary": "Add rate limiting to login endpoint",
						"issue_type": "Task",
						"labels": ["security"]
					},
					"source_excerpt": "we should rate-limit login attempts",
					"confidence": "medium"
				}
			],
			"no_action_items": [
				{"topic": "standup schedule", "reason": "not a ticket change"}
			]
		}`

		out, err := model.ParseAnalysisOutput(nil, raw)
		gt.NoError(t, err).Required()

		gt.Value(t, out.Summary).Equal("Two changes discussed in the channel.")
		gt.Array(t, out.Proposals).Length(2)
		gt.Array(t, out.NoActionItems).Length(1)
		gt.Value(t, out.Dropped).Equal(0)

		first := out.Proposals[0]
		gt.Value(t, first.Kind).Equal(types.ChangeKindUpdateField)
		gt.Value(t, first.TicketKey).Equal("PROJ-101")
		gt.Value(t, first.Field).Equal("priority")
		gt.Value(t, first.Proposed.Scalar).Equal("High")
		gt.Value(t, first.Confidence).Equal(types.ConfidenceHigh)
		gt.Value(t, first.Decision).Equal(types.DecisionPending)

		second := out.Proposals[1]
		gt.Value(t, second.Kind).Equal(types.ChangeKindCreateIssue)
		gt.Value(t, second.TicketKey).Equal("")
		gt.Value(t, second.Proposed.Issue).NotNil()
		gt.Value(t, second.Proposed.Issue.Project).Equal("PROJ")
		gt.Value(t, second.Proposed.Issue.Summary).Equal("Add rate limiting to login endpoint")
		gt.Array(t, second.Proposed.Issue.Labels).Length(1)
	})

	t.Run("markdown code fence is stripped", func(t *testing.T) {
		raw := "```json\n{\"analysis_summary\": \"fenced\", \"proposals\": []}\n```"

		out, err := model.ParseAnalysisOutput(nil, raw)
		gt.NoError(t, err).Required()
		gt.Value(t, out.Summary).Equal("fenced")
		gt.Array(t, out.Proposals).Length(0)
	})

	t.Run("bare code fence is stripped", func(t *testing.T) {
		raw := "```\n{\"analysis_summary\": \"bare\", \"proposals\": []}\n```"

		out, err := model.ParseAnalysisOutput(nil, raw)
		gt.NoError(t, err).Required()
		gt.Value(t, out.Summary).Equal("bare")
	})

	t.Run("invalid proposals are dropped, valid ones kept", func(t *testing.T) {
		raw := `{
			"analysis_summary": "partial",
			"proposals": [
				{
					"ticket_key": "PROJ-1",
					"change_type": "update_field",
					"field": "status",
					"proposed_value": "Done",
					"confidence": "high"
				},
				{
					"ticket_key": "PROJ-2",
					"change_type": "add_comment",
					"proposed_value": "Discussed in sync, deferring to next sprint.",
					"confidence": "low"
				},
				{
					"ticket_key": "PROJ-3",
					"change_type": "not_a_kind",
					"proposed_value": "x"
				}
			]
		}`

		out, err := model.ParseAnalysisOutput(nil, raw)
		gt.NoError(t, err).Required()

		// status is not updatable, not_a_kind is invalid. Only the comment
		// survives.
		gt.Array(t, out.Proposals).Length(1)
		gt.Value(t, out.Proposals[0].Kind).Equal(types.ChangeKindAddComment)
		gt.Value(t, out.Dropped).Equal(2)
	})

	t.Run("unknown confidence normalizes to medium", func(t *testing.T) {
		raw := `{
			"proposals": [
				{
					"ticket_key": "PROJ-9",
					"change_type": "add_comment",
					"proposed_value": "note",
					"confidence": "very high"
				}
			]
		}`

		out, err := model.ParseAnalysisOutput(nil, raw)
		gt.NoError(t, err).Required()
		gt.Array(t, out.Proposals).Length(1)
		gt.Value(t, out.Proposals[0].Confidence).Equal(types.ConfidenceMedium)
	})

	t.Run("non-JSON output is a hard failure", func(t *testing.T) {
		_, err := model.ParseAnalysisOutput(nil, "I could not find any changes to propose.")
		gt.Value(t, err).NotNil()
	})

	t.Run("trailing garbage after JSON is a hard failure", func(t *testing.T) {
		raw := `{"analysis_summary": "ok", "proposals": []}` + "\nLet me know if you need anything else!"

		_, err := model.ParseAnalysisOutput(nil, raw)
		gt.Value(t, err).NotNil()
	})

	t.Run("scalar proposed_value on create_issue is dropped", func(t *testing.T) {
		raw := `{
			"proposals": [
				{
					"change_type": "create_issue",
					"proposed_value": "make a new ticket",
					"confidence": "medium"
				}
			]
		}`

		out, err := model.ParseAnalysisOutput(nil, raw)
		gt.NoError(t, err).Required()
		gt.Array(t, out.Proposals).Length(0)
		gt.Value(t, out.Dropped).Equal(1)
	})

	t.Run("object proposed_value on scalar kind is dropped", func(t *testing.T) {
		raw := `{
			"proposals": [
				{
					"ticket_key": "PROJ-5",
					"change_type": "transition",
					"proposed_value": {"status": "Done"},
					"confidence": "medium"
				}
			]
		}`

		out, err := model.ParseAnalysisOutput(nil, raw)
		gt.NoError(t, err).Required()
		gt.Array(t, out.Proposals).Length(0)
		gt.Value(t, out.Dropped).Equal(1)
	})
}
