// Package analysis implements the LLM-backed analysis engine. The model
// is forced into a JSON response schema and its output is validated
// per-proposal before anything reaches the repository.
package analysis

import (
	"bytes"
	"context"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
)

//go:embed prompt/analyze.md
var analyzePromptTmpl string

var analyzePrompt = template.Must(template.New("analyze").Parse(analyzePromptTmpl))

type Engine struct {
	llmClient gollem.LLMClient
}

var _ interfaces.AnalysisEngine = &Engine{}

func New(llmClient gollem.LLMClient) *Engine {
	return &Engine{llmClient: llmClient}
}

type promptData struct {
	ProjectKey   string
	Messages     []model.MessageInput
	DocumentText string
	TicketState  string
}

func (e *Engine) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisOutput, error) {
	var buf bytes.Buffer
	data := promptData{
		ProjectKey:   req.ProjectKey,
		Messages:     req.Messages,
		DocumentText: req.DocumentText,
		TicketState:  string(req.TicketState),
	}
	if err := analyzePrompt.Execute(&buf, data); err != nil {
		return nil, goerr.Wrap(err, "failed to build analysis prompt")
	}

	session, err := e.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(outputSchema()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create analysis session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "analysis generation failed")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("analysis returned no content")
	}

	out, err := model.ParseAnalysisOutput(logging.From(ctx), resp.Texts[0])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse analysis output",
			goerr.V("response", resp.Texts[0]))
	}
	return out, nil
}

func outputSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "AnalysisOutput",
		Description: "Change proposals derived from project signals",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"analysis_summary": {
				Type:        gollem.TypeString,
				Description: "Short plain-text summary of what the input contained and what is proposed.",
				Required:    true,
			},
			"proposals": {
				Type:        gollem.TypeArray,
				Description: "Concrete proposed changes. Empty when nothing is actionable.",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"ticket_key": {
							Type:        gollem.TypeString,
							Description: "Key of the existing ticket this change targets. Empty for create_issue.",
						},
						"ticket_summary": {
							Type:        gollem.TypeString,
							Description: "Summary of the target ticket, for display.",
						},
						"change_type": {
							Type:        gollem.TypeString,
							Description: "One of update_field, add_comment, transition, create_issue, assign, set_due_date.",
							Required:    true,
						},
						"field": {
							Type:        gollem.TypeString,
							Description: "Target field for update_field: summary, description, priority, labels, or components.",
						},
						"current_value": {
							Type:        gollem.TypeString,
							Description: "Current value of the field being changed, if known.",
						},
						"proposed_value": {
							Description: "String for most change types; an issue object (project, summary, ...) for create_issue.",
							Required:    true,
						},
						"source_excerpt": {
							Type:        gollem.TypeString,
							Description: "Exact quote from the input justifying the change.",
						},
						"confidence": {
							Type:        gollem.TypeString,
							Description: "low, medium, or high.",
						},
					},
				},
			},
			"no_action_items": {
				Type:        gollem.TypeArray,
				Description: "Topics examined but deliberately left alone.",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"topic":  {Type: gollem.TypeString, Required: true},
						"reason": {Type: gollem.TypeString, Required: true},
					},
				},
			},
		},
	}
}
