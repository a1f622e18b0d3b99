// Package jira implements the ticketing collaborator against the Jira
// Cloud REST API v3. A Service is built per tenant from its own
// credentials; nothing here is shared across tenants.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
)

type Service struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
}

var _ interfaces.TicketService = &Service{}

func New(cfg model.JiraConfig) (*Service, error) {
	if cfg.BaseURL == "" {
		return nil, goerr.New("jira base_url is required")
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, goerr.New("jira email and api_token are required")
	}

	return &Service{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		email:    cfg.Email,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Factory adapts New to the TicketServiceFactory signature.
func Factory(cfg model.JiraConfig) (interfaces.TicketService, error) {
	return New(cfg)
}

func (s *Service) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal jira request")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return goerr.Wrap(err, "failed to build jira request")
	}
	req.SetBasicAuth(s.email, s.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "jira request failed",
			goerr.V("method", method), goerr.V("path", path))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return goerr.Wrap(err, "failed to read jira response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("jira returned an error",
			goerr.V("method", method),
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", truncate(string(data), 512)),
		)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return goerr.Wrap(err, "failed to decode jira response", goerr.V("path", path))
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// UpdateField edits one field of an issue. The field vocabulary is
// restricted upstream; this maps each allowed field to its API shape.
func (s *Service) UpdateField(ctx context.Context, ticketKey, field, value string) error {
	var fieldValue any
	switch field {
	case "summary":
		fieldValue = value
	case "description":
		fieldValue = adfDocument(value)
	case "priority":
		fieldValue = map[string]string{"name": value}
	case "labels":
		fieldValue = splitList(value)
	case "components":
		var components []map[string]string
		for _, name := range splitList(value) {
			components = append(components, map[string]string{"name": name})
		}
		fieldValue = components
	default:
		return goerr.New("unsupported field", goerr.V("field", field))
	}

	body := map[string]any{
		"fields": map[string]any{field: fieldValue},
	}
	return s.do(ctx, http.MethodPut, "/rest/api/3/issue/"+url.PathEscape(ticketKey), body, nil)
}

func (s *Service) AddComment(ctx context.Context, ticketKey, text string) error {
	body := map[string]any{"body": adfDocument(text)}
	return s.do(ctx, http.MethodPost, "/rest/api/3/issue/"+url.PathEscape(ticketKey)+"/comment", body, nil)
}

// TransitionIssue moves the issue to the named status. The target is
// matched case-insensitively against both the transition name and the
// destination status, since proposals say "Done" while the workflow may
// call the transition "Close issue".
func (s *Service) TransitionIssue(ctx context.Context, ticketKey, targetStatus string) error {
	var available struct {
		Transitions []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			To   struct {
				Name string `json:"name"`
			} `json:"to"`
		} `json:"transitions"`
	}
	path := "/rest/api/3/issue/" + url.PathEscape(ticketKey) + "/transitions"
	if err := s.do(ctx, http.MethodGet, path, nil, &available); err != nil {
		return err
	}

	var transitionID string
	var names []string
	for _, t := range available.Transitions {
		names = append(names, t.Name)
		if strings.EqualFold(t.Name, targetStatus) || strings.EqualFold(t.To.Name, targetStatus) {
			transitionID = t.ID
			break
		}
	}
	if transitionID == "" {
		return goerr.New("no transition to target status",
			goerr.V("ticket_key", ticketKey),
			goerr.V("target", targetStatus),
			goerr.V("available", names),
		)
	}

	body := map[string]any{"transition": map[string]string{"id": transitionID}}
	return s.do(ctx, http.MethodPost, path, body, nil)
}

func (s *Service) CreateIssue(ctx context.Context, draft *model.IssueDraft) (string, error) {
	issueType := draft.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	fields := map[string]any{
		"project":   map[string]string{"key": draft.Project},
		"summary":   draft.Summary,
		"issuetype": map[string]string{"name": issueType},
	}
	if draft.Description != "" {
		fields["description"] = adfDocument(draft.Description)
	}
	if draft.Priority != "" {
		fields["priority"] = map[string]string{"name": draft.Priority}
	}
	if len(draft.Labels) > 0 {
		fields["labels"] = draft.Labels
	}
	if draft.DueDate != "" {
		due, err := ResolveDueDate(draft.DueDate, time.Now())
		if err != nil {
			return "", err
		}
		fields["duedate"] = due
	}
	if draft.Assignee != "" {
		accountID, err := s.resolveAccountID(ctx, draft.Assignee)
		if err != nil {
			return "", err
		}
		fields["assignee"] = map[string]string{"accountId": accountID}
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := s.do(ctx, http.MethodPost, "/rest/api/3/issue", map[string]any{"fields": fields}, &created); err != nil {
		return "", err
	}
	return created.Key, nil
}

func (s *Service) AssignIssue(ctx context.Context, ticketKey, assignee string) error {
	accountID, err := s.resolveAccountID(ctx, assignee)
	if err != nil {
		return err
	}
	body := map[string]string{"accountId": accountID}
	return s.do(ctx, http.MethodPut, "/rest/api/3/issue/"+url.PathEscape(ticketKey)+"/assignee", body, nil)
}

func (s *Service) SetDueDate(ctx context.Context, ticketKey, date string) error {
	due, err := ResolveDueDate(date, time.Now())
	if err != nil {
		return err
	}
	body := map[string]any{
		"fields": map[string]any{"duedate": due},
	}
	return s.do(ctx, http.MethodPut, "/rest/api/3/issue/"+url.PathEscape(ticketKey), body, nil)
}

// resolveAccountID maps a human name (or email) to a Jira account ID. An
// exact case-insensitive display name match wins; a single search result
// is accepted as-is.
func (s *Service) resolveAccountID(ctx context.Context, assignee string) (string, error) {
	var users []struct {
		AccountID    string `json:"accountId"`
		DisplayName  string `json:"displayName"`
		EmailAddress string `json:"emailAddress"`
	}
	path := "/rest/api/3/user/search?query=" + url.QueryEscape(assignee)
	if err := s.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return "", err
	}

	for _, u := range users {
		if strings.EqualFold(u.DisplayName, assignee) || strings.EqualFold(u.EmailAddress, assignee) {
			return u.AccountID, nil
		}
	}
	if len(users) == 1 {
		return users[0].AccountID, nil
	}
	return "", goerr.New("could not resolve assignee to an account",
		goerr.V("assignee", assignee), goerr.V("candidates", len(users)))
}

type issueState struct {
	Key      string   `json:"key"`
	Summary  string   `json:"summary"`
	Status   string   `json:"status"`
	Assignee string   `json:"assignee,omitempty"`
	Priority string   `json:"priority,omitempty"`
	DueDate  string   `json:"due_date,omitempty"`
	Labels   []string `json:"labels,omitempty"`
}

// ProjectState snapshots the most recently updated issues of the project
// as compact JSON for the analysis engine.
func (s *Service) ProjectState(ctx context.Context, projectKey string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("jql", "project = "+projectKey+" ORDER BY updated DESC")
	query.Set("maxResults", "50")
	query.Set("fields", "summary,status,assignee,priority,duedate,labels")

	var result struct {
		Issues []struct {
			Key    string `json:"key"`
			Fields struct {
				Summary string `json:"summary"`
				Status  struct {
					Name string `json:"name"`
				} `json:"status"`
				Assignee *struct {
					DisplayName string `json:"displayName"`
				} `json:"assignee"`
				Priority *struct {
					Name string `json:"name"`
				} `json:"priority"`
				DueDate string   `json:"duedate"`
				Labels  []string `json:"labels"`
			} `json:"fields"`
		} `json:"issues"`
	}
	if err := s.do(ctx, http.MethodGet, "/rest/api/3/search?"+query.Encode(), nil, &result); err != nil {
		return nil, err
	}

	states := make([]issueState, 0, len(result.Issues))
	for _, issue := range result.Issues {
		state := issueState{
			Key:     issue.Key,
			Summary: issue.Fields.Summary,
			Status:  issue.Fields.Status.Name,
			DueDate: issue.Fields.DueDate,
			Labels:  issue.Fields.Labels,
		}
		if issue.Fields.Assignee != nil {
			state.Assignee = issue.Fields.Assignee.DisplayName
		}
		if issue.Fields.Priority != nil {
			state.Priority = issue.Fields.Priority.Name
		}
		states = append(states, state)
	}

	raw, err := json.Marshal(states)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode project state")
	}
	return raw, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
