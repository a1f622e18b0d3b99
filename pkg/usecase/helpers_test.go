package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/repository/memory"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
)

type fakeEngine struct {
	mu       sync.Mutex
	analyze  func(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisOutput, error)
	requests []*model.AnalysisRequest
}

func (e *fakeEngine) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisOutput, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()
	return e.analyze(ctx, req)
}

func (e *fakeEngine) lastRequest() *model.AnalysisRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		return nil
	}
	return e.requests[len(e.requests)-1]
}

// fakeTicketService records every dispatched operation. failOn makes the
// matching ticket key fail.
type fakeTicketService struct {
	mu     sync.Mutex
	calls  []string
	failOn string
	state  json.RawMessage

	stateErr error
}

func (s *fakeTicketService) record(call, ticketKey string) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
	if s.failOn != "" && s.failOn == ticketKey {
		return fmt.Errorf("ticket system rejected %s", ticketKey)
	}
	return nil
}

func (s *fakeTicketService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeTicketService) UpdateField(ctx context.Context, ticketKey, field, value string) error {
	return s.record(fmt.Sprintf("update_field %s %s=%s", ticketKey, field, value), ticketKey)
}

func (s *fakeTicketService) AddComment(ctx context.Context, ticketKey, text string) error {
	return s.record(fmt.Sprintf("add_comment %s", ticketKey), ticketKey)
}

func (s *fakeTicketService) TransitionIssue(ctx context.Context, ticketKey, targetStatus string) error {
	return s.record(fmt.Sprintf("transition %s -> %s", ticketKey, targetStatus), ticketKey)
}

func (s *fakeTicketService) CreateIssue(ctx context.Context, draft *model.IssueDraft) (string, error) {
	if err := s.record(fmt.Sprintf("create_issue %s", draft.Summary), ""); err != nil {
		return "", err
	}
	return "PROJ-999", nil
}

func (s *fakeTicketService) AssignIssue(ctx context.Context, ticketKey, assignee string) error {
	return s.record(fmt.Sprintf("assign %s -> %s", ticketKey, assignee), ticketKey)
}

func (s *fakeTicketService) SetDueDate(ctx context.Context, ticketKey, date string) error {
	return s.record(fmt.Sprintf("set_due_date %s %s", ticketKey, date), ticketKey)
}

func (s *fakeTicketService) ProjectState(ctx context.Context, projectKey string) (json.RawMessage, error) {
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	return s.state, nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	proposalCalls int
	reportCalls   int
	documentCalls int
	texts         []string
	lastReport    *model.ExecutionReport
	failNotify    error
}

func (n *fakeNotifier) NotifyProposals(ctx context.Context, target string, session *model.Session, summary string, proposals []*model.Proposal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.proposalCalls++
	return n.failNotify
}

func (n *fakeNotifier) NotifyReport(ctx context.Context, target string, session *model.Session, report *model.ExecutionReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reportCalls++
	n.lastReport = report
	return n.failNotify
}

func (n *fakeNotifier) NotifyNewDocument(ctx context.Context, target string, tenant *model.Tenant, doc *model.Document) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.documentCalls++
	return n.failNotify
}

func (n *fakeNotifier) NotifyText(ctx context.Context, target, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return n.failNotify
}

func (n *fakeNotifier) reports() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reportCalls
}

type fakeDocSource struct {
	mu  sync.Mutex
	doc *model.Document
	err error
}

func (d *fakeDocSource) LatestDocument(ctx context.Context, cfg model.DriveConfig) (*model.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	return d.doc, nil
}

type testEnv struct {
	uc       *usecase.UseCases
	repo     *memory.Memory
	engine   *fakeEngine
	ticket   *fakeTicketService
	notifier *fakeNotifier
	docs     *fakeDocSource
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo: memory.New(),
		engine: &fakeEngine{
			analyze: func(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisOutput, error) {
				return &model.AnalysisOutput{Summary: "nothing to do"}, nil
			},
		},
		ticket:   &fakeTicketService{},
		notifier: &fakeNotifier{},
		docs:     &fakeDocSource{},
	}

	env.uc = usecase.New(
		usecase.WithRepository(env.repo),
		usecase.WithAnalysisEngine(env.engine),
		usecase.WithTicketServiceFactory(func(cfg model.JiraConfig) (interfaces.TicketService, error) {
			return env.ticket, nil
		}),
		usecase.WithDocumentSource(env.docs),
		usecase.WithNotifier(env.notifier),
	)
	return env
}

func (env *testEnv) onboardTenant(t *testing.T, id string) *model.Tenant {
	t.Helper()

	tenant := &model.Tenant{
		ID: types.TenantID(id),
		Jira: model.JiraConfig{
			BaseURL:    "https://example.atlassian.net",
			Email:      "pm@example.com",
			APIToken:   "token",
			ProjectKey: "PROJ",
		},
	}
	gt.NoError(t, env.uc.OnboardTenant(context.Background(), tenant)).Required()
	return tenant
}

func (env *testEnv) markMessages(t *testing.T, scope string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		created, err := env.uc.MarkMessage(context.Background(), &model.Mark{
			Scope:     types.ScopeID(scope),
			MessageTS: fmt.Sprintf("1000.%04d", i),
			Text:      fmt.Sprintf("message %d", i),
			MarkedBy:  "U001",
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, created).True()
	}
}
