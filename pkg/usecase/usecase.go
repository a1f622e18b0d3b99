// Package usecase holds the workflow logic: marking messages, opening
// sessions, collecting decisions, executing approved changes, and
// watching tenant documents. Controllers and the worker only orchestrate
// calls into this package.
package usecase

import (
	"time"

	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/utils/lock"
)

type UseCases struct {
	repo          interfaces.Repository
	engine        interfaces.AnalysisEngine
	ticketFactory interfaces.TicketServiceFactory
	docSource     interfaces.DocumentSource
	notifier      interfaces.Notifier

	// driveDefaults is the shared service-account configuration; tenants
	// override only folder and client email.
	driveDefaults model.DriveConfig

	// scopeLocks serializes session opens per conversation scope.
	scopeLocks *lock.Keyed

	analysisTimeout  time.Duration
	executionTimeout time.Duration
}

type Option func(*UseCases)

func WithRepository(repo interfaces.Repository) Option {
	return func(u *UseCases) {
		u.repo = repo
	}
}

func WithAnalysisEngine(engine interfaces.AnalysisEngine) Option {
	return func(u *UseCases) {
		u.engine = engine
	}
}

func WithTicketServiceFactory(factory interfaces.TicketServiceFactory) Option {
	return func(u *UseCases) {
		u.ticketFactory = factory
	}
}

func WithDocumentSource(source interfaces.DocumentSource) Option {
	return func(u *UseCases) {
		u.docSource = source
	}
}

func WithNotifier(notifier interfaces.Notifier) Option {
	return func(u *UseCases) {
		u.notifier = notifier
	}
}

func WithDriveDefaults(cfg model.DriveConfig) Option {
	return func(u *UseCases) {
		u.driveDefaults = cfg
	}
}

// WithAnalysisTimeout bounds one analysis engine call.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(u *UseCases) {
		u.analysisTimeout = d
	}
}

// WithExecutionTimeout bounds one external ticket operation.
func WithExecutionTimeout(d time.Duration) Option {
	return func(u *UseCases) {
		u.executionTimeout = d
	}
}

func New(opts ...Option) *UseCases {
	u := &UseCases{
		scopeLocks:       lock.NewKeyed(),
		analysisTimeout:  2 * time.Minute,
		executionTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}
