package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TenantID identifies a tenant (the Slack user ID of a PM).
type TenantID string

func (t TenantID) Validate() error {
	if t == "" {
		return goerr.New("tenant ID cannot be empty")
	}
	return nil
}

func (t TenantID) String() string {
	return string(t)
}

// ScopeID identifies a conversation scope (a Slack channel).
type ScopeID string

func (s ScopeID) Validate() error {
	if s == "" {
		return goerr.New("scope ID cannot be empty")
	}
	return nil
}

func (s ScopeID) String() string {
	return string(s)
}

// SessionID identifies one analysis-to-execution run.
type SessionID string

// NewSessionID generates a new UUID v4 SessionID.
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func (s SessionID) String() string {
	return string(s)
}

// MarkID identifies a marked message.
type MarkID string

// NewMarkID generates a new UUID v4 MarkID.
func NewMarkID() MarkID {
	return MarkID(uuid.New().String())
}

func (m MarkID) String() string {
	return string(m)
}

// ProposalID identifies a proposal within its session (e.g. "p-001").
type ProposalID string

func (p ProposalID) String() string {
	return string(p)
}
