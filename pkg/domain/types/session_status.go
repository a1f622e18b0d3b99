package types

import "fmt"

// SessionStatus represents the lifecycle state of a sync session.
type SessionStatus string

const (
	SessionStatusCollecting        SessionStatus = "collecting"
	SessionStatusAnalyzing         SessionStatus = "analyzing"
	SessionStatusAwaitingDecisions SessionStatus = "awaiting_decisions"
	SessionStatusExecuting         SessionStatus = "executing"
	SessionStatusCompleted         SessionStatus = "completed"
	SessionStatusFailed            SessionStatus = "failed"
)

// sessionTransitions is the only set of legal status changes. Anything
// outside this table is a programming error, not a recoverable condition.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusCollecting: {SessionStatusAnalyzing, SessionStatusFailed},
	SessionStatusAnalyzing:  {SessionStatusAwaitingDecisions, SessionStatusCompleted, SessionStatusFailed},
	// awaiting_decisions -> completed covers sessions whose analysis
	// produced zero actionable proposals.
	SessionStatusAwaitingDecisions: {SessionStatusExecuting, SessionStatusCompleted},
	SessionStatusExecuting:         {SessionStatusCompleted},
	SessionStatusCompleted:         {},
	SessionStatusFailed:            {},
}

// AllSessionStatuses returns all valid session statuses.
func AllSessionStatuses() []SessionStatus {
	return []SessionStatus{
		SessionStatusCollecting,
		SessionStatusAnalyzing,
		SessionStatusAwaitingDecisions,
		SessionStatusExecuting,
		SessionStatusCompleted,
		SessionStatusFailed,
	}
}

// IsValid checks if the session status is valid.
func (s SessionStatus) IsValid() bool {
	_, ok := sessionTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed.
func (s SessionStatus) IsTerminal() bool {
	next, ok := sessionTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether s -> next is in the transition table.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String returns the string representation of the session status.
func (s SessionStatus) String() string {
	return string(s)
}

// ParseSessionStatus parses a string into a SessionStatus.
func ParseSessionStatus(s string) (SessionStatus, error) {
	status := SessionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid session status: %s", s)
	}
	return status, nil
}
