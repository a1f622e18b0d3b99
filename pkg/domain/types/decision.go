package types

import "fmt"

// Decision is the human verdict on a proposal. Write-once: a proposal
// leaves DecisionPending at most one time.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// IsValid checks if the decision is valid.
func (d Decision) IsValid() bool {
	switch d {
	case DecisionPending, DecisionApproved, DecisionRejected:
		return true
	default:
		return false
	}
}

// IsDecided reports whether the decision is no longer pending.
func (d Decision) IsDecided() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// String returns the string representation of the decision.
func (d Decision) String() string {
	return string(d)
}

// ParseDecision parses a string into a Decision.
func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid decision: %s", s)
	}
	return d, nil
}
