package types

import "fmt"

// ChangeKind identifies which external write operation a proposal maps to.
type ChangeKind string

const (
	ChangeKindUpdateField ChangeKind = "update_field"
	ChangeKindAddComment  ChangeKind = "add_comment"
	ChangeKindTransition  ChangeKind = "transition"
	ChangeKindCreateIssue ChangeKind = "create_issue"
	ChangeKindAssign      ChangeKind = "assign"
	ChangeKindSetDueDate  ChangeKind = "set_due_date"
)

// updatableFields is the set of issue fields update_field proposals may
// target.
var updatableFields = map[string]bool{
	"summary":     true,
	"description": true,
	"priority":    true,
	"labels":      true,
	"components":  true,
}

// AllChangeKinds returns all valid change kinds.
func AllChangeKinds() []ChangeKind {
	return []ChangeKind{
		ChangeKindUpdateField,
		ChangeKindAddComment,
		ChangeKindTransition,
		ChangeKindCreateIssue,
		ChangeKindAssign,
		ChangeKindSetDueDate,
	}
}

// IsValid checks if the change kind is valid.
func (k ChangeKind) IsValid() bool {
	switch k {
	case ChangeKindUpdateField, ChangeKindAddComment, ChangeKindTransition,
		ChangeKindCreateIssue, ChangeKindAssign, ChangeKindSetDueDate:
		return true
	default:
		return false
	}
}

// String returns the string representation of the change kind.
func (k ChangeKind) String() string {
	return string(k)
}

// IsUpdatableField reports whether update_field proposals may target the
// given field name.
func IsUpdatableField(field string) bool {
	return updatableFields[field]
}

// ParseChangeKind parses a string into a ChangeKind.
func ParseChangeKind(s string) (ChangeKind, error) {
	k := ChangeKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid change kind: %s", s)
	}
	return k, nil
}
