package types

import "fmt"

// SessionMode selects how a session sources its input.
type SessionMode string

const (
	// SessionModeInteractive analyzes marked messages from the scope.
	SessionModeInteractive SessionMode = "interactive"
	// SessionModeDocumentOnly analyzes only the latest external document.
	SessionModeDocumentOnly SessionMode = "document-only"
)

// IsValid checks if the session mode is valid.
func (m SessionMode) IsValid() bool {
	switch m {
	case SessionModeInteractive, SessionModeDocumentOnly:
		return true
	default:
		return false
	}
}

// String returns the string representation of the session mode.
func (m SessionMode) String() string {
	return string(m)
}

// ParseSessionMode parses a string into a SessionMode.
func ParseSessionMode(s string) (SessionMode, error) {
	mode := SessionMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid session mode: %s", s)
	}
	return mode, nil
}
