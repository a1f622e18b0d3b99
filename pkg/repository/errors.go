// Package repository defines the error contract shared by all persistence
// backends. Use case code matches these sentinels with errors.Is and never
// depends on a concrete backend.
package repository

import "errors"

var (
	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists reports a uniqueness violation, including a second
	// bulk-create for the same session.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrAlreadyDecided reports a write-once violation on a proposal
	// decision.
	ErrAlreadyDecided = errors.New("proposal already decided")
	// ErrStaleStatus reports a conditional session transition that lost:
	// the stored status no longer matches the expected one.
	ErrStaleStatus = errors.New("session status changed concurrently")
	// ErrInvalidTransition reports a transition outside the status table.
	// This is a programming error, not a recoverable race.
	ErrInvalidTransition = errors.New("session status transition not allowed")
)
