// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "fmt"

// ValidationError reports malformed input: an unknown issue id, an
// unknown scale, or a vote token outside the session's scale.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// AuthorizationError reports a caller who is not the facilitator for a
// facilitator-gated operation, or not an active participant for a vote.
type AuthorizationError struct {
	SessionID string
	UserID    string
	Message   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %s not authorized for session %s: %s", e.UserID, e.SessionID, e.Message)
}

// StateError reports an operation that is illegal in the current phase.
type StateError struct {
	SessionID string
	IssueID   string
	Message   string
}

func (e *StateError) Error() string {
	if e.IssueID != "" {
		return fmt.Sprintf("illegal state for session %s issue %s: %s", e.SessionID, e.IssueID, e.Message)
	}
	return fmt.Sprintf("illegal state for session %s: %s", e.SessionID, e.Message)
}

// NotFoundError reports a missing session, assignment, or participant.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// DependencyError reports a failed call to an external collaborator,
// such as the issue store write during finalize.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
