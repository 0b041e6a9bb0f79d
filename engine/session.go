// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/story-poker/models"
	"github.com/danielhkuo/story-poker/scales"
)

const sessionColumns = `id, name, description, project_id, sprint_id, scale, status,
       anonymous_voting, auto_reveal, discussion_time_limit_seconds,
       current_issue_id, facilitator_id, created_at`

func scanSession(row *sql.Row) (models.Session, error) {
	var sess models.Session
	err := row.Scan(
		&sess.ID, &sess.Name, &sess.Description, &sess.ProjectID, &sess.SprintID,
		&sess.Scale, &sess.Status, &sess.AnonymousVoting, &sess.AutoReveal,
		&sess.DiscussionTimeLimit, &sess.CurrentIssueID, &sess.FacilitatorID,
		&sess.CreatedAt,
	)
	return sess, err
}

func (s *Service) getSession(ctx context.Context, q dbtx, sessionID string) (models.Session, error) {
	sess, err := scanSession(q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session WHERE id = $1
	`, sessionID))
	if err == sql.ErrNoRows {
		return models.Session{}, &NotFoundError{Kind: "session", ID: sessionID}
	}
	return sess, err
}

// requireFacilitator loads the session and rejects callers other than
// its facilitator.
func (s *Service) requireFacilitator(ctx context.Context, sessionID, callerID string) (models.Session, error) {
	sess, err := s.getSession(ctx, s.db, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if sess.FacilitatorID != callerID {
		return models.Session{}, &AuthorizationError{
			SessionID: sessionID,
			UserID:    callerID,
			Message:   "only the facilitator may perform this operation",
		}
	}
	return sess, nil
}

// CreateSession creates a session in the created state together with one
// issue assignment per requested issue (position = input order) and the
// facilitator as first participant. Every issue id must resolve in the
// external issue store.
func (s *Service) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.SessionDetail, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if req.FacilitatorID == "" {
		return nil, &ValidationError{Field: "facilitator_id", Message: "facilitator_id is required"}
	}
	if _, ok := scales.Get(req.Scale); !ok {
		return nil, &ValidationError{Field: "scale", Message: "unknown scale " + req.Scale}
	}
	if req.ProjectID == "" {
		return nil, &ValidationError{Field: "project_id", Message: "project_id is required"}
	}

	ok, err := s.projects.Exists(ctx, req.ProjectID)
	if err != nil {
		return nil, &DependencyError{Op: "project registry lookup", Err: err}
	}
	if !ok {
		return nil, &ValidationError{Field: "project_id", Message: "unknown project " + req.ProjectID}
	}

	for _, issueID := range req.IssueIDs {
		ok, err := s.issues.Exists(ctx, issueID)
		if err != nil {
			return nil, &DependencyError{Op: "issue store lookup", Err: err}
		}
		if !ok {
			return nil, &ValidationError{Field: "issue_ids", Message: "unknown issue " + issueID}
		}
	}

	sessionID := uuid.NewString()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO estimation_session
		       (id, name, description, project_id, sprint_id, scale, status,
		        anonymous_voting, auto_reveal, discussion_time_limit_seconds,
		        facilitator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, sessionID, req.Name, req.Description, req.ProjectID, req.SprintID,
		req.Scale, models.SessionCreated, req.AnonymousVoting, req.AutoReveal,
		req.DiscussionTimeLimit, req.FacilitatorID, now)
	if err != nil {
		return nil, err
	}

	for i, issueID := range req.IssueIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO issue_assignment (id, session_id, issue_id, status, position, voting_round)
			VALUES ($1, $2, $3, $4, $5, 1)
		`, uuid.NewString(), sessionID, issueID, models.IssuePending, i)
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO participant (session_id, user_id, status, is_online, last_seen_at, joined_at)
		VALUES ($1, $2, $3, TRUE, $4, $5)
	`, sessionID, req.FacilitatorID, models.ParticipantJoined, now, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("session created",
		"session_id", sessionID,
		"facilitator_id", req.FacilitatorID,
		"scale", req.Scale,
		"issues", len(req.IssueIDs),
	)

	return s.GetSession(ctx, sessionID)
}

// GetSession returns the session aggregate: the session row plus its
// assignments in position order and its participants.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	sess, err := s.getSession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.ListAssignments(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, user_id, status, is_online, last_seen_at, joined_at
		FROM participant
		WHERE session_id = $1
		ORDER BY joined_at, user_id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.SessionID, &p.UserID, &p.Status, &p.IsOnline, &p.LastSeenAt, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.SessionDetail{
		Session:      sess,
		Assignments:  assignments,
		Participants: participants,
	}, nil
}

// ListSessionsByProject returns all sessions attached to a project,
// newest first.
func (s *Service) ListSessionsByProject(ctx context.Context, projectID string) ([]models.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM estimation_session
		WHERE project_id = $1
		ORDER BY created_at DESC, id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		var sess models.Session
		err := rows.Scan(
			&sess.ID, &sess.Name, &sess.Description, &sess.ProjectID, &sess.SprintID,
			&sess.Scale, &sess.Status, &sess.AnonymousVoting, &sess.AutoReveal,
			&sess.DiscussionTimeLimit, &sess.CurrentIssueID, &sess.FacilitatorID,
			&sess.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// StartSession moves a created session to waiting and points the current
// issue at the first assignment (null when the issue list is empty).
func (s *Service) StartSession(ctx context.Context, sessionID, callerID string) (*models.SessionDetail, error) {
	sess, err := s.requireFacilitator(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionCreated {
		return nil, &StateError{SessionID: sessionID, Message: "session already started"}
	}

	var firstIssueID *string
	err = s.db.QueryRowContext(ctx, `
		SELECT issue_id FROM issue_assignment
		WHERE session_id = $1 AND position = 0
	`, sessionID).Scan(&firstIssueID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	// Conditional update: a concurrent StartSession loses the race and
	// reports the state error instead of double-starting.
	res, err := s.db.ExecContext(ctx, `
		UPDATE estimation_session
		SET status = $1, current_issue_id = $2
		WHERE id = $3 AND status = $4
	`, models.SessionWaiting, firstIssueID, sessionID, models.SessionCreated)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &StateError{SessionID: sessionID, Message: "session already started"}
	}

	slog.Info("session started", "session_id", sessionID)

	return s.GetSession(ctx, sessionID)
}
