// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/danielhkuo/story-poker/models"
)

const assignmentColumns = `id, session_id, issue_id, status, position, voting_round,
       final_estimate, has_consensus, discussion_notes`

func scanAssignment(row *sql.Row) (models.IssueAssignment, error) {
	var a models.IssueAssignment
	err := row.Scan(
		&a.ID, &a.SessionID, &a.IssueID, &a.Status, &a.Position,
		&a.VotingRound, &a.FinalEstimate, &a.HasConsensus, &a.DiscussionNotes,
	)
	return a, err
}

func (s *Service) getAssignment(ctx context.Context, q dbtx, sessionID, issueID string) (models.IssueAssignment, error) {
	a, err := scanAssignment(q.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM issue_assignment
		WHERE session_id = $1 AND issue_id = $2
	`, sessionID, issueID))
	if err == sql.ErrNoRows {
		return models.IssueAssignment{}, &NotFoundError{Kind: "assignment", ID: issueID}
	}
	return a, err
}

// setSessionStatus updates the session status after checking the
// transition table. Same-status writes are no-ops.
func (s *Service) setSessionStatus(ctx context.Context, q dbtx, sess models.Session, to string) error {
	if sess.Status == to {
		return nil
	}
	if !models.CanSessionTransition(sess.Status, to) {
		return &StateError{
			SessionID: sess.ID,
			Message:   "cannot move session from " + sess.Status + " to " + to,
		}
	}
	_, err := q.ExecContext(ctx, `
		UPDATE estimation_session SET status = $1 WHERE id = $2
	`, to, sess.ID)
	return err
}

// markParticipantsVoting flips every active participant to the voting
// status when a round opens.
func (s *Service) markParticipantsVoting(ctx context.Context, q dbtx, sessionID string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE participant SET status = $1
		WHERE session_id = $2 AND status IN ($3, $4, $5)
	`, models.ParticipantVoting, sessionID,
		models.ParticipantJoined, models.ParticipantVoting, models.ParticipantVoted)
	return err
}

// ListAssignments returns a session's assignments in position order.
func (s *Service) ListAssignments(ctx context.Context, sessionID string) ([]models.IssueAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM issue_assignment
		WHERE session_id = $1
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []models.IssueAssignment{}
	for rows.Next() {
		var a models.IssueAssignment
		err := rows.Scan(
			&a.ID, &a.SessionID, &a.IssueID, &a.Status, &a.Position,
			&a.VotingRound, &a.FinalEstimate, &a.HasConsensus, &a.DiscussionNotes,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// FindAssignment returns the assignment binding one issue to a session.
func (s *Service) FindAssignment(ctx context.Context, sessionID, issueID string) (*models.IssueAssignment, error) {
	a, err := s.getAssignment(ctx, s.db, sessionID, issueID)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// StartVoting opens voting on the current assignment. The session must
// be waiting with the current assignment still pending; re-opening a
// revealed assignment goes through StartNewRound instead.
func (s *Service) StartVoting(ctx context.Context, sessionID, callerID string) (*models.IssueAssignment, error) {
	sess, err := s.requireFacilitator(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if sess.CurrentIssueID == nil {
		return nil, &StateError{SessionID: sessionID, Message: "no current issue"}
	}

	assignment, err := s.getAssignment(ctx, s.db, sessionID, *sess.CurrentIssueID)
	if err != nil {
		return nil, err
	}

	lock := s.assignmentLock(assignment.ID)
	lock.Lock()
	defer lock.Unlock()

	// Reload under the lock; a concurrent caller may have advanced it.
	sess, err = s.getSession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	assignment, err = s.getAssignment(ctx, s.db, sessionID, assignment.IssueID)
	if err != nil {
		return nil, err
	}

	if sess.Status != models.SessionWaiting {
		return nil, &StateError{SessionID: sessionID, Message: "session is not waiting to vote"}
	}
	if assignment.Status != models.IssuePending {
		return nil, &StateError{
			SessionID: sessionID,
			IssueID:   assignment.IssueID,
			Message:   "issue is not pending a vote",
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE issue_assignment SET status = $1 WHERE id = $2
	`, models.IssueVoting, assignment.ID)
	if err != nil {
		return nil, err
	}
	if err := s.setSessionStatus(ctx, tx, sess, models.SessionVoting); err != nil {
		return nil, err
	}
	if err := s.markParticipantsVoting(ctx, tx, sessionID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("voting started",
		"session_id", sessionID,
		"issue_id", assignment.IssueID,
		"round", assignment.VotingRound,
	)

	assignment.Status = models.IssueVoting
	return &assignment, nil
}

// FinalizeEstimate records the agreed estimate. The external issue store
// write happens first: the assignment is only marked estimated once the
// canonical estimate is durably written back to the issue.
func (s *Service) FinalizeEstimate(ctx context.Context, sessionID, issueID, callerID string, value float64) (*models.IssueAssignment, error) {
	if _, err := s.requireFacilitator(ctx, sessionID, callerID); err != nil {
		return nil, err
	}

	assignment, err := s.getAssignment(ctx, s.db, sessionID, issueID)
	if err != nil {
		return nil, err
	}

	lock := s.assignmentLock(assignment.ID)
	lock.Lock()
	defer lock.Unlock()

	assignment, err = s.getAssignment(ctx, s.db, sessionID, issueID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != models.IssueVoting && assignment.Status != models.IssueDiscussing {
		return nil, &StateError{
			SessionID: sessionID,
			IssueID:   issueID,
			Message:   "issue has no open round to finalize",
		}
	}

	if err := s.issues.SetEstimate(ctx, issueID, value); err != nil {
		return nil, &DependencyError{Op: "issue store estimate write", Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE issue_assignment
		SET status = $1, final_estimate = $2, has_consensus = TRUE
		WHERE id = $3
	`, models.IssueEstimated, value, assignment.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("estimate finalized",
		"session_id", sessionID,
		"issue_id", issueID,
		"estimate", value,
	)

	assignment.Status = models.IssueEstimated
	assignment.FinalEstimate = &value
	assignment.HasConsensus = true
	return &assignment, nil
}

// MoveToNextIssue advances the current pointer to the next position. An
// un-finalized current assignment is marked skipped. When no assignment
// remains the session completes and nil is returned.
func (s *Service) MoveToNextIssue(ctx context.Context, sessionID, callerID string) (*models.IssueAssignment, error) {
	sess, err := s.requireFacilitator(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.SessionCompleted {
		return nil, &StateError{SessionID: sessionID, Message: "session already completed"}
	}
	if sess.Status == models.SessionCreated {
		return nil, &StateError{SessionID: sessionID, Message: "session not started"}
	}

	var current *models.IssueAssignment
	if sess.CurrentIssueID != nil {
		a, err := s.getAssignment(ctx, s.db, sessionID, *sess.CurrentIssueID)
		if err != nil {
			return nil, err
		}
		current = &a

		lock := s.assignmentLock(a.ID)
		lock.Lock()
		defer lock.Unlock()

		a, err = s.getAssignment(ctx, s.db, sessionID, a.IssueID)
		if err != nil {
			return nil, err
		}
		current = &a
	}

	next, err := s.nextAssignment(ctx, sessionID, current)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if current != nil && current.Status != models.IssueEstimated && current.Status != models.IssueSkipped {
		_, err = tx.ExecContext(ctx, `
			UPDATE issue_assignment SET status = $1 WHERE id = $2
		`, models.IssueSkipped, current.ID)
		if err != nil {
			return nil, err
		}
	}

	if next == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE estimation_session SET status = $1, current_issue_id = NULL WHERE id = $2
		`, models.SessionCompleted, sessionID)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}

		slog.Info("session completed", "session_id", sessionID)
		return nil, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE issue_assignment SET status = $1, voting_round = 1 WHERE id = $2
	`, models.IssuePending, next.ID)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE estimation_session SET status = $1, current_issue_id = $2 WHERE id = $3
	`, models.SessionWaiting, next.IssueID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("moved to next issue",
		"session_id", sessionID,
		"issue_id", next.IssueID,
		"position", next.Position,
	)

	next.Status = models.IssuePending
	next.VotingRound = 1
	return next, nil
}

// nextAssignment finds the assignment after current in position order.
// With no current assignment the queue is empty (sessions created with
// no issues), so there is nothing to return.
func (s *Service) nextAssignment(ctx context.Context, sessionID string, current *models.IssueAssignment) (*models.IssueAssignment, error) {
	if current == nil {
		return nil, nil
	}
	a, err := scanAssignment(s.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM issue_assignment
		WHERE session_id = $1 AND position > $2
		ORDER BY position
		LIMIT 1
	`, sessionID, current.Position))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// StartNewRound re-opens voting on a revealed assignment, incrementing
// its round. Prior-round votes stay recorded and are excluded from the
// new round's aggregation by round scoping.
func (s *Service) StartNewRound(ctx context.Context, sessionID, issueID, callerID string) (*models.IssueAssignment, error) {
	sess, err := s.requireFacilitator(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.getAssignment(ctx, s.db, sessionID, issueID)
	if err != nil {
		return nil, err
	}

	lock := s.assignmentLock(assignment.ID)
	lock.Lock()
	defer lock.Unlock()

	sess, err = s.getSession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	assignment, err = s.getAssignment(ctx, s.db, sessionID, issueID)
	if err != nil {
		return nil, err
	}

	if assignment.Status != models.IssueDiscussing {
		return nil, &StateError{
			SessionID: sessionID,
			IssueID:   issueID,
			Message:   "a new round requires a revealed round under discussion",
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE issue_assignment SET status = $1, voting_round = voting_round + 1 WHERE id = $2
	`, models.IssueVoting, assignment.ID)
	if err != nil {
		return nil, err
	}
	if err := s.setSessionStatus(ctx, tx, sess, models.SessionVoting); err != nil {
		return nil, err
	}
	if err := s.markParticipantsVoting(ctx, tx, sessionID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("new round started",
		"session_id", sessionID,
		"issue_id", issueID,
		"round", assignment.VotingRound+1,
	)

	assignment.Status = models.IssueVoting
	assignment.VotingRound++
	return &assignment, nil
}
