// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/story-poker/models"
	"github.com/danielhkuo/story-poker/scales"
)

// SubmitVote records one participant's estimate for the current round of
// an assignment. Resubmission before reveal replaces the previous vote.
// When the last eligible participant votes and the session has auto
// reveal enabled, the round is revealed in the same critical section.
func (s *Service) SubmitVote(ctx context.Context, sessionID, issueID string, req models.SubmitVoteRequest) (*models.Vote, error) {
	sess, err := s.getSession(ctx, s.db, sessionID)
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

	// Reload under the lock; reveal or a round change may have landed.
	assignment, err = s.getAssignment(ctx, s.db, sessionID, issueID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != models.IssueVoting {
		return nil, &StateError{
			SessionID: sessionID,
			IssueID:   issueID,
			Message:   "issue is not open for voting",
		}
	}

	var participantStatus string
	err = s.db.QueryRowContext(ctx, `
		SELECT status FROM participant WHERE session_id = $1 AND user_id = $2
	`, sessionID, req.VoterID).Scan(&participantStatus)
	if err == sql.ErrNoRows || (err == nil && !models.IsActiveParticipantStatus(participantStatus)) {
		return nil, &AuthorizationError{
			SessionID: sessionID,
			UserID:    req.VoterID,
			Message:   "voter is not an active participant",
		}
	}
	if err != nil {
		return nil, err
	}

	if !scales.IsValidVote(sess.Scale, req.Value) {
		return nil, &ValidationError{
			Field:   "value",
			Message: req.Value + " is not a legal vote on the " + sess.Scale + " scale",
		}
	}

	vote := models.Vote{
		ID:           uuid.NewString(),
		AssignmentID: assignment.ID,
		VoterID:      req.VoterID,
		Round:        assignment.VotingRound,
		EstimateText: req.Value,
		Rationale:    req.Rationale,
		SubmittedAt:  time.Now().UTC(),
	}
	if numeric, ok := scales.NumericValue(sess.Scale, req.Value); ok {
		vote.Estimate = &numeric
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Delete-then-insert keyed by (assignment, voter, round): resubmission
	// replaces rather than accumulates.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM vote WHERE assignment_id = $1 AND voter_id = $2 AND round = $3
	`, assignment.ID, req.VoterID, assignment.VotingRound)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, assignment_id, voter_id, round, estimate, estimate_text, rationale, is_revealed, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
	`, vote.ID, vote.AssignmentID, vote.VoterID, vote.Round,
		vote.Estimate, vote.EstimateText, vote.Rationale, vote.SubmittedAt)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE participant SET status = $1, last_seen_at = $2
		WHERE session_id = $3 AND user_id = $4
	`, models.ParticipantVoted, time.Now().UTC(), sessionID, req.VoterID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("vote submitted",
		"session_id", sessionID,
		"issue_id", issueID,
		"round", vote.Round,
	)

	if sess.AutoReveal {
		// Still inside the assignment's critical section: the last two
		// concurrent voters cannot both read an incomplete count.
		if err := s.maybeAutoReveal(ctx, sess, assignment); err != nil {
			// The vote itself is durable; reveal failure must not fail
			// the submit.
			slog.Warn("auto-reveal failed",
				"session_id", sessionID,
				"issue_id", issueID,
				"error", err,
			)
		}
	}

	return &vote, nil
}

// maybeAutoReveal reveals the round if every eligible participant has
// voted. Eligible means an active (not left) participant currently
// online; offline participants never block a reveal. Caller must hold
// the assignment lock.
func (s *Service) maybeAutoReveal(ctx context.Context, sess models.Session, assignment models.IssueAssignment) error {
	var voters int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT voter_id) FROM vote WHERE assignment_id = $1 AND round = $2
	`, assignment.ID, assignment.VotingRound).Scan(&voters)
	if err != nil {
		return err
	}

	var eligible int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM participant
		WHERE session_id = $1 AND is_online = TRUE AND status IN ($2, $3, $4)
	`, sess.ID, models.ParticipantJoined, models.ParticipantVoting, models.ParticipantVoted).Scan(&eligible)
	if err != nil {
		return err
	}

	if eligible == 0 || voters < eligible {
		return nil
	}

	slog.Info("auto-reveal triggered",
		"session_id", sess.ID,
		"issue_id", assignment.IssueID,
		"voters", voters,
	)

	// The reveal acts as the session facilitator.
	_, err = s.revealLocked(ctx, sess, assignment)
	return err
}

// RevealVotes marks the current round's votes revealed and moves the
// assignment (and session) to discussing. Revealing an already revealed
// round is a no-op returning the revealed votes.
func (s *Service) RevealVotes(ctx context.Context, sessionID, issueID, callerID string) ([]models.RevealedVote, error) {
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

	return s.revealLocked(ctx, sess, assignment)
}

// revealLocked performs the reveal. Caller must hold the assignment lock.
func (s *Service) revealLocked(ctx context.Context, sess models.Session, assignment models.IssueAssignment) ([]models.RevealedVote, error) {
	if assignment.Status == models.IssueDiscussing {
		// Reveal is idempotent.
		return s.loadRevealedVotes(ctx, sess, assignment)
	}
	if !models.CanIssueTransition(assignment.Status, models.IssueDiscussing) {
		return nil, &StateError{
			SessionID: sess.ID,
			IssueID:   assignment.IssueID,
			Message:   "issue has no open round to reveal",
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE vote SET is_revealed = TRUE WHERE assignment_id = $1 AND round = $2
	`, assignment.ID, assignment.VotingRound)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE issue_assignment SET status = $1 WHERE id = $2
	`, models.IssueDiscussing, assignment.ID)
	if err != nil {
		return nil, err
	}
	if err := s.setSessionStatus(ctx, tx, sess, models.SessionDiscussing); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("votes revealed",
		"session_id", sess.ID,
		"issue_id", assignment.IssueID,
		"round", assignment.VotingRound,
	)

	return s.loadRevealedVotes(ctx, sess, assignment)
}

// loadRevealedVotes returns the revealed votes of the assignment's
// current round. With anonymous voting the voter identity is withheld
// from the projection; the stored votes keep it for audit.
func (s *Service) loadRevealedVotes(ctx context.Context, sess models.Session, assignment models.IssueAssignment) ([]models.RevealedVote, error) {
	// Ordered by the random vote id so anonymous results do not leak
	// submission order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, voter_id, round, estimate, estimate_text, rationale
		FROM vote
		WHERE assignment_id = $1 AND round = $2 AND is_revealed = TRUE
		ORDER BY id
	`, assignment.ID, assignment.VotingRound)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revealed := []models.RevealedVote{}
	for rows.Next() {
		var rv models.RevealedVote
		var voterID string
		if err := rows.Scan(&rv.VoteID, &voterID, &rv.Round, &rv.Estimate, &rv.EstimateText, &rv.Rationale); err != nil {
			return nil, err
		}
		if !sess.AnonymousVoting {
			rv.VoterID = voterID
			if user, err := s.users.Get(ctx, voterID); err == nil {
				rv.VoterName = user.Name
			} else {
				slog.Warn("user directory lookup failed", "user_id", voterID, "error", err)
			}
		}
		revealed = append(revealed, rv)
	}
	return revealed, rows.Err()
}
