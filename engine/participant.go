// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/danielhkuo/story-poker/models"
)

func (s *Service) getParticipant(ctx context.Context, q dbtx, sessionID, userID string) (models.Participant, error) {
	var p models.Participant
	err := q.QueryRowContext(ctx, `
		SELECT session_id, user_id, status, is_online, last_seen_at, joined_at
		FROM participant
		WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID).Scan(&p.SessionID, &p.UserID, &p.Status, &p.IsOnline, &p.LastSeenAt, &p.JoinedAt)
	if err == sql.ErrNoRows {
		return models.Participant{}, &NotFoundError{Kind: "participant", ID: userID}
	}
	return p, err
}

// AddParticipant joins a user to a session. Joining is idempotent: an
// already active participant is returned unchanged, and a participant
// who left is reactivated instead of duplicated.
func (s *Service) AddParticipant(ctx context.Context, sessionID, userID string) (*models.Participant, error) {
	if _, err := s.getSession(ctx, s.db, sessionID); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, &ValidationError{Field: "user_id", Message: "unknown user: " + userID}
	}

	now := time.Now().UTC()

	existing, err := s.getParticipant(ctx, s.db, sessionID, userID)
	switch err.(type) {
	case nil:
		if existing.Status != models.ParticipantLeft {
			return &existing, nil
		}
		_, err = s.db.ExecContext(ctx, `
			UPDATE participant SET status = $1, is_online = TRUE, last_seen_at = $2
			WHERE session_id = $3 AND user_id = $4
		`, models.ParticipantJoined, now, sessionID, userID)
		if err != nil {
			return nil, err
		}
		slog.Info("participant rejoined", "session_id", sessionID, "user_id", userID)
	case *NotFoundError:
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO participant (session_id, user_id, status, is_online, last_seen_at, joined_at)
			VALUES ($1, $2, $3, TRUE, $4, $5)
		`, sessionID, userID, models.ParticipantJoined, now, now)
		if err != nil {
			return nil, err
		}
		slog.Info("participant joined", "session_id", sessionID, "user_id", userID)
	default:
		return nil, err
	}

	p, err := s.getParticipant(ctx, s.db, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LeaveSession marks the participant left and offline. The row is kept;
// rejoining reactivates it.
func (s *Service) LeaveSession(ctx context.Context, sessionID, userID string) error {
	p, err := s.getParticipant(ctx, s.db, sessionID, userID)
	if err != nil {
		return err
	}
	if p.Status == models.ParticipantLeft {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE participant SET status = $1, is_online = FALSE, last_seen_at = $2
		WHERE session_id = $3 AND user_id = $4
	`, models.ParticipantLeft, time.Now().UTC(), sessionID, userID)
	if err != nil {
		return err
	}

	slog.Info("participant left", "session_id", sessionID, "user_id", userID)
	return nil
}

// MarkOnline records presence. Online status feeds the auto-reveal
// threshold, so a reconnecting participant starts counting again.
func (s *Service) MarkOnline(ctx context.Context, sessionID, userID string) error {
	return s.setPresence(ctx, sessionID, userID, true)
}

// MarkOffline records a disconnect so the participant stops blocking
// auto-reveal.
func (s *Service) MarkOffline(ctx context.Context, sessionID, userID string) error {
	return s.setPresence(ctx, sessionID, userID, false)
}

func (s *Service) setPresence(ctx context.Context, sessionID, userID string, online bool) error {
	if _, err := s.getParticipant(ctx, s.db, sessionID, userID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE participant SET is_online = $1, last_seen_at = $2
		WHERE session_id = $3 AND user_id = $4
	`, online, time.Now().UTC(), sessionID, userID)
	return err
}
