// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/story-poker/models"
)

func TestAddParticipant(t *testing.T) {
	f := newTestService(t, "ISS-1")
	ctx := context.Background()

	detail, err := f.svc.CreateSession(ctx, defaultRequest("ISS-1"))
	if err != nil {
		t.Fatal(err)
	}

	p, err := f.svc.AddParticipant(ctx, detail.Session.ID, "alice")
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if p.Status != models.ParticipantJoined {
		t.Errorf("expected joined participant, got %s", p.Status)
	}
	if !p.IsOnline {
		t.Error("expected joining participant to be online")
	}
}

func TestAddParticipant_Idempotent(t *testing.T) {
	f := newTestService(t, "ISS-1")
	ctx := context.Background()

	detail, err := f.svc.CreateSession(ctx, defaultRequest("ISS-1"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.AddParticipant(ctx, detail.Session.ID, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AddParticipant(ctx, detail.Session.ID, "alice"); err != nil {
		t.Fatalf("repeat join should be a no-op, got %v", err)
	}

	var count int
	err = f.db.QueryRow(`
		SELECT COUNT(*) FROM participant WHERE session_id = $1 AND user_id = $2
	`, detail.Session.ID, "alice").Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 participant row, got %d", count)
	}
}

func TestAddParticipant_UnknownUser(t *testing.T) {
	f := newTestService(t, "ISS-1")
	ctx := context.Background()

	detail, err := f.svc.CreateSession(ctx, defaultRequest("ISS-1"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.AddParticipant(ctx, detail.Session.ID, "ghost")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLeaveSession(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if err := f.svc.LeaveSession(ctx, detail.Session.ID, "alice"); err != nil {
		t.Fatalf("LeaveSession failed: %v", err)
	}

	after, err := f.svc.GetSession(ctx, detail.Session.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range after.Participants {
		if p.UserID != "alice" {
			continue
		}
		if p.Status != models.ParticipantLeft {
			t.Errorf("expected left status, got %s", p.Status)
		}
		if p.IsOnline {
			t.Error("expected leaver to be offline")
		}
	}

	// Leaving twice is harmless
	if err := f.svc.LeaveSession(ctx, detail.Session.ID, "alice"); err != nil {
		t.Fatalf("repeat leave should be a no-op, got %v", err)
	}
}

func TestLeaveSession_Rejoin(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if err := f.svc.LeaveSession(ctx, detail.Session.ID, "alice"); err != nil {
		t.Fatal(err)
	}
	p, err := f.svc.AddParticipant(ctx, detail.Session.ID, "alice")
	if err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	if p.Status != models.ParticipantJoined {
		t.Errorf("expected rejoined status, got %s", p.Status)
	}
	if !p.IsOnline {
		t.Error("expected rejoined participant to be online")
	}
}

func TestPresence(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if err := f.svc.MarkOffline(ctx, detail.Session.ID, "alice"); err != nil {
		t.Fatalf("MarkOffline failed: %v", err)
	}

	after, err := f.svc.GetSession(ctx, detail.Session.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range after.Participants {
		if p.UserID == "alice" {
			if p.IsOnline {
				t.Error("expected alice offline")
			}
			// Presence is orthogonal to participation status
			if p.Status != models.ParticipantJoined {
				t.Errorf("presence change altered status: %s", p.Status)
			}
		}
	}

	if err := f.svc.MarkOnline(ctx, detail.Session.ID, "alice"); err != nil {
		t.Fatalf("MarkOnline failed: %v", err)
	}
	after, err = f.svc.GetSession(ctx, detail.Session.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range after.Participants {
		if p.UserID == "alice" && !p.IsOnline {
			t.Error("expected alice back online")
		}
	}
}

func TestPresence_UnknownParticipant(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")

	err := f.svc.MarkOnline(context.Background(), detail.Session.ID, "mallory")
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
