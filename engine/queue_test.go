// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/story-poker/models"
)

func TestStartVoting(t *testing.T) {
	f := newTestService(t, "ISS-1", "ISS-2")
	detail := createStartedSession(t, f, defaultRequest("ISS-1", "ISS-2"), "alice", "bob")
	ctx := context.Background()

	assignment, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator")
	if err != nil {
		t.Fatalf("StartVoting failed: %v", err)
	}
	if assignment.IssueID != "ISS-1" {
		t.Errorf("expected voting on first issue, got %s", assignment.IssueID)
	}
	if assignment.Status != models.IssueVoting {
		t.Errorf("expected voting assignment, got %s", assignment.Status)
	}

	after, err := f.svc.GetSession(ctx, detail.Session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Session.Status != models.SessionVoting {
		t.Errorf("expected voting session, got %s", after.Session.Status)
	}
	for _, p := range after.Participants {
		if p.Status != models.ParticipantVoting {
			t.Errorf("expected %s voting, got %s", p.UserID, p.Status)
		}
	}
}

func TestStartVoting_Twice(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator")
	var serr *StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StateError on second start, got %v", err)
	}
}

func TestStartVoting_NotFacilitator(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")

	_, err := f.svc.StartVoting(context.Background(), detail.Session.ID, "alice")
	var aerr *AuthorizationError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestFinalizeEstimate(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	submitVote(t, f, detail.Session.ID, "ISS-1", "alice", "5")
	if _, err := f.svc.RevealVotes(ctx, detail.Session.ID, "ISS-1", "facilitator"); err != nil {
		t.Fatal(err)
	}

	assignment, err := f.svc.FinalizeEstimate(ctx, detail.Session.ID, "ISS-1", "facilitator", 5)
	if err != nil {
		t.Fatalf("FinalizeEstimate failed: %v", err)
	}
	if assignment.Status != models.IssueEstimated {
		t.Errorf("expected estimated assignment, got %s", assignment.Status)
	}
	if assignment.FinalEstimate == nil || *assignment.FinalEstimate != 5 {
		t.Errorf("expected final estimate 5, got %v", assignment.FinalEstimate)
	}
	if !assignment.HasConsensus {
		t.Error("expected consensus flag on finalized assignment")
	}

	// The canonical estimate went to the issue store
	if got := f.issues.Estimates["ISS-1"]; got != 5 {
		t.Errorf("expected issue store estimate 5, got %v", got)
	}
}

func TestFinalizeEstimate_DuringVoting(t *testing.T) {
	// The facilitator may finalize without an explicit reveal.
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}

	assignment, err := f.svc.FinalizeEstimate(ctx, detail.Session.ID, "ISS-1", "facilitator", 8)
	if err != nil {
		t.Fatalf("FinalizeEstimate during voting failed: %v", err)
	}
	if assignment.Status != models.IssueEstimated {
		t.Errorf("expected estimated assignment, got %s", assignment.Status)
	}
}

func TestFinalizeEstimate_IssueStoreFailure(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	submitVote(t, f, detail.Session.ID, "ISS-1", "alice", "5")
	if _, err := f.svc.RevealVotes(ctx, detail.Session.ID, "ISS-1", "facilitator"); err != nil {
		t.Fatal(err)
	}

	f.issues.FailSetEstimate = true
	_, err := f.svc.FinalizeEstimate(ctx, detail.Session.ID, "ISS-1", "facilitator", 5)
	var derr *DependencyError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}

	// The assignment is untouched and finalize can be retried
	after, err := f.svc.FindAssignment(ctx, detail.Session.ID, "ISS-1")
	if err != nil {
		t.Fatal(err)
	}
	if after.Status != models.IssueDiscussing {
		t.Errorf("expected assignment still discussing, got %s", after.Status)
	}
	if after.FinalEstimate != nil {
		t.Errorf("expected no final estimate, got %v", *after.FinalEstimate)
	}

	f.issues.FailSetEstimate = false
	if _, err := f.svc.FinalizeEstimate(ctx, detail.Session.ID, "ISS-1", "facilitator", 5); err != nil {
		t.Fatalf("retry after store recovery failed: %v", err)
	}
}

func TestFinalizeEstimate_AlreadyEstimated(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.FinalizeEstimate(ctx, detail.Session.ID, "ISS-1", "facilitator", 5); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.FinalizeEstimate(ctx, detail.Session.ID, "ISS-1", "facilitator", 8)
	var serr *StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StateError on double finalize, got %v", err)
	}
	if got := f.issues.Estimates["ISS-1"]; got != 5 {
		t.Errorf("double finalize overwrote the estimate: %v", got)
	}
}

func TestMoveToNextIssue(t *testing.T) {
	f := newTestService(t, "ISS-1", "ISS-2")
	detail := createStartedSession(t, f, defaultRequest("ISS-1", "ISS-2"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.FinalizeEstimate(ctx, detail.Session.ID, "ISS-1", "facilitator", 5); err != nil {
		t.Fatal(err)
	}

	next, err := f.svc.MoveToNextIssue(ctx, detail.Session.ID, "facilitator")
	if err != nil {
		t.Fatalf("MoveToNextIssue failed: %v", err)
	}
	if next == nil || next.IssueID != "ISS-2" {
		t.Fatalf("expected ISS-2 next, got %+v", next)
	}
	if next.Status != models.IssuePending {
		t.Errorf("expected pending next assignment, got %s", next.Status)
	}

	after, err := f.svc.GetSession(ctx, detail.Session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Session.Status != models.SessionWaiting {
		t.Errorf("expected waiting session, got %s", after.Session.Status)
	}
	if after.Session.CurrentIssueID == nil || *after.Session.CurrentIssueID != "ISS-2" {
		t.Errorf("expected current issue ISS-2, got %v", after.Session.CurrentIssueID)
	}
}

func TestMoveToNextIssue_SkipsUnfinalized(t *testing.T) {
	f := newTestService(t, "ISS-1", "ISS-2")
	detail := createStartedSession(t, f, defaultRequest("ISS-1", "ISS-2"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	submitVote(t, f, detail.Session.ID, "ISS-1", "alice", "5")

	// Advancing without a finalized estimate marks the issue skipped
	if _, err := f.svc.MoveToNextIssue(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}

	skipped, err := f.svc.FindAssignment(ctx, detail.Session.ID, "ISS-1")
	if err != nil {
		t.Fatal(err)
	}
	if skipped.Status != models.IssueSkipped {
		t.Errorf("expected skipped assignment, got %s", skipped.Status)
	}
	if _, ok := f.issues.Estimates["ISS-1"]; ok {
		t.Error("skipped issue should not receive an estimate")
	}
}

func TestMoveToNextIssue_CompletesSession(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.FinalizeEstimate(ctx, detail.Session.ID, "ISS-1", "facilitator", 5); err != nil {
		t.Fatal(err)
	}

	next, err := f.svc.MoveToNextIssue(ctx, detail.Session.ID, "facilitator")
	if err != nil {
		t.Fatalf("MoveToNextIssue failed: %v", err)
	}
	if next != nil {
		t.Fatalf("expected queue exhausted, got %+v", next)
	}

	after, err := f.svc.GetSession(ctx, detail.Session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Session.Status != models.SessionCompleted {
		t.Errorf("expected completed session, got %s", after.Session.Status)
	}
	if after.Session.CurrentIssueID != nil {
		t.Errorf("expected cleared current issue, got %v", *after.Session.CurrentIssueID)
	}
}

func TestMoveToNextIssue_AfterCompletion(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.MoveToNextIssue(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.MoveToNextIssue(ctx, detail.Session.ID, "facilitator")
	var serr *StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StateError after completion, got %v", err)
	}
}

func TestStartNewRound(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice", "bob")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}
	submitVote(t, f, detail.Session.ID, "ISS-1", "alice", "3")
	submitVote(t, f, detail.Session.ID, "ISS-1", "bob", "13")
	if _, err := f.svc.RevealVotes(ctx, detail.Session.ID, "ISS-1", "facilitator"); err != nil {
		t.Fatal(err)
	}

	assignment, err := f.svc.StartNewRound(ctx, detail.Session.ID, "ISS-1", "facilitator")
	if err != nil {
		t.Fatalf("StartNewRound failed: %v", err)
	}
	if assignment.VotingRound != 2 {
		t.Errorf("expected round 2, got %d", assignment.VotingRound)
	}
	if assignment.Status != models.IssueVoting {
		t.Errorf("expected voting assignment, got %s", assignment.Status)
	}

	// Round 2 votes land on round 2; round 1 stays recorded
	vote := submitVote(t, f, detail.Session.ID, "ISS-1", "alice", "8")
	if vote.Round != 2 {
		t.Errorf("expected round 2 vote, got %d", vote.Round)
	}

	round1, err := f.svc.GetVoteStatistics(ctx, detail.Session.ID, "ISS-1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if round1.VoteCount != 2 {
		t.Errorf("expected 2 preserved round-1 votes, got %d", round1.VoteCount)
	}
	round2, err := f.svc.GetVoteStatistics(ctx, detail.Session.ID, "ISS-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if round2.VoteCount != 1 {
		t.Errorf("expected 1 round-2 vote, got %d", round2.VoteCount)
	}
}

func TestStartNewRound_RequiresDiscussion(t *testing.T) {
	f := newTestService(t, "ISS-1")
	detail := createStartedSession(t, f, defaultRequest("ISS-1"), "alice")
	ctx := context.Background()

	if _, err := f.svc.StartVoting(ctx, detail.Session.ID, "facilitator"); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.StartNewRound(ctx, detail.Session.ID, "ISS-1", "facilitator")
	var serr *StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StateError before reveal, got %v", err)
	}
}
