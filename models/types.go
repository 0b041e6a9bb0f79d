// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Session status constants
const (
	SessionCreated    = "created"
	SessionWaiting    = "waiting"
	SessionVoting     = "voting"
	SessionDiscussing = "discussing"
	SessionCompleted  = "completed"
)

// Issue assignment status constants
const (
	IssuePending    = "pending"
	IssueVoting     = "voting"
	IssueDiscussing = "discussing"
	IssueEstimated  = "estimated"
	IssueSkipped    = "skipped"
)

// Participant status constants
const (
	ParticipantInvited = "invited"
	ParticipantJoined  = "joined"
	ParticipantVoting  = "voting"
	ParticipantVoted   = "voted"
	ParticipantLeft    = "left"
)

// Request types

type CreateSessionRequest struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Scale               string   `json:"scale"`
	AnonymousVoting     bool     `json:"anonymous_voting"`
	AutoReveal          bool     `json:"auto_reveal"`
	DiscussionTimeLimit int      `json:"discussion_time_limit_seconds"`
	FacilitatorID       string   `json:"facilitator_id"`
	ProjectID           string   `json:"project_id"`
	SprintID            *string  `json:"sprint_id,omitempty"`
	IssueIDs            []string `json:"issue_ids"`
}

type SubmitVoteRequest struct {
	VoterID   string `json:"voter_id"`
	Value     string `json:"value"`
	Rationale string `json:"rationale,omitempty"`
}

// Domain types

type Session struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	ProjectID           string    `json:"project_id"`
	SprintID            *string   `json:"sprint_id,omitempty"`
	Scale               string    `json:"scale"`
	Status              string    `json:"status"`
	AnonymousVoting     bool      `json:"anonymous_voting"`
	AutoReveal          bool      `json:"auto_reveal"`
	DiscussionTimeLimit int       `json:"discussion_time_limit_seconds"`
	CurrentIssueID      *string   `json:"current_issue_id,omitempty"`
	FacilitatorID       string    `json:"facilitator_id"`
	CreatedAt           time.Time `json:"created_at"`
}

type Participant struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	IsOnline   bool      `json:"is_online"`
	LastSeenAt time.Time `json:"last_seen_at"`
	JoinedAt   time.Time `json:"joined_at"`
}

type IssueAssignment struct {
	ID              string   `json:"id"`
	SessionID       string   `json:"session_id"`
	IssueID         string   `json:"issue_id"`
	Status          string   `json:"status"`
	Position        int      `json:"position"`
	VotingRound     int      `json:"voting_round"`
	FinalEstimate   *float64 `json:"final_estimate,omitempty"`
	HasConsensus    bool     `json:"has_consensus"`
	DiscussionNotes string   `json:"discussion_notes,omitempty"`
}

type Vote struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	VoterID      string    `json:"-"` // Exposed only through RevealedVote
	Round        int       `json:"round"`
	Estimate     *float64  `json:"estimate,omitempty"`
	EstimateText string    `json:"estimate_text"`
	Rationale    string    `json:"rationale,omitempty"`
	IsRevealed   bool      `json:"is_revealed"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Response types

// SessionDetail is the aggregate returned by session reads: the session
// row plus its assignments (in position order) and participants.
type SessionDetail struct {
	Session      Session           `json:"session"`
	Assignments  []IssueAssignment `json:"assignments"`
	Participants []Participant     `json:"participants"`
}

// RevealedVote is the projection returned by a reveal. Voter identity is
// blanked when the session uses anonymous voting; the stored vote keeps it.
type RevealedVote struct {
	VoteID       string   `json:"vote_id"`
	VoterID      string   `json:"voter_id,omitempty"`
	VoterName    string   `json:"voter_name,omitempty"`
	Round        int      `json:"round"`
	Estimate     *float64 `json:"estimate,omitempty"`
	EstimateText string   `json:"estimate_text"`
	Rationale    string   `json:"rationale,omitempty"`
}

type VoteStatistics struct {
	AssignmentID string   `json:"assignment_id"`
	Round        int      `json:"round"`
	VoteCount    int      `json:"vote_count"`
	NumericCount int      `json:"numeric_count"`
	Mean         *float64 `json:"mean,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	HasConsensus bool     `json:"has_consensus"`
}
