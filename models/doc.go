// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the
estimation engine.

# Request Types

Types for incoming operation payloads:

  - CreateSessionRequest: name, scale, option flags, facilitator, issue list
  - SubmitVoteRequest: voter_id, value, rationale

# Domain Types

Internal data structures:

  - Session: one facilitated estimation event and its state machine
  - Participant: a user's membership and presence in a session
  - IssueAssignment: one issue bound to one session with its own voting progress
  - Vote: one participant's estimate for one (assignment, round)
  - User: identity supplied by the external user directory

# Response Types

Projections returned to callers:

  - SessionDetail: session + assignments + participants
  - RevealedVote: a revealed vote, anonymized when the session requires it
  - VoteStatistics: per-round aggregation with the consensus judgment

# Status Constants

Session lifecycle:

	created → waiting → voting → discussing → completed

Issue assignment lifecycle:

	pending → voting → discussing → estimated
	                 ↘ skipped    ↙ (new round returns discussing → voting)

Participant lifecycle:

	invited | joined | voting | voted | left

Transition legality is encoded in one table per entity (status.go) and
checked through CanSessionTransition, CanIssueTransition, and
CanParticipantTransition.
*/
package models
