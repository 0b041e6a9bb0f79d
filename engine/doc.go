// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the collaborative estimation session: the
session orchestrator plus the issue queue, vote ledger, and participant
registry it composes.

# Service

All operations hang off Service, constructed with the database handle
and the three external collaborators:

	svc := engine.NewService(conn, issueStore, userDirectory, projectRegistry)

Operations (session.go, queue.go, voting.go, participant.go, stats.go):

  - CreateSession, GetSession, ListSessionsByProject
  - AddParticipant, LeaveSession, MarkOnline, MarkOffline
  - StartSession, StartVoting, SubmitVote, RevealVotes
  - FinalizeEstimate, MoveToNextIssue, StartNewRound
  - ListAssignments, FindAssignment, GetVoteStatistics, GetScales

# Authority and Phases

Facilitator-gated operations (start, reveal, finalize, next issue, new
round) reject other callers with AuthorizationError. Phase legality is
checked against the transition tables in package models and violations
return StateError. Voting is open to any active participant.

# Concurrency

Participants vote from independent request handlers, so vote writes race
with each other and with reveals. Every assignment-scoped mutation runs
under a per-assignment mutex, which makes the vote write and the
auto-reveal threshold check a single critical section: the last two
simultaneous voters cannot both observe an incomplete count and leave
the round unrevealed. Different assignments proceed independently.

# Auto Reveal

With the session's auto_reveal flag set, a submit that brings the
distinct voter count up to the number of online active participants
reveals the round on the spot, acting as the facilitator. A failed
auto-reveal is logged and the submit still succeeds; the vote is already
durable.

# Finalize Ordering

FinalizeEstimate writes the estimate to the external issue store before
committing the local estimated status. A failed external write surfaces
as DependencyError and leaves the assignment unchanged.

# Errors

ValidationError, AuthorizationError, StateError, NotFoundError, and
DependencyError carry the session/issue/field context a caller needs to
re-render. Use errors.As to branch on them.
*/
package engine
