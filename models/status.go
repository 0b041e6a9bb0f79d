// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Transition tables. One table per entity; phase legality checks go
// through these instead of ad-hoc comparisons scattered across the engine.

var sessionTransitions = map[string][]string{
	SessionCreated:    {SessionWaiting},
	SessionWaiting:    {SessionVoting, SessionCompleted},
	SessionVoting:     {SessionDiscussing, SessionWaiting, SessionCompleted},
	SessionDiscussing: {SessionVoting, SessionWaiting, SessionCompleted},
	SessionCompleted:  {},
}

var issueTransitions = map[string][]string{
	IssuePending:    {IssueVoting, IssueSkipped},
	IssueVoting:     {IssueDiscussing, IssueEstimated, IssueSkipped},
	IssueDiscussing: {IssueVoting, IssueEstimated, IssueSkipped},
	IssueEstimated:  {},
	IssueSkipped:    {},
}

var participantTransitions = map[string][]string{
	ParticipantInvited: {ParticipantJoined, ParticipantLeft},
	ParticipantJoined:  {ParticipantVoting, ParticipantVoted, ParticipantLeft},
	ParticipantVoting:  {ParticipantVoted, ParticipantLeft},
	ParticipantVoted:   {ParticipantVoting, ParticipantLeft},
	ParticipantLeft:    {ParticipantJoined},
}

func canTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanSessionTransition reports whether a session may move between statuses.
func CanSessionTransition(from, to string) bool {
	return canTransition(sessionTransitions, from, to)
}

// CanIssueTransition reports whether an issue assignment may move between statuses.
func CanIssueTransition(from, to string) bool {
	return canTransition(issueTransitions, from, to)
}

// CanParticipantTransition reports whether a participant may move between statuses.
func CanParticipantTransition(from, to string) bool {
	return canTransition(participantTransitions, from, to)
}

// ActiveParticipantStatuses lists participant statuses counted as present
// for voting eligibility and the auto-reveal threshold.
func ActiveParticipantStatuses() []string {
	return []string{ParticipantJoined, ParticipantVoting, ParticipantVoted}
}

// IsActiveParticipantStatus reports whether a participant in this status
// may vote and counts toward the auto-reveal threshold when online.
func IsActiveParticipantStatus(status string) bool {
	switch status {
	case ParticipantJoined, ParticipantVoting, ParticipantVoted:
		return true
	}
	return false
}
