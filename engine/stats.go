// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"

	"github.com/danielhkuo/story-poker/models"
)

// consensusSpread is the largest max-min gap of numeric estimates still
// treated as agreement. Applied to raw values regardless of scale, so a
// fibonacci 5 vs 8 round fails consensus while a linear 7 vs 8 passes.
const consensusSpread = 1.0

// GetVoteStatistics aggregates the votes of one (assignment, round).
// round <= 0 selects the assignment's current round. Qualitative tokens
// count toward VoteCount but are excluded from the numeric aggregation.
func (s *Service) GetVoteStatistics(ctx context.Context, sessionID, issueID string, round int) (*models.VoteStatistics, error) {
	assignment, err := s.getAssignment(ctx, s.db, sessionID, issueID)
	if err != nil {
		return nil, err
	}
	if round <= 0 {
		round = assignment.VotingRound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT estimate FROM vote WHERE assignment_id = $1 AND round = $2
	`, assignment.ID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := models.VoteStatistics{
		AssignmentID: assignment.ID,
		Round:        round,
	}

	var sum float64
	for rows.Next() {
		var estimate *float64
		if err := rows.Scan(&estimate); err != nil {
			return nil, err
		}
		stats.VoteCount++
		if estimate == nil {
			continue
		}
		v := *estimate
		stats.NumericCount++
		sum += v
		if stats.Min == nil || v < *stats.Min {
			stats.Min = &v
		}
		if stats.Max == nil || v > *stats.Max {
			stats.Max = &v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.NumericCount > 0 {
		mean := sum / float64(stats.NumericCount)
		stats.Mean = &mean
		stats.HasConsensus = *stats.Max-*stats.Min <= consensusSpread
	}

	return &stats, nil
}
