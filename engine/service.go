// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"sync"

	"github.com/danielhkuo/story-poker/models"
	"github.com/danielhkuo/story-poker/scales"
)

// IssueStore is the external issue tracker the engine reads issue
// identity from and writes final estimates back to.
type IssueStore interface {
	Exists(ctx context.Context, issueID string) (bool, error)
	SetEstimate(ctx context.Context, issueID string, value float64) error
}

// UserDirectory supplies participant identity for revealed-vote projections.
type UserDirectory interface {
	Get(ctx context.Context, userID string) (models.User, error)
}

// ProjectRegistry supplies the project/sprint scope a session attaches to.
type ProjectRegistry interface {
	Exists(ctx context.Context, projectID string) (bool, error)
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Service is the estimation engine: the session orchestrator plus the
// issue queue, vote ledger, and participant registry it composes. All
// state-changing operations go through it.
type Service struct {
	db       *sql.DB
	issues   IssueStore
	users    UserDirectory
	projects ProjectRegistry

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(db *sql.DB, issues IssueStore, users UserDirectory, projects ProjectRegistry) *Service {
	return &Service{
		db:       db,
		issues:   issues,
		users:    users,
		projects: projects,
		locks:    make(map[string]*sync.Mutex),
	}
}

// GetScales returns the available estimation scales.
func (s *Service) GetScales() []scales.Definition {
	return scales.All()
}

// assignmentLock returns the mutex serializing mutations of one
// assignment. The vote write and the auto-reveal threshold check must
// run as one critical section; so must status flips and round
// increments. Operations on different assignments stay independent.
func (s *Service) assignmentLock(assignmentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[assignmentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[assignmentID] = lock
	}
	return lock
}
