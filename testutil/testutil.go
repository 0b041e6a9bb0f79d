// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/story-poker/db"
	"github.com/danielhkuo/story-poker/models"
)

// SetupTestDB creates a fresh sqlite database with the full schema in a
// per-test temp directory. No external service is needed to run tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection: sqlite serializes writers anyway, and this keeps
	// concurrent test transactions off SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// FakeIssueStore is an in-memory issue tracker double. Estimates records
// every SetEstimate write; FailSetEstimate forces the write to fail.
type FakeIssueStore struct {
	Issues          map[string]bool
	Estimates       map[string]float64
	FailSetEstimate bool
}

func NewFakeIssueStore(issueIDs ...string) *FakeIssueStore {
	issues := make(map[string]bool, len(issueIDs))
	for _, id := range issueIDs {
		issues[id] = true
	}
	return &FakeIssueStore{
		Issues:    issues,
		Estimates: make(map[string]float64),
	}
}

func (f *FakeIssueStore) Exists(ctx context.Context, issueID string) (bool, error) {
	return f.Issues[issueID], nil
}

func (f *FakeIssueStore) SetEstimate(ctx context.Context, issueID string, value float64) error {
	if f.FailSetEstimate {
		return errors.New("issue store unavailable")
	}
	f.Estimates[issueID] = value
	return nil
}

// FakeUserDirectory resolves user ids to identities; unknown ids fail
// like a real directory would.
type FakeUserDirectory struct {
	Users map[string]models.User
}

func NewFakeUserDirectory(userIDs ...string) *FakeUserDirectory {
	users := make(map[string]models.User, len(userIDs))
	for _, id := range userIDs {
		users[id] = models.User{ID: id, Name: "User " + id, Email: id + "@example.com"}
	}
	return &FakeUserDirectory{Users: users}
}

func (f *FakeUserDirectory) Get(ctx context.Context, userID string) (models.User, error) {
	user, ok := f.Users[userID]
	if !ok {
		return models.User{}, errors.New("user not found: " + userID)
	}
	return user, nil
}

// FakeProjectRegistry accepts a fixed set of project ids.
type FakeProjectRegistry struct {
	Projects map[string]bool
}

func NewFakeProjectRegistry(projectIDs ...string) *FakeProjectRegistry {
	projects := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		projects[id] = true
	}
	return &FakeProjectRegistry{Projects: projects}
}

func (f *FakeProjectRegistry) Exists(ctx context.Context, projectID string) (bool, error) {
	return f.Projects[projectID], nil
}
