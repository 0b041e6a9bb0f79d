// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package testutil provides test helpers shared across packages.

SetupTestDB opens a throwaway sqlite database with the full schema in a
per-test temp directory; tests never need an external database.

The Fake* types are in-memory doubles for the engine's external
collaborators (issue store, user directory, project registry). The issue
store double records estimate writes and can be flipped to fail them, so
finalize-ordering behavior is testable.
*/
package testutil
