// Package testutils holds helpers shared by package tests.
package testutils

import (
	"database/sql"
	"testing"

	"github.com/alimgiray/persons/pkg/config"
	"github.com/alimgiray/persons/pkg/database"
)

// NewTestDB returns a migrated in-memory database that is closed when the test ends
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
