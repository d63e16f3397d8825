package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"docuvert/core"
)

// openTestDB runs migrations against a fresh temp database and returns a
// working connection.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	conn, err := NewSQLiteConnectionWithDefaults(path)
	if err != nil {
		t.Fatalf("NewSQLiteConnectionWithDefaults: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testSessionID(t *testing.T) string {
	t.Helper()
	id, err := core.GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID: %v", err)
	}
	return id
}

func TestMigrationsApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	// Re-running is a no-op, not an error.
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	version, dirty, err := MigrationVersion(path)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if dirty {
		t.Error("database reported dirty after clean migration")
	}
	if version != 2 {
		t.Errorf("migration version = %d, want 2", version)
	}
}

func TestSessionRegistryCreateGetRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	registry := NewSessionRegistry(conn)
	sessionID := testSessionID(t)

	id, err := registry.Create(context.Background(), SessionRecord{
		SessionID:  sessionID,
		Filename:   "report.pdf",
		TotalPages: 7,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Error("Create returned zero id")
	}

	record, err := registry.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Filename != "report.pdf" || record.TotalPages != 7 {
		t.Errorf("record = %+v", record)
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestSessionRegistryGetUnknown(t *testing.T) {
	conn := openTestDB(t)
	registry := NewSessionRegistry(conn)

	_, err := registry.Get(context.Background(), testSessionID(t))
	if !core.IsNotFoundError(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestSessionRegistryCreateRejectsBadID(t *testing.T) {
	conn := openTestDB(t)
	registry := NewSessionRegistry(conn)

	_, err := registry.Create(context.Background(), SessionRecord{SessionID: "../escape"})
	if !core.IsValidationError(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestSessionRegistryList(t *testing.T) {
	conn := openTestDB(t)
	registry := NewSessionRegistry(conn)

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = testSessionID(t)
		if _, err := registry.Create(context.Background(), SessionRecord{
			SessionID:  ids[i],
			Filename:   "doc.pdf",
			TotalPages: i + 1,
		}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	records, err := registry.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	// Newest first: the last inserted session leads.
	if records[0].SessionID != ids[2] {
		t.Errorf("first record = %s, want %s", records[0].SessionID, ids[2])
	}

	count, err := registry.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}
