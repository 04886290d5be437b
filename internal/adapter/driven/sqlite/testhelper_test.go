package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via
// cache=shared. A unique name derived from t.Name() ensures isolation between
// parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename
	// component and cannot be misinterpreted as query parameters in the
	// "file:%s?..." DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// createTestPerson inserts a person with a primary alias and returns both ids.
func createTestPerson(t *testing.T, db *DB, name string) (personID, aliasID int64) {
	t.Helper()

	result, err := db.Writer.ExecContext(context.Background(),
		`INSERT INTO persons (name) VALUES (?)`, name)
	if err != nil {
		t.Fatalf("insert person: %v", err)
	}
	personID, err = result.LastInsertId()
	if err != nil {
		t.Fatalf("person insert id: %v", err)
	}

	result, err = db.Writer.ExecContext(context.Background(),
		`INSERT INTO person_aliases (person_id, is_primary) VALUES (?, 1)`, personID)
	if err != nil {
		t.Fatalf("insert alias: %v", err)
	}
	aliasID, err = result.LastInsertId()
	if err != nil {
		t.Fatalf("alias insert id: %v", err)
	}

	return personID, aliasID
}

// createTestAlias inserts an additional non-primary alias for a person.
func createTestAlias(t *testing.T, db *DB, personID int64) int64 {
	t.Helper()

	result, err := db.Writer.ExecContext(context.Background(),
		`INSERT INTO person_aliases (person_id, is_primary) VALUES (?, 0)`, personID)
	if err != nil {
		t.Fatalf("insert alias: %v", err)
	}
	aliasID, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("alias insert id: %v", err)
	}

	return aliasID
}

// testTime returns a fixed base time offset by the given number of minutes.
func testTime(minutes int) time.Time {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(minutes) * time.Minute)
}
