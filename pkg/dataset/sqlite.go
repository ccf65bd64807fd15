package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// commitEvery is the number of rows written per transaction.
const commitEvery = 1000

// SQLiteSink stores one row per field and segment in a SQLite database.
// Every sink writes under its own run ID so repeated runs can share a file.
type SQLiteSink struct {
	db     *sql.DB
	tx     *sql.Tx
	stmt   *sql.Stmt
	runID  string
	schema Schema
	rows   int
	logger *slog.Logger
}

// NewSQLiteSink opens (creating if needed) the database at path.
func NewSQLiteSink(path string, schema Schema) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps the open transaction and the pragmas together.
	db.SetMaxOpenConns(1)

	s := &SQLiteSink{
		db:     db,
		runID:  uuid.NewString(),
		schema: schema,
		logger: slog.Default().With("component", "dataset.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.begin(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("SQLite sink initialized", "path", path, "run_id", s.runID)
	return s, nil
}

// RunID returns the ID under which this sink stores rows.
func (s *SQLiteSink) RunID() string {
	return s.runID
}

func (s *SQLiteSink) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version)
	}
	return nil
}

func (s *SQLiteSink) begin() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(insertCategorization)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	s.tx = tx
	s.stmt = stmt
	return nil
}

func (s *SQLiteSink) commit() error {
	s.stmt.Close()
	err := s.tx.Commit()
	s.tx, s.stmt = nil, nil
	if err != nil {
		return fmt.Errorf("failed to commit categorizations: %w", err)
	}
	return nil
}

// Write implements Sink. A field that failed to evaluate is stored as a single
// row with NULL segment and category and the error message.
func (s *SQLiteSink) Write(ctx context.Context, row *Row) error {
	if s.tx == nil {
		return fmt.Errorf("sqlite sink is closed")
	}

	now := time.Now().UTC()
	for _, fr := range row.Fields {
		if fr.Err != nil {
			if _, err := s.stmt.ExecContext(ctx, s.runID, row.Record.Line, fr.Field, fr.URL, nil, nil, fr.Err.Error(), now); err != nil {
				return fmt.Errorf("failed to store line %d: %w", row.Record.Line, err)
			}
			continue
		}
		for _, r := range fr.Results {
			if _, err := s.stmt.ExecContext(ctx, s.runID, row.Record.Line, fr.Field, fr.URL, r.Segment, r.Category, nil, now); err != nil {
				return fmt.Errorf("failed to store line %d: %w", row.Record.Line, err)
			}
		}
	}

	s.rows++
	if s.rows%commitEvery == 0 {
		if err := s.commit(); err != nil {
			return err
		}
		return s.begin()
	}
	return nil
}

// Close commits pending rows and closes the database.
func (s *SQLiteSink) Close() error {
	var err error
	if s.tx != nil {
		err = s.commit()
	}
	if cerr := s.db.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close sqlite database: %w", cerr)
	}
	if err == nil {
		s.logger.Debug("SQLite sink closed", "run_id", s.runID, "rows", s.rows)
	}
	return err
}
