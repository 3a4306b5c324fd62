// Package history keeps an in-process journal of finished allocations.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"junkfactory/pkg/log"
	"junkfactory/pkg/models"

	_ "modernc.org/sqlite"
)

const (
	// MemoryDSN keeps the journal for the lifetime of the process only.
	MemoryDSN = ":memory:"
	// DefaultLimit is used by List when no positive limit is given.
	DefaultLimit = 50
)

// Store records allocation outcomes in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewMemoryStore opens a journal that disappears with the process.
func NewMemoryStore() (*Store, error) {
	return NewStore(MemoryDSN)
}

// NewStore opens the journal at dsn and creates the schema.
func NewStore(dsn string) (*Store, error) {
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}
	// every connection to :memory: is a separate database
	database.SetMaxOpenConns(1)

	store := &Store{db: database}
	if err := store.Initialize(); err != nil {
		_ = database.Close()
		return nil, err
	}
	return store, nil
}

// Initialize creates the database schema.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(context.Background(), Schema); err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one finished allocation.
func (s *Store) Record(ctx context.Context, record models.AllocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var targetPath, targetFilename sql.NullString
	if target := record.Outcome.Target; target != nil {
		targetPath = sql.NullString{String: target.Path, Valid: true}
		targetFilename = sql.NullString{String: target.Filename, Valid: true}
	}

	request, outcome := record.Request, record.Outcome
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO allocations (request_id, directory, filename, size, unit, use_sparse, outcome, method,
		                          bytes_written, elapsed_ns, reason, message, target_path, target_filename,
		                          started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID, request.Directory, request.Filename, request.Size, string(request.Unit), request.UseSparse,
		string(outcome.Kind), string(outcome.Method), outcome.BytesWritten, int64(outcome.Elapsed),
		outcome.Reason, outcome.Message, targetPath, targetFilename,
		record.StartedAt.UnixNano(), record.FinishedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	log.Debug().Str("request_id", request.ID).Str("outcome", string(outcome.Kind)).Msg("Allocation recorded")
	return nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]models.AllocationRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, directory, filename, size, unit, use_sparse, outcome, method,
		        bytes_written, elapsed_ns, reason, message, target_path, target_filename,
		        started_at, finished_at
		 FROM allocations
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer rows.Close()

	records := []models.AllocationRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return records, nil
}

// Count returns the number of recorded allocations.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM allocations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return count, nil
}

func scanRecord(rows *sql.Rows) (models.AllocationRecord, error) {
	var (
		record                         models.AllocationRecord
		unit, kind, method             string
		elapsed, startedAt, finishedAt int64
		targetPath, targetFilename     sql.NullString
	)

	err := rows.Scan(
		&record.Request.ID, &record.Request.Directory, &record.Request.Filename, &record.Request.Size,
		&unit, &record.Request.UseSparse, &kind, &method,
		&record.Outcome.BytesWritten, &elapsed, &record.Outcome.Reason, &record.Outcome.Message,
		&targetPath, &targetFilename, &startedAt, &finishedAt,
	)
	if err != nil {
		return models.AllocationRecord{}, err
	}

	record.Request.Unit = models.Unit(unit)
	record.Outcome.RequestID = record.Request.ID
	record.Outcome.Kind = models.OutcomeKind(kind)
	record.Outcome.Method = models.Method(method)
	record.Outcome.Elapsed = time.Duration(elapsed)
	if targetPath.Valid {
		record.Outcome.Target = &models.ResolvedTarget{Path: targetPath.String, Filename: targetFilename.String}
	}
	record.StartedAt = time.Unix(0, startedAt).UTC()
	record.FinishedAt = time.Unix(0, finishedAt).UTC()
	return record, nil
}
