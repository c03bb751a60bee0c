package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fixora/archive/application/port/outbound"
)

// foreign_key_violation: the log row vanished between check and insert
const pqForeignKeyViolation = "23503"

// PostgresLogStorage stores logs in archive_logs / archive_entries
type PostgresLogStorage struct {
	db *sql.DB
}

func NewPostgresLogStorage(db *sql.DB) *PostgresLogStorage {
	return &PostgresLogStorage{db: db}
}

func (s *PostgresLogStorage) Open(ctx context.Context, name string) (outbound.LogHandle, bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO archive_logs (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return &postgresHandle{db: s.db, name: name}, rowsAffected == 1, nil
}

func (s *PostgresLogStorage) ReadLines(ctx context.Context, name string) ([]string, error) {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, outbound.ErrLogNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT line FROM archive_entries WHERE log_name = $1 ORDER BY seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	lines := []string{}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return lines, nil
}

func (s *PostgresLogStorage) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM archive_logs WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check log: %w", err)
	}
	return exists, nil
}

type postgresHandle struct {
	mu     sync.Mutex
	db     *sql.DB
	name   string
	closed bool
}

func (h *postgresHandle) AppendLine(ctx context.Context, line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return outbound.ErrLogClosed
	}

	result, err := h.db.ExecContext(ctx, `
		INSERT INTO archive_entries (id, log_name, line)
		SELECT $1, $2, $3
		WHERE EXISTS (SELECT 1 FROM archive_logs WHERE name = $2)
	`, uuid.NewString(), h.name, line)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return outbound.ErrLogRemoved
		}
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return outbound.ErrLogRemoved
	}
	return nil
}

func (h *postgresHandle) Delete(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.db.ExecContext(ctx, `DELETE FROM archive_logs WHERE name = $1`, h.name)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return outbound.ErrLogNotFound
	}
	h.closed = true
	return nil
}

func (h *postgresHandle) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}
