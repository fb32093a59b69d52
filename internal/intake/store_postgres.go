package intake

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostgresStore persists intake records as jsonb documents keyed by the
// patient key. The merge runs in Go inside a transaction that locks the row,
// so the partial-update contract matches the memory store's.
type PostgresStore struct {
	db *sql.DB
}

var _ StoreInterface = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the intake_records table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS intake_records (
			patient_key TEXT PRIMARY KEY,
			record JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create intake_records table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*Record, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM intake_records WHERE patient_key = $1`, key,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intake record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode intake record: %w", err)
	}
	return &record, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, update RecordUpdate) (*Record, error) {
	key := update.Profile.Key()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing Record
	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT record FROM intake_records WHERE patient_key = $1 FOR UPDATE`, key,
	).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// First write for this key.
	case err != nil:
		return nil, fmt.Errorf("failed to read intake record: %w", err)
	default:
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, fmt.Errorf("failed to decode intake record: %w", err)
		}
	}

	merged := mergeRecord(existing, update)
	merged.UpdatedAt = time.Now().UTC()

	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode intake record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO intake_records (patient_key, record, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_key)
		DO UPDATE SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at
	`, key, encoded, merged.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert intake record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit intake record: %w", err)
	}
	return &merged, nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]Record, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM intake_records`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count intake records: %w", err)
	}

	if limit <= 0 {
		limit = total
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM intake_records
		ORDER BY updated_at DESC, patient_key ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list intake records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, 0, fmt.Errorf("failed to scan intake record: %w", err)
		}
		var record Record
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, 0, fmt.Errorf("failed to decode intake record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate intake records: %w", err)
	}
	return records, total, nil
}
