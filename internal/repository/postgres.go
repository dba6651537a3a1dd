// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"vacancy-workers/internal/applications"
)

const uniqueViolation = "23505"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS applications (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	profile     JSONB NOT NULL,
	evaluation  JSONB,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_status_idx ON applications (status);
CREATE SEQUENCE IF NOT EXISTS application_id_seq;
SELECT setval('application_id_seq', GREATEST(
	(SELECT COALESCE(MAX(SUBSTRING(id FROM 5)::BIGINT), 0) FROM applications WHERE id ~ '^app-[0-9]+$'),
	(SELECT CASE WHEN is_called THEN last_value ELSE 0 END FROM application_id_seq)
) + 1, false);`

// PostgresRepository stores application records in the applications table.
// Profile and evaluation are JSONB columns; status is kept in its own column
// so the pending sweep can filter on it.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the applications table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return applications.Unavailable("schema migration failed", err)
	}
	return nil
}

// NextID draws from application_id_seq, so ids keep increasing across
// restarts. EnsureSchema moves the sequence past any stored id.
func (r *PostgresRepository) NextID(ctx context.Context) (applications.ApplicationID, error) {
	var seq int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('application_id_seq')`).Scan(&seq); err != nil {
		return "", applications.Unavailable("id sequence failed", err)
	}
	return applications.FormatID(uint64(seq)), nil
}

func (r *PostgresRepository) Insert(ctx context.Context, record applications.Record) (applications.Record, error) {
	profile, evaluation, err := encodeRecord(record)
	if err != nil {
		return applications.Record{}, err
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO applications (id, status, profile, evaluation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(record.ID()),
		string(record.Status),
		profile,
		evaluation,
		now,
		now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return applications.Record{}, fmt.Errorf("%w: %s", applications.ErrConflict, record.ID())
		}
		return applications.Record{}, applications.Unavailable("insert failed", err)
	}

	return record, nil
}

func (r *PostgresRepository) Update(ctx context.Context, record applications.Record) error {
	profile, evaluation, err := encodeRecord(record)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, profile = $3, evaluation = $4, updated_at = $5
		WHERE id = $1`,
		string(record.ID()),
		string(record.Status),
		profile,
		evaluation,
		time.Now().UTC(),
	)
	if err != nil {
		return applications.Unavailable("update failed", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return applications.Unavailable("update failed", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", applications.ErrNotFound, record.ID())
	}
	return nil
}

func (r *PostgresRepository) Fetch(ctx context.Context, id applications.ApplicationID) (*applications.Record, error) {
	var (
		profile    []byte
		status     string
		evaluation []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT profile, status, evaluation FROM applications WHERE id = $1`,
		string(id),
	).Scan(&profile, &status, &evaluation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, applications.Unavailable("fetch failed", err)
	}

	record, err := decodeRecord(profile, status, evaluation)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Pending returns under-review records ordered by id. A limit of zero or
// less returns every match.
func (r *PostgresRepository) Pending(ctx context.Context, limit int) ([]applications.Record, error) {
	query := `SELECT profile, status, evaluation FROM applications WHERE status = $1 ORDER BY id`
	args := []interface{}{string(applications.StatusUnderReview)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, applications.Unavailable("pending query failed", err)
	}
	defer rows.Close()

	var records []applications.Record
	for rows.Next() {
		var (
			profile    []byte
			status     string
			evaluation []byte
		)
		if err := rows.Scan(&profile, &status, &evaluation); err != nil {
			return nil, applications.Unavailable("pending scan failed", err)
		}
		record, err := decodeRecord(profile, status, evaluation)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, applications.Unavailable("pending query failed", err)
	}

	return records, nil
}

// encodeRecord returns the evaluation as an untyped nil when absent so the
// driver writes SQL NULL.
func encodeRecord(record applications.Record) ([]byte, interface{}, error) {
	profile, err := json.Marshal(record.Profile)
	if err != nil {
		return nil, nil, applications.Unavailable("profile encoding failed", err)
	}
	if record.Evaluation == nil {
		return profile, nil, nil
	}
	evaluation, err := json.Marshal(record.Evaluation)
	if err != nil {
		return nil, nil, applications.Unavailable("evaluation encoding failed", err)
	}
	return profile, evaluation, nil
}

func decodeRecord(profile []byte, status string, evaluation []byte) (applications.Record, error) {
	var record applications.Record
	if err := json.Unmarshal(profile, &record.Profile); err != nil {
		return applications.Record{}, applications.Unavailable("corrupt profile column", err)
	}

	parsed, err := applications.ParseStatus(status)
	if err != nil {
		return applications.Record{}, applications.Unavailable("corrupt status column", err)
	}
	record.Status = parsed

	if len(evaluation) > 0 {
		var outcome applications.EvaluationOutcome
		if err := json.Unmarshal(evaluation, &outcome); err != nil {
			return applications.Record{}, applications.Unavailable("corrupt evaluation column", err)
		}
		record.Evaluation = &outcome
	}

	return record, nil
}
