package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/internal/errors"
	"goanova/ports"
)

// Connect opens a PostgreSQL connection pool.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	return db, nil
}

// EnsureSchema creates the analyses table when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			experiment_name TEXT NOT NULL,
			runtime_ms BIGINT NOT NULL,
			result JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create analyses table")
	}
	return nil
}

// AnalysisRepositoryImpl implements AnalysisRepository for PostgreSQL
type AnalysisRepositoryImpl struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new PostgreSQL analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

type analysisRow struct {
	ID             string    `db:"id"`
	ExperimentName string    `db:"experiment_name"`
	RuntimeMs      int64     `db:"runtime_ms"`
	Result         []byte    `db:"result"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r analysisRow) toRecord() (*anova.AnalysisRecord, error) {
	var result anova.StatAnalysis
	if err := json.Unmarshal(r.Result, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode stored analysis")
	}
	return &anova.AnalysisRecord{
		ID:             core.AnalysisID(r.ID),
		ExperimentName: r.ExperimentName,
		RuntimeMs:      r.RuntimeMs,
		CreatedAt:      core.NewTimestamp(r.CreatedAt),
		Result:         &result,
	}, nil
}

// Save persists one analysis record
func (r *AnalysisRepositoryImpl) Save(ctx context.Context, record *anova.AnalysisRecord) error {
	payload, err := json.Marshal(record.Result)
	if err != nil {
		return errors.Wrap(err, "failed to encode analysis result")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analyses (id, experiment_name, runtime_ms, result, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, record.ID.String(), record.ExperimentName, record.RuntimeMs, payload, record.CreatedAt.Time())
	if err != nil {
		return errors.Wrap(err, "failed to save analysis")
	}
	return nil
}

// Get retrieves an analysis record by ID
func (r *AnalysisRepositoryImpl) Get(ctx context.Context, id core.AnalysisID) (*anova.AnalysisRecord, error) {
	var row analysisRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, experiment_name, runtime_ms, result, created_at
		FROM analyses
		WHERE id = $1
	`, id.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("analysis")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis")
	}
	return row.toRecord()
}

// List returns the most recent analyses, newest first
func (r *AnalysisRepositoryImpl) List(ctx context.Context, limit int) ([]anova.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []analysisRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, experiment_name, runtime_ms, result, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list analyses")
	}

	records := make([]anova.AnalysisRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}
