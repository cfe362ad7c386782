// Package db persists submitted batches and their Result Documents for
// audit/history. The engine package never imports this one: every
// analysis runs against a fresh in-memory batch and this store only
// records what happened, after the fact.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawblock/forensics-engine/pkg/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for Forensics Engine")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes the schema.sql file.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %v", err)
	}

	_, err = s.pool.Exec(context.Background(), string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("Forensics engine schema initialized")
	return nil
}

// BatchStatus mirrors the batches.status column.
type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchRunning   BatchStatus = "running"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

// CreateBatch records a newly submitted batch before the pipeline runs.
func (s *PostgresStore) CreateBatch(ctx context.Context, id string, rowCount int) error {
	sql := `
		INSERT INTO batches (id, status, row_count, submitted_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.pool.Exec(ctx, sql, id, BatchPending, rowCount, time.Now())
	return err
}

// MarkBatchRunning flips a batch to running, for the async job path.
func (s *PostgresStore) MarkBatchRunning(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE batches SET status = $1 WHERE id = $2`, BatchRunning, id)
	return err
}

// MarkBatchFailed records a fatal pipeline error against the batch.
func (s *PostgresStore) MarkBatchFailed(ctx context.Context, id string, cause error) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE batches SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
		BatchFailed, cause.Error(), time.Now(), id)
	return err
}

// SaveResult persists a completed Result Document and marks the batch
// completed, in one transaction.
func (s *PostgresStore) SaveResult(ctx context.Context, batchID string, doc *models.ResultDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal result document: %v", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`UPDATE batches SET status = $1, completed_at = $2 WHERE id = $3`,
		BatchCompleted, time.Now(), batchID)
	if err != nil {
		return fmt.Errorf("failed to update batch status: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO batch_results (batch_id, result_document, suspicious_count, rings_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (batch_id) DO UPDATE
		SET result_document = EXCLUDED.result_document,
		    suspicious_count = EXCLUDED.suspicious_count,
		    rings_count = EXCLUDED.rings_count
	`, batchID, payload, doc.Metrics.SuspiciousCount, doc.Metrics.RingsCount)
	if err != nil {
		return fmt.Errorf("failed to insert batch_results: %v", err)
	}

	return tx.Commit(ctx)
}

// LoadResult fetches a previously persisted Result Document. The second
// return value is false if the batch is unknown or still running.
func (s *PostgresStore) LoadResult(ctx context.Context, batchID string) (*models.ResultDocument, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result_document FROM batch_results WHERE batch_id = $1`, batchID,
	).Scan(&payload)
	if err != nil {
		return nil, false, nil
	}

	var doc models.ResultDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal result document: %v", err)
	}
	return &doc, true, nil
}

// BatchInfo is the row shape returned for status lookups.
type BatchInfo struct {
	ID       string      `json:"id"`
	Status   BatchStatus `json:"status"`
	RowCount int         `json:"row_count"`
	Error    string      `json:"error,omitempty"`
}

// GetBatchStatus reports the current status of a batch, for the progress
// endpoint to fall back on when no in-memory job record exists (e.g. after
// a service restart).
func (s *PostgresStore) GetBatchStatus(ctx context.Context, id string) (BatchInfo, bool, error) {
	var info BatchInfo
	var errText *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, row_count, error FROM batches WHERE id = $1`, id,
	).Scan(&info.ID, &info.Status, &info.RowCount, &errText)
	if err != nil {
		return BatchInfo{}, false, nil
	}
	if errText != nil {
		info.Error = *errText
	}
	return info, true, nil
}

// SaveShadowRun records one policy shadow comparison (internal/shadow).
func (s *PostgresStore) SaveShadowRun(ctx context.Context, id, batchID, baselineLabel, candidateLabel string, ari, vi float64) error {
	sql := `
		INSERT INTO shadow_runs (id, batch_id, baseline_label, candidate_label, adjusted_rand_index, variation_of_information)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, sql, id, batchID, baselineLabel, candidateLabel, ari, vi)
	return err
}

// GetPool exposes the connection pool for subsystems that need raw access.
func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}
