// internal/discovery/generation/repositories.go
package generation

import (
	"context"
	"database/sql"
	"encoding/json"

	"contact-discovery/internal/models"
)

// GeneratedQueryRepository persists accepted queries, write-once per batch.
type GeneratedQueryRepository interface {
	Create(ctx context.Context, query *models.GeneratedQuery) error
}

// PerformanceLogRepository persists the per-batch metrics snapshot.
type PerformanceLogRepository interface {
	Create(ctx context.Context, log *models.QueryPerformanceLog) error
}

// PostgresQueryRepository writes generated_queries rows.
type PostgresQueryRepository struct {
	db *sql.DB
}

func NewPostgresQueryRepository(db *sql.DB) *PostgresQueryRepository {
	return &PostgresQueryRepository{db: db}
}

const insertQueryStatement = `
INSERT INTO generated_queries
  (id, search_id, batch_id, query_text, query_type, source_template_id,
   scores, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (r *PostgresQueryRepository) Create(ctx context.Context, query *models.GeneratedQuery) error {
	scores, err := json.Marshal(query.Scores)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(query.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertQueryStatement,
		query.ID, query.SearchID, query.BatchID, query.QueryText, query.QueryType,
		query.SourceTemplateID, scores, metadata, query.CreatedAt,
	)
	return err
}

// PostgresPerformanceLogRepository writes query_performance_logs rows.
type PostgresPerformanceLogRepository struct {
	db *sql.DB
}

func NewPostgresPerformanceLogRepository(db *sql.DB) *PostgresPerformanceLogRepository {
	return &PostgresPerformanceLogRepository{db: db}
}

const insertPerformanceLogStatement = `
INSERT INTO query_performance_logs
  (id, search_id, batch_id, metrics, created_at)
VALUES ($1, $2, $3, $4, $5)`

func (r *PostgresPerformanceLogRepository) Create(ctx context.Context, log *models.QueryPerformanceLog) error {
	metrics, err := json.Marshal(log.Metrics)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertPerformanceLogStatement,
		log.ID, log.SearchID, log.BatchID, metrics, log.CreatedAt,
	)
	return err
}
