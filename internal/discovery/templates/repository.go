// internal/discovery/templates/repository.go
package templates

import (
	"context"
	"database/sql"

	"contact-discovery/internal/models"

	"github.com/lib/pq"
)

// Repository abstracts template persistence so tests can substitute fakes.
type Repository interface {
	FindActive(ctx context.Context, criteria models.SearchCriteria) ([]models.QueryTemplate, error)
	Create(ctx context.Context, tpl *models.QueryTemplate) error
	UpdateCounters(ctx context.Context, id string, usageDelta, successDelta int64, averageConfidence float64) error
	Count(ctx context.Context) (int64, error)
}

// PostgresRepository persists query templates in the query_templates table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const findActiveQuery = `
SELECT id, name, template, type, category, beat, country, language,
       priority, is_active, usage_count, success_count, average_confidence,
       created_at, updated_at
FROM query_templates
WHERE is_active = true
  AND (category IS NULL OR category = ANY($1))
  AND (beat IS NULL OR beat = ANY($2))
  AND (country IS NULL OR country = ANY($3))
  AND (language IS NULL OR language = ANY($4))
ORDER BY priority DESC, average_confidence DESC, name ASC`

// FindActive returns active templates whose non-null scoping dimensions all
// match the given criteria, ordered by priority, confidence, then name.
func (r *PostgresRepository) FindActive(ctx context.Context, criteria models.SearchCriteria) ([]models.QueryTemplate, error) {
	rows, err := r.db.QueryContext(ctx, findActiveQuery,
		pq.Array(criteria.Categories),
		pq.Array(criteria.Beats),
		pq.Array(criteria.Countries),
		pq.Array(criteria.Languages),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.QueryTemplate
	for rows.Next() {
		var tpl models.QueryTemplate
		if err := rows.Scan(
			&tpl.ID, &tpl.Name, &tpl.Template, &tpl.Type,
			&tpl.Category, &tpl.Beat, &tpl.Country, &tpl.Language,
			&tpl.Priority, &tpl.IsActive, &tpl.UsageCount, &tpl.SuccessCount,
			&tpl.AverageConfidence, &tpl.CreatedAt, &tpl.UpdatedAt,
		); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

const createTemplateQuery = `
INSERT INTO query_templates
  (id, name, template, type, category, beat, country, language,
   priority, is_active, usage_count, success_count, average_confidence,
   created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

func (r *PostgresRepository) Create(ctx context.Context, tpl *models.QueryTemplate) error {
	_, err := r.db.ExecContext(ctx, createTemplateQuery,
		tpl.ID, tpl.Name, tpl.Template, tpl.Type,
		tpl.Category, tpl.Beat, tpl.Country, tpl.Language,
		tpl.Priority, tpl.IsActive, tpl.UsageCount, tpl.SuccessCount,
		tpl.AverageConfidence, tpl.CreatedAt, tpl.UpdatedAt,
	)
	return err
}

const updateCountersQuery = `
UPDATE query_templates
SET usage_count = usage_count + $2,
    success_count = success_count + $3,
    average_confidence = $4,
    updated_at = NOW()
WHERE id = $1`

// UpdateCounters applies one batch's counter deltas as a single update.
func (r *PostgresRepository) UpdateCounters(ctx context.Context, id string, usageDelta, successDelta int64, averageConfidence float64) error {
	_, err := r.db.ExecContext(ctx, updateCountersQuery, id, usageDelta, successDelta, averageConfidence)
	return err
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_templates`).Scan(&count)
	return count, err
}
