package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"contact-discovery/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresQueryRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresQueryRepository(db)

	templateID := "tpl-1"
	now := time.Now().UTC()
	query := &models.GeneratedQuery{
		ID:               "q-1",
		SearchID:         "search-1",
		BatchID:          "batch-1",
		QueryText:        "ai tech journalists US",
		QueryType:        models.TemplateTypeCategorySpecific,
		SourceTemplateID: &templateID,
		Scores:           models.QueryScores{Relevance: 0.8, Diversity: 0.7, Overall: 0.9},
		Metadata:         models.QueryMetadata{AIEnhanced: false},
		CreatedAt:        now,
	}

	mock.ExpectExec("INSERT INTO generated_queries").
		WithArgs("q-1", "search-1", "batch-1", "ai tech journalists US",
			models.TemplateTypeCategorySpecific, &templateID,
			sqlmock.AnyArg(), sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), query)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresQueryRepositoryCreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresQueryRepository(db)

	mock.ExpectExec("INSERT INTO generated_queries").
		WillReturnError(errors.New("deadlock detected"))

	err = repo.Create(context.Background(), &models.GeneratedQuery{ID: "q-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock")
}

func TestPostgresPerformanceLogRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresPerformanceLogRepository(db)

	now := time.Now().UTC()
	record := &models.QueryPerformanceLog{
		ID:       "log-1",
		SearchID: "search-1",
		BatchID:  "batch-1",
		Metrics: models.BatchMetrics{
			TotalGenerated:   8,
			AverageScore:     0.87,
			DiversityScore:   0.42,
			ProcessingTimeMs: 120,
		},
		CreatedAt: now,
	}

	mock.ExpectExec("INSERT INTO query_performance_logs").
		WithArgs("log-1", "search-1", "batch-1", sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPerformanceLogRepositoryCreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresPerformanceLogRepository(db)

	mock.ExpectExec("INSERT INTO query_performance_logs").
		WillReturnError(errors.New("relation does not exist"))

	err = repo.Create(context.Background(), &models.QueryPerformanceLog{ID: "log-1"})
	require.Error(t, err)
}
