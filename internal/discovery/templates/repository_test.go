package templates

import (
	"context"
	"testing"
	"time"

	"contact-discovery/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepositoryFindActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	now := time.Now()

	columns := []string{
		"id", "name", "template", "type", "category", "beat", "country", "language",
		"priority", "is_active", "usage_count", "success_count", "average_confidence",
		"created_at", "updated_at",
	}

	tech := "technology"
	rows := sqlmock.NewRows(columns).
		AddRow("tpl-1", "base-journalist-contacts", "{query} journalists contact email", "BASE",
			nil, nil, nil, nil, 10, true, 42, 30, 0.72, now, now).
		AddRow("tpl-2", "category-writers", "{query} {category} writers contributors contact", "CATEGORY_SPECIFIC",
			tech, nil, nil, nil, 8, true, 12, 8, 0.61, now, now)

	mock.ExpectQuery("SELECT id, name, template").
		WillReturnRows(rows)

	got, err := repo.FindActive(context.Background(), models.SearchCriteria{
		Categories: []string{"technology"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "tpl-1", got[0].ID)
	assert.Equal(t, models.TemplateTypeBase, got[0].Type)
	assert.Nil(t, got[0].Category)

	require.NotNil(t, got[1].Category)
	assert.Equal(t, "technology", *got[1].Category)
	assert.InDelta(t, 0.61, got[1].AverageConfidence, 1e-9)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryUpdateCounters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE query_templates").
		WithArgs("tpl-1", int64(3), int64(2), 0.64).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateCounters(context.Background(), "tpl-1", 3, 2, 0.64)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	tpl := DefaultTemplates()[0]

	mock.ExpectExec("INSERT INTO query_templates").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), &tpl))
	require.NoError(t, mock.ExpectationsWereMet())
}
