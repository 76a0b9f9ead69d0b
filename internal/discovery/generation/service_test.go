package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"contact-discovery/internal/common/config"
	stderrors "contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/discovery/scoring"
	"contact-discovery/internal/discovery/templates"
	"contact-discovery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type fakeTemplateRepo struct {
	templates []models.QueryTemplate
	count     int64
	countErr  error
	updates   int
}

func (f *fakeTemplateRepo) FindActive(ctx context.Context, criteria models.SearchCriteria) ([]models.QueryTemplate, error) {
	return f.templates, nil
}

func (f *fakeTemplateRepo) Create(ctx context.Context, tpl *models.QueryTemplate) error {
	f.count++
	return nil
}

func (f *fakeTemplateRepo) UpdateCounters(ctx context.Context, id string, usageDelta, successDelta int64, avg float64) error {
	f.updates++
	return nil
}

func (f *fakeTemplateRepo) Count(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

type fakeQueryRepo struct {
	created []models.GeneratedQuery
	failOn  map[string]bool
}

func (f *fakeQueryRepo) Create(ctx context.Context, query *models.GeneratedQuery) error {
	if f.failOn[query.QueryText] {
		return errors.New("insert failed")
	}
	f.created = append(f.created, *query)
	return nil
}

type fakePerfRepo struct {
	created []models.QueryPerformanceLog
	err     error
}

func (f *fakePerfRepo) Create(ctx context.Context, log *models.QueryPerformanceLog) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *log)
	return nil
}

type fakeEnhancer struct {
	variants []string
	err      error
	calls    int
}

func (f *fakeEnhancer) EnhanceQuery(ctx context.Context, originalQuery string, criteria models.SearchCriteria, timeout time.Duration) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.variants, nil
}

type fakeNotifier struct {
	notified int
}

func (f *fakeNotifier) BatchCompleted(ctx context.Context, result *models.GenerationResult) error {
	f.notified++
	return nil
}

// ==========================
// Fixture
// ==========================

func testConfig() ServiceConfig {
	return ServiceConfig{
		Generation: config.GenerationConfig{
			MaxQueries:         10,
			DiversityThreshold: 0.1,
			MinRelevanceScore:  0.3,
			ExpansionCap:       5,
			ConfidenceAlpha:    0.2,
		},
		AI: config.AIConfig{
			Enabled:   true,
			TimeoutMs: 1000,
		},
		Scoring: config.ScoringConfig{
			Query:   config.QueryWeights{TemplateConfidence: 0.5, CriteriaCoverage: 0.3, Length: 0.2},
			Contact: config.ContactWeights{Name: 0.3, Email: 0.25, Title: 0.2, Bio: 0.15, Social: 0.1},
		},
	}
}

func twoExpandingTemplates() []models.QueryTemplate {
	return []models.QueryTemplate{
		{
			ID:                "tpl-1",
			Name:              "category-country-journalists",
			Template:          "{query} {category} journalists {country}",
			Type:              models.TemplateTypeCategorySpecific,
			Priority:          10,
			IsActive:          true,
			AverageConfidence: 0.8,
		},
		{
			ID:                "tpl-2",
			Name:              "category-country-editors",
			Template:          "{query} {category} editors {country}",
			Type:              models.TemplateTypeCategorySpecific,
			Priority:          8,
			IsActive:          true,
			AverageConfidence: 0.7,
		},
	}
}

type serviceFixture struct {
	service   *Service
	tplRepo   *fakeTemplateRepo
	queryRepo *fakeQueryRepo
	perfRepo  *fakePerfRepo
	enhancer  *fakeEnhancer
	notifier  *fakeNotifier
}

func newFixture(t *testing.T, tpls []models.QueryTemplate) *serviceFixture {
	t.Helper()
	log := logger.NewNoOpLogger()

	tplRepo := &fakeTemplateRepo{templates: tpls, count: int64(len(tpls))}
	queryRepo := &fakeQueryRepo{}
	perfRepo := &fakePerfRepo{}
	enhancer := &fakeEnhancer{}
	notifier := &fakeNotifier{}

	store := templates.NewStore(tplRepo, nil, 0.2, log)
	service := NewService(store, enhancer, queryRepo, perfRepo, notifier, nil, testConfig(), log)

	return &serviceFixture{
		service:   service,
		tplRepo:   tplRepo,
		queryRepo: queryRepo,
		perfRepo:  perfRepo,
		enhancer:  enhancer,
		notifier:  notifier,
	}
}

func baseRequest() models.GenerationRequest {
	return models.GenerationRequest{
		SearchID:      "search-1",
		BatchID:       "batch-1",
		OriginalQuery: "ai",
		Criteria: models.SearchCriteria{
			Categories: []string{"tech", "science"},
			Countries:  []string{"US", "DE"},
		},
	}
}

// ==========================
// Tests
// ==========================

func TestGenerateCapsAtMaxQueries(t *testing.T) {
	// 2 templates x 4 combinations = 8 raw candidates.
	f := newFixture(t, twoExpandingTemplates())

	req := baseRequest()
	req.Options.MaxQueries = 5
	req.Options.DiversityThreshold = 0.05

	result, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, result.Queries, 5)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 8, result.Metrics.TotalGenerated)

	// Highest scored first: tpl-1 has higher confidence and priority.
	require.NotNil(t, result.Queries[0].SourceTemplateID)
	assert.Equal(t, "tpl-1", *result.Queries[0].SourceTemplateID)
}

func TestGenerateQueryTextsAreUnique(t *testing.T) {
	tpls := twoExpandingTemplates()
	// Third template produces byte-identical queries to the first.
	dup := tpls[0]
	dup.ID = "tpl-3"
	dup.Name = "duplicate-of-first"
	dup.Priority = 1
	f := newFixture(t, append(tpls, dup))

	result, err := f.service.Generate(context.Background(), baseRequest())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, q := range result.Queries {
		key := scoring.NormalizeQueryText(q.QueryText)
		assert.False(t, seen[key], "duplicate query %q", q.QueryText)
		seen[key] = true
	}
}

func TestGenerateRespectsMinRelevanceScore(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	req := baseRequest()
	req.Options.MinRelevanceScore = 0.95

	result, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)

	// Emptying the candidate set is not an error.
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Empty(t, result.Queries)
	assert.Empty(t, f.queryRepo.created)
}

func TestGenerateAcceptedScoresMeetThreshold(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	req := baseRequest()
	req.Options.MinRelevanceScore = 0.5

	result, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)

	for _, q := range result.Queries {
		assert.GreaterOrEqual(t, q.Scores.Overall, 0.5)
	}
}

func TestGenerateDiversityBound(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	req := baseRequest()
	req.Options.DiversityThreshold = 0.4

	result, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)

	for i := 0; i < len(result.Queries); i++ {
		for j := i + 1; j < len(result.Queries); j++ {
			sim := scoring.TokenJaccard(result.Queries[i].QueryText, result.Queries[j].QueryText)
			assert.LessOrEqual(t, sim, 1.0-0.4+1e-9)
		}
	}
}

func TestGenerateWithAIEnhancement(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())
	f.enhancer.variants = []string{"ai startup founders press coverage"}

	req := baseRequest()
	req.Options.EnableAIEnhancement = true

	result, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, f.enhancer.calls)

	found := false
	for _, q := range result.Queries {
		if q.Metadata.AIEnhanced {
			found = true
			assert.Nil(t, q.SourceTemplateID)
		}
	}
	assert.True(t, found, "expected an AI-enhanced query in the result")
}

func TestGenerateSurvivesAIFailure(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())
	f.enhancer.err = stderrors.NewEnhancementError(errors.New("model overloaded"))

	req := baseRequest()
	req.Options.EnableAIEnhancement = true

	result, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, StageAIEnhancement, result.Errors[0].Stage)
	assert.NotEmpty(t, result.Queries)
}

func TestGenerateAIDisabledSkipsEnhancer(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	req := baseRequest()
	req.Options.EnableAIEnhancement = false

	_, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, f.enhancer.calls)
}

func TestGenerateFatalWhenStoreUnreachable(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())
	f.tplRepo.countErr = errors.New("connection refused")

	_, err := f.service.Generate(context.Background(), baseRequest())
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeTemplateStoreUnavailable, stdErr.Code)
	assert.Empty(t, f.queryRepo.created, "no rows may be persisted on fatal failure")
}

func TestGenerateIsIdempotent(t *testing.T) {
	req := baseRequest()

	texts := func(result *models.GenerationResult) []string {
		out := make([]string, len(result.Queries))
		for i, q := range result.Queries {
			out[i] = q.QueryText
		}
		return out
	}

	first, err := newFixture(t, twoExpandingTemplates()).service.Generate(context.Background(), req)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := newFixture(t, twoExpandingTemplates()).service.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, texts(first), texts(again))
	}
}

func TestGenerateSkipsFailedQueryWrites(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	req := baseRequest()
	result1, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result1.Queries)

	failing := result1.Queries[0].QueryText

	f2 := newFixture(t, twoExpandingTemplates())
	f2.queryRepo.failOn = map[string]bool{failing: true}

	result2, err := f2.service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result2.Status)
	assert.Len(t, f2.queryRepo.created, len(result2.Queries)-1)

	found := false
	for _, batchErr := range result2.Errors {
		if batchErr.Code == string(stderrors.ErrCodeQueryWriteFailed) {
			found = true
		}
	}
	assert.True(t, found, "expected a query write error entry: %v", result2.Errors)
}

func TestGeneratePerformanceLogFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())
	f.perfRepo.err = errors.New("log table unavailable")

	result, err := f.service.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)

	found := false
	for _, batchErr := range result.Errors {
		if batchErr.Code == string(stderrors.ErrCodePerformanceLogWriteFailed) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateFlushesTemplateCounters(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	_, err := f.service.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, f.tplRepo.updates, "one counter update per involved template")
}

func TestGenerateNotifiesOnCompletion(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	_, err := f.service.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.notified)
}

func TestGenerateValidation(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	tests := []struct {
		name   string
		mutate func(*models.GenerationRequest)
	}{
		{"missing searchId", func(r *models.GenerationRequest) { r.SearchID = " " }},
		{"missing batchId", func(r *models.GenerationRequest) { r.BatchID = "" }},
		{"negative maxQueries", func(r *models.GenerationRequest) { r.Options.MaxQueries = -1 }},
		{"diversity out of range", func(r *models.GenerationRequest) { r.Options.DiversityThreshold = 1.5 }},
		{"min relevance out of range", func(r *models.GenerationRequest) { r.Options.MinRelevanceScore = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)

			_, err := f.service.Generate(context.Background(), req)
			require.Error(t, err)

			var stdErr *stderrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, stderrors.ErrCodeConfigurationInvalid, stdErr.Code)
		})
	}
}

func TestGenerateMetrics(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	result, err := f.service.Generate(context.Background(), baseRequest())
	require.NoError(t, err)

	m := result.Metrics
	assert.Equal(t, 8, m.TotalGenerated)
	assert.Greater(t, m.AverageScore, 0.0)
	assert.GreaterOrEqual(t, m.DiversityScore, 0.0)
	assert.GreaterOrEqual(t, m.ProcessingTimeMs, int64(0))
	assert.Contains(t, m.CoverageByCriteria, "categories")
	assert.Contains(t, m.CoverageByCriteria, "countries")
}

func TestConfigUpdate(t *testing.T) {
	f := newFixture(t, twoExpandingTemplates())

	enabled := false
	maxQueries := 3
	updated := f.service.UpdateConfig(ConfigPatch{
		AI:         &AIPatch{Enabled: &enabled},
		Generation: &GenerationPatch{MaxQueries: &maxQueries},
	})

	assert.False(t, updated.AI.Enabled)
	assert.Equal(t, 3, updated.Generation.MaxQueries)
	// Untouched fields survive the merge.
	assert.Equal(t, 1000, updated.AI.TimeoutMs)
	assert.InDelta(t, 0.1, updated.Generation.DiversityThreshold, 1e-9)

	// The effective config now caps batches at 3 queries.
	result, err := f.service.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Queries), 3)

	// AI disabled via config stops enhancer calls even when requested.
	req := baseRequest()
	req.Options.EnableAIEnhancement = true
	_, err = f.service.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, f.enhancer.calls)
}

func TestDescribeStagePlan(t *testing.T) {
	withAI := DescribeStagePlan(true)
	assert.Contains(t, withAI, StageAIEnhancement)

	withoutAI := DescribeStagePlan(false)
	assert.NotContains(t, withoutAI, StageAIEnhancement)
	assert.Contains(t, withoutAI, StageDiversitySelection)
}

func BenchmarkGenerate(b *testing.B) {
	log := logger.NewNoOpLogger()
	tplRepo := &fakeTemplateRepo{templates: twoExpandingTemplates(), count: 2}
	store := templates.NewStore(tplRepo, nil, 0.2, log)
	service := NewService(store, &fakeEnhancer{}, &fakeQueryRepo{}, &fakePerfRepo{}, nil, nil, testConfig(), log)

	req := baseRequest()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.Generate(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
