// internal/discovery/generation/service.go
package generation

import (
	"context"
	"strings"
	"sync"
	"time"

	"contact-discovery/internal/common/config"
	"contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/common/metrics"
	"contact-discovery/internal/common/observability"
	"contact-discovery/internal/common/retry"
	"contact-discovery/internal/discovery/enhance"
	"contact-discovery/internal/discovery/expansion"
	"contact-discovery/internal/discovery/scoring"
	"contact-discovery/internal/discovery/templates"
	"contact-discovery/internal/models"

	"github.com/google/uuid"
)

// Pipeline stages, in execution order.
const (
	StageInitializing       = "INITIALIZING"
	StageExpansion          = "EXPANSION"
	StageAIEnhancement      = "AI_ENHANCEMENT"
	StageScoring            = "SCORING"
	StageFiltering          = "FILTERING"
	StageDiversitySelection = "DIVERSITY_SELECTION"
	StagePersistence        = "PERSISTENCE"
	StageCompleted          = "COMPLETED"
)

const StatusCompleted = "completed"

// Service orchestrates the query generation pipeline end to end. All
// collaborators are injected so tests can substitute fakes.
type Service struct {
	store    *templates.Store
	enhancer enhance.Enhancer
	queryRepo GeneratedQueryRepository
	perfRepo  PerformanceLogRepository
	notifier  Notifier
	obs       *observability.Observability
	logger    logger.Logger

	mu  sync.RWMutex
	cfg ServiceConfig
}

func NewService(
	store *templates.Store,
	enhancer enhance.Enhancer,
	queryRepo GeneratedQueryRepository,
	perfRepo PerformanceLogRepository,
	notifier Notifier,
	obs *observability.Observability,
	cfg ServiceConfig,
	log logger.Logger,
) *Service {
	return &Service{
		store:     store,
		enhancer:  enhancer,
		queryRepo: queryRepo,
		perfRepo:  perfRepo,
		notifier:  notifier,
		obs:       obs,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "generation-service"}),
	}
}

// Config returns a copy of the effective configuration.
func (s *Service) Config() ServiceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig deep-merges a partial configuration so operators can toggle
// AI enhancement or tune weights without a redeploy.
func (s *Service) UpdateConfig(patch ConfigPatch) ServiceConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.apply(patch)
	return s.cfg
}

// Generate runs one batch through the full pipeline. The returned error is
// non-nil only for fatal failures; degraded batches complete with errors
// recorded in the result.
func (s *Service) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	started := time.Now()
	cfg := s.Config()

	options, err := s.resolveOptions(req, cfg)
	if err != nil {
		metrics.GenerationBatches.WithLabelValues("rejected").Inc()
		return nil, err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"searchId": req.SearchID,
		"batchId":  req.BatchID,
	})
	log.Info("starting query generation batch", map[string]interface{}{
		"originalQuery": req.OriginalQuery,
		"aiEnabled":     options.EnableAIEnhancement,
	})

	result := &models.GenerationResult{
		SearchID:      req.SearchID,
		BatchID:       req.BatchID,
		OriginalQuery: req.OriginalQuery,
		Queries:       []models.GeneratedQuery{},
	}

	// INITIALIZING: seed on first use, then load the applicable templates.
	// A store failure here rejects the whole batch.
	stageStart := time.Now()
	if err := s.store.SeedDefaults(ctx); err != nil {
		metrics.GenerationBatches.WithLabelValues("failed").Inc()
		return nil, err
	}
	activeTemplates, err := s.store.ActiveTemplates(ctx, req.Criteria, options.CacheEnabled)
	if err != nil {
		metrics.GenerationBatches.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.GenerationStageDuration.WithLabelValues(StageInitializing).Observe(time.Since(stageStart).Seconds())

	// EXPANSION and AI_ENHANCEMENT run concurrently; both are side-effect
	// free. Results are merged in a fixed order so output does not depend
	// on scheduling.
	var (
		aiVariants []string
		aiErr      error
		wg         sync.WaitGroup
	)

	aiRequested := options.EnableAIEnhancement && cfg.AI.Enabled && s.enhancer != nil
	if aiRequested {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stageStart := time.Now()
			aiVariants, aiErr = s.enhancer.EnhanceQuery(ctx, req.OriginalQuery, req.Criteria, config.GetDuration(cfg.AI.TimeoutMs))
			metrics.GenerationStageDuration.WithLabelValues(StageAIEnhancement).Observe(time.Since(stageStart).Seconds())
		}()
	}

	stageStart = time.Now()
	expander := expansion.NewExpander(cfg.Generation.ExpansionCap)
	candidates := s.expandTemplates(expander, activeTemplates, req)
	templateCandidates := len(candidates)
	metrics.GenerationStageDuration.WithLabelValues(StageExpansion).Observe(time.Since(stageStart).Seconds())

	wg.Wait()

	if aiRequested {
		if aiErr != nil {
			s.recordEnhancementFailure(result, aiErr, log)
		} else {
			candidates = appendAIVariants(candidates, aiVariants)
		}
	}

	// Reindex after the merge so tie-breaking is stable.
	for i := range candidates {
		candidates[i].InsertionIndex = i
	}

	// SCORING and FILTERING
	stageStart = time.Now()
	candidates = scoring.Dedup(candidates)
	scorer := scoring.NewQueryScorer(cfg.Scoring.Query)
	for i := range candidates {
		scorer.Score(&candidates[i], req.Criteria)
	}
	totalGenerated := len(candidates)
	metrics.GenerationStageDuration.WithLabelValues(StageScoring).Observe(time.Since(stageStart).Seconds())

	filtered := candidates[:0]
	for _, c := range candidates {
		if c.Scores.Overall >= options.MinRelevanceScore {
			filtered = append(filtered, c)
		}
	}

	// DIVERSITY_SELECTION
	stageStart = time.Now()
	scoring.SortCandidates(filtered)
	accepted := scoring.SelectDiverse(filtered, options.MaxQueries, options.DiversityThreshold)
	metrics.GenerationStageDuration.WithLabelValues(StageDiversitySelection).Observe(time.Since(stageStart).Seconds())

	// Record every scored template candidate's outcome; the counters are
	// flushed once at the end of the batch.
	acceptedTexts := map[string]bool{}
	for _, c := range accepted {
		acceptedTexts[scoring.NormalizeQueryText(c.QueryText)] = true
	}
	templatesByID := map[string]models.QueryTemplate{}
	for _, tpl := range activeTemplates {
		templatesByID[tpl.ID] = tpl
	}
	for _, c := range filtered {
		if c.SourceTemplateID == nil {
			continue
		}
		if tpl, ok := templatesByID[*c.SourceTemplateID]; ok {
			s.store.RecordOutcome(tpl, acceptedTexts[scoring.NormalizeQueryText(c.QueryText)], c.Scores.Overall)
		}
	}

	// PERSISTENCE
	stageStart = time.Now()
	result.Queries = s.persistQueries(ctx, req, accepted, result, log)

	result.Metrics = s.buildMetrics(req, accepted, totalGenerated, started)
	s.persistPerformanceLog(ctx, req, result, log)

	// The final counter flush is the second fatal point in the pipeline.
	if err := s.store.FlushOutcomes(ctx); err != nil {
		metrics.GenerationBatches.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.GenerationStageDuration.WithLabelValues(StagePersistence).Observe(time.Since(stageStart).Seconds())

	result.Status = StatusCompleted
	s.recordBatchMetrics(ctx, result, templateCandidates, started)
	s.notifyCompletion(ctx, result, log)

	log.Info("query generation batch completed", map[string]interface{}{
		"queries":        len(result.Queries),
		"totalGenerated": totalGenerated,
		"errors":         len(result.Errors),
		"durationMs":     result.Metrics.ProcessingTimeMs,
	})
	return result, nil
}

// resolveOptions validates the request and fills unset options from the
// effective configuration.
func (s *Service) resolveOptions(req models.GenerationRequest, cfg ServiceConfig) (models.GenerationOptions, error) {
	options := req.Options

	if strings.TrimSpace(req.SearchID) == "" {
		return options, errors.NewConfigurationError("searchId is required")
	}
	if strings.TrimSpace(req.BatchID) == "" {
		return options, errors.NewConfigurationError("batchId is required")
	}

	if options.MaxQueries < 0 {
		return options, errors.NewConfigurationError("maxQueries must not be negative")
	}
	if options.MaxQueries == 0 {
		options.MaxQueries = cfg.Generation.MaxQueries
	}

	if options.DiversityThreshold < 0 || options.DiversityThreshold > 1 {
		return options, errors.NewConfigurationError("diversityThreshold must be in [0,1]")
	}
	if options.DiversityThreshold == 0 {
		options.DiversityThreshold = cfg.Generation.DiversityThreshold
	}

	if options.MinRelevanceScore < 0 || options.MinRelevanceScore > 1 {
		return options, errors.NewConfigurationError("minRelevanceScore must be in [0,1]")
	}
	if options.MinRelevanceScore == 0 {
		options.MinRelevanceScore = cfg.Generation.MinRelevanceScore
	}

	return options, nil
}

// expandTemplates turns the active templates into candidates, in template
// order so the merge is deterministic.
func (s *Service) expandTemplates(expander *expansion.Expander, activeTemplates []models.QueryTemplate, req models.GenerationRequest) []scoring.Candidate {
	var candidates []scoring.Candidate
	for _, tpl := range activeTemplates {
		tpl := tpl
		for _, queryText := range expander.Expand(tpl, req.OriginalQuery, req.Criteria) {
			candidates = append(candidates, scoring.Candidate{
				QueryText:          queryText,
				QueryType:          tpl.Type,
				SourceTemplateID:   &tpl.ID,
				TemplateConfidence: tpl.AverageConfidence,
				SourcePriority:     tpl.Priority,
			})
		}
	}
	return candidates
}

// appendAIVariants merges AI-generated variants after the template
// candidates. They carry no template and the lowest source priority.
func appendAIVariants(candidates []scoring.Candidate, variants []string) []scoring.Candidate {
	for _, variant := range variants {
		candidates = append(candidates, scoring.Candidate{
			QueryText:  variant,
			QueryType:  models.TemplateTypeBase,
			AIEnhanced: true,
		})
	}
	return candidates
}

func (s *Service) recordEnhancementFailure(result *models.GenerationResult, aiErr error, log logger.Logger) {
	code := string(errors.ErrCodeEnhancementFailed)
	if stdErr, ok := aiErr.(*errors.StandardError); ok {
		code = string(stdErr.Code)
	}
	result.Errors = append(result.Errors, models.BatchError{
		Stage:   StageAIEnhancement,
		Code:    code,
		Message: aiErr.Error(),
	})
	metrics.EnhancementFailures.WithLabelValues(code).Inc()
	log.Warn("AI enhancement failed, continuing template-only", map[string]interface{}{
		"error": aiErr.Error(),
	})
}

// persistQueries writes each accepted query. A failed write skips that
// record's persistence but the query is still returned to the caller.
func (s *Service) persistQueries(ctx context.Context, req models.GenerationRequest, accepted []scoring.Candidate, result *models.GenerationResult, log logger.Logger) []models.GeneratedQuery {
	queries := make([]models.GeneratedQuery, 0, len(accepted))
	now := time.Now().UTC()

	for _, c := range accepted {
		record := models.GeneratedQuery{
			ID:               uuid.NewString(),
			SearchID:         req.SearchID,
			BatchID:          req.BatchID,
			QueryText:        c.QueryText,
			QueryType:        c.QueryType,
			SourceTemplateID: c.SourceTemplateID,
			Scores:           c.Scores,
			Metadata:         models.QueryMetadata{AIEnhanced: c.AIEnhanced},
			CreatedAt:        now,
		}

		err := retry.Do(ctx, retry.DefaultPolicy, func() error {
			return s.queryRepo.Create(ctx, &record)
		})
		if err != nil {
			writeErr := errors.NewQueryWriteError(c.QueryText, err)
			result.Errors = append(result.Errors, models.BatchError{
				Stage:   StagePersistence,
				Code:    string(writeErr.Code),
				Message: writeErr.Message,
			})
			log.Warn("generated query write failed, skipping record", map[string]interface{}{
				"queryText": c.QueryText,
				"error":     err.Error(),
			})
		}

		queries = append(queries, record)
	}

	return queries
}

func (s *Service) persistPerformanceLog(ctx context.Context, req models.GenerationRequest, result *models.GenerationResult, log logger.Logger) {
	record := models.QueryPerformanceLog{
		ID:        uuid.NewString(),
		SearchID:  req.SearchID,
		BatchID:   req.BatchID,
		Metrics:   result.Metrics,
		CreatedAt: time.Now().UTC(),
	}

	err := retry.Do(ctx, retry.DefaultPolicy, func() error {
		return s.perfRepo.Create(ctx, &record)
	})
	if err != nil {
		logErr := errors.NewPerformanceLogWriteError(err)
		result.Errors = append(result.Errors, models.BatchError{
			Stage:   StagePersistence,
			Code:    string(logErr.Code),
			Message: logErr.Message,
		})
		log.Warn("performance log write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Service) buildMetrics(req models.GenerationRequest, accepted []scoring.Candidate, totalGenerated int, started time.Time) models.BatchMetrics {
	var scoreSum float64
	for _, c := range accepted {
		scoreSum += c.Scores.Overall
	}
	averageScore := 0.0
	if len(accepted) > 0 {
		averageScore = scoreSum / float64(len(accepted))
	}

	return models.BatchMetrics{
		TotalGenerated:     totalGenerated,
		AverageScore:       averageScore,
		DiversityScore:     scoring.BatchDiversity(accepted),
		ProcessingTimeMs:   time.Since(started).Milliseconds(),
		CoverageByCriteria: coverageByCriteria(req.Criteria, accepted),
	}
}

// coverageByCriteria reports, per requested dimension, the fraction of
// accepted queries that textually reflect at least one of its values.
func coverageByCriteria(criteria models.SearchCriteria, accepted []scoring.Candidate) map[string]float64 {
	coverage := map[string]float64{}
	dims := criteria.Dimensions()
	if len(dims) == 0 {
		return coverage
	}

	for name, values := range dims {
		if len(accepted) == 0 {
			coverage[name] = 0
			continue
		}
		covered := 0
		for _, c := range accepted {
			lowered := strings.ToLower(c.QueryText)
			for _, value := range values {
				if value != "" && strings.Contains(lowered, strings.ToLower(value)) {
					covered++
					break
				}
			}
		}
		coverage[name] = float64(covered) / float64(len(accepted))
	}
	return coverage
}

func (s *Service) recordBatchMetrics(ctx context.Context, result *models.GenerationResult, templateCandidates int, started time.Time) {
	status := "completed"
	if len(result.Errors) > 0 {
		status = "degraded"
	}
	metrics.GenerationBatches.WithLabelValues(status).Inc()

	aiCount := 0
	for _, q := range result.Queries {
		if q.Metadata.AIEnhanced {
			aiCount++
		}
	}
	metrics.GenerationQueries.WithLabelValues("template").Observe(float64(len(result.Queries) - aiCount))
	metrics.GenerationQueries.WithLabelValues("ai").Observe(float64(aiCount))

	if s.obs != nil {
		s.obs.RecordBatchProcessed(ctx, status)
		s.obs.RecordBatchDuration(ctx, time.Since(started), status)
	}
}

func (s *Service) notifyCompletion(ctx context.Context, result *models.GenerationResult, log logger.Logger) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BatchCompleted(ctx, result); err != nil {
		log.Warn("batch notification failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// DescribeStagePlan returns the pipeline stages in execution order, used by
// operational tooling and logs.
func DescribeStagePlan(aiEnabled bool) string {
	stages := []string{StageInitializing, StageExpansion}
	if aiEnabled {
		stages = append(stages, StageAIEnhancement)
	}
	stages = append(stages, StageScoring, StageFiltering, StageDiversitySelection, StagePersistence, StageCompleted)
	return strings.Join(stages, " -> ")
}
