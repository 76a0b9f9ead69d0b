// internal/discovery/templates/store.go
package templates

import (
	"context"
	"sync"

	"contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/common/retry"
	"contact-discovery/internal/models"
)

// Store fronts the template repository with an optional read-through cache
// and batches counter updates so each template gets a single write per batch.
type Store struct {
	repo   Repository
	cache  *Cache
	alpha  float64
	logger logger.Logger

	mu      sync.Mutex
	pending map[string]*pendingOutcome
}

type pendingOutcome struct {
	usageDelta   int64
	successDelta int64
	confidence   float64
}

func NewStore(repo Repository, cache *Cache, alpha float64, log logger.Logger) *Store {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.2
	}
	return &Store{
		repo:    repo,
		cache:   cache,
		alpha:   alpha,
		logger:  log.WithFields(map[string]interface{}{"component": "template-store"}),
		pending: make(map[string]*pendingOutcome),
	}
}

// ActiveTemplates returns the templates applicable to the criteria. The cache
// is consulted only when useCache is true; cache errors degrade to a direct
// repository read.
func (s *Store) ActiveTemplates(ctx context.Context, criteria models.SearchCriteria, useCache bool) ([]models.QueryTemplate, error) {
	if useCache && s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, criteria)
		if err != nil {
			s.logger.Warn("template cache read failed, falling back to repository", map[string]interface{}{
				"error": err.Error(),
			})
		} else if hit {
			return cached, nil
		}
	}

	var templates []models.QueryTemplate
	err := retry.Do(ctx, retry.DefaultPolicy, func() error {
		var lookupErr error
		templates, lookupErr = s.repo.FindActive(ctx, criteria)
		return lookupErr
	})
	if err != nil {
		return nil, errors.NewTemplateStoreError("findActive", err)
	}

	if useCache && s.cache != nil {
		if err := s.cache.Set(ctx, criteria, templates); err != nil {
			s.logger.Warn("template cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return templates, nil
}

// SeedDefaults inserts the canonical template set only when the store is
// empty. Safe to call on every initialization.
func (s *Store) SeedDefaults(ctx context.Context) error {
	var count int64
	err := retry.Do(ctx, retry.DefaultPolicy, func() error {
		var countErr error
		count, countErr = s.repo.Count(ctx)
		return countErr
	})
	if err != nil {
		return errors.NewTemplateStoreError("count", err)
	}

	if count > 0 {
		return nil
	}

	for _, tpl := range DefaultTemplates() {
		tpl := tpl
		if err := s.repo.Create(ctx, &tpl); err != nil {
			return errors.NewTemplateSeedError(err)
		}
	}

	s.logger.Info("seeded default templates", map[string]interface{}{
		"count": len(DefaultTemplates()),
	})
	return nil
}

// RecordOutcome accumulates one query's outcome against its source template.
// The write happens later, in FlushOutcomes, as a single update per template.
func (s *Store) RecordOutcome(tpl models.QueryTemplate, accepted bool, confidence float64) {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[tpl.ID]
	if !ok {
		p = &pendingOutcome{confidence: tpl.AverageConfidence}
		s.pending[tpl.ID] = p
	}

	p.usageDelta++
	if accepted {
		p.successDelta++
	}
	// Exponential moving average keeps memory bounded while still tracking
	// recent template performance.
	p.confidence = p.confidence*(1-s.alpha) + confidence*s.alpha
	if p.confidence < 0 {
		p.confidence = 0
	}
	if p.confidence > 1 {
		p.confidence = 1
	}
}

// FlushOutcomes writes all accumulated counter updates and clears the pending
// set. Each template gets exactly one update regardless of how many queries
// it produced.
func (s *Store) FlushOutcomes(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string]*pendingOutcome)
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	for id, p := range pending {
		id, p := id, p
		err := retry.Do(ctx, retry.DefaultPolicy, func() error {
			return s.repo.UpdateCounters(ctx, id, p.usageDelta, p.successDelta, p.confidence)
		})
		if err != nil {
			return errors.NewTemplateFlushError(err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("template cache invalidation failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return nil
}

// PendingCount reports how many templates have unflushed outcomes.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
