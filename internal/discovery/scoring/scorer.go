// internal/discovery/scoring/scorer.go
package scoring

import (
	"strings"

	"contact-discovery/internal/common/config"
	"contact-discovery/internal/models"
)

const (
	// Queries outside this token range get a length penalty.
	minIdealTokens = 3
	maxIdealTokens = 20

	// AI-generated queries have no source template; they score at the
	// neutral template confidence.
	defaultTemplateConfidence = 0.5
)

// Candidate is one query string flowing through scoring and diversity
// selection, with enough provenance to break ties deterministically.
type Candidate struct {
	QueryText          string
	QueryType          models.TemplateType
	SourceTemplateID   *string
	TemplateConfidence float64
	SourcePriority     int
	InsertionIndex     int
	AIEnhanced         bool
	Scores             models.QueryScores
}

// QueryScorer assigns each candidate an overall score in [0,1] from template
// confidence, criteria coverage and a length heuristic.
type QueryScorer struct {
	weights config.QueryWeights
}

func NewQueryScorer(weights config.QueryWeights) *QueryScorer {
	return &QueryScorer{weights: weights}
}

// Weights returns the effective factor weights.
func (s *QueryScorer) Weights() config.QueryWeights {
	return s.weights
}

// Score computes the weighted overall score and fills the candidate's
// relevance score in place.
func (s *QueryScorer) Score(candidate *Candidate, criteria models.SearchCriteria) float64 {
	templateConfidence := candidate.TemplateConfidence
	if candidate.SourceTemplateID == nil {
		templateConfidence = defaultTemplateConfidence
	}
	templateConfidence = clamp01(templateConfidence)

	coverage := s.criteriaCoverage(candidate.QueryText, criteria)
	length := s.lengthScore(candidate.QueryText)

	overall := clamp01(
		templateConfidence*s.weights.TemplateConfidence +
			coverage*s.weights.CriteriaCoverage +
			length*s.weights.Length,
	)

	candidate.Scores.Relevance = coverage
	candidate.Scores.Overall = overall
	return overall
}

// criteriaCoverage is the fraction of requested criteria dimensions textually
// reflected in the query. No requested dimensions means full coverage.
func (s *QueryScorer) criteriaCoverage(queryText string, criteria models.SearchCriteria) float64 {
	dims := criteria.Dimensions()
	if len(dims) == 0 {
		return 1.0
	}

	lowered := strings.ToLower(queryText)
	covered := 0
	for _, values := range dims {
		for _, value := range values {
			if value != "" && strings.Contains(lowered, strings.ToLower(value)) {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(dims))
}

// lengthScore down-weights queries that are too short to be specific or too
// long to be a usable search query.
func (s *QueryScorer) lengthScore(queryText string) float64 {
	tokens := len(strings.Fields(queryText))
	switch {
	case tokens == 0:
		return 0
	case tokens < minIdealTokens:
		return float64(tokens) / float64(minIdealTokens)
	case tokens > maxIdealTokens:
		over := float64(tokens - maxIdealTokens)
		score := 1.0 - over/float64(maxIdealTokens)
		if score < 0 {
			return 0
		}
		return score
	default:
		return 1.0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
