package scoring

import (
	"testing"

	"contact-discovery/internal/common/config"
	"contact-discovery/internal/models"

	"github.com/stretchr/testify/assert"
)

func defaultWeights() config.QueryWeights {
	return config.QueryWeights{
		TemplateConfidence: 0.5,
		CriteriaCoverage:   0.3,
		Length:             0.2,
	}
}

func strPtr(s string) *string { return &s }

func TestScore(t *testing.T) {
	scorer := NewQueryScorer(defaultWeights())

	t.Run("full coverage ideal length", func(t *testing.T) {
		candidate := Candidate{
			QueryText:          "climate technology journalists germany",
			SourceTemplateID:   strPtr("tpl-1"),
			TemplateConfidence: 0.8,
		}
		criteria := models.SearchCriteria{
			Categories: []string{"technology"},
			Countries:  []string{"germany"},
		}

		overall := scorer.Score(&candidate, criteria)

		// 0.8*0.5 + 1.0*0.3 + 1.0*0.2 = 0.9
		assert.InDelta(t, 0.9, overall, 1e-9)
		assert.InDelta(t, 1.0, candidate.Scores.Relevance, 1e-9)
	})

	t.Run("ai generated queries use neutral template confidence", func(t *testing.T) {
		candidate := Candidate{
			QueryText:  "technology reporters contact list",
			AIEnhanced: true,
		}
		criteria := models.SearchCriteria{Categories: []string{"technology"}}

		overall := scorer.Score(&candidate, criteria)

		// 0.5*0.5 + 1.0*0.3 + 1.0*0.2 = 0.75
		assert.InDelta(t, 0.75, overall, 1e-9)
	})

	t.Run("partial coverage", func(t *testing.T) {
		candidate := Candidate{
			QueryText:          "technology journalists contact email",
			SourceTemplateID:   strPtr("tpl-1"),
			TemplateConfidence: 0.5,
		}
		criteria := models.SearchCriteria{
			Categories: []string{"technology"},
			Countries:  []string{"france"},
		}

		scorer.Score(&candidate, criteria)
		assert.InDelta(t, 0.5, candidate.Scores.Relevance, 1e-9)
	})

	t.Run("short queries are penalized", func(t *testing.T) {
		short := Candidate{QueryText: "tech", SourceTemplateID: strPtr("t"), TemplateConfidence: 0.5}
		ideal := Candidate{QueryText: "tech journalists contact email", SourceTemplateID: strPtr("t"), TemplateConfidence: 0.5}

		shortScore := scorer.Score(&short, models.SearchCriteria{})
		idealScore := scorer.Score(&ideal, models.SearchCriteria{})
		assert.Less(t, shortScore, idealScore)
	})

	t.Run("overall stays within bounds", func(t *testing.T) {
		candidate := Candidate{
			QueryText:          "technology journalists in germany reporting on climate",
			SourceTemplateID:   strPtr("tpl-1"),
			TemplateConfidence: 1.5, // corrupt input
		}
		overall := scorer.Score(&candidate, models.SearchCriteria{})
		assert.GreaterOrEqual(t, overall, 0.0)
		assert.LessOrEqual(t, overall, 1.0)
	})
}

func TestLengthScore(t *testing.T) {
	scorer := NewQueryScorer(defaultWeights())

	tests := []struct {
		name   string
		tokens int
		want   float64
	}{
		{"empty", 0, 0},
		{"one token", 1, 1.0 / 3.0},
		{"ideal lower bound", 3, 1.0},
		{"ideal upper bound", 20, 1.0},
		{"slightly over", 25, 0.75},
		{"far over", 45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := make([]string, tt.tokens)
			for i := range words {
				words[i] = "word"
			}
			got := scorer.lengthScore(joinWords(words))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func joinWords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}
