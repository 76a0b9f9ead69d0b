// internal/discovery/generation/config.go
package generation

import "contact-discovery/internal/common/config"

// ServiceConfig is the effective runtime configuration of the generation
// service. It can be patched at runtime via UpdateConfig.
type ServiceConfig struct {
	Generation config.GenerationConfig `json:"generation"`
	AI         config.AIConfig         `json:"ai"`
	Scoring    config.ScoringConfig    `json:"scoring"`
}

// ConfigPatch is a partial configuration; nil fields keep their current
// value. UpdateConfig deep-merges a patch into the effective config.
type ConfigPatch struct {
	Generation *GenerationPatch `json:"generation,omitempty"`
	AI         *AIPatch         `json:"ai,omitempty"`
	Scoring    *ScoringPatch    `json:"scoring,omitempty"`
}

type GenerationPatch struct {
	MaxQueries         *int     `json:"maxQueries,omitempty"`
	DiversityThreshold *float64 `json:"diversityThreshold,omitempty"`
	MinRelevanceScore  *float64 `json:"minRelevanceScore,omitempty"`
	ExpansionCap       *int     `json:"expansionCap,omitempty"`
	ConfidenceAlpha    *float64 `json:"confidenceAlpha,omitempty"`
	CacheEnabled       *bool    `json:"cacheEnabled,omitempty"`
}

type AIPatch struct {
	Enabled     *bool    `json:"enabled,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	TimeoutMs   *int     `json:"timeoutMs,omitempty"`
}

type ScoringPatch struct {
	Query   *config.QueryWeights   `json:"query,omitempty"`
	Contact *config.ContactWeights `json:"contact,omitempty"`
}

func (c *ServiceConfig) apply(patch ConfigPatch) {
	if patch.Generation != nil {
		g := patch.Generation
		if g.MaxQueries != nil {
			c.Generation.MaxQueries = *g.MaxQueries
		}
		if g.DiversityThreshold != nil {
			c.Generation.DiversityThreshold = *g.DiversityThreshold
		}
		if g.MinRelevanceScore != nil {
			c.Generation.MinRelevanceScore = *g.MinRelevanceScore
		}
		if g.ExpansionCap != nil {
			c.Generation.ExpansionCap = *g.ExpansionCap
		}
		if g.ConfidenceAlpha != nil {
			c.Generation.ConfidenceAlpha = *g.ConfidenceAlpha
		}
		if g.CacheEnabled != nil {
			c.Generation.CacheEnabled = *g.CacheEnabled
		}
	}

	if patch.AI != nil {
		a := patch.AI
		if a.Enabled != nil {
			c.AI.Enabled = *a.Enabled
		}
		if a.Model != nil {
			c.AI.Model = *a.Model
		}
		if a.Temperature != nil {
			c.AI.Temperature = *a.Temperature
		}
		if a.MaxTokens != nil {
			c.AI.MaxTokens = *a.MaxTokens
		}
		if a.TimeoutMs != nil {
			c.AI.TimeoutMs = *a.TimeoutMs
		}
	}

	if patch.Scoring != nil {
		if patch.Scoring.Query != nil {
			c.Scoring.Query = *patch.Scoring.Query
		}
		if patch.Scoring.Contact != nil {
			c.Scoring.Contact = *patch.Scoring.Contact
		}
	}
}
