// internal/models/request.go
package models

// SearchCriteria holds the structured dimensions of a search intent. Empty
// slices mean the dimension was not requested.
type SearchCriteria struct {
	Categories []string `json:"categories,omitempty"`
	Beats      []string `json:"beats,omitempty"`
	Countries  []string `json:"countries,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	Topics     []string `json:"topics,omitempty"`
	Outlets    []string `json:"outlets,omitempty"`
}

// Dimensions returns the requested dimensions keyed by name. Only non-empty
// dimensions are included.
func (c SearchCriteria) Dimensions() map[string][]string {
	dims := map[string][]string{}
	if len(c.Categories) > 0 {
		dims["categories"] = c.Categories
	}
	if len(c.Beats) > 0 {
		dims["beats"] = c.Beats
	}
	if len(c.Countries) > 0 {
		dims["countries"] = c.Countries
	}
	if len(c.Languages) > 0 {
		dims["languages"] = c.Languages
	}
	if len(c.Topics) > 0 {
		dims["topics"] = c.Topics
	}
	if len(c.Outlets) > 0 {
		dims["outlets"] = c.Outlets
	}
	return dims
}

// GenerationOptions controls one generation batch. Zero values fall back to
// the configured defaults.
type GenerationOptions struct {
	MaxQueries          int      `json:"maxQueries,omitempty"`
	DiversityThreshold  float64  `json:"diversityThreshold,omitempty"`
	MinRelevanceScore   float64  `json:"minRelevanceScore,omitempty"`
	EnableAIEnhancement bool     `json:"enableAIEnhancement,omitempty"`
	FallbackStrategies  []string `json:"fallbackStrategies,omitempty"`
	CacheEnabled        bool     `json:"cacheEnabled,omitempty"`
	Priority            string   `json:"priority,omitempty"`
}

// GenerationRequest is one invocation of the generation pipeline.
type GenerationRequest struct {
	SearchID      string            `json:"searchId"`
	BatchID       string            `json:"batchId"`
	OriginalQuery string            `json:"originalQuery"`
	Criteria      SearchCriteria    `json:"criteria"`
	Options       GenerationOptions `json:"options"`
	UserID        string            `json:"userId,omitempty"`
}

// BatchError records one non-fatal failure that occurred during a batch.
type BatchError struct {
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GenerationResult is the structured outcome of one batch. Status is
// "completed" even when degraded; fatal failures reject the call instead.
type GenerationResult struct {
	SearchID      string           `json:"searchId"`
	BatchID       string           `json:"batchId"`
	OriginalQuery string           `json:"originalQuery"`
	Queries       []GeneratedQuery `json:"queries"`
	Metrics       BatchMetrics     `json:"metrics"`
	Status        string           `json:"status"`
	Errors        []BatchError     `json:"errors,omitempty"`
}
