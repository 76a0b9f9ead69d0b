// internal/models/query.go
package models

import "time"

// QueryScores holds the per-query scoring breakdown.
type QueryScores struct {
	Relevance float64 `json:"relevance"`
	Diversity float64 `json:"diversity"`
	Overall   float64 `json:"overall"`
}

// QueryMetadata carries provenance flags for a generated query.
type QueryMetadata struct {
	AIEnhanced bool `json:"aiEnhanced"`
}

// GeneratedQuery is one accepted search query within a batch. Rows are
// write-once, used for audit.
type GeneratedQuery struct {
	ID               string        `json:"id"`
	SearchID         string        `json:"searchId"`
	BatchID          string        `json:"batchId"`
	QueryText        string        `json:"queryText"`
	QueryType        TemplateType  `json:"queryType"`
	SourceTemplateID *string       `json:"sourceTemplateId,omitempty"`
	Scores           QueryScores   `json:"scores"`
	Metadata         QueryMetadata `json:"metadata"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// BatchMetrics is the metrics snapshot reported per generation batch.
type BatchMetrics struct {
	TotalGenerated     int                `json:"totalGenerated"`
	AverageScore       float64            `json:"averageScore"`
	DiversityScore     float64            `json:"diversityScore"`
	ProcessingTimeMs   int64              `json:"processingTimeMs"`
	CoverageByCriteria map[string]float64 `json:"coverageByCriteria"`
}

// QueryPerformanceLog is the write-once audit record of one batch.
type QueryPerformanceLog struct {
	ID        string       `json:"id"`
	SearchID  string       `json:"searchId"`
	BatchID   string       `json:"batchId"`
	Metrics   BatchMetrics `json:"metrics"`
	CreatedAt time.Time    `json:"createdAt"`
}
