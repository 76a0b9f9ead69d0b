// internal/workers/discovery/generate-queries/models.go
package generatequeries

import "contact-discovery/internal/models"

type Input struct {
	SearchID      string                   `json:"searchId"`
	BatchID       string                   `json:"batchId"`
	OriginalQuery string                   `json:"originalQuery"`
	Criteria      models.SearchCriteria    `json:"criteria"`
	Options       models.GenerationOptions `json:"options"`
	UserID        string                   `json:"userId,omitempty"`
}

type Output struct {
	SearchID string                  `json:"searchId"`
	BatchID  string                  `json:"batchId"`
	Queries  []models.GeneratedQuery `json:"queries"`
	Metrics  models.BatchMetrics     `json:"metrics"`
	Status   string                  `json:"status"`
	Errors   []models.BatchError     `json:"errors,omitempty"`
}
