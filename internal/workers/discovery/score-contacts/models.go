// internal/workers/discovery/score-contacts/models.go
package scorecontacts

import "contact-discovery/internal/models"

type Input struct {
	SearchID     string                    `json:"searchId"`
	ExtractionID string                    `json:"extractionId"`
	Contacts     []models.ExtractedContact `json:"contacts"`
	Source       *models.SourceContent     `json:"source,omitempty"`
	Criteria     models.SearchCriteria     `json:"criteria"`
	Signals      models.QualitySignals     `json:"signals"`
	IndexResults bool                      `json:"indexResults"`
}

// ScoredContact pairs a contact with its explainable scoring breakdown and
// the recommended next action.
type ScoredContact struct {
	Contact models.ExtractedContact `json:"contact"`
	Result  models.ScoringResult    `json:"result"`
	Action  string                  `json:"action"`
}

type Output struct {
	SearchID     string          `json:"searchId"`
	ExtractionID string          `json:"extractionId"`
	Contacts     []ScoredContact `json:"contacts"`
	Accepted     int             `json:"accepted"`
	NeedsReview  int             `json:"needsReview"`
	Rejected     int             `json:"rejected"`
	Duplicates   int             `json:"duplicates"`
	Errors       []string        `json:"errors,omitempty"`
}
