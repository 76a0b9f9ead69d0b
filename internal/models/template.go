// internal/models/template.go
package models

import "time"

// TemplateType classifies a query template by the scoping dimension it targets.
type TemplateType string

const (
	TemplateTypeBase             TemplateType = "BASE"
	TemplateTypeCategorySpecific TemplateType = "CATEGORY_SPECIFIC"
	TemplateTypeCountrySpecific  TemplateType = "COUNTRY_SPECIFIC"
	TemplateTypeBeatSpecific     TemplateType = "BEAT_SPECIFIC"
	TemplateTypeLanguageSpecific TemplateType = "LANGUAGE_SPECIFIC"
)

// QueryTemplate is a parametrized query-string skeleton bound to an optional
// scope. Scoping fields are nil when the template applies to all values of
// that dimension.
type QueryTemplate struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Template          string       `json:"template"`
	Type              TemplateType `json:"type"`
	Category          *string      `json:"category,omitempty"`
	Beat              *string      `json:"beat,omitempty"`
	Country           *string      `json:"country,omitempty"`
	Language          *string      `json:"language,omitempty"`
	Priority          int          `json:"priority"`
	IsActive          bool         `json:"isActive"`
	UsageCount        int64        `json:"usageCount"`
	SuccessCount      int64        `json:"successCount"`
	AverageConfidence float64      `json:"averageConfidence"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// TemplateOutcome is one template's end-of-batch counter update.
type TemplateOutcome struct {
	TemplateID string
	Accepted   bool
	Confidence float64
}
