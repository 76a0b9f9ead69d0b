// internal/models/contact.go
package models

import "time"

// SocialProfile is one linked social account on an extracted contact.
type SocialProfile struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Handle   string `json:"handle,omitempty"`
	Verified bool   `json:"verified"`
}

// ContactMetadata holds the per-factor breakdowns computed at scoring time.
type ContactMetadata struct {
	ConfidenceFactors map[string]float64 `json:"confidenceFactors,omitempty"`
	QualityFactors    map[string]float64 `json:"qualityFactors,omitempty"`
}

// ExtractedContact is a candidate contact produced by the extraction
// pipeline and scored once along three independent axes.
type ExtractedContact struct {
	ID                 string          `json:"id"`
	ExtractionID       string          `json:"extractionId"`
	SearchID           string          `json:"searchId"`
	SourceURL          string          `json:"sourceUrl"`
	Name               string          `json:"name"`
	Title              string          `json:"title,omitempty"`
	Bio                string          `json:"bio,omitempty"`
	Email              string          `json:"email,omitempty"`
	SocialProfiles     []SocialProfile `json:"socialProfiles,omitempty"`
	ConfidenceScore    float64         `json:"confidenceScore"`
	QualityScore       float64         `json:"qualityScore"`
	RelevanceScore     float64         `json:"relevanceScore"`
	ExtractionMethod   string          `json:"extractionMethod"`
	VerificationStatus string          `json:"verificationStatus"`
	IsDuplicate        bool            `json:"isDuplicate"`
	Metadata           ContactMetadata `json:"metadata"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// ScoringResult is the transient, explainable output of scoring one contact.
// It is returned to callers but never persisted.
type ScoringResult struct {
	ConfidenceScore float64            `json:"confidenceScore"`
	QualityScore    float64            `json:"qualityScore"`
	RelevanceScore  float64            `json:"relevanceScore"`
	Factors         map[string]float64 `json:"factors"`
	Reasoning       []string           `json:"reasoning"`
	Recommendations []string           `json:"recommendations"`
}

// SourceContentMetadata describes the page a contact was extracted from.
type SourceContentMetadata struct {
	Author    string `json:"author,omitempty"`
	Domain    string `json:"domain,omitempty"`
	WordCount int    `json:"wordCount,omitempty"`
}

// SourceContent is the extraction provider's view of a source page,
// consumed only by contact scoring.
type SourceContent struct {
	URL      string                `json:"url"`
	Title    string                `json:"title,omitempty"`
	Content  string                `json:"content,omitempty"`
	Metadata SourceContentMetadata `json:"metadata"`
	Language string                `json:"language,omitempty"`
}

// QualitySignals are caller-supplied inputs to the quality score.
type QualitySignals struct {
	SourceCredibility      float64  `json:"sourceCredibility"`
	ContentFreshness       float64  `json:"contentFreshness"`
	InformationConsistency *float64 `json:"informationConsistency,omitempty"`
}
