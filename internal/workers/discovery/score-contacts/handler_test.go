// internal/workers/discovery/score-contacts/handler_test.go
package scorecontacts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-discovery/internal/common/config"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/discovery/contacts"
	"contact-discovery/internal/models"
)

// ==========================
// Fakes
// ==========================

type fakeIndexer struct {
	indexed []models.ExtractedContact
	errs    []error
}

func (f *fakeIndexer) IndexAll(ctx context.Context, contactList []models.ExtractedContact) []error {
	f.indexed = append(f.indexed, contactList...)
	return f.errs
}

func createTestConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		AcceptThreshold: 0.8,
		ReviewThreshold: 0.5,
	}
}

func testWeights() config.ContactWeights {
	return config.ContactWeights{Name: 0.3, Email: 0.25, Title: 0.2, Bio: 0.15, Social: 0.1}
}

func newTestHandler(t *testing.T, indexer ContactIndexer) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	scorer := contacts.NewConfidenceScorer(testWeights(), log)
	return NewHandler(createTestConfig(), scorer, indexer, log)
}

func strongContact(id string) models.ExtractedContact {
	return models.ExtractedContact{
		ID:        id,
		SearchID:  "search-1",
		SourceURL: "https://www.nytimes.com/staff/" + id,
		Name:      "John Smith",
		Title:     "Senior Editor",
		Email:     "john.smith@nytimes.com",
	}
}

func weakContact(id string) models.ExtractedContact {
	return models.ExtractedContact{
		ID:        id,
		SearchID:  "search-1",
		SourceURL: "https://blogspot.example.com/" + id,
		Name:      "test123",
		Email:     "spam@tempmail.com",
	}
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_ClassifiesByConfidence(t *testing.T) {
	handler := newTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{
		SearchID:     "search-1",
		ExtractionID: "ext-1",
		Contacts: []models.ExtractedContact{
			strongContact("c-1"),
			weakContact("c-2"),
		},
	})
	require.NoError(t, err)
	require.Len(t, output.Contacts, 2)

	assert.Equal(t, ActionAccept, output.Contacts[0].Action)
	assert.Equal(t, ActionReject, output.Contacts[1].Action)
	assert.Equal(t, 1, output.Accepted)
	assert.Equal(t, 1, output.Rejected)
	assert.Equal(t, 0, output.NeedsReview)

	// Scores are copied onto the contact for downstream steps.
	assert.Greater(t, output.Contacts[0].Contact.ConfidenceScore, 0.8)
	assert.NotEmpty(t, output.Contacts[0].Result.Reasoning)
	assert.NotEmpty(t, output.Contacts[0].Contact.Metadata.ConfidenceFactors)
}

func TestHandler_Execute_FlagsDuplicates(t *testing.T) {
	handler := newTestHandler(t, nil)

	first := strongContact("c-1")
	second := strongContact("c-2")

	output, err := handler.Execute(context.Background(), &Input{
		SearchID: "search-1",
		Contacts: []models.ExtractedContact{first, second},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, output.Duplicates)
	assert.False(t, output.Contacts[0].Contact.IsDuplicate)
	assert.True(t, output.Contacts[1].Contact.IsDuplicate)
}

func TestHandler_Execute_IndexesAcceptedContacts(t *testing.T) {
	indexer := &fakeIndexer{}
	handler := newTestHandler(t, indexer)

	output, err := handler.Execute(context.Background(), &Input{
		SearchID:     "search-1",
		IndexResults: true,
		Contacts: []models.ExtractedContact{
			strongContact("c-1"),
			weakContact("c-2"),
		},
	})
	require.NoError(t, err)
	assert.Empty(t, output.Errors)

	// Rejected contacts stay out of the index.
	require.Len(t, indexer.indexed, 1)
	assert.Equal(t, "c-1", indexer.indexed[0].ID)
}

func TestHandler_Execute_SkipsDuplicatesWhenIndexing(t *testing.T) {
	indexer := &fakeIndexer{}
	handler := newTestHandler(t, indexer)

	_, err := handler.Execute(context.Background(), &Input{
		SearchID:     "search-1",
		IndexResults: true,
		Contacts: []models.ExtractedContact{
			strongContact("c-1"),
			strongContact("c-2"),
		},
	})
	require.NoError(t, err)

	require.Len(t, indexer.indexed, 1)
	assert.Equal(t, "c-1", indexer.indexed[0].ID)
}

func TestHandler_Execute_CollectsIndexErrors(t *testing.T) {
	indexer := &fakeIndexer{errs: []error{errors.New("index contact c-1: mapping conflict")}}
	handler := newTestHandler(t, indexer)

	output, err := handler.Execute(context.Background(), &Input{
		SearchID:     "search-1",
		IndexResults: true,
		Contacts:     []models.ExtractedContact{strongContact("c-1")},
	})
	require.NoError(t, err)

	require.Len(t, output.Errors, 1)
	assert.Contains(t, output.Errors[0], "mapping conflict")
}

func TestHandler_Execute_EmptyContactList(t *testing.T) {
	handler := newTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{SearchID: "search-1"})
	require.NoError(t, err)
	assert.Empty(t, output.Contacts)
	assert.Zero(t, output.Accepted)
}

func TestClassify(t *testing.T) {
	handler := newTestHandler(t, nil)

	tests := []struct {
		confidence float64
		action     string
	}{
		{0.95, ActionAccept},
		{0.8, ActionAccept},
		{0.79, ActionReview},
		{0.5, ActionReview},
		{0.49, ActionReject},
		{0.0, ActionReject},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.action, handler.classify(tt.confidence), "confidence %.2f", tt.confidence)
	}
}
