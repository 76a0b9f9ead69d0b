package enhance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contact-discovery/internal/common/config"
	stderrors "contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnhancer(t *testing.T, handler http.HandlerFunc) *HTTPEnhancer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewHTTPEnhancer(config.AIConfig{
		Enabled:   true,
		BaseURL:   server.URL,
		APIKey:    "test-key",
		Model:     "gpt-4o-mini",
		MaxTokens: 500,
		TimeoutMs: 2000,
	}, logger.NewNoOpLogger())
}

func chatReply(content string) string {
	return `{"choices":[{"message":{"content":` + content + `}}]}`
}

func TestEnhanceQuery(t *testing.T) {
	enhancer := newTestEnhancer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(chatReply(`"[\"climate reporters europe\", \"environment desk contacts\"]"`)))
	})

	variants, err := enhancer.EnhanceQuery(context.Background(), "climate change",
		models.SearchCriteria{Beats: []string{"environment"}}, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"climate reporters europe", "environment desk contacts"}, variants)
}

func TestEnhanceQueryParsesEmbeddedArray(t *testing.T) {
	enhancer := newTestEnhancer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(`"Here are the queries:\n[\"tech editors berlin\"]\nHope that helps."`)))
	})

	variants, err := enhancer.EnhanceQuery(context.Background(), "tech", models.SearchCriteria{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"tech editors berlin"}, variants)
}

func TestEnhanceQueryAPIError(t *testing.T) {
	enhancer := newTestEnhancer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := enhancer.EnhanceQuery(context.Background(), "tech", models.SearchCriteria{}, time.Second)
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeEnhancementFailed, stdErr.Code)
}

func TestEnhanceQueryTimeout(t *testing.T) {
	enhancer := newTestEnhancer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(chatReply(`"[]"`)))
	})

	_, err := enhancer.EnhanceQuery(context.Background(), "tech", models.SearchCriteria{}, 50*time.Millisecond)
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeEnhancementTimeout, stdErr.Code)
}

func TestEnhanceQueryMalformedResponse(t *testing.T) {
	enhancer := newTestEnhancer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(`"no array here"`)))
	})

	_, err := enhancer.EnhanceQuery(context.Background(), "tech", models.SearchCriteria{}, time.Second)
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeEnhancementFailed, stdErr.Code)
}

func TestParseVariantsFiltersEmptyEntries(t *testing.T) {
	variants, err := parseVariants(`["a", "  ", "", "b"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, variants)
}
