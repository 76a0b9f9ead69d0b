// internal/discovery/enhance/enhancer.go
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contact-discovery/internal/common/config"
	"contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/models"
)

// Enhancer generates additional query variants from the original search
// intent. Implementations may fail or time out; callers must tolerate both.
type Enhancer interface {
	EnhanceQuery(ctx context.Context, originalQuery string, criteria models.SearchCriteria, timeout time.Duration) ([]string, error)
}

// HTTPEnhancer calls a chat-completions style generative API.
type HTTPEnhancer struct {
	config config.AIConfig
	client *http.Client
	logger logger.Logger
}

func NewHTTPEnhancer(cfg config.AIConfig, log logger.Logger) *HTTPEnhancer {
	return &HTTPEnhancer{
		config: cfg,
		client: &http.Client{
			Timeout: config.GetDuration(cfg.TimeoutMs),
		},
		logger: log.WithFields(map[string]interface{}{
			"component": "ai-enhancer",
		}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You generate web search queries for finding journalist and media contacts. ` +
	`Respond with a JSON array of search query strings only, no prose.`

// EnhanceQuery asks the generative API for query variants. The result is
// discarded entirely on any failure, never partially merged.
func (e *HTTPEnhancer) EnhanceQuery(ctx context.Context, originalQuery string, criteria models.SearchCriteria, timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		timeout = config.GetDuration(e.config.TimeoutMs)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       e.config.Model,
		Temperature: e.config.Temperature,
		MaxTokens:   e.config.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: e.buildPrompt(originalQuery, criteria)},
		},
	})
	if err != nil {
		return nil, errors.NewEnhancementError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewEnhancementError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, errors.NewEnhancementTimeoutError(timeout)
		}
		return nil, errors.NewEnhancementError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewEnhancementError(fmt.Errorf("enhancement API returned %d", resp.StatusCode))
	}

	var apiResponse chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, errors.NewEnhancementError(err)
	}
	if len(apiResponse.Choices) == 0 {
		return nil, errors.NewEnhancementError(fmt.Errorf("enhancement API returned no choices"))
	}

	variants, err := parseVariants(apiResponse.Choices[0].Message.Content)
	if err != nil {
		return nil, errors.NewEnhancementError(err)
	}

	e.logger.Info("query enhancement completed", map[string]interface{}{
		"originalQuery": originalQuery,
		"variantCount":  len(variants),
	})
	return variants, nil
}

func (e *HTTPEnhancer) buildPrompt(originalQuery string, criteria models.SearchCriteria) string {
	var sb strings.Builder
	sb.WriteString("Search intent: ")
	sb.WriteString(originalQuery)

	for name, values := range criteria.Dimensions() {
		sb.WriteString("\n")
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(values, ", "))
	}

	sb.WriteString("\nGenerate up to 5 diverse search query variants.")
	return sb.String()
}

// parseVariants accepts a bare JSON array or one embedded in surrounding text.
func parseVariants(content string) ([]string, error) {
	content = strings.TrimSpace(content)

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in enhancement response")
	}

	var raw []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("malformed enhancement response: %w", err)
	}

	variants := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v != "" {
			variants = append(variants, v)
		}
	}
	return variants, nil
}
