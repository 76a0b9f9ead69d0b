// internal/workers/discovery/generate-queries/handler.go
package generatequeries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	stderrors "contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/common/metrics"
	"contact-discovery/internal/common/validation"
	"contact-discovery/internal/models"
)

const (
	TaskType = "generate-queries"
)

// requestSchema validates the job variables before the pipeline runs.
var requestSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"searchId", "batchId", "originalQuery"},
	"properties": map[string]interface{}{
		"searchId":      map[string]interface{}{"type": "string", "minLength": 1},
		"batchId":       map[string]interface{}{"type": "string", "minLength": 1},
		"originalQuery": map[string]interface{}{"type": "string"},
	},
}

// GenerationService is the pipeline entry point the worker delegates to.
type GenerationService interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
}

type Handler struct {
	config  *Config
	service GenerationService
	logger  logger.Logger
}

func NewHandler(config *Config, service GenerationService, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		service: service,
		logger: log.WithFields(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(started).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, stderrors.NewRequestInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err == nil {
		if result, err := validation.ValidateAgainstSchema(raw, requestSchema); err == nil && !result.Valid {
			h.failJob(client, job, stderrors.NewRequestInvalidError(strings.Join(result.GetErrorMessages(), "; ")))
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.service.Generate(ctx, models.GenerationRequest{
		SearchID:      input.SearchID,
		BatchID:       input.BatchID,
		OriginalQuery: input.OriginalQuery,
		Criteria:      input.Criteria,
		Options:       input.Options,
		UserID:        input.UserID,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("query generation completed", map[string]interface{}{
		"searchId": result.SearchID,
		"batchId":  result.BatchID,
		"queries":  len(result.Queries),
		"errors":   len(result.Errors),
	})

	return &Output{
		SearchID: result.SearchID,
		BatchID:  result.BatchID,
		Queries:  result.Queries,
		Metrics:  result.Metrics,
		Status:   result.Status,
		Errors:   result.Errors,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	errorCode := "UNKNOWN_ERROR"
	retries := int32(0)

	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		errorCode = string(stdErr.Code)
		retries = int32(stderrors.GetRetryCount(stdErr.Code))
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
