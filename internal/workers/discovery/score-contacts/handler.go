// internal/workers/discovery/score-contacts/handler.go
package scorecontacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	stderrors "contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/common/metrics"
	"contact-discovery/internal/discovery/contacts"
	"contact-discovery/internal/models"
)

const (
	TaskType = "score-contacts"
)

const (
	ActionAccept = "accept"
	ActionReview = "review"
	ActionReject = "reject"
)

// ContactIndexer writes scored contacts to the search index.
type ContactIndexer interface {
	IndexAll(ctx context.Context, contactList []models.ExtractedContact) []error
}

type Handler struct {
	config     *Config
	scorer     *contacts.ConfidenceScorer
	indexer    ContactIndexer
	errHandler *stderrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler wires the scorer and an optional indexer. A nil indexer
// disables persistence and the worker becomes score-only.
func NewHandler(config *Config, scorer *contacts.ConfidenceScorer, indexer ContactIndexer, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		scorer:     scorer,
		indexer:    indexer,
		errHandler: stderrors.NewErrorHandler(scoped),
		logger:     scoped,
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
	if input.SearchID == "" {
		h.failJob(client, job, stderrors.NewRequestInvalidError("searchId is required"))
		return
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
	output := &Output{
		SearchID:     input.SearchID,
		ExtractionID: input.ExtractionID,
		Contacts:     make([]ScoredContact, 0, len(input.Contacts)),
	}

	flagged := contacts.FlagDuplicates(input.Contacts)

	for _, contact := range flagged {
		result := h.scorer.ScoreContact(contact, input.Source, input.Criteria, input.Signals)

		contact.ConfidenceScore = result.ConfidenceScore
		contact.QualityScore = result.QualityScore
		contact.RelevanceScore = result.RelevanceScore
		contact.Metadata.ConfidenceFactors = result.Factors

		action := h.classify(result.ConfidenceScore)
		switch action {
		case ActionAccept:
			output.Accepted++
		case ActionReview:
			output.NeedsReview++
		case ActionReject:
			output.Rejected++
		}
		if contact.IsDuplicate {
			output.Duplicates++
		}
		metrics.ContactsScored.WithLabelValues(action).Inc()

		output.Contacts = append(output.Contacts, ScoredContact{
			Contact: contact,
			Result:  result,
			Action:  action,
		})
	}

	if input.IndexResults && h.indexer != nil {
		indexable := make([]models.ExtractedContact, 0, len(output.Contacts))
		for _, scored := range output.Contacts {
			if scored.Action == ActionReject || scored.Contact.IsDuplicate {
				continue
			}
			indexable = append(indexable, scored.Contact)
		}
		for _, err := range h.indexer.IndexAll(ctx, indexable) {
			output.Errors = append(output.Errors, err.Error())
		}
	}

	h.logger.Info("contacts scored", map[string]interface{}{
		"searchId":    input.SearchID,
		"contacts":    len(output.Contacts),
		"accepted":    output.Accepted,
		"needsReview": output.NeedsReview,
		"rejected":    output.Rejected,
		"duplicates":  output.Duplicates,
	})

	return output, nil
}

func (h *Handler) classify(confidence float64) string {
	switch {
	case confidence >= h.config.AcceptThreshold:
		return ActionAccept
	case confidence >= h.config.ReviewThreshold:
		return ActionReview
	default:
		return ActionReject
	}
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
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		errorCode = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	h.errHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
