// internal/workers/proposal/generate-proposal/handler.go
package generateproposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"proposal-engine/internal/common/logger"
	stderrors "proposal-engine/internal/common/errors"
	"proposal-engine/internal/models"
	"proposal-engine/internal/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-proposal"
)

var (
	ErrProposalGenerationFailed = errors.New("PROPOSAL_GENERATION_FAILED")
)

type Handler struct {
	config       *Config
	orchestrator *pipeline.Orchestrator
	logger       logger.Logger
}

func NewHandler(config *Config, orchestrator *pipeline.Orchestrator, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		orchestrator: orchestrator,
		logger:       log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "PROPOSAL_GENERATION_FAILED"
		if code := stderrors.CodeOf(err); code != "" {
			errorCode = string(code)
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	request := models.RFPRequest{
		ID:       input.RequestID,
		Title:    input.Title,
		Excerpt:  input.Excerpt,
		Currency: input.Currency,
	}
	if input.DueDate != "" {
		due, parseErr := time.Parse(time.RFC3339, input.DueDate)
		if parseErr != nil {
			h.logger.Debug("Failed to parse due date, skipping urgency check", map[string]interface{}{
				"requestId": input.RequestID,
				"dueDate":   input.DueDate,
				"error":     parseErr.Error(),
			})
		} else {
			request.DueDate = due
		}
	}

	bundle, err := h.orchestrator.Run(ctx, request)
	if err != nil {
		// Keep the pipeline error in the chain so the job error code can
		// carry its classification.
		return nil, fmt.Errorf("%s: %w", ErrProposalGenerationFailed.Error(), err)
	}

	return &Output{
		ProposalID:     bundle.ProposalID,
		WinProbability: bundle.WinProbability,
		GrandTotal:     bundle.Costs.GrandTotal,
		Currency:       bundle.Costs.Currency,
		RiskLevel:      bundle.Risk.Level,
		Compliance:     bundle.Compliance.Status,
		Summary:        bundle.Summary,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
