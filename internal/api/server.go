// Package api exposes the proposal pipeline over HTTP.
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"proposal-engine/internal/common/errors"
	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/models"
	"proposal-engine/internal/pipeline"
)

// Server routes proposal requests into the orchestrator.
type Server struct {
	orchestrator *pipeline.Orchestrator
	logger       logger.Logger
}

func NewServer(orchestrator *pipeline.Orchestrator, log logger.Logger) *Server {
	return &Server{
		orchestrator: orchestrator,
		logger:       log.With(map[string]interface{}{"component": "api"}),
	}
}

// Routes registers the API handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/proposals", s.handleGenerate)
	mux.HandleFunc("/healthz", s.handleHealth)
}

type proposalRequest struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	DueDate  string `json:"dueDate,omitempty"` // RFC 3339
	Currency string `json:"currency,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "METHOD_NOT_ALLOWED", Message: "use POST"})
		return
	}

	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "malformed JSON body", Details: err.Error()})
		return
	}
	if req.Title == "" && req.Excerpt == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "title or excerpt is required"})
		return
	}

	request := models.RFPRequest{
		ID:       req.ID,
		Title:    req.Title,
		Excerpt:  req.Excerpt,
		Currency: req.Currency,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "dueDate must be RFC 3339", Details: err.Error()})
			return
		}
		request.DueDate = due
	}

	bundle, err := s.orchestrator.Run(r.Context(), request)
	if err != nil {
		s.logger.Error("proposal generation failed", map[string]interface{}{
			"requestId": request.ID,
			"error":     err.Error(),
		})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// writeError maps pipeline failures onto HTTP status codes: unusable input is
// the client's problem, unavailable backends are ours.
func writeError(w http.ResponseWriter, err error) {
	var stdErr *errors.StandardError
	status := http.StatusInternalServerError
	code := "INTERNAL"
	message := "proposal generation failed"
	details := err.Error()

	if stderrors.As(err, &stdErr) {
		code = string(stdErr.Code)
		message = stdErr.Message
		details = stdErr.Details
		switch errors.CodeOf(err) {
		case errors.ErrCodePipelineAborted:
			status = http.StatusUnprocessableEntity
		case errors.ErrCodeCatalogUnavailable, errors.ErrCodeServiceOverloaded:
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, errorResponse{Code: code, Message: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
